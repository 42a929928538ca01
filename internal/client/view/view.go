// Package view renders the file index as a text table for the CLI.
package view

import (
	"fmt"
	"io"
	"sync"
	"text/tabwriter"

	"github.com/dmitrijs2005/skydrive/internal/client/index"
)

// View renders the index contents, optionally narrowed to one file
// extension.
type View struct {
	index *index.FileIndex

	mu  sync.Mutex
	ext string
}

func New(idx *index.FileIndex) *View {
	return &View{index: idx}
}

// SetFilter narrows the rendered listing to names ending with ext
// (e.g. ".pdf"). An empty string clears the filter.
func (v *View) SetFilter(ext string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ext = ext
}

func (v *View) filter() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ext
}

// Render writes the current listing to w, sorted by name.
func (v *View) Render(w io.Writer) error {
	records := v.index.Filter(v.filter())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE ID\tNAME\tSIZE\tMODIFIED\tSTATUS")

	for _, record := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			record.FileID,
			record.FileName,
			formatSize(record.Size),
			record.UpdatedAt.Format("2006-01-02 15:04"),
			record.Status)
	}

	return tw.Flush()
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
