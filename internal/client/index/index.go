// Package index keeps the signed-in owner's view of the cloud contents in
// memory. It is rebuilt from a full listing on login and kept current by
// uploads, deletes and applied sync deltas.
package index

import (
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/skydrive/internal/models"
)

// FileIndex is a mutex-guarded map of fileId to FileRecord.
type FileIndex struct {
	mu    sync.RWMutex
	files map[string]models.FileRecord
}

func NewFileIndex() *FileIndex {
	return &FileIndex{files: make(map[string]models.FileRecord)}
}

// Update upserts a record by its fileId.
func (i *FileIndex) Update(record *models.FileRecord) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.files[record.FileID] = *record
}

func (i *FileIndex) Remove(fileID string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.files, fileID)
}

func (i *FileIndex) Get(fileID string) (*models.FileRecord, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	record, ok := i.files[fileID]
	if !ok {
		return nil, false
	}
	return &record, true
}

// All returns the indexed records sorted by file name.
func (i *FileIndex) All() []*models.FileRecord {
	return i.Filter("")
}

// Filter returns records whose file name ends with the given extension
// (e.g. ".txt"), sorted by file name. An empty extension matches everything.
func (i *FileIndex) Filter(ext string) []*models.FileRecord {
	i.mu.RLock()
	defer i.mu.RUnlock()

	result := make([]*models.FileRecord, 0, len(i.files))
	for _, record := range i.files {
		if ext != "" && !strings.HasSuffix(strings.ToLower(record.FileName), strings.ToLower(ext)) {
			continue
		}
		r := record
		result = append(result, &r)
	}

	sort.Slice(result, func(a, b int) bool { return result[a].FileName < result[b].FileName })
	return result
}

func (i *FileIndex) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.files)
}

// Reset discards all entries, e.g. on logout.
func (i *FileIndex) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.files = make(map[string]models.FileRecord)
}
