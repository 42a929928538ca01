// Package watcher adapts fsnotify to the sync engine: it watches the mirror
// directory and emits write/remove events for regular files, dropping noise
// (temp files, editor artifacts) at the boundary.
package watcher

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/dmitrijs2005/skydrive/internal/logging"
)

type Kind int

const (
	// KindWrite covers file creation and content changes.
	KindWrite Kind = iota
	// KindRemove covers deletion and rename-away.
	KindRemove
)

// Event is a filtered filesystem notification for a path in the mirror dir.
type Event struct {
	Path string
	Kind Kind
}

type Watcher struct {
	fw     *fsnotify.Watcher
	events chan Event
	logger logging.Logger
}

func New(dir string, logger logging.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	return &Watcher{
		fw:     fw,
		events: make(chan Event, 64),
		logger: logger.With("module", "watcher"),
	}, nil
}

// Events delivers filtered notifications. The channel closes when Run exits.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run pumps fsnotify events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.events)
	defer w.fw.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if denylisted(filepath.Base(event.Name)) {
				continue
			}

			switch {
			case event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write):
				w.events <- Event{Path: event.Name, Kind: KindWrite}
			case event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename):
				w.events <- Event{Path: event.Name, Kind: KindRemove}
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, "watch error", "error", err.Error())
		}
	}
}

// denylisted reports whether a file name is local noise that must never be
// synced: dotfiles, backup and swap files, OS metadata.
func denylisted(name string) bool {
	if name == "" {
		return true
	}
	if strings.HasPrefix(name, ".") {
		return true
	}
	if strings.HasSuffix(name, "~") || strings.HasPrefix(name, "~$") {
		return true
	}
	if strings.HasSuffix(name, ".swp") || strings.HasSuffix(name, ".swx") || strings.HasSuffix(name, ".tmp") {
		return true
	}
	return name == "Thumbs.db" || name == "desktop.ini"
}
