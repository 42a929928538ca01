package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/skydrive/internal/client/api"
	"github.com/dmitrijs2005/skydrive/internal/client/index"
	"github.com/dmitrijs2005/skydrive/internal/logging"
	"github.com/dmitrijs2005/skydrive/internal/models"
)

// selfCausedTTL bounds how long a path stays marked as touched by the
// applier. Watcher events usually arrive within milliseconds of the write.
const selfCausedTTL = 10 * time.Second

// Applier materializes a sync delta into the local mirror directory. All
// mirror operations are serialized by its mutex; paths it writes or removes
// are marked self-caused so the watcher can ignore the resulting events.
type Applier struct {
	api       api.Client
	cache     *UploadCache
	index     *index.FileIndex
	mirrorDir string
	logger    logging.Logger

	mu         sync.Mutex
	selfCaused map[string]time.Time
}

func NewApplier(apiClient api.Client, cache *UploadCache, idx *index.FileIndex, mirrorDir string, logger logging.Logger) *Applier {
	return &Applier{
		api:        apiClient,
		cache:      cache,
		index:      idx,
		mirrorDir:  mirrorDir,
		logger:     logger.With("module", "applier"),
		selfCaused: make(map[string]time.Time),
	}
}

func (a *Applier) markSelfCaused(path string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.selfCaused[path] = time.Now()
}

// Consume reports whether the event for path was caused by the applier
// itself, removing the mark. Each mark suppresses one event.
func (a *Applier) Consume(path string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	marked, ok := a.selfCaused[path]
	if !ok {
		return false
	}
	delete(a.selfCaused, path)
	return time.Since(marked) < selfCausedTTL
}

// ApplyDelta brings the mirror directory in line with the delta: removals
// first, then added and modified records. A failed record aborts the apply
// so the caller keeps its cursor and the whole delta is re-delivered on the
// next sync.
func (a *Applier) ApplyDelta(ctx context.Context, delta *models.Delta) error {
	for _, ref := range delta.Removed {
		if err := a.applyRemove(ctx, ref); err != nil {
			return err
		}
	}

	for _, record := range delta.Added {
		if err := a.applyWrite(ctx, record); err != nil {
			return err
		}
	}
	for _, record := range delta.Modified {
		if err := a.applyWrite(ctx, record); err != nil {
			return err
		}
	}

	return nil
}

func (a *Applier) applyRemove(ctx context.Context, ref *models.FileRef) error {
	path := filepath.Join(a.mirrorDir, ref.FileName)

	if _, err := os.Stat(path); err == nil {
		a.markSelfCaused(path)
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("error removing mirror file: %w", err)
		}
		a.logger.Info(ctx, "removed mirror file", "path", path)
	}

	a.index.Remove(ref.FileID)
	a.cache.ForgetByFileName(ctx, ref.FileName)
	return nil
}

func (a *Applier) applyWrite(ctx context.Context, record *models.FileRecord) error {
	url, err := a.api.DownloadURL(ctx, record.FileID)
	if err != nil {
		return fmt.Errorf("error requesting download url: %w", err)
	}

	data, err := a.api.GetObject(ctx, url)
	if err != nil {
		return fmt.Errorf("error transferring bytes: %w", err)
	}

	path := filepath.Join(a.mirrorDir, record.FileName)
	a.markSelfCaused(path)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("error writing mirror file: %w", err)
	}

	// remembering the hash keeps the watcher echo from re-uploading
	a.cache.Remember(ctx, path, record.Hash)
	a.index.Update(record)

	a.logger.Info(ctx, "applied remote change", "path", path, "fileId", record.FileID)
	return nil
}
