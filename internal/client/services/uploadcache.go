// Package services contains the client-side flows: upload cache, file
// operations, local mirror applier and the sync loop.
package services

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dmitrijs2005/skydrive/internal/client/repositories/localdata"
	"github.com/dmitrijs2005/skydrive/internal/logging"
)

// UploadCache remembers the hash last uploaded (or applied) per local path,
// scoped to the signed-in owner. It is the loop breaker: a watcher event for
// a path whose content hash is already cached produces no upload.
//
// Persistence is best effort. A failed cache write is logged and otherwise
// ignored; the worst outcome is a redundant re-upload later, never a missed
// one.
type UploadCache struct {
	repo   localdata.Repository
	logger logging.Logger

	mu    sync.Mutex
	owner string
}

func NewUploadCache(repo localdata.Repository, logger logging.Logger) *UploadCache {
	return &UploadCache{repo: repo, logger: logger.With("module", "uploadcache")}
}

// SetOwner scopes subsequent cache keys to the signed-in owner.
func (c *UploadCache) SetOwner(owner string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owner = owner
}

func (c *UploadCache) keyPrefix() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return "uploaded/" + c.owner + "/"
}

func (c *UploadCache) key(path string) string {
	return c.keyPrefix() + path
}

// ShouldUpload reports whether the content at path differs from what was
// last uploaded. A cache read failure counts as "changed": uploading twice
// is safe, skipping an upload is not.
func (c *UploadCache) ShouldUpload(ctx context.Context, path, hash string) bool {
	stored, err := c.repo.Get(ctx, c.key(path))
	if err != nil {
		c.logger.Warn(ctx, "cache read failed", "path", path, "error", err.Error())
		return true
	}
	return string(stored) != hash
}

// Remember records the hash just uploaded or written for path.
func (c *UploadCache) Remember(ctx context.Context, path, hash string) {
	if err := c.repo.Set(ctx, c.key(path), []byte(hash)); err != nil {
		c.logger.Warn(ctx, "cache write failed", "path", path, "error", err.Error())
	}
}

// Forget drops the cache entry for path.
func (c *UploadCache) Forget(ctx context.Context, path string) {
	if err := c.repo.Delete(ctx, c.key(path)); err != nil {
		c.logger.Warn(ctx, "cache delete failed", "path", path, "error", err.Error())
	}
}

// ForgetByFileName prunes every entry whose path base matches the given file
// name. Used when a remote deletion arrives: the cache is keyed by local
// path, but the delta only carries the file name.
func (c *UploadCache) ForgetByFileName(ctx context.Context, fileName string) {
	prefix := c.keyPrefix()
	entries, err := c.repo.List(ctx, prefix)
	if err != nil {
		c.logger.Warn(ctx, "cache list failed", "fileName", fileName, "error", err.Error())
		return
	}

	for key := range entries {
		path := strings.TrimPrefix(key, prefix)
		if filepath.Base(path) != fileName {
			continue
		}
		if err := c.repo.Delete(ctx, key); err != nil {
			c.logger.Warn(ctx, "cache delete failed", "path", path, "error", err.Error())
		}
	}
}
