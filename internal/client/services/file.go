package services

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/skydrive/internal/client/api"
	"github.com/dmitrijs2005/skydrive/internal/client/index"
	"github.com/dmitrijs2005/skydrive/internal/hashx"
	"github.com/dmitrijs2005/skydrive/internal/logging"
	"github.com/dmitrijs2005/skydrive/internal/models"
)

// FileService drives the client side of the upload protocol and keeps the
// file index current.
type FileService struct {
	api     api.Client
	cache   *UploadCache
	index   *index.FileIndex
	applier *Applier
	logger  logging.Logger
	owner   string
}

func NewFileService(apiClient api.Client, cache *UploadCache, idx *index.FileIndex, applier *Applier, logger logging.Logger) *FileService {
	return &FileService{
		api:     apiClient,
		cache:   cache,
		index:   idx,
		applier: applier,
		logger:  logger.With("module", "files"),
	}
}

// SetOwner scopes subsequent operations to the signed-in owner. Call before
// starting any background work.
func (s *FileService) SetOwner(owner string) {
	s.owner = owner
	s.cache.SetOwner(owner)
}

// RefreshIndex rebuilds the index from a full server listing.
func (s *FileService) RefreshIndex(ctx context.Context) error {
	records, err := s.api.ListFiles(ctx)
	if err != nil {
		return fmt.Errorf("error listing files: %w", err)
	}

	s.index.Reset()
	for _, record := range records {
		s.index.Update(record)
	}
	return nil
}

// Upload runs the three-step protocol for the file at path: declare the
// intent, PUT the bytes against the presigned URL, confirm. If the content
// hash matches the upload cache the file is unchanged and nothing is sent.
//
// Intent timestamps are the upload time, not the file's modtime: the server
// tells added from modified by comparing createdAt against the sync cursor,
// and a copied-in file can carry a modtime far in the past.
func (s *FileService) Upload(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("error reading file info: %w", err)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	hash, err := hashx.SumReader(file)
	if err != nil {
		return fmt.Errorf("error hashing file: %w", err)
	}
	if !s.cache.ShouldUpload(ctx, path, hash) {
		s.logger.Debug(ctx, "content unchanged, skipping upload", "path", path)
		return nil
	}

	fileName := filepath.Base(path)
	mimeType := mime.TypeByExtension(filepath.Ext(fileName))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	now := time.Now().UTC()
	intent, err := s.api.UploadIntent(ctx, &api.UploadIntentRequest{
		OwnerID:   s.owner,
		FileName:  fileName,
		Size:      info.Size(),
		MimeType:  mimeType,
		Hash:      hash,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("error requesting upload url: %w", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("error rewinding file: %w", err)
	}
	if err := s.api.PutObject(ctx, intent.UploadURL, mimeType, file, info.Size()); err != nil {
		return fmt.Errorf("error transferring bytes: %w", err)
	}

	if err := s.api.MarkUploaded(ctx, s.owner, intent.FileID); err != nil {
		return fmt.Errorf("error confirming upload: %w", err)
	}

	s.cache.Remember(ctx, path, hash)
	s.index.Update(&models.FileRecord{
		FileID:    intent.FileID,
		OwnerID:   s.owner,
		FileName:  fileName,
		Size:      info.Size(),
		MimeType:  mimeType,
		Hash:      hash,
		CreatedAt: now,
		UpdatedAt: now,
		Status:    models.StatusActive,
	})

	s.logger.Info(ctx, "uploaded", "path", path, "fileId", intent.FileID)
	return nil
}

// Download fetches the file's bytes through a presigned URL and writes them
// under destDir, remembering the hash so the write does not echo back as an
// upload.
func (s *FileService) Download(ctx context.Context, fileID, destDir string) (string, error) {
	record, ok := s.index.Get(fileID)
	if !ok {
		return "", fmt.Errorf("file %s is not in the index", fileID)
	}

	url, err := s.api.DownloadURL(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("error requesting download url: %w", err)
	}

	data, err := s.api.GetObject(ctx, url)
	if err != nil {
		return "", fmt.Errorf("error transferring bytes: %w", err)
	}

	path := filepath.Join(destDir, record.FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("error writing file: %w", err)
	}

	s.cache.Remember(ctx, path, hashx.Sum(data))
	return path, nil
}

// Delete removes the file on the server and then prunes local state,
// including the mirror copy: the removal goes through the applier so the
// path is marked self-caused and the watcher does not echo it back.
func (s *FileService) Delete(ctx context.Context, fileID string) error {
	record, _ := s.index.Get(fileID)

	if err := s.api.DeleteFile(ctx, fileID); err != nil {
		return fmt.Errorf("error deleting file: %w", err)
	}

	if record == nil {
		s.index.Remove(fileID)
		return nil
	}

	return s.applier.applyRemove(ctx, &models.FileRef{FileID: fileID, FileName: record.FileName})
}
