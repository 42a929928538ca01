// Package services contains the server-side business flows: the three-step
// upload protocol, listing, deletion and the changes-since delta query.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/skydrive/internal/common"
	"github.com/dmitrijs2005/skydrive/internal/models"
	"github.com/dmitrijs2005/skydrive/internal/server/repositories/files"
	"github.com/dmitrijs2005/skydrive/internal/server/storage"
	"github.com/google/uuid"
)

// nowFn is a test seam for the server clock.
var nowFn = func() time.Time { return time.Now().UTC() }

// URLIssuer is the slice of the object-store presigner the services need.
type URLIssuer interface {
	PresignPut(ctx context.Context, key string) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

// IntentRequest is the validated upload-intent input. Timestamps are
// client-declared; the server trusts them on write.
type IntentRequest struct {
	OwnerID   string
	FileName  string
	Size      int64
	MimeType  string
	Hash      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IntentResult carries the allocated file identifier and the presigned
// upload URL for the raw byte PUT.
type IntentResult struct {
	FileID    string
	UploadURL string
}

type FileService struct {
	repo   files.Repository
	issuer URLIssuer
}

func NewFileService(repo files.Repository, issuer URLIssuer) *FileService {
	return &FileService{repo: repo, issuer: issuer}
}

// UploadIntent allocates a fileId, persists a pending record and returns a
// presigned PUT URL. A retry after a failed transfer allocates a fresh
// fileId; the previous pending record stays orphaned (accepted limitation,
// pending records are invisible everywhere).
func (s *FileService) UploadIntent(ctx context.Context, req IntentRequest) (*IntentResult, error) {
	fileID := uuid.NewString()

	key := storage.ObjectKey(req.OwnerID, fileID, req.FileName)
	uploadURL, err := s.issuer.PresignPut(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}

	record := &models.FileRecord{
		FileID:    fileID,
		OwnerID:   req.OwnerID,
		FileName:  req.FileName,
		Size:      req.Size,
		MimeType:  req.MimeType,
		Hash:      req.Hash,
		CreatedAt: req.CreatedAt,
		UpdatedAt: req.UpdatedAt,
		Status:    models.StatusPending,
	}

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("error creating file record: %w", err)
	}

	return &IntentResult{FileID: fileID, UploadURL: uploadURL}, nil
}

// MarkUploaded confirms the byte transfer: the record transitions to active
// and becomes visible to listings and delta queries.
func (s *FileService) MarkUploaded(ctx context.Context, ownerID, fileID string) error {
	if err := s.repo.UpdateStatus(ctx, ownerID, fileID, models.StatusActive, nowFn()); err != nil {
		return fmt.Errorf("error marking file uploaded: %w", err)
	}
	return nil
}

// ListActive returns all active records for the owner.
func (s *FileService) ListActive(ctx context.Context, ownerID string) ([]*models.FileRecord, error) {
	records, err := s.repo.SelectActiveByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing files: %w", err)
	}
	return records, nil
}

// DownloadURL returns a presigned GET URL for an active record.
// Deleted records report not found.
func (s *FileService) DownloadURL(ctx context.Context, ownerID, fileID string) (string, error) {
	record, err := s.repo.Get(ctx, ownerID, fileID)
	if err != nil {
		return "", fmt.Errorf("error getting file: %w", err)
	}
	if record.Status == models.StatusDeleted {
		return "", fmt.Errorf("error getting file %s: %w", fileID, common.ErrNotFound)
	}

	url, err := s.issuer.PresignGet(ctx, storage.ObjectKey(ownerID, fileID, record.FileName))
	if err != nil {
		return "", fmt.Errorf("error presigning download: %w", err)
	}
	return url, nil
}

// Delete removes the stored bytes and tombstones the record. The tombstone
// is retained so delta queries can report the removal.
func (s *FileService) Delete(ctx context.Context, ownerID, fileID string) error {
	record, err := s.repo.Get(ctx, ownerID, fileID)
	if err != nil {
		return fmt.Errorf("error getting file: %w", err)
	}
	if record.Status == models.StatusDeleted {
		return fmt.Errorf("error deleting file %s: %w", fileID, common.ErrNotFound)
	}

	key := storage.ObjectKey(ownerID, fileID, record.FileName)
	if err := s.issuer.DeleteObject(ctx, key); err != nil {
		return fmt.Errorf("error deleting object: %w", err)
	}

	if err := s.repo.UpdateStatus(ctx, ownerID, fileID, models.StatusDeleted, nowFn()); err != nil {
		return fmt.Errorf("error tombstoning file: %w", err)
	}
	return nil
}
