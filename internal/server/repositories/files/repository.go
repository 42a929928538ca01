package files

import (
	"context"
	"time"

	"github.com/dmitrijs2005/skydrive/internal/models"
)

// Repository describes CRUD operations for FileRecord rows in the metadata
// store. All queries are scoped to exactly one owner.
type Repository interface {
	// Create inserts a new record. The (OwnerID, FileID) pair must be unique.
	Create(ctx context.Context, record *models.FileRecord) error

	// Get returns the record for (ownerID, fileID), including tombstones.
	// Returns common.ErrNotFound if no such record exists.
	Get(ctx context.Context, ownerID, fileID string) (*models.FileRecord, error)

	// UpdateStatus transitions the record's status and refreshes updated_at.
	// A deleted record is terminal: attempts to transition it report
	// common.ErrNotFound. Exactly one row must be affected.
	UpdateStatus(ctx context.Context, ownerID, fileID string, status models.Status, updatedAt time.Time) error

	// SelectActiveByOwner returns all active records for ownerID.
	SelectActiveByOwner(ctx context.Context, ownerID string) ([]*models.FileRecord, error)

	// SelectByOwner returns all records for ownerID regardless of status.
	// The delta query scans this and filters by updated_at in application
	// code, accepting O(owner's file count) per call.
	SelectByOwner(ctx context.Context, ownerID string) ([]*models.FileRecord, error)
}
