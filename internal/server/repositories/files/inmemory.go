package files

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/skydrive/internal/common"
	"github.com/dmitrijs2005/skydrive/internal/models"
)

type recordKey struct {
	ownerID string
	fileID  string
}

// InMemoryRepository is a map-backed Repository used in tests and local
// development. It copies records on the way in and out so callers cannot
// mutate stored state.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records map[recordKey]models.FileRecord
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{records: make(map[recordKey]models.FileRecord)}
}

func (r *InMemoryRepository) Create(_ context.Context, record *models.FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := recordKey{ownerID: record.OwnerID, fileID: record.FileID}
	if _, ok := r.records[key]; ok {
		return common.ErrInternal
	}
	r.records[key] = *record
	return nil
}

func (r *InMemoryRepository) Get(_ context.Context, ownerID, fileID string) (*models.FileRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[recordKey{ownerID: ownerID, fileID: fileID}]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := rec
	return &out, nil
}

func (r *InMemoryRepository) UpdateStatus(_ context.Context, ownerID, fileID string, status models.Status, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := recordKey{ownerID: ownerID, fileID: fileID}
	rec, ok := r.records[key]
	if !ok || rec.Status == models.StatusDeleted {
		return common.ErrNotFound
	}
	rec.Status = status
	rec.UpdatedAt = updatedAt
	r.records[key] = rec
	return nil
}

func (r *InMemoryRepository) SelectActiveByOwner(_ context.Context, ownerID string) ([]*models.FileRecord, error) {
	return r.selectOwner(ownerID, true), nil
}

func (r *InMemoryRepository) SelectByOwner(_ context.Context, ownerID string) ([]*models.FileRecord, error) {
	return r.selectOwner(ownerID, false), nil
}

func (r *InMemoryRepository) selectOwner(ownerID string, activeOnly bool) []*models.FileRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.FileRecord
	for key, rec := range r.records {
		if key.ownerID != ownerID {
			continue
		}
		if activeOnly && rec.Status != models.StatusActive {
			continue
		}
		out := rec
		result = append(result, &out)
	}
	return result
}
