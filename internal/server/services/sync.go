package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/skydrive/internal/models"
	"github.com/dmitrijs2005/skydrive/internal/server/repositories/files"
)

// SyncService answers "what changed for this owner since this timestamp".
// The underlying store is not assumed to support range queries on
// updated_at, so the query is an owner-scoped scan filtered here, costing
// O(owner's total file count) per call. There is no garbage collection of
// records stuck in pending; they are simply never reported.
type SyncService struct {
	repo files.Repository
}

func NewSyncService(repo files.Repository) *SyncService {
	return &SyncService{repo: repo}
}

// GetChangesSince scans the owner's records, keeps those updated after
// since and classifies them. LastSync is the server clock at query time,
// not the max updated_at observed: a record updated between the scan and
// the response is delivered again on the next sync instead of being missed.
// A very old cursor just returns a larger delta, never an error.
func (s *SyncService) GetChangesSince(ctx context.Context, ownerID string, since time.Time) (*models.Delta, error) {
	records, err := s.repo.SelectByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error selecting records: %w", err)
	}

	delta := classify(records, since)
	delta.LastSync = nowFn()
	return delta, nil
}

// classify partitions records changed after the cursor into
// added / modified / removed.
//
// Rules, in precedence order:
//   - pending records are invisible to sync
//   - deleted always wins: even a record created after the cursor is
//     reported as removed when its current status is a tombstone
//   - active and unknown before the cursor (createdAt >= since) -> added
//   - active and known before the cursor -> modified
func classify(records []*models.FileRecord, since time.Time) *models.Delta {
	delta := &models.Delta{}

	for _, rec := range records {
		if !rec.UpdatedAt.After(since) {
			continue
		}

		switch rec.Status {
		case models.StatusPending:
			continue
		case models.StatusDeleted:
			delta.Removed = append(delta.Removed, &models.FileRef{FileID: rec.FileID, FileName: rec.FileName})
		case models.StatusActive:
			if !rec.CreatedAt.Before(since) {
				delta.Added = append(delta.Added, rec)
			} else {
				delta.Modified = append(delta.Modified, rec)
			}
		}
	}

	return delta
}
