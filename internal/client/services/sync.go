package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/skydrive/internal/client/api"
	"github.com/dmitrijs2005/skydrive/internal/client/repositories/localdata"
	"github.com/dmitrijs2005/skydrive/internal/logging"
)

// SyncService runs one round of reconciliation: load the cursor, fetch the
// delta, apply it to the mirror, advance the cursor. The cursor only moves
// forward, and only after a fully applied delta.
type SyncService struct {
	api     api.Client
	applier *Applier
	repo    localdata.Repository
	logger  logging.Logger
	owner   string
}

func NewSyncService(apiClient api.Client, applier *Applier, repo localdata.Repository, logger logging.Logger) *SyncService {
	return &SyncService{
		api:     apiClient,
		applier: applier,
		repo:    repo,
		logger:  logger.With("module", "sync"),
	}
}

// SetOwner scopes the cursor key to the signed-in owner.
func (s *SyncService) SetOwner(owner string) {
	s.owner = owner
}

func (s *SyncService) cursorKey() string {
	return "lastSync/" + s.owner
}

// LoadCursor returns the persisted cursor, or the zero time when none is
// stored (first sync fetches everything).
func (s *SyncService) LoadCursor(ctx context.Context) (time.Time, error) {
	value, err := s.repo.Get(ctx, s.cursorKey())
	if err != nil {
		return time.Time{}, fmt.Errorf("error loading cursor: %w", err)
	}
	if value == nil {
		return time.Time{}, nil
	}

	cursor, err := time.Parse(time.RFC3339Nano, string(value))
	if err != nil {
		// unreadable cursor degrades to a full re-sync, which is safe
		s.logger.Warn(ctx, "discarding malformed cursor", "value", string(value))
		return time.Time{}, nil
	}
	return cursor, nil
}

// SaveCursor persists the cursor if it advances past the stored one.
func (s *SyncService) SaveCursor(ctx context.Context, cursor time.Time) error {
	current, err := s.LoadCursor(ctx)
	if err != nil {
		return err
	}
	if !cursor.After(current) {
		return nil
	}

	if err := s.repo.Set(ctx, s.cursorKey(), []byte(cursor.Format(time.RFC3339Nano))); err != nil {
		return fmt.Errorf("error saving cursor: %w", err)
	}
	return nil
}

// Sync performs one reconciliation round. Any failure leaves the cursor
// untouched so the next round re-fetches the same window.
func (s *SyncService) Sync(ctx context.Context) error {
	cursor, err := s.LoadCursor(ctx)
	if err != nil {
		return err
	}

	delta, err := s.api.Changes(ctx, cursor)
	if err != nil {
		return fmt.Errorf("error fetching changes: %w", err)
	}

	if !delta.Empty() {
		s.logger.Info(ctx, "applying delta",
			"added", len(delta.Added), "modified", len(delta.Modified), "removed", len(delta.Removed))
	}

	if err := s.applier.ApplyDelta(ctx, delta); err != nil {
		return fmt.Errorf("error applying delta: %w", err)
	}

	return s.SaveCursor(ctx, delta.LastSync)
}
