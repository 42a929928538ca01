package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/skydrive/internal/models"
	"github.com/dmitrijs2005/skydrive/internal/server/repositories/files"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(fileID string, status models.Status, createdAt, updatedAt time.Time) *models.FileRecord {
	return &models.FileRecord{
		FileID:    fileID,
		OwnerID:   "u1",
		FileName:  fileID + ".txt",
		Size:      10,
		MimeType:  "text/plain",
		Hash:      "h-" + fileID,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
		Status:    status,
	}
}

func TestClassify(t *testing.T) {
	cursor := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	before := cursor.Add(-time.Hour)
	after := cursor.Add(time.Hour)

	tests := []struct {
		name         string
		records      []*models.FileRecord
		wantAdded    []string
		wantModified []string
		wantRemoved  []string
	}{
		{
			name:      "created after cursor is added",
			records:   []*models.FileRecord{record("f1", models.StatusActive, after, after)},
			wantAdded: []string{"f1"},
		},
		{
			name:         "existing record touched after cursor is modified",
			records:      []*models.FileRecord{record("f1", models.StatusActive, before, after)},
			wantModified: []string{"f1"},
		},
		{
			name:        "tombstone is removed",
			records:     []*models.FileRecord{record("f1", models.StatusDeleted, before, after)},
			wantRemoved: []string{"f1"},
		},
		{
			name:        "deletion outranks creation timing",
			records:     []*models.FileRecord{record("f1", models.StatusDeleted, after, after)},
			wantRemoved: []string{"f1"},
		},
		{
			name:    "pending is invisible",
			records: []*models.FileRecord{record("f1", models.StatusPending, after, after)},
		},
		{
			name:    "unchanged since cursor is skipped",
			records: []*models.FileRecord{record("f1", models.StatusActive, before, before)},
		},
		{
			name:    "updated exactly at cursor is skipped",
			records: []*models.FileRecord{record("f1", models.StatusActive, before, cursor)},
		},
		{
			name: "partitions are independent",
			records: []*models.FileRecord{
				record("f1", models.StatusActive, after, after),
				record("f2", models.StatusActive, before, after),
				record("f3", models.StatusDeleted, before, after),
			},
			wantAdded:    []string{"f1"},
			wantModified: []string{"f2"},
			wantRemoved:  []string{"f3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta := classify(tt.records, cursor)

			var added, modified, removed []string
			for _, r := range delta.Added {
				added = append(added, r.FileID)
			}
			for _, r := range delta.Modified {
				modified = append(modified, r.FileID)
			}
			for _, r := range delta.Removed {
				removed = append(removed, r.FileID)
			}

			assert.Equal(t, tt.wantAdded, added)
			assert.Equal(t, tt.wantModified, modified)
			assert.Equal(t, tt.wantRemoved, removed)
		})
	}
}

func TestGetChangesSince_LastSyncIsQueryTime(t *testing.T) {
	repo := files.NewInMemoryRepository()
	svc := NewSyncService(repo)

	queryTime := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	origNow := nowFn
	nowFn = func() time.Time { return queryTime }
	t.Cleanup(func() { nowFn = origNow })

	cursor := queryTime.Add(-time.Hour)
	rec := record("f1", models.StatusActive, queryTime.Add(-time.Minute), queryTime.Add(-time.Minute))
	require.NoError(t, repo.Create(context.Background(), rec))

	delta, err := svc.GetChangesSince(context.Background(), "u1", cursor)
	require.NoError(t, err)

	assert.Equal(t, queryTime, delta.LastSync)
	require.Len(t, delta.Added, 1)
	assert.Equal(t, "f1", delta.Added[0].FileID)
}

func TestGetChangesSince_StaleCursorNeverErrors(t *testing.T) {
	repo := files.NewInMemoryRepository()
	svc := NewSyncService(repo)
	now := time.Now().UTC()

	require.NoError(t, repo.Create(context.Background(), record("f1", models.StatusActive, now, now)))
	require.NoError(t, repo.Create(context.Background(), record("f2", models.StatusDeleted, now, now)))

	delta, err := svc.GetChangesSince(context.Background(), "u1", time.Time{})
	require.NoError(t, err)
	assert.Len(t, delta.Added, 1)
	assert.Len(t, delta.Removed, 1)
}

func TestGetChangesSince_ScopedToOwner(t *testing.T) {
	repo := files.NewInMemoryRepository()
	svc := NewSyncService(repo)
	now := time.Now().UTC()

	other := record("f9", models.StatusActive, now, now)
	other.OwnerID = "u2"
	require.NoError(t, repo.Create(context.Background(), other))

	delta, err := svc.GetChangesSince(context.Background(), "u1", time.Time{})
	require.NoError(t, err)
	assert.True(t, delta.Empty())
}
