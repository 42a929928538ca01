package files

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/skydrive/internal/common"
	"github.com/dmitrijs2005/skydrive/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock, db
}

func sampleRecord(now time.Time) *models.FileRecord {
	return &models.FileRecord{
		FileID:    "f1",
		OwnerID:   "u1",
		FileName:  "a.txt",
		Size:      10,
		MimeType:  "text/plain",
		Hash:      "h1",
		CreatedAt: now,
		UpdatedAt: now,
		Status:    models.StatusPending,
	}
}

func recordRows(rec *models.FileRecord) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"file_id", "owner_id", "file_name", "size", "mime_type", "hash", "created_at", "updated_at", "status",
	}).AddRow(rec.FileID, rec.OwnerID, rec.FileName, rec.Size, rec.MimeType, rec.Hash, rec.CreatedAt, rec.UpdatedAt, rec.Status)
}

func TestCreate_Success(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	now := time.Now().UTC()
	rec := sampleRecord(now)

	mock.ExpectExec(`(?s)^\s*INSERT\s+INTO\s+files\b`).
		WithArgs("f1", "u1", "a.txt", int64(10), "text/plain", "h1", now, now, models.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_Found(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	now := time.Now().UTC()
	rec := sampleRecord(now)

	mock.ExpectQuery(`(?s)^SELECT\s+.*\s+FROM\s+files\s+WHERE\s+owner_id=\$1\s+AND\s+file_id=\$2$`).
		WithArgs("u1", "f1").
		WillReturnRows(recordRows(rec))

	got, err := repo.Get(context.Background(), "u1", "f1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT\s+.*\s+FROM\s+files\b`).
		WithArgs("u1", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdateStatus_Success(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectExec(`(?s)^\s*UPDATE\s+files\s+SET\s+status=\$3,\s*updated_at=\$4\b.*status\s+<>\s+'deleted'`).
		WithArgs("u1", "f1", models.StatusActive, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "u1", "f1", models.StatusActive, now))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_DeletedIsTerminal(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	now := time.Now().UTC()

	// tombstones match no rows
	mock.ExpectExec(`(?s)^\s*UPDATE\s+files\b`).
		WithArgs("u1", "f1", models.StatusActive, now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "u1", "f1", models.StatusActive, now)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSelectActiveByOwner(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	now := time.Now().UTC()
	rec := sampleRecord(now)
	rec.Status = models.StatusActive

	mock.ExpectQuery(`(?s)^SELECT\s+.*\s+FROM\s+files\s+WHERE\s+owner_id=\$1\s+AND\s+status='active'$`).
		WithArgs("u1").
		WillReturnRows(recordRows(rec))

	got, err := repo.SelectActiveByOwner(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.StatusActive, got[0].Status)
}

func TestSelectByOwner_IncludesTombstones(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	now := time.Now().UTC()
	rec := sampleRecord(now)
	rec.Status = models.StatusDeleted

	mock.ExpectQuery(`(?s)^SELECT\s+.*\s+FROM\s+files\s+WHERE\s+owner_id=\$1$`).
		WithArgs("u1").
		WillReturnRows(recordRows(rec))

	got, err := repo.SelectByOwner(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.StatusDeleted, got[0].Status)
}
