package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/skydrive/internal/common"
	"github.com/dmitrijs2005/skydrive/internal/dbx"
	"github.com/dmitrijs2005/skydrive/internal/models"
)

// PostgresRepository implements file metadata storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `file_id, owner_id, file_name, size, mime_type, hash, created_at, updated_at, status`

func (r *PostgresRepository) Create(ctx context.Context, record *models.FileRecord) error {
	query := `
		INSERT INTO files (file_id, owner_id, file_name, size, mime_type, hash, created_at, updated_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		record.FileID, record.OwnerID, record.FileName, record.Size, record.MimeType,
		record.Hash, record.CreatedAt, record.UpdatedAt, record.Status)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID, fileID string) (*models.FileRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM files WHERE owner_id=$1 AND file_id=$2`

	result := &models.FileRecord{}
	err := r.db.QueryRowContext(ctx, query, ownerID, fileID).Scan(
		&result.FileID, &result.OwnerID, &result.FileName, &result.Size, &result.MimeType,
		&result.Hash, &result.CreatedAt, &result.UpdatedAt, &result.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select file: %w", err)
	}
	return result, nil
}

// UpdateStatus refuses to touch tombstones (deletion is terminal), so a
// zero-rows result means the record is either absent or already deleted.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, ownerID, fileID string, status models.Status, updatedAt time.Time) error {
	query := `
		UPDATE files SET status=$3, updated_at=$4
		WHERE owner_id=$1 AND file_id=$2 AND status <> 'deleted'
	`
	result, err := r.db.ExecContext(ctx, query, ownerID, fileID, status, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	ra, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	switch ra {
	case 1:
		return nil
	case 0:
		return common.ErrNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", ra)
	}
}

func (r *PostgresRepository) SelectActiveByOwner(ctx context.Context, ownerID string) ([]*models.FileRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM files WHERE owner_id=$1 AND status='active'`
	return r.selectMany(ctx, query, ownerID)
}

func (r *PostgresRepository) SelectByOwner(ctx context.Context, ownerID string) ([]*models.FileRecord, error) {
	query := `SELECT ` + selectColumns + ` FROM files WHERE owner_id=$1`
	return r.selectMany(ctx, query, ownerID)
}

func (r *PostgresRepository) selectMany(ctx context.Context, query string, args ...any) ([]*models.FileRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []*models.FileRecord
	for rows.Next() {
		var item models.FileRecord
		if err := rows.Scan(&item.FileID, &item.OwnerID, &item.FileName, &item.Size, &item.MimeType,
			&item.Hash, &item.CreatedAt, &item.UpdatedAt, &item.Status); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
