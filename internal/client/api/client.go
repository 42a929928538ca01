// Package api implements the client side of the server's REST protocol and
// the raw byte transfers against presigned URLs.
package api

import (
	"context"
	"io"
	"time"

	"github.com/dmitrijs2005/skydrive/internal/models"
)

// UploadIntentRequest declares a file the client wants to upload. Timestamps
// come from the local filesystem.
type UploadIntentRequest struct {
	OwnerID   string    `json:"ownerId"`
	FileName  string    `json:"fileName"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mimeType"`
	Hash      string    `json:"hash"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UploadIntentResult carries the allocated identifier and the presigned URL
// for the raw byte PUT.
type UploadIntentResult struct {
	FileID    string `json:"fileId"`
	UploadURL string `json:"uploadUrl"`
}

// Client is the slice of the server protocol the client services need.
// Object transfers run against presigned URLs, outside the API endpoint.
type Client interface {
	UploadIntent(ctx context.Context, req *UploadIntentRequest) (*UploadIntentResult, error)
	MarkUploaded(ctx context.Context, ownerID, fileID string) error
	ListFiles(ctx context.Context) ([]*models.FileRecord, error)
	DownloadURL(ctx context.Context, fileID string) (string, error)
	DeleteFile(ctx context.Context, fileID string) error
	Changes(ctx context.Context, since time.Time) (*models.Delta, error)

	PutObject(ctx context.Context, url, mimeType string, body io.Reader, size int64) error
	GetObject(ctx context.Context, url string) ([]byte, error)
}
