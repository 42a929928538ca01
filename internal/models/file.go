// Package models defines the file metadata types exchanged between server
// and clients and persisted in the metadata store.
package models

import "time"

// Status is the three-state lifecycle of a FileRecord.
type Status string

const (
	// StatusPending means an upload URL has been issued but the bytes have
	// not been confirmed written. Pending records are invisible to listings
	// and delta queries.
	StatusPending Status = "pending"

	// StatusActive means the client confirmed the byte transfer.
	StatusActive Status = "active"

	// StatusDeleted is a tombstone. The record is retained so delta queries
	// can report removals; it never transitions back to active.
	StatusDeleted Status = "deleted"
)

// FileRecord describes one uploaded file. Its natural key is
// (OwnerID, FileID); uniqueness is enforced by the metadata store.
type FileRecord struct {
	// FileID is an opaque identifier assigned at upload-intent time.
	FileID string `json:"fileId"`
	// OwnerID is the authenticated principal that owns the file.
	OwnerID string `json:"ownerId"`
	// FileName is the original filename with extension. Renames are not
	// supported; a new name means a new upload under a new FileID.
	FileName string `json:"fileName"`
	// Size is the declared byte length, trusted on write.
	Size int64 `json:"size"`
	// MimeType is the client-supplied content type, advisory only.
	MimeType string `json:"mimeType"`
	// Hash is the client-computed content digest used for change detection.
	Hash string `json:"hash"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Status Status `json:"status"`
}

// FileRef identifies a removed file in a delta without carrying the full
// record (the tombstone's metadata beyond the name is of no use to clients).
type FileRef struct {
	FileID   string `json:"fileId"`
	FileName string `json:"fileName"`
}

// Delta is the classified changes-since-cursor result. LastSync is the
// server clock at query time; clients persist it as their next cursor.
type Delta struct {
	Added    []*FileRecord `json:"added"`
	Modified []*FileRecord `json:"modified"`
	Removed  []*FileRef    `json:"removed"`
	LastSync time.Time     `json:"lastSync"`
}

// Empty reports whether the delta carries no changes.
func (d *Delta) Empty() bool {
	return len(d.Added) == 0 && len(d.Modified) == 0 && len(d.Removed) == 0
}
