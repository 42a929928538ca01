// Package common contains shared constants and sentinel errors used across
// SkyDrive components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Boundary validation errors, rejected before any state mutation.
	ErrValidation = errors.New("validation error")

	// ErrTransferFailed means the raw byte transfer against a presigned URL
	// failed (network, expired URL). The caller restarts the whole upload
	// protocol from a fresh intent.
	ErrTransferFailed = errors.New("transfer failed")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
