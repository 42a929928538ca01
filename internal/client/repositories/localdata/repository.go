// Package localdata persists small client-side state in the local SQLite
// database: the sync cursor and the upload cache entries.
package localdata

import "context"

// Repository is a simple key-value store. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
