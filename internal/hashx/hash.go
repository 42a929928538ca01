// Package hashx computes content fingerprints used for upload change
// detection. Identical bytes always yield identical digests, so a matching
// digest means a file does not need to be uploaded again.
package hashx

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

// Sum returns the lowercase hex SHA-256 digest of b.
func Sum(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// SumReader returns the lowercase hex SHA-256 digest of everything read
// from r. Used when hashing bytes freshly read off disk without buffering
// the whole file in memory.
func SumReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", fmt.Errorf("hashing: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
