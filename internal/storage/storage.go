// Package storage provides the key-value capabilities the tracker persists its
// identity and pathway state in.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when a key is absent or expired.
var ErrNotFound = errors.New("storage: key not found")

// Store is a string key-value store with optional per-entry expiry.
// A ttl of zero means the entry never expires.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
