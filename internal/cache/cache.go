// Package cache provides the key-value store behind the match and search
// caches. Implementations are treated as eventually-consistent external
// storage: a miss and a transient failure look the same to callers, puts are
// idempotent, and the last put wins.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("cache store is closed")

// Store is an async key-value store with optional per-entry expiry.
//
// Get returns (value, true, nil) on a hit and (nil, false, nil) on a miss.
// A non-nil error indicates the store itself failed; callers are expected to
// degrade (treat as miss / skip write) rather than abort.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Put stores value under key. A zero ttl means no expiry.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Close() error
}
