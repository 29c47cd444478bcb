// Package provider defines the key/value store gencache sits on.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key. Counters written by
// Increment are stored as ASCII decimal so that Get on a counter key returns
// something strconv.ParseInt understands, whatever the backend.
//
// Entries written with PriorityNeverRemove must survive capacity pressure.
// gencache stores its generation counters that way; losing one resets the
// generation and would let abandoned keys become reachable again.
package provider

import (
	"context"
	"errors"
	"time"
)

// Priority is an eviction hint attached to every write.
type Priority int

const (
	// PriorityDefault entries may be evicted or expired by the backend at will.
	PriorityDefault Priority = iota
	// PriorityNeverRemove entries are exempt from capacity eviction and TTL.
	PriorityNeverRemove
)

func (p Priority) String() string {
	switch p {
	case PriorityDefault:
		return "default"
	case PriorityNeverRemove:
		return "never_remove"
	default:
		return "unknown"
	}
}

// ErrNotCounter is returned by Increment when the existing value is not a decimal integer.
var ErrNotCounter = errors.New("provider: value is not a counter")

// Provider is a minimal byte store with TTLs, priorities and an atomic counter.
// Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value. ttl <= 0 means no expiry; PriorityNeverRemove ignores ttl.
	// Returns ok=false when the store rejected the write under pressure.
	Set(ctx context.Context, key string, value []byte, p Priority, ttl time.Duration) (ok bool, err error)

	// Clear removes a key (best-effort, absent keys are not an error).
	Clear(ctx context.Context, key string) error

	// Exists reports whether key currently holds a value.
	Exists(ctx context.Context, key string) (bool, error)

	// Increment atomically adds delta to the counter at key and returns the new
	// value. An absent key is first initialized to defaultValue.
	Increment(ctx context.Context, key string, defaultValue, delta int64, p Priority) (int64, error)

	// Close releases resources.
	Close(ctx context.Context) error
}
