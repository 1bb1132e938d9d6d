// Package kv defines the persistent key-value contract the local stores
// build on, and a typed, namespaced view over it.
package kv

import (
	"context"
	"encoding/json"
	"time"
)

// Entry is a stored value with its bookkeeping columns.
type Entry struct {
	Key       string
	Value     json.RawMessage
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// KV stores JSON-serializable values under string keys. Get on a missing or
// expired key returns an error wrapping sql.ErrNoRows.
type KV interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
