package domain

import "context"

// KeyValueRepository is opaque per-user key-value storage. It mirrors
// the on-device store mobile clients keep for small bits of state
// (countdown anchors, persisted screen state).
type KeyValueRepository interface {
	Set(ctx context.Context, userID int64, key, value string) error
	// Get returns ErrNotFound when the key has never been set.
	Get(ctx context.Context, userID int64, key string) (string, error)
	Delete(ctx context.Context, userID int64, key string) error
}
