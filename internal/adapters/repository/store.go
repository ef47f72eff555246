// Package repository defines the storage capability injected into the
// service: an opaque key -> bytes store plus typed snapshot codecs on
// top of it. Production deployments back it with the persistence
// collaborator; tests use the in-memory implementation.
package repository

import "context"

// Store is the injected storage capability. Load reports absence
// separately from failure so callers can distinguish "no prior data"
// from "storage is down"; both fall back to initial state, only the
// latter is logged as an error.
type Store interface {
	// Load returns the bytes under key, or ok=false when absent.
	Load(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Save writes the bytes under key, replacing any prior value.
	Save(ctx context.Context, key string, data []byte) error
}

// Key layout. One record per user per concern.
func BadgeKey(userID string) string   { return "badges/" + userID }
func HistoryKey(userID string) string { return "history/" + userID }
func ResultKey(userID string) string  { return "results/" + userID }
