// Package storage provides the durable key/value persistence client
// state survives restarts through. Implementations never fail the
// caller: absent or unreadable state degrades to the caller's default
// and is reported through the logger instead of interrupting the flow.
package storage

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Keys under which client state is persisted.
const (
	KeyUser  = "user"  // serialized session
	KeyToken = "token" // raw credential string
)

// Store is the backend-neutral key/value surface.
type Store interface {
	// Get returns the raw stored value and whether it was present.
	Get(ctx context.Context, key string) (string, bool)
	// Set durably writes the value. Failures are logged, not returned.
	Set(ctx context.Context, key, value string)
	// Remove deletes the key. Removing an absent key is a no-op.
	Remove(ctx context.Context, key string)
}

// GetString returns the stored value under key, or defaultValue when
// the key is absent.
func GetString(ctx context.Context, s Store, key, defaultValue string) string {
	if v, ok := s.Get(ctx, key); ok {
		return v
	}
	return defaultValue
}

// GetJSON decodes the stored value under key into out and reports
// whether a well-formed value was present. Malformed content counts
// as absent and is logged as a warning.
func GetJSON(ctx context.Context, s Store, key string, out any, log *slog.Logger) bool {
	raw, ok := s.Get(ctx, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		if log == nil {
			log = slog.Default()
		}
		log.Warn("discarding corrupt state entry",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}

// SetJSON serializes value and stores it under key. Serialization
// failures are logged and the previous value is left in place.
func SetJSON(ctx context.Context, s Store, key string, value any, log *slog.Logger) {
	data, err := json.Marshal(value)
	if err != nil {
		if log == nil {
			log = slog.Default()
		}
		log.Error("failed to serialize state entry",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}
	s.Set(ctx, key, string(data))
}
