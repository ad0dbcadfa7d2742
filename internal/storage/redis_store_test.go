package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	goredis "github.com/redis/go-redis/v9"
)

// fakeRedisClient backs RedisStore with a map. Missing keys surface
// as redis.Nil, like the real client.
type fakeRedisClient struct {
	data map[string]string
	down bool
}

func newFakeRedisClient() *fakeRedisClient {
	return &fakeRedisClient{data: map[string]string{}}
}

func (f *fakeRedisClient) Get(ctx context.Context, key string) (string, error) {
	if f.down {
		return "", errors.New("connection refused")
	}
	v, ok := f.data[key]
	if !ok {
		return "", goredis.Nil
	}
	return v, nil
}

func (f *fakeRedisClient) Set(ctx context.Context, key, value string) error {
	if f.down {
		return errors.New("connection refused")
	}
	f.data[key] = value
	return nil
}

func (f *fakeRedisClient) Delete(ctx context.Context, key string) error {
	if f.down {
		return errors.New("connection refused")
	}
	delete(f.data, key)
	return nil
}

// Both backends must behave identically behind Store: round-trip,
// remove, and default on absent keys.
func TestBackendsSatisfyStoreContract(t *testing.T) {
	backends := map[string]Store{
		"file":  NewFileStore(t.TempDir(), nil),
		"redis": NewRedisStore(newFakeRedisClient(), nil),
	}

	for name, s := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if got := GetString(ctx, s, "token", "absent"); got != "absent" {
				t.Fatalf("expected default before write, got %q", got)
			}

			s.Set(ctx, "token", "abc123")
			if got := GetString(ctx, s, "token", ""); got != "abc123" {
				t.Fatalf("expected abc123, got %q", got)
			}

			s.Set(ctx, "token", "def456")
			if got := GetString(ctx, s, "token", ""); got != "def456" {
				t.Fatalf("expected overwrite to stick, got %q", got)
			}

			s.Remove(ctx, "token")
			if got := GetString(ctx, s, "token", "absent"); got != "absent" {
				t.Fatalf("expected default after remove, got %q", got)
			}

			s.Remove(ctx, "never-written")
		})
	}
}

func TestRedisStoreNamespacesKeys(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedisClient()
	s := NewRedisStore(client, nil)

	s.Set(ctx, "user", `{"username":"admin"}`)

	if len(client.data) != 1 {
		t.Fatalf("expected one stored entry, got %d", len(client.data))
	}
	for key := range client.data {
		if !strings.HasPrefix(key, redisKeyPrefix) {
			t.Fatalf("expected key under %q, got %q", redisKeyPrefix, key)
		}
	}
	if _, ok := client.data["user"]; ok {
		t.Fatalf("expected no unprefixed key")
	}
}

func TestRedisStoreTreatsFailuresAsAbsent(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedisClient()
	client.data[redisKeyPrefix+"token"] = "abc123"
	client.down = true
	s := NewRedisStore(client, nil)

	if got := GetString(ctx, s, "token", "absent"); got != "absent" {
		t.Fatalf("expected default when redis is unreachable, got %q", got)
	}

	// Writes and removes swallow the error too.
	s.Set(ctx, "token", "def456")
	s.Remove(ctx, "token")

	client.down = false
	if got := GetString(ctx, s, "token", ""); got != "abc123" {
		t.Fatalf("expected prior value untouched by failed write, got %q", got)
	}
}
