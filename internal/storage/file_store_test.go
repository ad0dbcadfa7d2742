package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir(), nil)

	s.Set(ctx, "token", "abc123")
	if got := GetString(ctx, s, "token", ""); got != "abc123" {
		t.Fatalf("expected abc123, got %q", got)
	}

	s.Remove(ctx, "token")
	if got := GetString(ctx, s, "token", "absent"); got != "absent" {
		t.Fatalf("expected default after remove, got %q", got)
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	NewFileStore(dir, nil).Set(ctx, "user", `{"username":"admin"}`)

	reopened := NewFileStore(dir, nil)
	v, ok := reopened.Get(ctx, "user")
	if !ok || v != `{"username":"admin"}` {
		t.Fatalf("expected persisted value after reopen, got %q present=%v", v, ok)
	}
}

func TestRemoveAbsentKeyIsNoOp(t *testing.T) {
	s := NewFileStore(t.TempDir(), nil)
	s.Remove(context.Background(), "never-written")
}

func TestGetJSONDefaultsOnCorruptContent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := NewFileStore(dir, nil)

	if err := os.WriteFile(filepath.Join(dir, "user.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("failed to seed corrupt entry: %v", err)
	}

	var out struct {
		Username string `json:"username"`
	}
	if GetJSON(ctx, s, "user", &out, nil) {
		t.Fatalf("expected corrupt content to count as absent")
	}
	if out.Username != "" {
		t.Fatalf("expected out untouched, got %q", out.Username)
	}
}

func TestSetJSONAndGetJSON(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(t.TempDir(), nil)

	in := map[string]string{"username": "admin"}
	SetJSON(ctx, s, "user", in, nil)

	out := map[string]string{}
	if !GetJSON(ctx, s, "user", &out, nil) {
		t.Fatalf("expected stored value to decode")
	}
	if out["username"] != "admin" {
		t.Fatalf("expected admin, got %q", out["username"])
	}
}
