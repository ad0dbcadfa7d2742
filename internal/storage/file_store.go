package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists each key as a file under a state directory.
// This is the default backend for single-user installs.
type FileStore struct {
	dir    string
	mu     sync.Mutex
	logger *slog.Logger
}

// NewFileStore creates a file-backed store rooted at dir. The
// directory is created on first write.
func NewFileStore(dir string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{dir: dir, logger: logger}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get returns the raw stored value and whether it was present.
func (s *FileStore) Get(_ context.Context, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read state entry",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return "", false
	}
	return string(data), true
}

// Set durably writes the value, creating the state directory if
// needed. Writes go through a temp file and rename so a crash never
// leaves a half-written entry.
func (s *FileStore) Set(_ context.Context, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		s.logger.Error("failed to create state directory",
			slog.String("dir", s.dir),
			slog.String("error", err.Error()),
		)
		return
	}

	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o600); err != nil {
		s.logger.Error("failed to write state entry",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := os.Rename(tmp, s.path(key)); err != nil {
		s.logger.Error("failed to commit state entry",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// Remove deletes the key. Removing an absent key is a no-op.
func (s *FileStore) Remove(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove state entry",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
