package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type fsStore struct {
	dir     string
	baseURL string
}

// NewFSStore creates an ObjectStore backed by a local directory served
// under baseURL (the uploads-directory model).
func NewFSStore(dir, baseURL string) (ObjectStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create asset directory: %w", err)
	}
	return &fsStore{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *fsStore) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.dir, path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat asset: %w", err)
}

// Write stores an object. Concurrent writers for the same path race
// benignly: bytes are deterministic per path, last writer wins.
func (s *fsStore) Write(_ context.Context, path string, data []byte, _ string) error {
	full := filepath.Join(s.dir, path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create asset directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("failed to write asset: %w", err)
	}
	return nil
}

func (s *fsStore) Delete(_ context.Context, path string) error {
	err := os.Remove(filepath.Join(s.dir, path))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return nil
}

func (s *fsStore) URL(path string) string {
	return s.baseURL + "/" + path
}
