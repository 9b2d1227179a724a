package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Fluxline-Pro/Fluxline-pro-website-sub002/pkg/domain"
)

// Store implements ports.StateStore using the local filesystem.
// It stores sessions as JSON files in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".intake/sessions".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".intake", "sessions")
	}
	return &Store{BasePath: basePath}
}

// Keys contain the flow separator, which is not portable in file names.
func (s *Store) path(key string) string {
	return filepath.Join(s.BasePath, url.QueryEscape(key)+".json")
}

// Save persists the session state to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, key string, state *domain.SessionState) error {
	if key == "" {
		return fmt.Errorf("session key cannot be empty")
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure session directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Same directory so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	destPath := s.path(key)
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing session file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to session file: %w", err)
	}
	return nil
}

// Load retrieves the session state from a JSON file.
func (s *Store) Load(ctx context.Context, key string) (*domain.SessionState, error) {
	if key == "" {
		return nil, fmt.Errorf("session key cannot be empty")
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var state domain.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session state: %w", err)
	}
	if state.Answers == nil {
		state.Answers = make(domain.Answers)
	}
	return &state, nil
}

// Delete removes the session file.
func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("session key cannot be empty")
	}
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// List returns all stored session keys.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || strings.HasPrefix(name, "tmp-") {
			continue
		}
		key, err := url.QueryUnescape(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	return keys, nil
}
