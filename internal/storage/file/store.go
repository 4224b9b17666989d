// Package file is the local flat-storage backend: one JSON document per
// ladder under a data directory, written atomically via temp file + rename.
package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/laddr/internal/domain"
	"github.com/vadiminshakov/laddr/internal/storage"
)

const defaultDataDir = "./data/ladders"

// Store keeps each ladder in <dir>/<id>.json.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// New creates the data directory if needed and returns a store over it.
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = defaultDataDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create ladder data dir")
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) {
		return "", errors.Errorf("invalid ladder id %q", id)
	}
	return filepath.Join(s.dir, id+".json"), nil
}

// Get reads a single ladder document.
func (s *Store) Get(_ context.Context, id string) (*domain.Ladder, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, errors.Wrap(err, "read ladder document")
	}

	var ladder domain.Ladder
	if err := json.Unmarshal(payload, &ladder); err != nil {
		return nil, errors.Wrap(err, "decode ladder document")
	}

	return &ladder, nil
}

// List reads every ladder document in the data directory.
func (s *Store) List(_ context.Context) ([]*domain.Ladder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(err, "read ladder data dir")
	}

	ladders := make([]*domain.Ladder, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		payload, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "read ladder document %s", entry.Name())
		}

		var ladder domain.Ladder
		if err := json.Unmarshal(payload, &ladder); err != nil {
			return nil, errors.Wrapf(err, "decode ladder document %s", entry.Name())
		}
		ladders = append(ladders, &ladder)
	}

	return ladders, nil
}

// Create writes a new document; it fails if the id is already taken.
func (s *Store) Create(_ context.Context, ladder *domain.Ladder) error {
	path, err := s.path(ladder.ID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(path); err == nil {
		return errors.Errorf("ladder %s already exists", ladder.ID)
	}

	return s.writeLocked(path, ladder)
}

// Update rewrites an existing document; it fails if the ladder is gone.
func (s *Store) Update(_ context.Context, ladder *domain.Ladder) error {
	path, err := s.path(ladder.ID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return storage.ErrNotFound
		}
		return errors.Wrap(err, "stat ladder document")
	}

	return s.writeLocked(path, ladder)
}

// Delete removes the document. Deleting an unknown id reports ErrNotFound.
func (s *Store) Delete(_ context.Context, id string) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return storage.ErrNotFound
		}
		return errors.Wrap(err, "remove ladder document")
	}

	return nil
}

func (s *Store) writeLocked(path string, ladder *domain.Ladder) error {
	payload, err := json.MarshalIndent(ladder, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode ladder document")
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write ladder temp file")
	}

	if err := os.Rename(tmp, path); err != nil {
		return errors.Wrap(err, "persist ladder document")
	}

	return nil
}
