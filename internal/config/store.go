// Package config holds the fleet/dataset configuration under a
// reader/writer lock discipline (§4.3) and loads/persists it as
// pretty-printed JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goopey7/brig/internal/brigerr"
)

// Store is the in-memory view of the fleet. Readers may hold the lock
// concurrently; mutation is exclusive.
type Store struct {
	mu   sync.RWMutex
	cfg  Config
	path string
}

// Load reads and validates the config file at path.
func Load(path string) (*Store, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, brigerr.ConfigIsInvalidJson(err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &Store{cfg: cfg, path: path}, nil
}

// Snapshot returns a deep copy of the current config, safe to read or
// serialize without holding any lock.
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Config{
		Servers:  append([]Server(nil), s.cfg.Servers...),
		Datasets: append([]Dataset(nil), s.cfg.Datasets...),
	}
}

// FindServer looks up a server by name under the read lock.
func (s *Store) FindServer(name string) (Server, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	srv, ok := s.cfg.findServer(name)
	if !ok {
		return Server{}, false
	}
	return *srv, true
}

// FindDataset looks up a dataset by name under the read lock.
func (s *Store) FindDataset(name string) (Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.cfg.findDataset(name)
	if !ok {
		return Dataset{}, false
	}
	return *ds, true
}

// DatasetNames returns every dataset name currently known, for the bulk
// /sync endpoint.
func (s *Store) DatasetNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.cfg.Datasets))
	for i, ds := range s.cfg.Datasets {
		names[i] = ds.Name
	}
	return names
}

// Mutate runs fn with the write lock held, against a mutable copy of the
// config; fn's error aborts the mutation without touching the held state.
func (s *Store) Mutate(fn func(*Config) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := Config{
		Servers:  append([]Server(nil), s.cfg.Servers...),
		Datasets: append([]Dataset(nil), s.cfg.Datasets...),
	}
	if err := fn(&working); err != nil {
		return err
	}
	s.cfg = working
	return nil
}

// Persist serializes a read-locked snapshot, drops the lock, then
// atomically replaces the on-disk file (temp file + rename), per §4.3.
func (s *Store) Persist() error {
	s.mu.RLock()
	b, err := json.MarshalIndent(s.cfg, "", "  ")
	path := s.path
	s.mu.RUnlock()
	if err != nil {
		return brigerr.ConfigIsInvalidJson(err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".brig-config-*.tmp")
	if err != nil {
		return brigerr.ErrorWritingConfigFile(path)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return brigerr.ErrorWritingConfigFile(path)
	}
	if err := tmp.Close(); err != nil {
		return brigerr.ErrorWritingConfigFile(path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return brigerr.ErrorWritingConfigFile(path)
	}
	return nil
}
