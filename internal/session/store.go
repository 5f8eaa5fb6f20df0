// internal/session/store.go
// Package session persists the committed comparison across runs.
package session

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/evaldeck/evaldeck/internal/evalapi"
	"github.com/evaldeck/evaldeck/internal/logging"
)

// record is the on-disk shape of a persisted comparison.
type record struct {
	BaselineID    evalapi.ExperimentID   `json:"comparison_baseline_id"`
	ExperimentIDs []evalapi.ExperimentID `json:"comparison_experiment_ids"`
}

// Store is the durable key/value persistence for the committed comparison.
// It is scoped to the local user, constructed once at startup, and mutated
// only by the fetch success path and by explicit Clear.
type Store struct {
	mu       sync.Mutex
	filePath string
	restored bool
}

// NewStore creates a store backed by the JSON file at path.
func NewStore(path string) *Store {
	return &Store{filePath: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.filePath
}

// Save writes the committed comparison to disk.
func (s *Store) Save(baseline evalapi.ExperimentID, candidates []evalapi.ExperimentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := record{BaselineID: baseline, ExperimentIDs: candidates}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.filePath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.filePath, data, 0o644)
}

// Load reads the persisted comparison. The second return is false when no
// session is stored or the file is unreadable.
func (s *Store) Load() (evalapi.ExperimentID, []evalapi.ExperimentID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() (evalapi.ExperimentID, []evalapi.ExperimentID, bool) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.LogEvent("could not read comparison session file %s: %v", s.filePath, err)
		}
		return 0, nil, false
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		logging.LogEvent("discarding malformed comparison session file %s: %v", s.filePath, err)
		return 0, nil, false
	}
	if rec.BaselineID == 0 || len(rec.ExperimentIDs) == 0 {
		return 0, nil, false
	}
	return rec.BaselineID, rec.ExperimentIDs, true
}

// Clear removes the persisted comparison.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// TakeRestore returns the persisted comparison the first time it is called
// in a process and never again, so a later interactive selection is not
// clobbered by stale persisted state.
func (s *Store) TakeRestore() (evalapi.ExperimentID, []evalapi.ExperimentID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.restored {
		return 0, nil, false
	}
	s.restored = true
	return s.loadLocked()
}
