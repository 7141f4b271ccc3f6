package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"

	"streams-service/internal/logger"
)

const snapshotKey = "snapshot:latest"

// Snapshotter persists whole-store snapshots to an embedded pebble
// database. Writes are best effort; a failed snapshot is logged and
// dropped, never surfaced to the operation that triggered it.
type Snapshotter struct {
	db *pebble.DB
}

// OpenSnapshots opens (or creates) the snapshot database at path.
func OpenSnapshots(path string) (*Snapshotter, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Log.Error("snapshot_open_failed", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	logger.Log.Info("snapshot_db_opened", zap.String("path", path))
	return &Snapshotter{db: db}, nil
}

// Close closes the snapshot database.
func (s *Snapshotter) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Save writes the current store state. It takes the store's read lock
// only for the marshal.
func (s *Snapshotter) Save(st *Store) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("snapshot db not opened")
	}

	st.RLock()
	data, err := json.Marshal(st.State)
	st.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := s.db.Set([]byte(snapshotKey), data, pebble.NoSync); err != nil {
		logger.Log.Error("snapshot_write_failed", zap.Error(err))
		return err
	}
	return nil
}

// Load replaces the store state with the latest snapshot, if one
// exists. A missing snapshot is not an error.
func (s *Snapshotter) Load(st *Store) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("snapshot db not opened")
	}

	data, closer, err := s.db.Get([]byte(snapshotKey))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}
	defer closer.Close()

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("unmarshal snapshot: %w", err)
	}

	st.Lock()
	st.State = state
	st.Unlock()
	logger.Log.Info("snapshot_restored",
		zap.Int("users", len(state.Users)),
		zap.Int("channels", len(state.Channels)),
		zap.Int("dms", len(state.DMs)))
	return nil
}
