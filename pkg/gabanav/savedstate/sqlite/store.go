// Package sqlite persists saved navigation state to a SQLite database so a
// host can be rebuilt after the process is killed.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/BrandonKowalski/gabanav/pkg/gabanav/constants"
	"github.com/BrandonKowalski/gabanav/pkg/gabanav/savedstate"
)

// Store keeps one saved-state snapshot: a row per key with an opaque blob.
// Each Save replaces the previous snapshot entirely.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// Open creates or opens the database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		path = constants.DefaultStatePath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS saved_state (
		key TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create saved_state table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Load returns the last saved snapshot. It is empty when nothing was saved.
func (s *Store) Load(ctx context.Context) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.QueryContext(ctx, `SELECT key, payload FROM saved_state`)
	if err != nil {
		return nil, fmt.Errorf("select saved_state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	out := make(map[string][]byte)
	for rows.Next() {
		var key string
		var payload []byte
		if err := rows.Scan(&key, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out[key] = payload
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saved_state: %w", err)
	}
	return out, nil
}

// Save replaces the stored snapshot with state in one transaction.
func (s *Store) Save(ctx context.Context, state map[string][]byte) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM saved_state`); err != nil {
		return fmt.Errorf("clear saved_state: %w", err)
	}
	for key, payload := range state {
		if payload == nil {
			payload = []byte{}
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO saved_state(key,payload) VALUES(?,?)`, key, payload); err != nil {
			return fmt.Errorf("insert %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// SaveRegistry collects the registry's providers and saves the result. A
// failing provider does not prevent the rest from being written; its error
// is returned after the save.
func (s *Store) SaveRegistry(ctx context.Context, registry *savedstate.Registry) error {
	state, provErr := registry.PerformSave()
	if err := s.Save(ctx, state); err != nil {
		return err
	}
	return provErr
}

// Restore loads the last snapshot into a fresh registry.
func (s *Store) Restore(ctx context.Context) (*savedstate.Registry, error) {
	state, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return savedstate.NewRegistry(state), nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
