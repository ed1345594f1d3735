// Package cache persists toolchain probe results in a local sqlite
// database, so repeated conversions skip the PATH walk.
package cache

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"latexclip/pkg/errors"
	"latexclip/pkg/logger"
	"latexclip/pkg/render"
)

const defaultTTL = 24 * time.Hour

// Store implements render.ProbeStore on sqlite.
type Store struct {
	db  *sql.DB
	ttl time.Duration
}

var _ render.ProbeStore = (*Store)(nil)

// Open opens the default cache database under the user cache directory.
func Open() (*Store, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, errors.NewWithError(errors.ExitCodeFileOperation, "failed to locate cache directory", err)
	}
	return OpenAt(filepath.Join(cacheDir, "latexclip", "cache.db"))
}

// OpenAt opens (and if needed creates) a cache database at an explicit
// path.
func OpenAt(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.NewWithError(errors.ExitCodeFileOperation, "failed to create cache directory", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.NewWithError(errors.ExitCodeFileOperation, "failed to open cache database", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS toolchain_probes (
		key        TEXT PRIMARY KEY,
		payload    TEXT NOT NULL,
		checked_at INTEGER NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.NewWithError(errors.ExitCodeFileOperation, "failed to initialize cache schema", err)
	}

	return &Store{db: db, ttl: probeTTL()}, nil
}

func probeTTL() time.Duration {
	if v := os.Getenv("LATEXCLIP_PROBE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		logger.Warn().Str("value", v).Msg("Invalid LATEXCLIP_PROBE_TTL, using default")
	}
	return defaultTTL
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the cached capability for key, dropping it when older than
// the TTL.
func (s *Store) Get(key string) (*render.Capability, bool, error) {
	var payload string
	var checkedAt int64
	row := s.db.QueryRow("SELECT payload, checked_at FROM toolchain_probes WHERE key = ?", key)
	if err := row.Scan(&payload, &checkedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}

	if time.Since(time.Unix(checkedAt, 0)) > s.ttl {
		if _, err := s.db.Exec("DELETE FROM toolchain_probes WHERE key = ?", key); err != nil {
			logger.Warn().Err(err).Msg("Failed to evict expired probe entry")
		}
		return nil, false, nil
	}

	var cap render.Capability
	if err := json.Unmarshal([]byte(payload), &cap); err != nil {
		return nil, false, err
	}
	return &cap, true, nil
}

func (s *Store) Put(key string, cap *render.Capability) error {
	payload, err := json.Marshal(cap)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO toolchain_probes (key, payload, checked_at) VALUES (?, ?, ?)",
		key, string(payload), cap.CheckedAt.Unix(),
	)
	return err
}

// Invalidate drops every cached probe result.
func (s *Store) Invalidate() error {
	_, err := s.db.Exec("DELETE FROM toolchain_probes")
	return err
}
