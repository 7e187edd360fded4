// Package buildcache persists build history and the fingerprints of written
// output files in SQLite, so a rebuild leaves unchanged files untouched.
package buildcache

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
	_ "modernc.org/sqlite"

	foundationerrors "git.home.luguber.info/inful/siteforge/internal/foundation/errors"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Build is one row of build history.
type Build struct {
	ID         string
	Started    time.Time
	Duration   time.Duration
	Mode       string
	Outcome    string
	ConfigHash string
	Singles    int
	Archives   int
	Written    int
	Skipped    int
	Warnings   int
}

// Store is the SQLite build cache.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the cache database at path and applies pending
// migrations. Use ":memory:" for a throwaway store.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, cacheErr(err, "create cache directory", path)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, cacheErr(err, "open sqlite database", path)
	}
	// A single connection keeps ":memory:" databases alive across queries.
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, cacheErr(err, "migrate build cache", path)
	}
	return &Store{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(database.DialectSQLite3, db, fsys)
	if err != nil {
		return err
	}
	_, err = provider.Up(ctx)
	return err
}

func cacheErr(err error, msg, path string) error {
	return foundationerrors.WrapError(err, foundationerrors.CategoryCache, msg).
		WithContext("path", path).Build()
}

// Fingerprints returns the recorded fingerprint of every output file.
func (s *Store) Fingerprints(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT dest_path, fingerprint FROM outputs")
	if err != nil {
		return nil, cacheErr(err, "query outputs", "")
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var dest, fp string
		if err := rows.Scan(&dest, &fp); err != nil {
			return nil, cacheErr(err, "scan output", "")
		}
		out[dest] = fp
	}
	if err := rows.Err(); err != nil {
		return nil, cacheErr(err, "iterate outputs", "")
	}
	return out, nil
}

// RecordBuild stores b and replaces the output fingerprints with outputs.
func (s *Store) RecordBuild(ctx context.Context, b Build, outputs map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return cacheErr(err, "begin transaction", "")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO builds (id, started, duration_ms, mode, outcome, config_hash, singles, archives, written, skipped, warnings)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Started.UnixMilli(), b.Duration.Milliseconds(), b.Mode, b.Outcome, b.ConfigHash,
		b.Singles, b.Archives, b.Written, b.Skipped, b.Warnings)
	if err != nil {
		return cacheErr(err, "insert build", "")
	}

	if outputs != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM outputs"); err != nil {
			return cacheErr(err, "clear outputs", "")
		}
		stmt, err := tx.PrepareContext(ctx, "INSERT INTO outputs (dest_path, fingerprint, build_id) VALUES (?, ?, ?)")
		if err != nil {
			return cacheErr(err, "prepare output insert", "")
		}
		defer stmt.Close()
		for dest, fp := range outputs {
			if _, err := stmt.ExecContext(ctx, dest, fp, b.ID); err != nil {
				return cacheErr(err, "insert output", dest)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return cacheErr(err, "commit build", "")
	}
	return nil
}

// Builds returns the most recent builds, newest first.
func (s *Store) Builds(ctx context.Context, limit int) ([]Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started, duration_ms, mode, outcome, config_hash, singles, archives, written, skipped, warnings
		 FROM builds ORDER BY started DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, cacheErr(err, "query builds", "")
	}
	defer rows.Close()

	var out []Build
	for rows.Next() {
		var b Build
		var started, durationMS int64
		if err := rows.Scan(&b.ID, &started, &durationMS, &b.Mode, &b.Outcome, &b.ConfigHash,
			&b.Singles, &b.Archives, &b.Written, &b.Skipped, &b.Warnings); err != nil {
			return nil, cacheErr(err, "scan build", "")
		}
		b.Started = time.UnixMilli(started)
		b.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, cacheErr(err, "iterate builds", "")
	}
	return out, nil
}

// LastBuild returns the newest build, if any.
func (s *Store) LastBuild(ctx context.Context) (Build, bool, error) {
	builds, err := s.Builds(ctx, 1)
	if err != nil || len(builds) == 0 {
		return Build{}, false, err
	}
	return builds[0], true, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
