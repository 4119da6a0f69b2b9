// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/tomtom215/reactbar/internal/logging"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	cache_key  TEXT PRIMARY KEY,
	counts     TEXT NOT NULL,
	written_at INTEGER NOT NULL
)`

// SQLiteBackend stores records in a single SQLite table.
type SQLiteBackend struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// OpenSQLite opens (or creates) the database file at path. ":memory:" gives
// a private in-memory database.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store: path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite store: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite store: open: %w", err)
	}
	// Pragmas are per connection and ":memory:" is per connection.
	db.SetMaxOpenConns(1)

	for _, p := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite store: %s: %w", p, err)
		}
	}

	s := &SQLiteBackend{db: db}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	logging.Info().Str("path", path).Msg("SQLite store opened")
	return s, nil
}

func (s *SQLiteBackend) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		return fmt.Errorf("sqlite store: create meta: %w", err)
	}

	current := -1
	var raw string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("sqlite store: read schema version: %w", err)
	default:
		if n, convErr := strconv.Atoi(raw); convErr == nil {
			current = n
		}
	}

	if current != SchemaVersion {
		if _, err := s.db.Exec(`DROP TABLE IF EXISTS snapshots`); err != nil {
			return fmt.Errorf("sqlite store: drop snapshots: %w", err)
		}
		if current >= 0 {
			logging.Info().Int("from", current).Int("to", SchemaVersion).Msg("SQLite store schema changed, snapshots dropped")
		}
	}
	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("sqlite store: create snapshots: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO meta (key, value) VALUES ('schema_version', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		strconv.Itoa(SchemaVersion))
	if err != nil {
		return fmt.Errorf("sqlite store: write schema version: %w", err)
	}
	return nil
}

func (s *SQLiteBackend) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// Get implements Backend.
func (s *SQLiteBackend) Get(ctx context.Context, keys []string) (map[string]Record, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	out := make(map[string]Record, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	args := make([]interface{}, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	//nolint:gosec // only placeholders are interpolated
	query := `SELECT cache_key, counts, written_at FROM snapshots WHERE cache_key IN (` + placeholders(len(keys)) + `)`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			rec    Record
			counts string
		)
		if err := rows.Scan(&rec.Key, &counts, &rec.WrittenAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if err := json.Unmarshal([]byte(counts), &rec.Counts); err != nil {
			return nil, fmt.Errorf("decode %s: %w", rec.Key, err)
		}
		out[rec.Key] = rec
	}
	return out, rows.Err()
}

// Put implements Backend.
func (s *SQLiteBackend) Put(ctx context.Context, records []Record) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO snapshots (cache_key, counts, written_at) VALUES (?, ?, ?)
		 ON CONFLICT(cache_key) DO UPDATE SET counts = excluded.counts, written_at = excluded.written_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i := range records {
		counts, err := json.Marshal(records[i].Counts)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", records[i].Key, err)
		}
		if _, err := stmt.ExecContext(ctx, records[i].Key, string(counts), records[i].WrittenAt); err != nil {
			return fmt.Errorf("upsert %s: %w", records[i].Key, err)
		}
	}
	return tx.Commit()
}

// Delete implements Backend.
func (s *SQLiteBackend) Delete(ctx context.Context, keys []string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	args := make([]interface{}, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	//nolint:gosec // only placeholders are interpolated
	_, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE cache_key IN (`+placeholders(len(keys))+`)`, args...)
	if err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}
	return nil
}

// Close implements Backend.
func (s *SQLiteBackend) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	return s.db.Close()
}
