// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mnemo Contributors

// Package sqlite provides a SQLite-backed checkpoint persistence backend.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mnemo-dev/mnemo/internal/checkpoint"
	mnemoerr "github.com/mnemo-dev/mnemo/pkg/errors"
)

func init() {
	checkpoint.RegisterBackend("sqlite", func(cfg checkpoint.BackendConfig) (checkpoint.Backend, error) {
		return New(cfg.Path)
	})
}

// Backend implements checkpoint.Backend on a SQLite database file.
type Backend struct {
	db *sql.DB
}

var _ checkpoint.Backend = (*Backend)(nil)

// New opens (or creates) the database at dbPath and initialises the
// checkpoints table.
func New(dbPath string) (*Backend, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, mnemoerr.Wrapf(err, mnemoerr.CodeCheckpointPersistence, "opening sqlite db %s", dbPath)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, mnemoerr.Wrapf(err, mnemoerr.CodeCheckpointPersistence, "pinging sqlite db %s", dbPath)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, mnemoerr.Wrapf(err, mnemoerr.CodeCheckpointPersistence, "migrating sqlite db %s", dbPath)
	}

	return &Backend{db: db}, nil
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS checkpoints (
	session_id TEXT    NOT NULL,
	version    INTEGER NOT NULL,
	created_at TEXT    NOT NULL,
	data       BLOB    NOT NULL,
	PRIMARY KEY (session_id, version)
);

CREATE INDEX IF NOT EXISTS idx_checkpoints_session ON checkpoints(session_id, created_at);
`
	_, err := db.Exec(ddl)
	return err
}

// Close closes the underlying database connection.
func (b *Backend) Close() error {
	return b.db.Close()
}

func (b *Backend) Put(ctx context.Context, sessionID string, version int64, data []byte) error {
	const q = `INSERT INTO checkpoints (session_id, version, created_at, data) VALUES (?, ?, ?, ?)`

	_, err := b.db.ExecContext(ctx, q, sessionID, version, formatTime(time.Now()), data)
	if err == nil {
		return nil
	}

	// A primary-key violation means this version is already occupied.
	// Checkpoints are immutable: re-saving identical state is a no-op,
	// divergent state (restore to an older checkpoint, then new appends)
	// must fail loudly rather than silently keep the stale payload.
	existing, getErr := b.Get(ctx, sessionID, version)
	if getErr != nil {
		return mnemoerr.Wrapf(err, mnemoerr.CodeCheckpointPersistence,
			"writing checkpoint %s@%d", sessionID, version)
	}
	if checkpoint.SameState(existing, data) {
		return nil
	}
	return mnemoerr.Errorf(mnemoerr.CodeCheckpointPersistence,
		"checkpoint %s@%d already exists with different state", sessionID, version)
}

func (b *Backend) Get(ctx context.Context, sessionID string, version int64) ([]byte, error) {
	var (
		row  *sql.Row
		data []byte
	)

	if version <= 0 {
		const q = `SELECT data FROM checkpoints WHERE session_id = ? ORDER BY version DESC LIMIT 1`
		row = b.db.QueryRowContext(ctx, q, sessionID)
	} else {
		const q = `SELECT data FROM checkpoints WHERE session_id = ? AND version = ?`
		row = b.db.QueryRowContext(ctx, q, sessionID, version)
	}

	err := row.Scan(&data)
	if err == sql.ErrNoRows {
		if version <= 0 {
			return nil, mnemoerr.Errorf(mnemoerr.CodeCheckpointNotFound,
				"no checkpoints for session %q", sessionID)
		}
		return nil, mnemoerr.Errorf(mnemoerr.CodeCheckpointNotFound,
			"session %q has no checkpoint at version %d", sessionID, version)
	}
	if err != nil {
		return nil, mnemoerr.Wrapf(err, mnemoerr.CodeCheckpointPersistence,
			"reading checkpoint %s@%d", sessionID, version)
	}

	return data, nil
}

func (b *Backend) ListVersions(ctx context.Context, sessionID string) ([]int64, error) {
	const q = `SELECT version FROM checkpoints WHERE session_id = ? ORDER BY version ASC`

	rows, err := b.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, mnemoerr.Wrapf(err, mnemoerr.CodeCheckpointListFailure,
			"listing checkpoints for session %s", sessionID)
	}
	defer rows.Close()

	var versions []int64
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, mnemoerr.Wrap(err, mnemoerr.CodeCheckpointListFailure, "scanning checkpoint version")
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, mnemoerr.Wrapf(err, mnemoerr.CodeCheckpointListFailure,
			"listing checkpoints for session %s", sessionID)
	}

	return versions, nil
}

func (b *Backend) Prune(ctx context.Context, sessionID string) error {
	_, err := b.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE session_id = ?`, sessionID)
	if err != nil {
		return mnemoerr.Wrapf(err, mnemoerr.CodeCheckpointPruneFailure,
			"pruning checkpoints for session %s", sessionID)
	}
	return nil
}

// formatTime serialises a time.Time to RFC3339 with nanosecond precision.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
