// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ShopSage Contributors

// Package sqlite implements store.Registry backed by a single SQLite
// database file.
package sqlite

import (
	"database/sql"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/shopsage-dev/shopsage/internal/store"
	ssgerr "github.com/shopsage-dev/shopsage/pkg/errors"
)

// Compile-time interface check.
var _ store.Registry = (*Registry)(nil)

// Registry implements store.Registry backed by SQLite. Access tokens are
// sealed with the cipher before they are written and opened on read, so
// the database file never holds a plaintext credential.
type Registry struct {
	db     *sql.DB
	cipher store.TokenCipher
}

// NewRegistry opens (or creates) a SQLite database at dbPath and
// initialises the stores and questions tables.
func NewRegistry(dbPath string, cipher store.TokenCipher) (*Registry, error) {
	if cipher == nil {
		return nil, ssgerr.New(ssgerr.CodeStoreInvalidInput, "token cipher is required")
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, ssgerr.Wrap(err, ssgerr.CodeStoreDatabaseFailure, "opening sqlite db")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, ssgerr.Wrap(err, ssgerr.CodeStoreDatabaseFailure, "pinging sqlite db")
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, ssgerr.Wrap(err, ssgerr.CodeStoreDatabaseFailure, "migrating sqlite db")
	}

	return &Registry{db: db, cipher: cipher}, nil
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS stores (
	id           TEXT PRIMARY KEY,
	shop_domain  TEXT NOT NULL UNIQUE,
	access_token TEXT NOT NULL DEFAULT '',
	scope        TEXT NOT NULL DEFAULT '',
	active       INTEGER NOT NULL DEFAULT 0,
	api_version  TEXT NOT NULL DEFAULT '',
	metadata     TEXT NOT NULL DEFAULT '{}',
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
	id                 TEXT PRIMARY KEY,
	store_id           TEXT NOT NULL,
	question_text      TEXT NOT NULL,
	status             TEXT NOT NULL DEFAULT 'pending',
	answer             TEXT NOT NULL DEFAULT '',
	confidence         REAL NOT NULL DEFAULT 0,
	query_used         TEXT NOT NULL DEFAULT '',
	data_points        TEXT NOT NULL DEFAULT '[]',
	processing_time_ms INTEGER NOT NULL DEFAULT 0,
	error_message      TEXT NOT NULL DEFAULT '',
	created_at         TEXT NOT NULL,
	updated_at         TEXT NOT NULL,
	FOREIGN KEY (store_id) REFERENCES stores(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_questions_store ON questions(store_id, created_at DESC);
`
	_, err := db.Exec(ddl)
	return err
}

func (r *Registry) Stores() store.StoreRegistry    { return &storeRegistry{db: r.db, cipher: r.cipher} }
func (r *Registry) Questions() store.QuestionStore { return &questionStore{db: r.db} }

// Close closes the underlying database connection.
func (r *Registry) Close() error {
	return r.db.Close()
}

// formatTime serialises a time.Time to RFC3339 with nanosecond precision.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime deserialises a time string stored in the database. A value
// that fails to parse is logged and read as the zero time; the row stays
// usable.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		slog.Warn("parsing stored timestamp", "value", s, "error", err)
		return time.Time{}
	}
	return t
}
