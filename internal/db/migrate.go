package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id           TEXT PRIMARY KEY,
		auth_user_id TEXT NOT NULL UNIQUE,
		name         TEXT NOT NULL,
		avatar       TEXT,
		timezone     TEXT NOT NULL DEFAULT 'UTC',
		settings     TEXT NOT NULL DEFAULT '{}',
		created_at   TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS tags (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		color      TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS idx_tags_user_name ON tags(user_id, name COLLATE NOCASE)`,

	// Timestamps are fixed-width UTC strings, so text comparison orders them.
	`CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		tag_id     TEXT NOT NULL REFERENCES tags(id) ON DELETE RESTRICT,
		name       TEXT NOT NULL,
		start_at   TEXT NOT NULL,
		end_at     TEXT,
		break_time INTEGER NOT NULL DEFAULT 0 CHECK(break_time >= 0),
		status     TEXT NOT NULL DEFAULT 'SCHEDULED'
		           CHECK(status IN ('SCHEDULED','IN_PROGRESS','COMPLETED')),
		created_at TEXT NOT NULL,
		CHECK ((status = 'COMPLETED' AND end_at IS NOT NULL AND end_at >= start_at)
		    OR (status != 'COMPLETED' AND end_at IS NULL))
	)`,

	`CREATE INDEX IF NOT EXISTS idx_sessions_user_created ON sessions(user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user_status_start ON sessions(user_id, status, start_at)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_tag ON sessions(tag_id)`,

	`CREATE TABLE IF NOT EXISTS breaks (
		id         TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		type       TEXT NOT NULL DEFAULT 'CUSTOM'
		           CHECK(type IN ('SHORT','LONG','CUSTOM')),
		start_time TEXT NOT NULL,
		end_time   TEXT,
		CHECK (end_time IS NULL OR end_time >= start_time)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_breaks_session ON breaks(session_id)`,

	// At most one open break per session.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_breaks_one_active ON breaks(session_id) WHERE end_time IS NULL`,

	`CREATE TABLE IF NOT EXISTS auth_sessions (
		token_hash TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_auth_sessions_expires ON auth_sessions(expires_at)`,

	// Planned end for scheduled sessions; end_at stays NULL until completion.
	`ALTER TABLE sessions ADD COLUMN planned_end_at TEXT`,
}
