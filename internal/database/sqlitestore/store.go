// Package sqlitestore provides SQLite-backed store implementations for forum
// content and moderation data. Both stores share one database so the combined
// quick actions can run in a single transaction.
package sqlitestore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/XSAM/otelsql"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id           TEXT PRIMARY KEY,
	handle       TEXT NOT NULL DEFAULT '',
	role         TEXT NOT NULL DEFAULT 'member',
	created_at   TEXT NOT NULL,
	is_banned    INTEGER NOT NULL DEFAULT 0,
	banned_at    TEXT,
	banned_until TEXT,
	banned_by    TEXT NOT NULL DEFAULT '',
	ban_reason   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS topics (
	id          TEXT PRIMARY KEY,
	category_id TEXT NOT NULL,
	author_id   TEXT NOT NULL REFERENCES users(id),
	title       TEXT NOT NULL,
	body        TEXT NOT NULL,
	is_pinned   INTEGER NOT NULL DEFAULT 0,
	is_locked   INTEGER NOT NULL DEFAULT 0,
	is_hidden   INTEGER NOT NULL DEFAULT 0,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_topics_category ON topics(category_id, created_at);

CREATE TABLE IF NOT EXISTS posts (
	id         TEXT PRIMARY KEY,
	topic_id   TEXT NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
	author_id  TEXT NOT NULL REFERENCES users(id),
	body       TEXT NOT NULL,
	is_hidden  INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_topic ON posts(topic_id, created_at);

CREATE TABLE IF NOT EXISTS votes (
	id          TEXT PRIMARY KEY,
	actor_id    TEXT NOT NULL REFERENCES users(id),
	target_kind TEXT NOT NULL,
	target_id   TEXT NOT NULL,
	value       INTEGER NOT NULL,
	created_at  TEXT NOT NULL,
	UNIQUE(actor_id, target_kind, target_id)
);
CREATE INDEX IF NOT EXISTS idx_votes_target ON votes(target_kind, target_id);

CREATE TABLE IF NOT EXISTS reports (
	id               TEXT PRIMARY KEY,
	reporter_id      TEXT NOT NULL REFERENCES users(id),
	target_kind      TEXT NOT NULL,
	target_id        TEXT NOT NULL,
	target_author_id TEXT NOT NULL,
	reason           TEXT NOT NULL,
	details          TEXT NOT NULL DEFAULT '',
	status           TEXT NOT NULL DEFAULT 'pending',
	created_at       TEXT NOT NULL,
	resolved_by      TEXT NOT NULL DEFAULT '',
	resolved_at      TEXT
);
CREATE INDEX IF NOT EXISTS idx_reports_target ON reports(target_kind, target_id);
CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status, created_at);
CREATE INDEX IF NOT EXISTS idx_reports_author ON reports(target_author_id, created_at);

CREATE TABLE IF NOT EXISTS warnings (
	id             TEXT PRIMARY KEY,
	target_user_id TEXT NOT NULL REFERENCES users(id),
	moderator_id   TEXT NOT NULL,
	reason         TEXT NOT NULL,
	severity       TEXT NOT NULL,
	target_kind    TEXT,
	target_id      TEXT,
	created_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_warnings_user ON warnings(target_user_id, created_at);

CREATE TABLE IF NOT EXISTS moderator_notes (
	id             TEXT PRIMARY KEY,
	target_user_id TEXT NOT NULL REFERENCES users(id),
	moderator_id   TEXT NOT NULL,
	note           TEXT NOT NULL,
	created_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notes_user ON moderator_notes(target_user_id, created_at);

CREATE TABLE IF NOT EXISTS moderation_actions (
	id             TEXT PRIMARY KEY,
	type           TEXT NOT NULL,
	moderator_id   TEXT NOT NULL,
	target_user_id TEXT NOT NULL DEFAULT '',
	target_kind    TEXT,
	target_id      TEXT,
	reason         TEXT NOT NULL DEFAULT '',
	ban_duration   TEXT NOT NULL DEFAULT '',
	created_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_actions_created ON moderation_actions(created_at);
CREATE INDEX IF NOT EXISTS idx_actions_moderator ON moderation_actions(moderator_id, created_at);
`

// Store wraps the shared SQLite database.
type Store struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at path, applies the schema, and
// instruments the connection for tracing. Parent directories are created if
// needed.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := otelsql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// modernc.org/sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ForumStore returns a forum content store backed by this database.
func (s *Store) ForumStore() *ForumStore {
	return &ForumStore{db: s.db}
}

// ModerationStore returns a moderation store backed by this database.
func (s *Store) ModerationStore() *ModerationStore {
	return &ModerationStore{db: s.db}
}
