// Package sqlite implements the repository interfaces using SQLite as
// the storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which needs a C compiler and makes
// cross-compilation painful. modernc.org/sqlite is a pure Go
// translation of SQLite — works everywhere Go works, and ":memory:"
// gives tests a fresh throwaway database.
//
// The store enforces the two integrity rules the core logic depends on:
// username uniqueness (PRIMARY KEY on users) and referential integrity
// of message participants (foreign keys to users). Violations come back
// as ordinary error outcomes, translated in user.go/message.go.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// isUniqueViolation reports whether err is SQLite's UNIQUE/PRIMARY KEY
// constraint failure. modernc.org/sqlite doesn't export a stable
// sentinel for this, so we match the constraint message it embeds.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyViolation reports whether err is a foreign key constraint
// failure (a message referencing a username that doesn't exist).
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// DB wraps a sql.DB connection pool. The repository interfaces are
// implemented by the UserDB and MessageDB views over the same pool —
// one connection pool, two repositories. sql.DB is a pool, not a single
// connection, so concurrent handlers are fine.
type DB struct {
	conn *sql.DB
}

// Users returns the UserRepository view of this database.
func (db *DB) Users() *UserDB {
	return &UserDB{conn: db.conn}
}

// Messages returns the MessageRepository view of this database.
func (db *DB) Messages() *MessageDB {
	return &MessageDB{conn: db.conn}
}

// dsn builds the driver DSN for a database path.
//
// The pragmas go in the DSN, not one-shot Execs: sql.DB is a pool, and
// PRAGMA foreign_keys is scoped to a single connection — issuing it
// once through the pool would leave every other pooled connection with
// foreign keys OFF (SQLite's default), silently accepting messages to
// nonexistent users under concurrent load. The driver applies _pragma
// parameters to each connection it opens.
//
// ":memory:" gets the same treatment for the same reason: a bare
// in-memory DSN gives each pooled connection its own empty database, so
// it is rewritten to a shared in-memory database that the whole pool
// sees.
func dsn(dbPath string) string {
	if dbPath == ":memory:" {
		dbPath = "file::memory:?mode=memory&cache=shared"
	}

	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}

	// WAL lets reads proceed while a write is in flight — needed for a
	// web server with concurrent requests.
	return dbPath + sep + "_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
}

// New opens a SQLite database and runs migrations.
//
// dbPath examples:
//   - "data/messagely.db" → file-based, persistent
//   - ":memory:"          → in-memory, lost on close (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// sql.Open doesn't actually connect; Ping forces an immediate
	// connection so a bad path fails here, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. Flushes the WAL and releases the
// file lock — always deferred wherever New is called.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it
// idempotent, so running it on every start is safe.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			username      TEXT PRIMARY KEY,
			password      TEXT NOT NULL,
			first_name    TEXT NOT NULL DEFAULT '',
			last_name     TEXT NOT NULL DEFAULT '',
			phone         TEXT NOT NULL DEFAULT '',
			join_at       DATETIME NOT NULL,
			last_login_at DATETIME NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id            TEXT PRIMARY KEY,
			from_username TEXT NOT NULL REFERENCES users(username),
			to_username   TEXT NOT NULL REFERENCES users(username),
			body          TEXT NOT NULL,
			sent_at       DATETIME NOT NULL,
			read_at       DATETIME
		);
		CREATE INDEX IF NOT EXISTS idx_messages_from ON messages(from_username);
		CREATE INDEX IF NOT EXISTS idx_messages_to ON messages(to_username);
	`)
	if err != nil {
		return fmt.Errorf("creating messages table: %w", err)
	}

	return nil
}
