// Package db provides the persistent rate catalog store. Tables mirror
// the nine rate entities; mutations replace a table wholesale inside a
// transaction, never patch single rows.
package db

import (
	"database/sql"

	_ "modernc.org/sqlite"

	"printquote/internal/errors"
)

// Open opens a SQLite database, sets recommended pragmas, and
// validates connectivity.
func Open(dbPath string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Storage("open sqlite database", err)
	}

	if _, err := conn.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA foreign_keys = ON;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		conn.Close()
		return nil, errors.Storage("set sqlite pragmas", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, errors.Storage("ping sqlite database", err)
	}

	return conn, nil
}
