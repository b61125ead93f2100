package db

import (
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"

	"printquote/internal/errors"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const sqliteDialect = "sqlite3"

// Migrate runs all pending embedded SQL migrations.
func Migrate(conn *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect(sqliteDialect); err != nil {
		return errors.Storage("set goose dialect", err)
	}
	if err := goose.Up(conn, "migrations"); err != nil {
		return errors.Storage("run goose up migrations", err)
	}
	return nil
}
