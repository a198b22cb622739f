package dbmigrate

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite3"
)

//go:embed migrations
var migrationsFS embed.FS

// Run opens dbURL with the driver of dialect and runs a goose command
// (up, down, status, ...) against the embedded migrations.
func Run(command, dialect, dbURL string) error {
	if dbURL == "" {
		return fmt.Errorf("database URL is empty")
	}

	driver := "pgx"
	if dialect == DialectSQLite {
		driver = "sqlite"
	}

	db, err := sql.Open(driver, dbURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	return RunDB(command, dialect, db)
}

// RunDB runs a goose command on an already open database.
func RunDB(command, dialect string, db *sql.DB) error {
	if dialect != DialectPostgres && dialect != DialectSQLite {
		return fmt.Errorf("unsupported dialect %q", dialect)
	}

	sub, err := fs.Sub(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return fmt.Errorf("migrations for %s: %w", dialect, err)
	}

	goose.SetBaseFS(sub)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Run(command, db, "."); err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}

	return nil
}
