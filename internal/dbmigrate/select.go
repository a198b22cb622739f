package dbmigrate

import (
	"fmt"

	"github.com/fdg312/nutri-hub/internal/config"
)

// Target is the database a migration command runs against.
type Target struct {
	Dialect string
	URL     string
	Source  string // env var or setting the URL came from
	Warning string
}

// SelectTarget picks the migration target for the configured storage mode.
// SQLite mode migrates the state file database; everything else goes to
// Postgres via SelectDatabaseURL.
func SelectTarget(cfg *config.Config, requireDirect bool) (Target, error) {
	if cfg.Storage.Mode == config.StorageModeSQLite {
		if cfg.Storage.SQLPath == "" {
			return Target{}, fmt.Errorf("SQLITE_PATH is required when STORAGE_MODE=sqlite")
		}
		return Target{Dialect: DialectSQLite, URL: cfg.Storage.SQLPath, Source: "SQLITE_PATH"}, nil
	}

	dbURL, source, warning, err := SelectDatabaseURL(cfg, requireDirect)
	if err != nil {
		return Target{}, err
	}
	return Target{Dialect: DialectPostgres, URL: dbURL, Source: source, Warning: warning}, nil
}

// SelectDatabaseURL selects DB URL for migrations.
// Priority for migration command: DIRECT > DATABASE_URL > POOLED (with warning).
// If requireDirect is true, only DATABASE_URL_DIRECT is accepted.
func SelectDatabaseURL(cfg *config.Config, requireDirect bool) (dbURL string, source string, warning string, err error) {
	if requireDirect {
		if cfg.DatabaseURLDirect == "" {
			return "", "", "", fmt.Errorf("DATABASE_URL_DIRECT is required for DDL/migrations")
		}
		return cfg.DatabaseURLDirect, "DATABASE_URL_DIRECT", "", nil
	}

	if cfg.DatabaseURLDirect != "" {
		return cfg.DatabaseURLDirect, "DATABASE_URL_DIRECT", "", nil
	}
	if cfg.DatabaseURLRaw != "" {
		return cfg.DatabaseURLRaw, "DATABASE_URL", "", nil
	}
	if cfg.DatabaseURLPooled != "" {
		return cfg.DatabaseURLPooled, "DATABASE_URL_POOLED", "using pooled connection for DDL is not recommended; set DATABASE_URL_DIRECT", nil
	}

	return "", "", "", fmt.Errorf("no database URL configured (set DATABASE_URL_DIRECT or DATABASE_URL)")
}
