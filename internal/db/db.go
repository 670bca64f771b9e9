package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/vaughan-dsouza/expensely/internal/config"

	// sqlite driver
	_ "modernc.org/sqlite"
)

// Open returns the process-wide connection pool for the configured driver.
// It is called once from main and the handle is passed to every store.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return Connect(ctx, cfg)
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.URL)
	default:
		return nil, errors.Errorf("db: unsupported driver %q", cfg.Driver)
	}
}

func Connect(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	// Parse DSN → pgx config struct
	pgxCfg, err := pgx.ParseConfig(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "db: failed to parse DSN")
	}

	// Fail fast on startup if PG is unreachable
	pgxCfg.ConnectTimeout = 5 * time.Second

	// Wrap in sqlx for struct scanning
	db := sqlx.NewDb(stdlib.OpenDB(*pgxCfg), "pgx")

	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := healthCheck(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenSQLite opens a SQLite database through the modernc driver. The pool is
// capped at one connection: SQLite has a single writer, and every
// connection to ":memory:" would otherwise see its own empty database.
func OpenSQLite(ctx context.Context, path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "db: open sqlite")
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "db: enable foreign keys")
	}

	if err := healthCheck(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func healthCheck(ctx context.Context, db *sqlx.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 8*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "db: failed to connect")
	}

	var tmp int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&tmp); err != nil {
		return errors.Wrap(err, "db: health check failed")
	}
	return nil
}
