package db

import (
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/vaughan-dsouza/expensely/internal/db/migrations"

	// registers the pgx5:// scheme
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
)

// Migrate applies every pending up migration embedded in the binary.
//
// SQLite runs on the caller's handle so that ":memory:" databases get their
// schema. Postgres gets its own short-lived connection through the pgx5
// scheme, because the migrate driver pins a pooled connection until closed.
func Migrate(db *sqlx.DB, databaseURL string) error {
	var (
		m   *migrate.Migrate
		err error
	)

	switch db.DriverName() {
	case "sqlite":
		m, err = sqliteMigrator(db)
	case "pgx":
		m, err = postgresMigrator(databaseURL)
		if err == nil {
			defer m.Close()
		}
	default:
		return errors.Errorf("migrate: unsupported driver %q", db.DriverName())
	}
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "migrate: up")
	}
	return nil
}

func sqliteMigrator(db *sqlx.DB) (*migrate.Migrate, error) {
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "migrate: sqlite driver")
	}

	src, err := iofs.New(migrations.SQLite, "sqlite")
	if err != nil {
		return nil, errors.Wrap(err, "migrate: sqlite source")
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	return m, errors.Wrap(err, "migrate: init")
}

func postgresMigrator(databaseURL string) (*migrate.Migrate, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "migrate: parse database url")
	}
	u.Scheme = "pgx5"

	src, err := iofs.New(migrations.Postgres, "postgres")
	if err != nil {
		return nil, errors.Wrap(err, "migrate: postgres source")
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, u.String())
	return m, errors.Wrap(err, "migrate: init")
}
