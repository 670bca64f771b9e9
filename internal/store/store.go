package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrNotFound          = errors.New("store: not found")
	ErrDuplicateIdentity = errors.New("store: username or email already registered")
)

const pgUniqueViolation = "23505"

// Store groups the repositories that share one connection pool.
type Store struct {
	Users    *Users
	Expenses *Expenses
}

func New(db *sqlx.DB) *Store {
	b := builder(db)
	return &Store{
		Users:    &Users{db: db, sb: b, now: now},
		Expenses: &Expenses{db: db, sb: b, now: now},
	}
}

// builder picks the placeholder style of the underlying driver.
func builder(db *sqlx.DB) sq.StatementBuilderType {
	if db.DriverName() == "pgx" {
		return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	}
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

// now is truncated to Postgres' microsecond precision so values read back
// compare equal to the ones written.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}
