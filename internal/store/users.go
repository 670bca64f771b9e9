package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/vaughan-dsouza/expensely/internal/idx"
	"github.com/vaughan-dsouza/expensely/internal/models"
)

var userColumns = []string{"id", "username", "email", "password_hash", "role", "created_at"}

// Users is the credential store.
type Users struct {
	db  *sqlx.DB
	sb  sq.StatementBuilderType
	now func() time.Time
}

// NormalizeEmail is the single email comparison policy: trimmed and
// lower-cased before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateUser inserts u with a fresh id. Uniqueness of username and email is
// left to the database constraints, so two racing signups cannot both win.
func (s *Users) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	u.ID = idx.New()
	u.Username = strings.TrimSpace(u.Username)
	u.Email = NormalizeEmail(u.Email)
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	u.CreatedAt = s.now()

	query, args, err := s.sb.Insert("users").
		Columns(userColumns...).
		Values(u.ID, u.Username, u.Email, u.Password, u.Role, u.CreatedAt).
		ToSql()
	if err != nil {
		return models.User{}, errors.Wrap(err, "create user")
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return models.User{}, ErrDuplicateIdentity
		}
		return models.User{}, errors.Wrap(err, "create user")
	}
	return u, nil
}

func (s *Users) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findOne(ctx, sq.Eq{"email": NormalizeEmail(email)})
}

func (s *Users) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return s.findOne(ctx, sq.Eq{"username": strings.TrimSpace(username)})
}

func (s *Users) FindByID(ctx context.Context, id string) (models.User, error) {
	return s.findOne(ctx, sq.Eq{"id": id})
}

func (s *Users) findOne(ctx context.Context, pred sq.Eq) (models.User, error) {
	query, args, err := s.sb.Select(userColumns...).
		From("users").
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return models.User{}, errors.Wrap(err, "get user")
	}

	var u models.User
	if err := s.db.GetContext(ctx, &u, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, errors.Wrap(err, "get user")
	}
	return u, nil
}
