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

var expenseColumns = []string{
	"id", "owner_id", "amount", "category", "description", "date", "created_at", "updated_at",
}

// Expenses is the owner-scoped expense repository. Every statement it runs
// carries an owner_id predicate.
type Expenses struct {
	db  *sqlx.DB
	sb  sq.StatementBuilderType
	now func() time.Time
}

func (s *Expenses) Create(ctx context.Context, ownerID string, f models.ExpenseFields) (models.Expense, error) {
	ts := s.now()
	e := models.Expense{
		ID:          idx.New(),
		OwnerID:     ownerID,
		Amount:      f.Amount,
		Category:    f.Category,
		Description: f.Description,
		Date:        f.Date.UTC(),
		CreatedAt:   ts,
		UpdatedAt:   ts,
	}

	query, args, err := s.sb.Insert("expenses").
		Columns(expenseColumns...).
		Values(e.ID, e.OwnerID, e.Amount, e.Category, e.Description, e.Date, e.CreatedAt, e.UpdatedAt).
		ToSql()
	if err != nil {
		return models.Expense{}, errors.Wrap(err, "create expense")
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return models.Expense{}, errors.Wrap(err, "create expense")
	}
	return e, nil
}

// List returns the owner's expenses, newest date first. It never returns nil.
func (s *Expenses) List(ctx context.Context, ownerID string) ([]models.Expense, error) {
	query, args, err := s.sb.Select(expenseColumns...).
		From("expenses").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("date DESC", "created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "list expenses")
	}

	exps := make([]models.Expense, 0)
	if err := s.db.SelectContext(ctx, &exps, query, args...); err != nil {
		return nil, errors.Wrap(err, "list expenses")
	}
	return exps, nil
}

// Update applies patch in a single statement matching both id and owner, so
// there is no window between the ownership check and the write. A missing
// id and a foreign id both yield ErrNotFound.
func (s *Expenses) Update(ctx context.Context, ownerID, id string, patch models.ExpensePatch) (models.Expense, error) {
	set := map[string]any{"updated_at": s.now()}
	if patch.Amount != nil {
		set["amount"] = *patch.Amount
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Date != nil {
		set["date"] = patch.Date.UTC()
	}

	query, args, err := s.sb.Update("expenses").
		SetMap(set).
		Where(sq.Eq{"id": id, "owner_id": ownerID}).
		Suffix("RETURNING " + strings.Join(expenseColumns, ", ")).
		ToSql()
	if err != nil {
		return models.Expense{}, errors.Wrap(err, "update expense")
	}

	var e models.Expense
	if err := s.db.GetContext(ctx, &e, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Expense{}, ErrNotFound
		}
		return models.Expense{}, errors.Wrap(err, "update expense")
	}
	return e, nil
}

func (s *Expenses) Delete(ctx context.Context, ownerID, id string) error {
	query, args, err := s.sb.Delete("expenses").
		Where(sq.Eq{"id": id, "owner_id": ownerID}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "delete expense")
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrap(err, "delete expense")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "delete expense")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
