package models

import "time"

type Expense struct {
	ID          string    `db:"id" json:"id"`
	OwnerID     string    `db:"owner_id" json:"owner_id"`
	Amount      float64   `db:"amount" json:"amount"`
	Category    string    `db:"category" json:"category"`
	Description string    `db:"description" json:"description"`
	Date        time.Time `db:"date" json:"date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ExpenseFields are the caller-controlled columns of an expense.
type ExpenseFields struct {
	Amount      float64
	Category    string
	Description string
	Date        time.Time
}

// ExpensePatch holds the fields an update may change; nil means unchanged.
type ExpensePatch struct {
	Amount      *float64
	Category    *string
	Description *string
	Date        *time.Time
}
