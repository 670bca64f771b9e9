package handlers

import (
	"context"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/vaughan-dsouza/expensely/internal/auth"
	"github.com/vaughan-dsouza/expensely/internal/models"
	"github.com/vaughan-dsouza/expensely/internal/store"
	"github.com/vaughan-dsouza/expensely/internal/utils"
	"go.uber.org/zap"
)

type userStore interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
}

type expenseStore interface {
	Create(ctx context.Context, ownerID string, f models.ExpenseFields) (models.Expense, error)
	List(ctx context.Context, ownerID string) ([]models.Expense, error)
	Update(ctx context.Context, ownerID, id string, patch models.ExpensePatch) (models.Expense, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type pinger interface {
	PingContext(ctx context.Context) error
}

type Handler struct {
	DB       pinger
	Auth     *AuthHandler
	Expenses *ExpenseHandler
	Tokens   *auth.TokenService
	Log      *zap.Logger
}

func NewHandler(db pinger, st *store.Store, hasher *auth.Hasher, tokens *auth.TokenService, log *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Auth:     NewAuthHandler(st.Users, hasher, tokens, log),
		Expenses: NewExpenseHandler(st.Expenses, log),
		Tokens:   tokens,
		Log:      log,
	}
}

// serverError logs err with the request id and answers with a generic 500,
// so persistence errors never reach the client.
func serverError(w http.ResponseWriter, r *http.Request, log *zap.Logger, msg string, err error) {
	log.Error(msg,
		zap.Error(err),
		zap.String("req_id", chimw.GetReqID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
	utils.JSONError(w, http.StatusInternalServerError, "internal server error")
}
