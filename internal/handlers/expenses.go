package handlers

import (
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/vaughan-dsouza/expensely/internal/idx"
	"github.com/vaughan-dsouza/expensely/internal/middleware"
	"github.com/vaughan-dsouza/expensely/internal/models"
	"github.com/vaughan-dsouza/expensely/internal/store"
	"github.com/vaughan-dsouza/expensely/internal/utils"
	"go.uber.org/zap"
)

const msgExpenseNotFound = "Expense not found or unauthorized"

type ExpenseHandler struct {
	expenses expenseStore
	log      *zap.Logger
	now      func() time.Time
}

func NewExpenseHandler(expenses expenseStore, log *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses, log: log, now: time.Now}
}

// ----------- Request DTOs -------------

// Bodies never carry owner_id; the owner always comes from the token.
type createExpenseReq struct {
	Amount      *float64 `json:"amount"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
}

type updateExpenseReq struct {
	ID          string   `json:"id"`
	Amount      *float64 `json:"amount"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Date        *string  `json:"date"`
}

type deleteExpenseReq struct {
	ID string `json:"id"`
}

var errBadDate = errors.New("date must be YYYY-MM-DD or RFC 3339")

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, errBadDate
}

func checkAmount(a float64) error {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return errors.New("amount must be a number")
	}
	if a < 0 {
		return errors.New("amount must not be negative")
	}
	return nil
}

func (r createExpenseReq) fields(now time.Time) (models.ExpenseFields, error) {
	f := models.ExpenseFields{
		Category:    strings.TrimSpace(r.Category),
		Description: r.Description,
	}

	if r.Amount == nil {
		return f, errors.New("amount is required")
	}
	if err := checkAmount(*r.Amount); err != nil {
		return f, err
	}
	f.Amount = *r.Amount

	if f.Category == "" {
		return f, errors.New("category is required")
	}

	if strings.TrimSpace(r.Date) == "" {
		f.Date = now.UTC()
		return f, nil
	}
	d, err := parseDate(r.Date)
	if err != nil {
		return f, err
	}
	f.Date = d
	return f, nil
}

func (r updateExpenseReq) patch() (models.ExpensePatch, error) {
	var p models.ExpensePatch

	if r.Amount != nil {
		if err := checkAmount(*r.Amount); err != nil {
			return p, err
		}
		p.Amount = r.Amount
	}
	if r.Category != nil {
		c := strings.TrimSpace(*r.Category)
		if c == "" {
			return p, errors.New("category must not be empty")
		}
		p.Category = &c
	}
	if r.Description != nil {
		p.Description = r.Description
	}
	if r.Date != nil {
		d, err := parseDate(*r.Date)
		if err != nil {
			return p, err
		}
		p.Date = &d
	}
	return p, nil
}

// owner returns the authenticated caller. The gateway guarantees it, so a
// miss means the route was mounted without Authenticate.
func owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	uid, ok := utils.UserIDFromContext(r.Context())
	if !ok {
		utils.JSONError(w, http.StatusUnauthorized, middleware.MsgNotLoggedIn)
	}
	return uid, ok
}

// ---------------------- CREATE ----------------------

func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := owner(w, r)
	if !ok {
		return
	}

	var req createExpenseReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	f, err := req.fields(h.now())
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	e, err := h.expenses.Create(r.Context(), uid, f)
	if err != nil {
		serverError(w, r, h.log, "create expense", err)
		return
	}

	utils.JSON(w, http.StatusCreated, e)
}

// ---------------------- LIST ----------------------

func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := owner(w, r)
	if !ok {
		return
	}

	list, err := h.expenses.List(r.Context(), uid)
	if err != nil {
		serverError(w, r, h.log, "list expenses", err)
		return
	}

	utils.JSON(w, http.StatusOK, list)
}

// ---------------------- UPDATE ----------------------

// Update reports a foreign id exactly like a missing or malformed one.
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := owner(w, r)
	if !ok {
		return
	}

	var req updateExpenseReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		utils.JSONError(w, http.StatusBadRequest, "id is required")
		return
	}
	if !idx.Valid(req.ID) {
		utils.JSONError(w, http.StatusNotFound, msgExpenseNotFound)
		return
	}
	patch, err := req.patch()
	if err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	e, err := h.expenses.Update(r.Context(), uid, req.ID, patch)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, msgExpenseNotFound)
		return
	}
	if err != nil {
		serverError(w, r, h.log, "update expense", err)
		return
	}

	utils.JSON(w, http.StatusOK, e)
}

// ---------------------- DELETE ----------------------

func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := owner(w, r)
	if !ok {
		return
	}

	var req deleteExpenseReq
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.JSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		utils.JSONError(w, http.StatusBadRequest, "id is required")
		return
	}
	if !idx.Valid(req.ID) {
		utils.JSONError(w, http.StatusNotFound, msgExpenseNotFound)
		return
	}

	err := h.expenses.Delete(r.Context(), uid, req.ID)
	if errors.Is(err, store.ErrNotFound) {
		utils.JSONError(w, http.StatusNotFound, msgExpenseNotFound)
		return
	}
	if err != nil {
		serverError(w, r, h.log, "delete expense", err)
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{"message": "Expense deleted successfully"})
}
