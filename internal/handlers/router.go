package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vaughan-dsouza/expensely/internal/middleware"
	"github.com/vaughan-dsouza/expensely/internal/utils"
	"go.uber.org/zap"
)

const healthTimeout = 2 * time.Second

// Routes builds the full router. Protected resources are sub-routers with
// the auth gateway as their own middleware, so it runs before method
// matching and an anonymous caller gets 401 even for an unsupported verb.
func (h *Handler) Routes(corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(h.Log))
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	// Public
	r.Post("/signup", h.Auth.SignUp)
	r.Post("/login", h.Auth.Login)
	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	// Protected
	authenticate := middleware.Authenticate(h.Tokens, h.Log)

	r.Route("/me", func(r chi.Router) {
		r.Use(authenticate)
		r.NotFound(notFound)
		r.MethodNotAllowed(methodNotAllowed)

		r.Get("/", h.Auth.Me)
	})

	r.Route("/expenses", func(r chi.Router) {
		r.Use(authenticate)
		r.NotFound(notFound)
		r.MethodNotAllowed(methodNotAllowed)

		r.Post("/", h.Expenses.Create)
		r.Get("/", h.Expenses.List)
		r.Put("/", h.Expenses.Update)
		r.Delete("/", h.Expenses.Delete)
	})

	return r
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	utils.JSONError(w, http.StatusNotFound, "Not Found")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	utils.JSONError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.DB.PingContext(ctx); err != nil {
		h.Log.Warn("health check failed", zap.Error(err))
		utils.JSON(w, http.StatusServiceUnavailable, map[string]bool{"ok": false})
		return
	}
	utils.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}
