package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaughan-dsouza/expensely/internal/config"
	"github.com/vaughan-dsouza/expensely/internal/db"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Port:     "0",
		CORS:     []string{"http://localhost:5173"},
		Shutdown: time.Second,
		Database: config.DatabaseConfig{
			URL:    filepath.Join(t.TempDir(), "expensely.db"),
			Driver: config.DriverSQLite,
		},
		Auth: config.AuthConfig{Secret: "s3cret", ExpiryDays: 1, BcryptCost: 4},
	}
}

func TestNewServerRoutes(t *testing.T) {
	cfg := testConfig(t)
	conn, err := db.Open(context.Background(), cfg.Database)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, db.Migrate(conn, cfg.Database.URL))

	srv := newServer(cfg, conn, zap.NewNop())
	assert.Equal(t, ":0", srv.Addr)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"health", http.MethodGet, "/healthz", "", http.StatusOK},
		{"signup", http.MethodPost, "/signup", `{"username":"a","email":"a@x.com","password":"pw"}`, http.StatusCreated},
		{"login", http.MethodPost, "/login", `{"email":"a@x.com","password":"pw"}`, http.StatusOK},
		{"expenses need auth", http.MethodGet, "/expenses", "", http.StatusUnauthorized},
		{"me needs auth", http.MethodGet, "/me", "", http.StatusUnauthorized},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"unknown", http.MethodGet, "/posts", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			srv.Handler.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	cfg := testConfig(t)
	conn, err := db.Open(context.Background(), cfg.Database)
	require.NoError(t, err)
	defer conn.Close()

	srv := newServer(cfg, conn, zap.NewNop())

	req := httptest.NewRequest(http.MethodOptions, "/expenses", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
}

func TestNewServerLogsEffectiveAuthSettings(t *testing.T) {
	cfg := testConfig(t)
	cfg.Auth.BcryptCost = 1
	cfg.Auth.ExpiryDays = 3
	conn, err := db.Open(context.Background(), cfg.Database)
	require.NoError(t, err)
	defer conn.Close()

	core, logs := observer.New(zapcore.InfoLevel)
	newServer(cfg, conn, zap.New(core))

	entries := logs.FilterMessage("auth configured").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 4, fields["bcrypt_cost"], "cost is clamped to bcrypt's minimum")
	assert.Equal(t, 72*time.Hour, fields["token_ttl"])
}
