package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/vaughan-dsouza/expensely/internal/auth"
	"github.com/vaughan-dsouza/expensely/internal/config"
	"github.com/vaughan-dsouza/expensely/internal/db"
	"github.com/vaughan-dsouza/expensely/internal/handlers"
	"github.com/vaughan-dsouza/expensely/internal/logger"
	"github.com/vaughan-dsouza/expensely/internal/store"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// no logger yet
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited with error", zap.Error(err))
	}
	log.Info("server exited")
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx := context.Background()

	dbConn, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	if err := db.Migrate(dbConn, cfg.Database.URL); err != nil {
		return err
	}

	srv := newServer(cfg, dbConn, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr), zap.String("driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- errors.Wrap(err, "listen")
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("shutting down server...", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Shutdown)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server forced to shutdown")
	}
	return nil
}

// newServer wires the stores, auth services and router around one shared
// database handle.
func newServer(cfg config.Config, dbConn *sqlx.DB, log *zap.Logger) *http.Server {
	if cfg.Auth.Secret == "" {
		log.Warn("JWT_SECRET is empty; signup and login will fail to issue tokens")
	}

	hasher := auth.NewHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenService(cfg.Auth.Secret, cfg.Auth.TokenTTL())
	log.Info("auth configured",
		zap.Int("bcrypt_cost", hasher.Cost()),
		zap.Duration("token_ttl", tokens.TTL()),
	)

	h := handlers.NewHandler(dbConn, store.New(dbConn), hasher, tokens, log)

	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.Routes(cfg.CORS),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
