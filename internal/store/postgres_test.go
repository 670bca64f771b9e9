package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vaughan-dsouza/expensely/internal/config"
	"github.com/vaughan-dsouza/expensely/internal/db"
)

// startPostgres runs a throwaway Postgres and returns its URL.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "expensely",
			"POSTGRES_PASSWORD": "expensely",
			"POSTGRES_DB":       "expensely",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://expensely:expensely@%s:%s/expensely?sslmode=disable", host, port.Port())
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	url := startPostgres(t)
	cfg := config.DatabaseConfig{URL: url, Driver: config.DriverPostgres, MaxOpen: 10, MaxIdle: 10, MaxLifetime: 60}

	conn, err := db.Connect(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn, url))
	conn.Close()

	suite.Run(t, &StoreSuite{open: func(t *testing.T) *sqlx.DB {
		conn, err := db.Connect(context.Background(), cfg)
		require.NoError(t, err)
		_, err = conn.Exec(`TRUNCATE users, expenses`)
		require.NoError(t, err)
		return conn
	}})
}
