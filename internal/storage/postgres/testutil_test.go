package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL container for testing and creates the schema.
// Returns a cleanup function that must be called after tests complete.
func setupTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")

	// Same schema as the embedded migration (the migrations package imports this one).
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS candle_measurements (
			time                TIMESTAMPTZ NOT NULL,
			asset               TEXT        NOT NULL,
			exchange            TEXT        NOT NULL,
			granularity         TEXT        NOT NULL,
			measure_name        TEXT        NOT NULL,
			measure_value       TEXT        NOT NULL,
			measure_value_type  TEXT        NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_candle_measurements_series
			ON candle_measurements (asset, exchange, granularity, time DESC);
	`)
	require.NoError(t, err, "failed to create schema")

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}
