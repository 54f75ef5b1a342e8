package migrations

import (
	"context"
	"fmt"

	"candle-sync/internal/storage"
	"candle-sync/internal/storage/postgres"
)

// RunPostgresMigrations applies all embedded SQL files in lexical order.
// Migrations are idempotent.
func RunPostgresMigrations(ctx context.Context, pool *postgres.Pool) error {
	files, err := load(PostgresFS, "postgres")
	if err != nil {
		return err
	}

	for _, m := range files {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
	}
	return nil
}

// PostgresAdmin provisions the measurement table in PostgreSQL.
type PostgresAdmin struct {
	pool *postgres.Pool
}

// NewPostgresAdmin creates an admin bound to the pool.
func NewPostgresAdmin(pool *postgres.Pool) *PostgresAdmin {
	return &PostgresAdmin{pool: pool}
}

var _ storage.TableAdmin = (*PostgresAdmin)(nil)

// EnsureTable runs the embedded migrations.
func (a *PostgresAdmin) EnsureTable(ctx context.Context) error {
	return RunPostgresMigrations(ctx, a.pool)
}

// DropTable removes the measurement table.
func (a *PostgresAdmin) DropTable(ctx context.Context) error {
	if _, err := a.pool.Exec(ctx, "DROP TABLE IF EXISTS "+postgres.MeasurementsTable); err != nil {
		return fmt.Errorf("drop %s: %w", postgres.MeasurementsTable, err)
	}
	return nil
}
