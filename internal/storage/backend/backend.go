// Package backend opens the configured measurement store.
package backend

import (
	"context"
	"fmt"

	"candle-sync/internal/config"
	"candle-sync/internal/storage"
	chstore "candle-sync/internal/storage/clickhouse"
	"candle-sync/internal/storage/memory"
	"candle-sync/internal/storage/migrations"
	pgstore "candle-sync/internal/storage/postgres"
	"candle-sync/internal/storage/timestream"
)

// Backend is an opened store with its table lifecycle.
type Backend struct {
	Name  string
	Store storage.MeasurementStore
	Admin storage.TableAdmin
	close func() error
}

// Close releases the backend's connections.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open connects to cfg.Backend. With cfg.EnsureTable set, a missing
// ClickHouse database is created before connecting.
func Open(ctx context.Context, cfg config.StoreConfig) (*Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		store := memory.NewMeasurementStore()
		return &Backend{Name: cfg.Backend, Store: store, Admin: store}, nil

	case config.BackendTimestream:
		clients, err := timestream.NewClients(ctx, cfg.Timestream.Region)
		if err != nil {
			return nil, err
		}
		store := timestream.NewMeasurementStore(clients.Write, clients.Query, timestream.Options{
			Database:                  cfg.Timestream.Database,
			Table:                     cfg.Timestream.Table,
			MemoryRetentionHours:      cfg.Timestream.MemoryRetentionHours,
			MagneticRetentionDays:     cfg.Timestream.MagneticRetentionDays,
			EnableMagneticStoreWrites: cfg.Timestream.EnableMagneticWrites,
		})
		return &Backend{Name: cfg.Backend, Store: store, Admin: store}, nil

	case config.BackendClickhouse:
		var (
			conn *chstore.Conn
			err  error
		)
		if cfg.EnsureTable {
			conn, err = migrations.RunClickhouseMigrations(ctx, cfg.Clickhouse.DSN)
		} else {
			conn, err = chstore.NewConn(ctx, cfg.Clickhouse.DSN)
		}
		if err != nil {
			return nil, fmt.Errorf("open clickhouse: %w", err)
		}
		return &Backend{
			Name:  cfg.Backend,
			Store: chstore.NewMeasurementStore(conn),
			Admin: migrations.NewClickhouseAdmin(conn),
			close: conn.Close,
		}, nil

	case config.BackendPostgres:
		pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return &Backend{
			Name:  cfg.Backend,
			Store: pgstore.NewMeasurementStore(pool),
			Admin: migrations.NewPostgresAdmin(pool),
			close: func() error {
				pool.Close()
				return nil
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
