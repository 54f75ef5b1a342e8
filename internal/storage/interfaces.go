package storage

import (
	"context"
	"time"

	"candle-sync/internal/domain"
)

// MaxBatchSize is the largest number of records a single write may carry.
const MaxBatchSize = 100

// MeasurementWriter persists candle measurements.
type MeasurementWriter interface {
	// WriteRecords writes up to MaxBatchSize records in one call.
	// A failed call may have persisted a prefix of the records.
	WriteRecords(ctx context.Context, records []domain.Measurement) error
}

// WatermarkQuerier answers the latest persisted timestamp of a series.
type WatermarkQuerier interface {
	// LastTimestamp returns the maximum measurement time for the key.
	// Returns ErrNotFound if the series has no rows.
	LastTimestamp(ctx context.Context, key domain.SyncKey) (time.Time, error)
}

// MeasurementStore is the destination of the candle mirror.
type MeasurementStore interface {
	MeasurementWriter
	WatermarkQuerier
}

// TableAdmin manages the lifecycle of the destination table.
type TableAdmin interface {
	// EnsureTable creates the table if missing and applies table settings.
	EnsureTable(ctx context.Context) error

	// DropTable removes the table. A missing table is not an error.
	DropTable(ctx context.Context) error
}
