package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"candle-sync/internal/domain"
	"candle-sync/internal/storage"
)

// MeasurementsTable is the table holding mirrored candle measurements.
const MeasurementsTable = "candle_measurements"

var measurementColumns = []string{
	"time", "asset", "exchange", "granularity", "measure_name", "measure_value", "measure_value_type",
}

// MeasurementStore implements storage.MeasurementStore using PostgreSQL (or TimescaleDB).
type MeasurementStore struct {
	pool *Pool
}

// NewMeasurementStore creates a new MeasurementStore.
func NewMeasurementStore(pool *Pool) *MeasurementStore {
	return &MeasurementStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MeasurementStore = (*MeasurementStore)(nil)

// WriteRecords copies the records in a single COPY statement.
func (s *MeasurementStore) WriteRecords(ctx context.Context, records []domain.Measurement) error {
	if err := storage.ValidateBatch(records); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	src := pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
		r := records[i]
		key := r.Key()
		return []any{
			time.UnixMilli(r.TimeMs).UTC(),
			key.Asset,
			key.Exchange,
			key.Granularity,
			r.Name,
			r.Value,
			string(r.Type),
		}, nil
	})

	n, err := s.pool.CopyFrom(ctx, pgx.Identifier{MeasurementsTable}, measurementColumns, src)
	if err != nil {
		return fmt.Errorf("copy measurements: %w", err)
	}
	if int(n) != len(records) {
		return fmt.Errorf("copy measurements: wrote %d of %d rows", n, len(records))
	}

	return nil
}

// LastTimestamp returns MAX(time) of the series.
func (s *MeasurementStore) LastTimestamp(ctx context.Context, key domain.SyncKey) (time.Time, error) {
	query := `
		SELECT MAX(time)
		FROM candle_measurements
		WHERE asset = $1 AND exchange = $2 AND granularity = $3
	`

	var last *time.Time
	if err := s.pool.QueryRow(ctx, query, key.Asset, key.Exchange, key.Granularity).Scan(&last); err != nil {
		return time.Time{}, fmt.Errorf("query last timestamp: %w", err)
	}
	if last == nil {
		return time.Time{}, storage.ErrNotFound
	}

	return last.UTC(), nil
}

// GetByKey retrieves all measurements of a series, ordered by time then name.
func (s *MeasurementStore) GetByKey(ctx context.Context, key domain.SyncKey) ([]domain.Measurement, error) {
	query := `
		SELECT time, measure_name, measure_value, measure_value_type
		FROM candle_measurements
		WHERE asset = $1 AND exchange = $2 AND granularity = $3
		ORDER BY time ASC, measure_name ASC
	`

	rows, err := s.pool.Query(ctx, query, key.Asset, key.Exchange, key.Granularity)
	if err != nil {
		return nil, fmt.Errorf("get measurements by key: %w", err)
	}
	defer rows.Close()

	return scanMeasurements(rows, key)
}

// scanMeasurements scans multiple rows of one series.
func scanMeasurements(rows pgx.Rows, key domain.SyncKey) ([]domain.Measurement, error) {
	var out []domain.Measurement

	for rows.Next() {
		var m domain.Measurement
		var ts time.Time
		var typ string

		if err := rows.Scan(&ts, &m.Name, &m.Value, &typ); err != nil {
			return nil, fmt.Errorf("scan measurement row: %w", err)
		}

		m.Dimensions = key.Dimensions()
		m.Type = domain.ValueType(typ)
		m.TimeMs = ts.UnixMilli()
		out = append(out, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate measurement rows: %w", err)
	}

	return out, nil
}
