package clickhouse

import (
	"context"
	"fmt"
	"time"

	"candle-sync/internal/domain"
	"candle-sync/internal/storage"
)

// MeasurementsTable is the table holding mirrored candle measurements.
const MeasurementsTable = "candle_measurements"

// MeasurementStore implements storage.MeasurementStore using ClickHouse.
type MeasurementStore struct {
	conn *Conn
}

// NewMeasurementStore creates a new MeasurementStore.
func NewMeasurementStore(conn *Conn) *MeasurementStore {
	return &MeasurementStore{conn: conn}
}

// Compile-time interface check.
var _ storage.MeasurementStore = (*MeasurementStore)(nil)

// WriteRecords sends the records as one native batch.
func (s *MeasurementStore) WriteRecords(ctx context.Context, records []domain.Measurement) error {
	if err := storage.ValidateBatch(records); err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO candle_measurements (
			asset, exchange, granularity, measure_name, measure_value, measure_value_type, time_ms
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		key := r.Key()
		err = batch.Append(
			key.Asset, key.Exchange, key.Granularity,
			r.Name, r.Value, string(r.Type), uint64(r.TimeMs),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// LastTimestamp returns the newest time_ms of the series.
func (s *MeasurementStore) LastTimestamp(ctx context.Context, key domain.SyncKey) (time.Time, error) {
	query := `
		SELECT count(), max(time_ms)
		FROM candle_measurements
		WHERE asset = ? AND exchange = ? AND granularity = ?
	`

	var count, maxMs uint64
	err := s.conn.QueryRow(ctx, query, key.Asset, key.Exchange, key.Granularity).Scan(&count, &maxMs)
	if err != nil {
		return time.Time{}, fmt.Errorf("query last timestamp: %w", err)
	}
	if count == 0 {
		return time.Time{}, storage.ErrNotFound
	}

	return time.UnixMilli(int64(maxMs)).UTC(), nil
}

// GetByKey retrieves all measurements of a series, ordered by time then name.
func (s *MeasurementStore) GetByKey(ctx context.Context, key domain.SyncKey) ([]domain.Measurement, error) {
	query := `
		SELECT measure_name, measure_value, measure_value_type, time_ms
		FROM candle_measurements
		WHERE asset = ? AND exchange = ? AND granularity = ?
		ORDER BY time_ms ASC, measure_name ASC
	`

	rows, err := s.conn.Query(ctx, query, key.Asset, key.Exchange, key.Granularity)
	if err != nil {
		return nil, fmt.Errorf("query by key: %w", err)
	}
	defer rows.Close()

	return scanMeasurements(rows, key)
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanMeasurements scans multiple rows of one series.
func scanMeasurements(rows chRows, key domain.SyncKey) ([]domain.Measurement, error) {
	var out []domain.Measurement

	for rows.Next() {
		var m domain.Measurement
		var typ string
		var timeMs uint64

		if err := rows.Scan(&m.Name, &m.Value, &typ, &timeMs); err != nil {
			return nil, fmt.Errorf("scan measurement row: %w", err)
		}

		m.Dimensions = key.Dimensions()
		m.Type = domain.ValueType(typ)
		m.TimeMs = int64(timeMs)
		out = append(out, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate measurement rows: %w", err)
	}

	return out, nil
}
