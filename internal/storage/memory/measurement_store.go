package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"candle-sync/internal/domain"
	"candle-sync/internal/storage"
)

// MeasurementStore is an in-memory implementation of storage.MeasurementStore.
type MeasurementStore struct {
	mu     sync.RWMutex
	series map[domain.SyncKey][]domain.Measurement
	writes int
}

// NewMeasurementStore creates a new in-memory measurement store.
func NewMeasurementStore() *MeasurementStore {
	return &MeasurementStore{
		series: make(map[domain.SyncKey][]domain.Measurement),
	}
}

// WriteRecords appends the records to their series. Fails the whole batch on invalid input.
func (s *MeasurementStore) WriteRecords(_ context.Context, records []domain.Measurement) error {
	if err := storage.ValidateBatch(records); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		key := r.Key()
		rec := r
		rec.Dimensions = append([]domain.Dimension(nil), r.Dimensions...)
		s.series[key] = append(s.series[key], rec)
	}
	s.writes++

	return nil
}

// LastTimestamp returns the newest measurement time of the series.
func (s *MeasurementStore) LastTimestamp(_ context.Context, key domain.SyncKey) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := s.series[key]
	if len(records) == 0 {
		return time.Time{}, storage.ErrNotFound
	}

	maxMs := records[0].TimeMs
	for _, r := range records[1:] {
		if r.TimeMs > maxMs {
			maxMs = r.TimeMs
		}
	}
	return time.UnixMilli(maxMs).UTC(), nil
}

// Records returns a copy of the series ordered by time, then by insertion.
func (s *MeasurementStore) Records(key domain.SyncKey) []domain.Measurement {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := append([]domain.Measurement(nil), s.series[key]...)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TimeMs < result[j].TimeMs
	})
	return result
}

// Writes returns the number of successful WriteRecords calls.
func (s *MeasurementStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

// EnsureTable is a no-op for the in-memory store.
func (s *MeasurementStore) EnsureTable(_ context.Context) error {
	return nil
}

// DropTable discards all series.
func (s *MeasurementStore) DropTable(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.series = make(map[domain.SyncKey][]domain.Measurement)
	s.writes = 0
	return nil
}

var (
	_ storage.MeasurementStore = (*MeasurementStore)(nil)
	_ storage.TableAdmin       = (*MeasurementStore)(nil)
)
