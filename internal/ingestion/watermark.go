package ingestion

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"candle-sync/internal/domain"
	"candle-sync/internal/observability"
	"candle-sync/internal/storage"
)

// WatermarkResolver finds the newest stored candle time for a series.
type WatermarkResolver struct {
	store   storage.WatermarkQuerier
	backend string
	logger  *logrus.Logger
}

// NewWatermarkResolver creates a resolver over store. backend labels metrics.
func NewWatermarkResolver(store storage.WatermarkQuerier, backend string, logger *logrus.Logger) *WatermarkResolver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &WatermarkResolver{store: store, backend: backend, logger: logger}
}

// Resolve returns the watermark and whether one exists.
// Query failures are logged and counted and reported as absent.
func (w *WatermarkResolver) Resolve(ctx context.Context, key domain.SyncKey) (time.Time, bool) {
	start := time.Now()
	ts, err := w.store.LastTimestamp(ctx, key)
	fields := logrus.Fields{
		"asset":       key.Asset,
		"exchange":    key.Exchange,
		"granularity": key.Granularity,
	}

	switch {
	case err == nil:
		observability.RecordStoreOp(w.backend, "last_timestamp", time.Since(start).Seconds(), nil)
		observability.UpdateWatermark(key.Asset, key.Exchange, key.Granularity, float64(ts.Unix()))
		return ts, true
	case errors.Is(err, storage.ErrNotFound):
		observability.RecordStoreOp(w.backend, "last_timestamp", time.Since(start).Seconds(), nil)
		w.logger.WithFields(fields).Info("no stored candles for series")
		return time.Time{}, false
	default:
		observability.RecordStoreOp(w.backend, "last_timestamp", time.Since(start).Seconds(), err)
		observability.RecordWatermarkError()
		w.logger.WithFields(fields).WithError(err).Warn("watermark query failed, treating series as empty")
		return time.Time{}, false
	}
}
