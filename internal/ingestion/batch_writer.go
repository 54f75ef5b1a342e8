package ingestion

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"candle-sync/internal/domain"
	"candle-sync/internal/normalization"
	"candle-sync/internal/observability"
	"candle-sync/internal/storage"
)

// WriteResult summarizes one BatchWriter.Write call.
type WriteResult struct {
	Records       int // measurements produced
	Batches       int // flushes attempted
	FailedBatches int
	Written       int // measurements in successful flushes
}

// BatchWriter turns candle rows into measurements and flushes them in
// fixed-size batches.
type BatchWriter struct {
	writer    storage.MeasurementWriter
	batchSize int
	policy    normalization.Policy
	backend   string
	logger    *logrus.Logger
}

// BatchWriterOptions configures a BatchWriter.
type BatchWriterOptions struct {
	BatchSize int // default and maximum storage.MaxBatchSize
	Policy    normalization.Policy
	Backend   string
	Logger    *logrus.Logger
}

// NewBatchWriter creates a batch writer over w.
func NewBatchWriter(w storage.MeasurementWriter, opts BatchWriterOptions) *BatchWriter {
	size := opts.BatchSize
	if size <= 0 || size > storage.MaxBatchSize {
		size = storage.MaxBatchSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &BatchWriter{
		writer:    w,
		batchSize: size,
		policy:    opts.Policy,
		backend:   opts.Backend,
		logger:    logger,
	}
}

// Write emits one measurement per (row, column) in row order.
// A failed flush is logged and dropped; later batches are still attempted.
func (b *BatchWriter) Write(ctx context.Context, table *domain.CandleTable, key domain.SyncKey) WriteResult {
	var res WriteResult
	if table.Len() == 0 {
		return res
	}

	batch := make([]domain.Measurement, 0, b.batchSize)
	for _, row := range table.Rows {
		for _, m := range b.policy.RowMeasurements(table.Columns, row, key) {
			batch = append(batch, m)
			res.Records++
			if len(batch) == b.batchSize {
				b.flush(ctx, batch, key, &res)
				batch = make([]domain.Measurement, 0, b.batchSize)
			}
		}
	}
	if len(batch) > 0 {
		b.flush(ctx, batch, key, &res)
	}

	return res
}

func (b *BatchWriter) flush(ctx context.Context, batch []domain.Measurement, key domain.SyncKey, res *WriteResult) {
	res.Batches++

	start := time.Now()
	err := b.writer.WriteRecords(ctx, batch)
	observability.RecordStoreOp(b.backend, "write_records", time.Since(start).Seconds(), err)
	observability.RecordBatch(len(batch), err)

	fields := logrus.Fields{
		"asset":       key.Asset,
		"exchange":    key.Exchange,
		"granularity": key.Granularity,
		"batch":       res.Batches,
		"records":     len(batch),
	}
	if err != nil {
		res.FailedBatches++
		b.logger.WithFields(fields).WithError(err).Error("batch write failed, dropping batch")
		return
	}

	res.Written += len(batch)
	b.logger.WithFields(fields).Debug("batch written")
}
