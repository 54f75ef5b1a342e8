package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"candle-sync/internal/domain"
	"candle-sync/internal/normalization"
	"candle-sync/internal/observability"
	"candle-sync/internal/storage"
)

// DefaultLookback is the number of recent candles fetched per cycle.
const DefaultLookback = 10

// CandleSource fetches the most recent candles of a pair.
type CandleSource interface {
	PairCandles(ctx context.Context, pair, timeframe string, limit int) (*domain.CandleTable, error)
}

// Runner mirrors one series from a CandleSource into a MeasurementStore.
type Runner struct {
	source    CandleSource
	key       domain.SyncKey
	lookback  int
	watermark *WatermarkResolver
	pacer     *Pacer
	writer    *BatchWriter
	now       func() time.Time
	logger    *logrus.Logger
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	Source    CandleSource
	Store     storage.MeasurementStore
	Key       domain.SyncKey // Granularity doubles as the upstream timeframe
	Lookback  int            // Default: 10
	BatchSize int            // Default: 100
	Policy    normalization.Policy
	Pacer     *Pacer // Default: NewPacer(PacerOptions{})
	Backend   string // metrics label
	Logger    *logrus.Logger
}

// CycleResult describes one completed cycle.
type CycleResult struct {
	ID           string
	Fetched      int
	Interval     time.Duration
	Watermark    time.Time
	HasWatermark bool
	Waited       time.Duration
	Pending      int // rows after the watermark
	Write        WriteResult
}

// NewRunner creates a new sync runner.
func NewRunner(opts RunnerOptions) *Runner {
	lookback := opts.Lookback
	if lookback == 0 {
		lookback = DefaultLookback
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	pacer := opts.Pacer
	if pacer == nil {
		pacer = NewPacer(PacerOptions{})
	}

	return &Runner{
		source:    opts.Source,
		key:       opts.Key,
		lookback:  lookback,
		watermark: NewWatermarkResolver(opts.Store, opts.Backend, logger),
		pacer:     pacer,
		writer: NewBatchWriter(opts.Store, BatchWriterOptions{
			BatchSize: opts.BatchSize,
			Policy:    opts.Policy,
			Backend:   opts.Backend,
			Logger:    logger,
		}),
		now:    time.Now,
		logger: logger,
	}
}

// Run repeats RunCycle until ctx is cancelled or a cycle fails.
// Cancellation returns nil; any other cycle error is returned.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.WithFields(r.fields()).WithField("lookback", r.lookback).Info("starting candle sync")

	for {
		if ctx.Err() != nil {
			r.logger.Info("candle sync stopped")
			return nil
		}

		start := time.Now()
		_, err := r.RunCycle(ctx)
		switch {
		case err == nil:
			observability.RecordCycle("ok", time.Since(start).Seconds())
			observability.RecordCycleSuccess(float64(r.now().Unix()))
		case ctx.Err() != nil:
			r.logger.Info("candle sync stopped")
			return nil
		default:
			observability.RecordCycle("failed", time.Since(start).Seconds())
			return err
		}
	}
}

// RunCycle fetches, paces, trims to rows newer than the watermark and writes.
func (r *Runner) RunCycle(ctx context.Context) (CycleResult, error) {
	res := CycleResult{ID: uuid.NewString()}
	log := r.logger.WithFields(r.fields()).WithField("cycle", res.ID)

	fetchStart := time.Now()
	table, err := r.source.PairCandles(ctx, r.key.Asset, r.key.Granularity, r.lookback)
	observability.RecordUpstreamCall("pair_candles", time.Since(fetchStart).Seconds(), err)
	if err != nil {
		return res, fmt.Errorf("fetch candles: %w", err)
	}
	res.Fetched = table.Len()

	res.Interval, err = table.Interval()
	if err != nil {
		return res, fmt.Errorf("cycle %s: %w", res.ID, err)
	}

	res.Watermark, res.HasWatermark = r.watermark.Resolve(ctx, r.key)
	last, _ := table.Last()
	log.WithFields(logrus.Fields{
		"last_upstream": last,
		"watermark":     res.Watermark,
		"has_watermark": res.HasWatermark,
		"interval":      res.Interval,
	}).Info("cycle started")

	res.Waited, err = r.pacer.Wait(ctx, res.Watermark, res.HasWatermark, res.Interval)
	if err != nil {
		return res, err
	}
	observability.RecordPacingWait(res.Waited.Seconds())

	pending := table
	if res.HasWatermark {
		pending = table.After(res.Watermark)
	}
	res.Pending = pending.Len()
	observability.RecordCandles(res.Fetched, res.Fetched-res.Pending)

	if res.Pending == 0 {
		log.Info("no new candles, waiting for next cycle")
		return res, nil
	}

	res.Write = r.writer.Write(ctx, pending, r.key)
	log.WithFields(logrus.Fields{
		"rows":           res.Pending,
		"records":        res.Write.Records,
		"batches":        res.Write.Batches,
		"failed_batches": res.Write.FailedBatches,
		"written":        res.Write.Written,
	}).Info("cycle finished")

	return res, nil
}

func (r *Runner) fields() logrus.Fields {
	return logrus.Fields{
		"asset":       r.key.Asset,
		"exchange":    r.key.Exchange,
		"granularity": r.key.Granularity,
	}
}
