package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"candle-sync/internal/domain"
)

var testKey = domain.SyncKey{Asset: "BTC/USDT", Exchange: "binance", Granularity: "1m"}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// makeTable builds n rows spaced step apart ending at last, with the given columns.
func makeTable(last time.Time, step time.Duration, n int, columns ...string) *domain.CandleTable {
	t := &domain.CandleTable{Columns: columns}
	for i := n - 1; i >= 0; i-- {
		values := make([]any, len(columns))
		for c := range columns {
			values[c] = float64(100*(n-i) + c + 1)
		}
		t.Rows = append(t.Rows, domain.CandleRow{Time: last.Add(-time.Duration(i) * step), Values: values})
	}
	return t
}

// stubSource returns a fixed table or error.
type stubSource struct {
	mu    sync.Mutex
	table *domain.CandleTable
	err   error
	calls []string
}

func (s *stubSource) PairCandles(_ context.Context, pair, timeframe string, limit int) (*domain.CandleTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, fmt.Sprintf("%s|%s|%d", pair, timeframe, limit))
	return s.table, s.err
}

// recordingWriter records batches and fails the calls listed in failOn (1-based).
type recordingWriter struct {
	batches [][]domain.Measurement
	failOn  map[int]bool
}

func (w *recordingWriter) WriteRecords(_ context.Context, records []domain.Measurement) error {
	w.batches = append(w.batches, records)
	if w.failOn[len(w.batches)] {
		return errors.New("throttled")
	}
	return nil
}

// noSleep records requested sleeps without blocking.
type noSleep struct {
	slept []time.Duration
}

func (n *noSleep) Sleep(ctx context.Context, d time.Duration) error {
	n.slept = append(n.slept, d)
	return ctx.Err()
}
