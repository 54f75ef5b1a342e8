// Package seed generates synthetic minute candles for exercising a store.
package seed

import (
	"math/rand/v2"
	"time"

	"candle-sync/internal/domain"
)

// Defaults for Generate.
const (
	DefaultRows     = 2 * 7 * 24 * 60 // two weeks of minutes
	DefaultSeed     = 42
	ShortWindow     = 60
	LongWindow      = 720
	Interval        = time.Minute
	GranularityName = "1m"
)

// Columns are the generated value columns, in row order.
var Columns = []string{"close", "pfma", "12h_close_mean", "desired_op_pct", "order_error"}

var orderErrors = []string{"Error A", "Error B", "No error"}

// Key is the series synthetic data is written under.
var Key = domain.SyncKey{Asset: "BTC/USDT", Exchange: "Binance", Granularity: GranularityName}

// Options configures Generate. Zero values take the defaults.
type Options struct {
	Start time.Time // default 2024-01-01T00:00:00Z
	Rows  int       // minutes generated before dropping incomplete windows
	Seed  uint64
}

// Generate returns minute candles with random closes in [50000, 100000) and
// their 60 and 720 row rolling means. Rows before the long window fills are
// dropped, so the table holds Rows-LongWindow+1 rows.
func Generate(opts Options) *domain.CandleTable {
	if opts.Start.IsZero() {
		opts.Start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if opts.Rows == 0 {
		opts.Rows = DefaultRows
	}
	if opts.Seed == 0 {
		opts.Seed = DefaultSeed
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	closes := make([]float64, opts.Rows)
	for i := range closes {
		closes[i] = 50000 + rng.Float64()*50000
	}

	table := &domain.CandleTable{Columns: Columns}
	if opts.Rows < LongWindow {
		return table
	}
	table.Rows = make([]domain.CandleRow, 0, opts.Rows-LongWindow+1)

	var shortSum, longSum float64
	for i, c := range closes {
		shortSum += c
		longSum += c
		if i >= ShortWindow {
			shortSum -= closes[i-ShortWindow]
		}
		if i >= LongWindow {
			longSum -= closes[i-LongWindow]
		}

		// Draw per row regardless of drop so output depends only on the seed.
		pct := rng.Float64()
		label := orderErrors[rng.IntN(len(orderErrors))]

		if i < LongWindow-1 {
			continue
		}
		table.Rows = append(table.Rows, domain.CandleRow{
			Time: opts.Start.Add(time.Duration(i) * Interval),
			Values: []any{
				c,
				shortSum / ShortWindow,
				longSum / LongWindow,
				pct,
				label,
			},
		})
	}

	return table
}
