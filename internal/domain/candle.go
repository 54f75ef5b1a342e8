package domain

import (
	"errors"
	"time"
)

var (
	// ErrInsufficientCandles is returned when fewer than two candles are available
	// and the candle interval cannot be derived.
	ErrInsufficientCandles = errors.New("insufficient candles: need at least 2 rows")

	// ErrMissingTimeColumn is returned when an upstream table has no timestamp column.
	ErrMissingTimeColumn = errors.New("candle table has no date column")
)

// CandleRow is a single candle keyed by its open time.
type CandleRow struct {
	Time   time.Time // candle timestamp (UTC)
	Values []any     // aligned with CandleTable.Columns
}

// CandleTable is an ordered window of candles as returned by the upstream bot.
// Columns holds the value columns only; the timestamp column is the row key.
type CandleTable struct {
	Columns []string
	Rows    []CandleRow
}

// Len returns the number of rows.
func (t *CandleTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Last returns the timestamp of the most recent row.
func (t *CandleTable) Last() (time.Time, bool) {
	if t.Len() == 0 {
		return time.Time{}, false
	}
	return t.Rows[len(t.Rows)-1].Time, true
}

// Interval returns the spacing between the two most recent rows.
func (t *CandleTable) Interval() (time.Duration, error) {
	if t.Len() < 2 {
		return 0, ErrInsufficientCandles
	}
	n := len(t.Rows)
	return t.Rows[n-1].Time.Sub(t.Rows[n-2].Time), nil
}

// After returns a table holding only the rows strictly newer than ts.
// Rows share their Values slices with the receiver.
func (t *CandleTable) After(ts time.Time) *CandleTable {
	out := &CandleTable{Columns: t.Columns}
	for _, row := range t.Rows {
		if row.Time.After(ts) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}
