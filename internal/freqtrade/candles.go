package freqtrade

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"candle-sync/internal/domain"
)

// DateColumn is the column carrying each row's candle open time.
const DateColumn = "date"

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// pairCandlesResponse is the subset of /pair_candles used here.
type pairCandlesResponse struct {
	Pair      string   `json:"pair"`
	Timeframe string   `json:"timeframe"`
	Columns   []string `json:"columns"`
	Data      [][]any  `json:"data"`
}

// PairCandles fetches the most recent limit candles for pair at timeframe.
// Rows keep upstream order; the date column becomes CandleRow.Time and is
// removed from the value columns.
func (c *Client) PairCandles(ctx context.Context, pair, timeframe string, limit int) (*domain.CandleTable, error) {
	q := url.Values{}
	q.Set("pair", pair)
	q.Set("timeframe", timeframe)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	var resp pairCandlesResponse
	if err := c.get(ctx, "/pair_candles", q, &resp); err != nil {
		return nil, fmt.Errorf("pair candles %s %s: %w", pair, timeframe, err)
	}

	table, err := toCandleTable(resp.Columns, resp.Data)
	if err != nil {
		return nil, fmt.Errorf("pair candles %s %s: %w", pair, timeframe, err)
	}
	return table, nil
}

func toCandleTable(columns []string, data [][]any) (*domain.CandleTable, error) {
	dateIdx := -1
	for i, col := range columns {
		if col == DateColumn {
			dateIdx = i
			break
		}
	}
	if dateIdx < 0 {
		return nil, domain.ErrMissingTimeColumn
	}

	table := &domain.CandleTable{
		Columns: make([]string, 0, len(columns)-1),
		Rows:    make([]domain.CandleRow, 0, len(data)),
	}
	for i, col := range columns {
		if i != dateIdx {
			table.Columns = append(table.Columns, col)
		}
	}

	for n, raw := range data {
		if dateIdx >= len(raw) {
			return nil, fmt.Errorf("row %d: missing %s", n, DateColumn)
		}
		ts, err := parseDate(raw[dateIdx])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n, err)
		}

		values := make([]any, 0, len(table.Columns))
		for i, v := range raw {
			if i != dateIdx {
				values = append(values, v)
			}
		}
		table.Rows = append(table.Rows, domain.CandleRow{Time: ts, Values: values})
	}

	return table, nil
}

// parseDate accepts a timestamp string in the layouts freqtrade emits, or epoch milliseconds.
func parseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case string:
		for _, layout := range dateLayouts {
			if ts, err := time.Parse(layout, d); err == nil {
				return ts.UTC(), nil
			}
		}
		if ms, err := strconv.ParseInt(d, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), nil
		}
		return time.Time{}, fmt.Errorf("unparseable %s %q", DateColumn, d)
	case json.Number:
		ms, err := d.Int64()
		if err != nil {
			f, ferr := d.Float64()
			if ferr != nil {
				return time.Time{}, fmt.Errorf("unparseable %s %q", DateColumn, d.String())
			}
			ms = int64(f)
		}
		return time.UnixMilli(ms).UTC(), nil
	case float64:
		return time.UnixMilli(int64(d)).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported %s type %T", DateColumn, v)
	}
}
