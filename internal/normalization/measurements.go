package normalization

import (
	"candle-sync/internal/domain"
)

// RowMeasurements converts one candle row into one measurement per column.
// Values beyond the row's length are treated as missing.
func (p Policy) RowMeasurements(columns []string, row domain.CandleRow, key domain.SyncKey) []domain.Measurement {
	dims := key.Dimensions()
	timeMs := row.Time.UnixMilli()

	out := make([]domain.Measurement, 0, len(columns))
	for i, col := range columns {
		var v any
		if i < len(row.Values) {
			v = row.Values[i]
		}
		value, typ := p.Infer(v)
		out = append(out, domain.Measurement{
			Dimensions: dims,
			Name:       col,
			Value:      value,
			Type:       typ,
			TimeMs:     timeMs,
		})
	}
	return out
}

// TableMeasurements converts every row of the table, in row order.
func (p Policy) TableMeasurements(table *domain.CandleTable, key domain.SyncKey) []domain.Measurement {
	if table.Len() == 0 {
		return nil
	}
	out := make([]domain.Measurement, 0, table.Len()*len(table.Columns))
	for _, row := range table.Rows {
		out = append(out, p.RowMeasurements(table.Columns, row, key)...)
	}
	return out
}
