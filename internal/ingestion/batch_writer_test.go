package ingestion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candle-sync/internal/domain"
	"candle-sync/internal/normalization"
)

var t0 = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func TestBatchWriter_FlushCount(t *testing.T) {
	tests := []struct {
		name        string
		rows, cols  int
		wantBatches []int
	}{
		{"single partial batch", 2, 7, []int{14}},
		{"exact multiple", 10, 10, []int{100}},
		{"remainder last", 30, 7, []int{100, 100, 10}},
		{"one record over", 101, 1, []int{100, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := make([]string, tt.cols)
			for i := range cols {
				cols[i] = string(rune('a' + i))
			}
			w := &recordingWriter{}
			bw := NewBatchWriter(w, BatchWriterOptions{Logger: quietLogger()})

			res := bw.Write(context.Background(), makeTable(t0, time.Minute, tt.rows, cols...), testKey)

			sizes := make([]int, len(w.batches))
			for i, b := range w.batches {
				sizes[i] = len(b)
			}
			assert.Equal(t, tt.wantBatches, sizes)
			assert.Equal(t, tt.rows*tt.cols, res.Records)
			assert.Equal(t, len(tt.wantBatches), res.Batches)
			assert.Equal(t, tt.rows*tt.cols, res.Written)
			assert.Zero(t, res.FailedBatches)
		})
	}
}

func TestBatchWriter_RecordShape(t *testing.T) {
	table := &domain.CandleTable{
		Columns: []string{"close", "volume", "enter_tag", "missing"},
		Rows: []domain.CandleRow{
			{Time: t0, Values: []any{42000.5, 0.0, "breakout", nil}},
		},
	}
	w := &recordingWriter{}
	NewBatchWriter(w, BatchWriterOptions{Logger: quietLogger()}).Write(context.Background(), table, testKey)

	require.Len(t, w.batches, 1)
	got := w.batches[0]
	require.Len(t, got, 4)

	for _, m := range got {
		assert.Equal(t, testKey.Dimensions(), m.Dimensions)
		assert.Equal(t, t0.UnixMilli(), m.TimeMs)
	}
	assert.Equal(t, domain.Measurement{Dimensions: testKey.Dimensions(), Name: "close", Value: "42000.5", Type: domain.ValueTypeNumeric, TimeMs: t0.UnixMilli()}, got[0])
	assert.Equal(t, "0", got[1].Value)
	assert.Equal(t, domain.ValueTypeNumeric, got[1].Type)
	assert.Equal(t, "breakout", got[2].Value)
	assert.Equal(t, domain.ValueTypeText, got[2].Type)
	assert.Equal(t, domain.NoneValue, got[3].Value)
}

func TestBatchWriter_ZeroAsMissingPolicy(t *testing.T) {
	table := &domain.CandleTable{
		Columns: []string{"volume"},
		Rows:    []domain.CandleRow{{Time: t0, Values: []any{0.0}}},
	}
	w := &recordingWriter{}
	NewBatchWriter(w, BatchWriterOptions{
		Policy: normalization.Policy{ZeroAsMissing: true},
		Logger: quietLogger(),
	}).Write(context.Background(), table, testKey)

	require.Len(t, w.batches, 1)
	assert.Equal(t, domain.NoneValue, w.batches[0][0].Value)
	assert.Equal(t, domain.ValueTypeText, w.batches[0][0].Type)
}

func TestBatchWriter_FailedBatchDoesNotStopLaterBatches(t *testing.T) {
	w := &recordingWriter{failOn: map[int]bool{1: true}}
	bw := NewBatchWriter(w, BatchWriterOptions{Logger: quietLogger()})

	res := bw.Write(context.Background(), makeTable(t0, time.Minute, 15, "a", "b", "c", "d", "e", "f", "g", "h", "i", "j"), testKey)

	require.Len(t, w.batches, 2)
	assert.Equal(t, WriteResult{Records: 150, Batches: 2, FailedBatches: 1, Written: 50}, res)
}

func TestBatchWriter_BatchesDoNotAlias(t *testing.T) {
	w := &recordingWriter{}
	bw := NewBatchWriter(w, BatchWriterOptions{BatchSize: 2, Logger: quietLogger()})

	bw.Write(context.Background(), makeTable(t0, time.Minute, 2, "a", "b"), testKey)

	require.Len(t, w.batches, 2)
	assert.Equal(t, t0.Add(-time.Minute).UnixMilli(), w.batches[0][0].TimeMs)
	assert.Equal(t, t0.UnixMilli(), w.batches[1][0].TimeMs)
}

func TestBatchWriter_EmptyTable(t *testing.T) {
	w := &recordingWriter{}
	res := NewBatchWriter(w, BatchWriterOptions{Logger: quietLogger()}).Write(context.Background(), nil, testKey)
	assert.Equal(t, WriteResult{}, res)
	assert.Empty(t, w.batches)
}

func TestNewBatchWriter_ClampsBatchSize(t *testing.T) {
	assert.Equal(t, 100, NewBatchWriter(&recordingWriter{}, BatchWriterOptions{BatchSize: 500}).batchSize)
	assert.Equal(t, 100, NewBatchWriter(&recordingWriter{}, BatchWriterOptions{}).batchSize)
	assert.Equal(t, 25, NewBatchWriter(&recordingWriter{}, BatchWriterOptions{BatchSize: 25}).batchSize)
}
