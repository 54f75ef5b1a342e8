package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"candle-sync/internal/domain"
	"candle-sync/internal/storage"
)

var testKey = domain.SyncKey{Asset: "BTC/USDT", Exchange: "Binance", Granularity: "1m"}

func record(key domain.SyncKey, name, value string, typ domain.ValueType, timeMs int64) domain.Measurement {
	return domain.Measurement{
		Dimensions: key.Dimensions(),
		Name:       name,
		Value:      value,
		Type:       typ,
		TimeMs:     timeMs,
	}
}

func TestMeasurementStore_WriteAndGetByKey(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMeasurementStore(pool)
	ctx := context.Background()

	require.NoError(t, store.WriteRecords(ctx, nil))

	records := []domain.Measurement{
		record(testKey, "close", "50000.5", domain.ValueTypeNumeric, 1704067260000),
		record(testKey, "order_error", "None", domain.ValueTypeText, 1704067260000),
		record(testKey, "close", "49999", domain.ValueTypeNumeric, 1704067200000),
	}
	require.NoError(t, store.WriteRecords(ctx, records))

	got, err := store.GetByKey(ctx, testKey)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, int64(1704067200000), got[0].TimeMs)
	assert.Equal(t, "49999", got[0].Value)
	assert.Equal(t, "close", got[1].Name)
	assert.Equal(t, "order_error", got[2].Name)
	assert.Equal(t, domain.ValueTypeText, got[2].Type)
	assert.Equal(t, testKey, got[2].Key())
}

func TestMeasurementStore_LastTimestamp(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMeasurementStore(pool)
	ctx := context.Background()

	_, err := store.LastTimestamp(ctx, testKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	other := domain.SyncKey{Asset: "BTC/USDT", Exchange: "Kraken", Granularity: "1m"}
	require.NoError(t, store.WriteRecords(ctx, []domain.Measurement{
		record(testKey, "close", "1", domain.ValueTypeNumeric, 1704067200000),
		record(testKey, "close", "2", domain.ValueTypeNumeric, 1704067320000),
		record(other, "close", "3", domain.ValueTypeNumeric, 1704069999000),
	}))

	last, err := store.LastTimestamp(ctx, testKey)
	require.NoError(t, err)
	assert.True(t, last.Equal(time.UnixMilli(1704067320000)), "got %v", last)
	assert.Equal(t, time.UTC, last.Location())
}

func TestMeasurementStore_WriteRecords_TooLarge(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewMeasurementStore(pool)

	records := make([]domain.Measurement, storage.MaxBatchSize+1)
	for i := range records {
		records[i] = record(testKey, "close", "1", domain.ValueTypeNumeric, int64(i))
	}

	err := store.WriteRecords(context.Background(), records)
	assert.ErrorIs(t, err, storage.ErrBatchTooLarge)
}
