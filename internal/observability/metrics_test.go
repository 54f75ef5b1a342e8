package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	switch {
	case out.Counter != nil:
		return out.Counter.GetValue()
	case out.Gauge != nil:
		return out.Gauge.GetValue()
	}
	t.Fatalf("unsupported metric type")
	return 0
}

func TestRecordBatch(t *testing.T) {
	okBefore := value(t, DefaultMetrics.BatchesTotal.WithLabelValues("ok"))
	failedBefore := value(t, DefaultMetrics.BatchesTotal.WithLabelValues("failed"))
	writtenBefore := value(t, DefaultMetrics.RecordsWritten)
	droppedBefore := value(t, DefaultMetrics.RecordsDropped)

	RecordBatch(100, nil)
	RecordBatch(40, errors.New("throttled"))

	assert.Equal(t, okBefore+1, value(t, DefaultMetrics.BatchesTotal.WithLabelValues("ok")))
	assert.Equal(t, failedBefore+1, value(t, DefaultMetrics.BatchesTotal.WithLabelValues("failed")))
	assert.Equal(t, writtenBefore+100, value(t, DefaultMetrics.RecordsWritten))
	assert.Equal(t, droppedBefore+40, value(t, DefaultMetrics.RecordsDropped))
}

func TestUpdateWatermark(t *testing.T) {
	UpdateWatermark("BTC/USDT", "binance", "5m", 1700000000)
	assert.Equal(t, float64(1700000000),
		value(t, DefaultMetrics.LastWatermark.WithLabelValues("BTC/USDT", "binance", "5m")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordCycle("ok", 1.5)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "candle_sync_sync_cycles_total"))
}
