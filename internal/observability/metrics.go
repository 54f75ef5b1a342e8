// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Sync loop metrics
	CyclesTotal     *prometheus.CounterVec
	CycleDuration   prometheus.Histogram
	CandlesFetched  prometheus.Counter
	CandlesSkipped  prometheus.Counter
	PacingWait      prometheus.Histogram
	RecordsWritten  prometheus.Counter
	RecordsDropped  prometheus.Counter
	BatchesTotal    *prometheus.CounterVec
	WatermarkErrors prometheus.Counter

	// Upstream metrics
	UpstreamLatency *prometheus.HistogramVec
	UpstreamErrors  *prometheus.CounterVec

	// Store metrics
	StoreOpDuration *prometheus.HistogramVec
	StoreOpErrors   *prometheus.CounterVec

	// Health metrics
	LastWatermark       *prometheus.GaugeVec
	LastSuccessfulCycle prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "candle_sync"
	}

	return &Metrics{
		CyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "cycles_total",
			Help:      "Total number of sync cycles by outcome",
		}, []string{"status"}),
		CycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "cycle_duration_seconds",
			Help:      "Sync cycle duration in seconds, pacing included",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 900},
		}),
		CandlesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "candles_fetched_total",
			Help:      "Total number of candle rows fetched upstream",
		}),
		CandlesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "candles_skipped_total",
			Help:      "Total number of fetched candle rows at or before the watermark",
		}),
		PacingWait: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "pacing_wait_seconds",
			Help:      "Time slept by the pacer before writing",
			Buckets:   []float64{0, 1, 5, 10, 30, 60, 120, 300, 600, 1800},
		}),
		RecordsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "records_written_total",
			Help:      "Total number of measurement records accepted by the store",
		}),
		RecordsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "records_dropped_total",
			Help:      "Total number of measurement records in failed batches",
		}),
		BatchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "batches_total",
			Help:      "Total number of batch flushes by status",
		}, []string{"status"}),
		WatermarkErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sync",
			Name:      "watermark_errors_total",
			Help:      "Total number of failed watermark queries",
		}),

		UpstreamLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "freqtrade",
			Name:      "request_latency_seconds",
			Help:      "freqtrade API call latency in seconds, retries included",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		UpstreamErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "freqtrade",
			Name:      "request_errors_total",
			Help:      "Total number of failed freqtrade API calls",
		}, []string{"method"}),

		StoreOpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Store operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "operation"}),
		StoreOpErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_errors_total",
			Help:      "Total number of store operation errors",
		}, []string{"backend", "operation"}),

		LastWatermark: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_watermark_timestamp",
			Help:      "Unix timestamp of the newest stored candle per series",
		}, []string{"asset", "exchange", "granularity"}),
		LastSuccessfulCycle: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_cycle_timestamp",
			Help:      "Unix timestamp of last successful sync cycle",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordCycle records a finished sync cycle.
func RecordCycle(status string, durationSeconds float64) {
	DefaultMetrics.CyclesTotal.WithLabelValues(status).Inc()
	DefaultMetrics.CycleDuration.Observe(durationSeconds)
}

// RecordCycleSuccess stamps the last successful cycle time.
func RecordCycleSuccess(unixSeconds float64) {
	DefaultMetrics.LastSuccessfulCycle.Set(unixSeconds)
}

// RecordCandles records fetched and skipped candle counts.
func RecordCandles(fetched, skipped int) {
	DefaultMetrics.CandlesFetched.Add(float64(fetched))
	DefaultMetrics.CandlesSkipped.Add(float64(skipped))
}

// RecordPacingWait records time slept by the pacer.
func RecordPacingWait(seconds float64) {
	DefaultMetrics.PacingWait.Observe(seconds)
}

// RecordBatch records one batch flush.
func RecordBatch(records int, err error) {
	if err != nil {
		DefaultMetrics.BatchesTotal.WithLabelValues("failed").Inc()
		DefaultMetrics.RecordsDropped.Add(float64(records))
		return
	}
	DefaultMetrics.BatchesTotal.WithLabelValues("ok").Inc()
	DefaultMetrics.RecordsWritten.Add(float64(records))
}

// RecordWatermarkError increments the failed watermark query counter.
func RecordWatermarkError() {
	DefaultMetrics.WatermarkErrors.Inc()
}

// UpdateWatermark sets the newest stored candle time for a series.
func UpdateWatermark(asset, exchange, granularity string, unixSeconds float64) {
	DefaultMetrics.LastWatermark.WithLabelValues(asset, exchange, granularity).Set(unixSeconds)
}

// RecordUpstreamCall records freqtrade API call metrics.
func RecordUpstreamCall(method string, seconds float64, err error) {
	DefaultMetrics.UpstreamLatency.WithLabelValues(method).Observe(seconds)
	if err != nil {
		DefaultMetrics.UpstreamErrors.WithLabelValues(method).Inc()
	}
}

// RecordStoreOp records store operation metrics.
func RecordStoreOp(backend, operation string, seconds float64, err error) {
	DefaultMetrics.StoreOpDuration.WithLabelValues(backend, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.StoreOpErrors.WithLabelValues(backend, operation).Inc()
	}
}
