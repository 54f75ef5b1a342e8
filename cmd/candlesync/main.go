package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"candle-sync/internal/config"
	"candle-sync/internal/domain"
	"candle-sync/internal/freqtrade"
	"candle-sync/internal/ingestion"
	"candle-sync/internal/logging"
	"candle-sync/internal/normalization"
	"candle-sync/internal/observability"
	"candle-sync/internal/storage/backend"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	startMetricsServer(cfg.Metrics.Addr, logger)

	ctx, cancel := context.WithCancel(context.Background())

	// Handle shutdown signals with graceful timeout
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.WithField("signal", sig.String()).Info("initiating graceful shutdown")
		cancel()

		select {
		case sig := <-sigCh:
			logger.WithField("signal", sig.String()).Warn("second signal, forcing immediate shutdown")
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Warn("graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	err = run(ctx, cfg, logger)
	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Fatal("candle sync failed")
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	client := freqtrade.NewClient(cfg.Freqtrade.URL,
		freqtrade.WithBasicAuth(cfg.Freqtrade.Username, cfg.Freqtrade.Password),
		freqtrade.WithTimeout(cfg.Freqtrade.Timeout),
		freqtrade.WithMaxRetries(cfg.Freqtrade.MaxRetries),
		freqtrade.WithRateLimit(cfg.Freqtrade.RateLimit),
		freqtrade.WithLogger(logrus.NewEntry(logger)),
	)

	start := time.Now()
	err := client.Ping(ctx)
	observability.RecordUpstreamCall("ping", time.Since(start).Seconds(), err)
	if err != nil {
		return err
	}
	logger.WithField("url", cfg.Freqtrade.URL).Info("freqtrade api reachable")

	timeframe := cfg.Sync.Timeframe
	if timeframe == "" {
		start = time.Now()
		timeframe, err = client.StrategyTimeframe(ctx, cfg.Freqtrade.Strategy)
		observability.RecordUpstreamCall("strategy", time.Since(start).Seconds(), err)
		if err != nil {
			return err
		}
	}

	store, err := backend.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Store.EnsureTable {
		if err := store.Admin.EnsureTable(ctx); err != nil {
			return fmt.Errorf("ensure table: %w", err)
		}
		logger.WithField("backend", store.Name).Info("measurement table ready")
	}

	runner := ingestion.NewRunner(ingestion.RunnerOptions{
		Source: client,
		Store:  store.Store,
		Key: domain.SyncKey{
			Asset:       cfg.Sync.Pair,
			Exchange:    cfg.Sync.Exchange,
			Granularity: timeframe,
		},
		Lookback:  cfg.Sync.Lookback,
		BatchSize: cfg.Sync.BatchSize,
		Policy:    normalization.Policy{ZeroAsMissing: cfg.Sync.ZeroAsMissing},
		Pacer: ingestion.NewPacer(ingestion.PacerOptions{
			SettleDelay: cfg.Sync.SettleDelay,
			MinWait:     cfg.Sync.MinWait,
		}),
		Backend: store.Name,
		Logger:  logger,
	})

	return runner.Run(ctx)
}

func startMetricsServer(addr string, logger *logrus.Logger) {
	if addr == "" {
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		logger.WithField("addr", addr).Info("starting metrics server")
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("metrics server error")
		}
	}()
}
