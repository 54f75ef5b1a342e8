package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"candle-sync/internal/config"
	"candle-sync/internal/ingestion"
	"candle-sync/internal/logging"
	"candle-sync/internal/seed"
	"candle-sync/internal/storage/backend"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config")
	drop := flag.Bool("drop", false, "Drop the measurement table before creating it")
	withSeed := flag.Bool("seed", false, "Write synthetic minute candles after provisioning")
	seedRows := flag.Int("seed-rows", seed.DefaultRows, "Minutes of synthetic data to generate")
	flag.Parse()

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	// Provisioning needs only the store section.
	if cfg.Sync.Pair == "" {
		cfg.Sync.Pair, cfg.Sync.Exchange = seed.Key.Asset, seed.Key.Exchange
	}
	if cfg.Freqtrade.Strategy == "" && cfg.Sync.Timeframe == "" {
		cfg.Sync.Timeframe = seed.GranularityName
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *drop, *withSeed, *seedRows); err != nil {
		logger.WithError(err).Fatal("provisioning failed")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger, drop, withSeed bool, seedRows int) error {
	cfg.Store.EnsureTable = true
	store, err := backend.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	log := logger.WithField("backend", store.Name)

	if drop {
		if err := store.Admin.DropTable(ctx); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
		log.Info("measurement table dropped")
	}

	if err := store.Admin.EnsureTable(ctx); err != nil {
		return fmt.Errorf("ensure table: %w", err)
	}
	log.Info("measurement table ready")

	if !withSeed {
		return nil
	}

	table := seed.Generate(seed.Options{Rows: seedRows})
	writer := ingestion.NewBatchWriter(store.Store, ingestion.BatchWriterOptions{
		BatchSize: cfg.Sync.BatchSize,
		Backend:   store.Name,
		Logger:    logger,
	})
	res := writer.Write(ctx, table, seed.Key)

	log.WithFields(logrus.Fields{
		"rows":           table.Len(),
		"records":        res.Records,
		"batches":        res.Batches,
		"failed_batches": res.FailedBatches,
		"written":        res.Written,
	}).Info("synthetic candles written")

	if res.FailedBatches > 0 {
		return fmt.Errorf("%d of %d batches failed", res.FailedBatches, res.Batches)
	}
	return nil
}
