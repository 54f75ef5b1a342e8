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
	"candle-sync/internal/domain"
	"candle-sync/internal/freqtrade"
	"candle-sync/internal/logging"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config")
	limit := flag.Int("limit", 10, "Number of candles to fetch")
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *limit); err != nil {
		logger.WithError(err).Fatal("probe failed")
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger, limit int) error {
	client := freqtrade.NewClient(cfg.Freqtrade.URL,
		freqtrade.WithBasicAuth(cfg.Freqtrade.Username, cfg.Freqtrade.Password),
		freqtrade.WithTimeout(cfg.Freqtrade.Timeout),
		freqtrade.WithMaxRetries(cfg.Freqtrade.MaxRetries),
		freqtrade.WithLogger(logrus.NewEntry(logger)),
	)

	if err := client.Ping(ctx); err != nil {
		return err
	}
	logger.Info("pong")

	timeframe := cfg.Sync.Timeframe
	if timeframe == "" {
		var err error
		if timeframe, err = client.StrategyTimeframe(ctx, cfg.Freqtrade.Strategy); err != nil {
			return err
		}
	}
	logger.WithFields(logrus.Fields{
		"strategy":  cfg.Freqtrade.Strategy,
		"timeframe": timeframe,
	}).Info("strategy timeframe")

	table, err := client.PairCandles(ctx, cfg.Sync.Pair, timeframe, limit)
	if err != nil {
		return err
	}

	log := logger.WithFields(logrus.Fields{
		"pair":    cfg.Sync.Pair,
		"rows":    table.Len(),
		"columns": table.Columns,
	})
	if interval, err := table.Interval(); err == nil {
		log = log.WithField("interval", interval)
	}
	log.Info("candles fetched")

	if table.Len() > 0 {
		logRow(logger, "first", table.Columns, table.Rows[0])
		logRow(logger, "last", table.Columns, table.Rows[table.Len()-1])
	}
	return nil
}

func logRow(logger *logrus.Logger, label string, columns []string, row domain.CandleRow) {
	fields := logrus.Fields{"date": row.Time}
	for i, col := range columns {
		if i < len(row.Values) {
			fields[col] = row.Values[i]
		}
	}
	logger.WithFields(fields).Info(label + " candle")
}
