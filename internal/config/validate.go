package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Freqtrade.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("freqtrade.url must be an absolute URL, got %q", c.Freqtrade.URL)
	}
	if c.Freqtrade.Strategy == "" && c.Sync.Timeframe == "" {
		return errors.New("freqtrade.strategy is required unless sync.timeframe is set")
	}
	if c.Freqtrade.MaxRetries < 0 {
		return errors.New("freqtrade.max_retries must be >= 0")
	}
	if c.Freqtrade.RateLimit < 0 {
		return errors.New("freqtrade.rate_limit must be >= 0")
	}

	if c.Sync.Pair == "" {
		return errors.New("sync.pair is required")
	}
	if c.Sync.Exchange == "" {
		return errors.New("sync.exchange is required")
	}
	if c.Sync.Lookback < 2 {
		return fmt.Errorf("sync.lookback must be >= 2, got %d", c.Sync.Lookback)
	}
	if c.Sync.BatchSize < 1 || c.Sync.BatchSize > DefaultBatchSize {
		return fmt.Errorf("sync.batch_size must be between 1 and %d, got %d", DefaultBatchSize, c.Sync.BatchSize)
	}
	if c.Sync.SettleDelay < 0 || c.Sync.MinWait < 0 {
		return errors.New("sync.settle_delay and sync.min_wait must be >= 0")
	}

	if err := c.Store.validate(); err != nil {
		return err
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}

func (s *StoreConfig) validate() error {
	switch s.Backend {
	case BackendTimestream:
		if s.Timestream.Database == "" {
			return errors.New("store.timestream.database is required")
		}
		if s.Timestream.Table == "" {
			return errors.New("store.timestream.table is required")
		}
		if s.Timestream.MemoryRetentionHours < 1 || s.Timestream.MagneticRetentionDays < 1 {
			return errors.New("store.timestream retention periods must be >= 1")
		}
	case BackendClickhouse:
		if s.Clickhouse.DSN == "" {
			return errors.New("store.clickhouse.dsn is required")
		}
	case BackendPostgres:
		if s.Postgres.DSN == "" {
			return errors.New("store.postgres.dsn is required")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("store.backend must be one of timestream, clickhouse, postgres, memory, got %q", s.Backend)
	}
	return nil
}
