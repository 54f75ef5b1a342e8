package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultFreqtradeURL          = "http://127.0.0.1:8080"
	DefaultTimeout               = 30 * time.Second
	DefaultMaxRetries            = 3
	DefaultRateLimit             = 5
	DefaultLookback              = 10
	DefaultBatchSize             = 100
	DefaultSettleDelay           = 5 * time.Second
	DefaultMinWait               = 1 * time.Second
	DefaultBackend               = BackendTimestream
	DefaultRegion                = "eu-west-1"
	DefaultMemoryRetentionHours  = 48
	DefaultMagneticRetentionDays = 730
	DefaultLogLevel              = "info"
	DefaultLogFormat             = "text"
	DefaultMetricsAddr           = ":9090"
)

func (c *Config) applyDefaults() {
	// Freqtrade defaults
	if c.Freqtrade.URL == "" {
		c.Freqtrade.URL = DefaultFreqtradeURL
	}
	if c.Freqtrade.Timeout == 0 {
		c.Freqtrade.Timeout = DefaultTimeout
	}
	if c.Freqtrade.MaxRetries == 0 {
		c.Freqtrade.MaxRetries = DefaultMaxRetries
	}
	if c.Freqtrade.RateLimit == 0 {
		c.Freqtrade.RateLimit = DefaultRateLimit
	}

	// Sync defaults
	if c.Sync.Lookback == 0 {
		c.Sync.Lookback = DefaultLookback
	}
	if c.Sync.BatchSize == 0 {
		c.Sync.BatchSize = DefaultBatchSize
	}
	if c.Sync.SettleDelay == 0 {
		c.Sync.SettleDelay = DefaultSettleDelay
	}
	if c.Sync.MinWait == 0 {
		c.Sync.MinWait = DefaultMinWait
	}

	// Store defaults
	if c.Store.Backend == "" {
		c.Store.Backend = DefaultBackend
	}
	if c.Store.Timestream.Region == "" {
		c.Store.Timestream.Region = DefaultRegion
	}
	if c.Store.Timestream.MemoryRetentionHours == 0 {
		c.Store.Timestream.MemoryRetentionHours = DefaultMemoryRetentionHours
	}
	if c.Store.Timestream.MagneticRetentionDays == 0 {
		c.Store.Timestream.MagneticRetentionDays = DefaultMagneticRetentionDays
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = DefaultMetricsAddr
	}
}
