// Package config loads the candle-sync YAML configuration.
package config

import "time"

// Config is the root configuration for one sync instance.
type Config struct {
	Freqtrade FreqtradeConfig `yaml:"freqtrade"`
	Sync      SyncConfig      `yaml:"sync"`
	Store     StoreConfig     `yaml:"store"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// FreqtradeConfig holds the bot REST API settings.
type FreqtradeConfig struct {
	URL        string        `yaml:"url"`
	Username   string        `yaml:"username"`
	Password   string        `yaml:"password"`
	Strategy   string        `yaml:"strategy"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
	RateLimit  float64       `yaml:"rate_limit"` // requests per second
}

// SyncConfig identifies the mirrored series and tunes the loop.
type SyncConfig struct {
	Pair          string        `yaml:"pair"`
	Exchange      string        `yaml:"exchange"`
	Timeframe     string        `yaml:"timeframe"` // overrides the strategy's timeframe
	Lookback      int           `yaml:"lookback"`
	BatchSize     int           `yaml:"batch_size"`
	SettleDelay   time.Duration `yaml:"settle_delay"`
	MinWait       time.Duration `yaml:"min_wait"`
	ZeroAsMissing bool          `yaml:"zero_as_missing"`
}

// Store backends.
const (
	BackendTimestream = "timestream"
	BackendClickhouse = "clickhouse"
	BackendPostgres   = "postgres"
	BackendMemory     = "memory"
)

// StoreConfig selects and configures the destination store.
type StoreConfig struct {
	Backend     string           `yaml:"backend"`
	EnsureTable bool             `yaml:"ensure_table"`
	Timestream  TimestreamConfig `yaml:"timestream"`
	Clickhouse  DSNConfig        `yaml:"clickhouse"`
	Postgres    DSNConfig        `yaml:"postgres"`
}

// TimestreamConfig holds the Timestream table identity and retention.
type TimestreamConfig struct {
	Region                string `yaml:"region"`
	Database              string `yaml:"database"`
	Table                 string `yaml:"table"`
	MemoryRetentionHours  int64  `yaml:"memory_retention_hours"`
	MagneticRetentionDays int64  `yaml:"magnetic_retention_days"`
	EnableMagneticWrites  bool   `yaml:"enable_magnetic_writes"`
}

// DSNConfig holds a connection string.
type DSNConfig struct {
	DSN string `yaml:"dsn"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// MetricsConfig holds the metrics and health endpoint settings.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}
