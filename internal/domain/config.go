package domain

import (
	"time"
)

// Configuration Models

// Config represents the main application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Model     ModelConfig     `mapstructure:"model"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// ModelConfig represents viability model artifact configuration
type ModelConfig struct {
	ArtifactPath     string        `mapstructure:"artifact_path"`
	InferenceTimeout time.Duration `mapstructure:"inference_timeout"`
	BreakerEnabled   bool          `mapstructure:"breaker_enabled"`
	BreakerTimeout   time.Duration `mapstructure:"breaker_timeout"`
	BreakerFailures  uint32        `mapstructure:"breaker_failures"`
}

// StorageConfig represents match run persistence configuration
type StorageConfig struct {
	Driver          string        `mapstructure:"driver"` // "sqlite", "postgres" or "none"
	SQLitePath      string        `mapstructure:"sqlite_path"`
	PostgresURL     string        `mapstructure:"postgres_url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// CacheConfig represents prediction cache configuration
type CacheConfig struct {
	RedisURL   string        `mapstructure:"redis_url"` // empty: in-process LRU only
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
	LRUSize    int           `mapstructure:"lru_size"`
}

// RateLimitConfig represents API rate limit configuration
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
