// Package config loads configuration with koanf and validates it with
// go-playground/validator.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultServerPort = 8080

	// DefaultCollectionKey is the versioned key the liked-quotes collection
	// lives under. Bump the suffix for an incompatible schema change; old
	// data is then never read.
	DefaultCollectionKey = "dailyMotivationLiked_v4"

	// DefaultStorageQuotaBytes mirrors the usual 5MB browser storage quota.
	DefaultStorageQuotaBytes = 5 << 20

	DefaultNotifyFeedSize = 20
)

// envPrefix marks the variables read by Load. Within a name, "_" separates
// levels and "__" stands for a literal underscore.
const envPrefix = "APP_"

// Config is everything both binaries read at startup. Sections tagged
// required must be present after defaults, files and env are merged.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Services  ServicesConfig  `koanf:"services"  validate:"required"`
	Storage   StorageConfig   `koanf:"storage"   validate:"required"`
	Features  map[string]bool `koanf:"features"`
	Notify    NotifyConfig    `koanf:"notify"`
}

// AppConfig identifies the deployment in logs and telemetry.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig configures the HTTP listener of cmd/service.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig selects the slog handler. "pretty" is the charmbracelet/log
// console handler.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig tees logs to a lumberjack-rotated file.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig enables OTLP export. Endpoint is a collector URL.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// ClientConfig tunes the resilient HTTP client used for the quote API.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// RetryConfig shapes the exponential backoff between attempts. A zero
// JitterFactor takes the client default.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig sets when the quote API circuit opens and how it
// recovers.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig sizes the idle connection pool.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"          validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"       validate:"required,min=1s"`
}

// ServicesConfig lists downstream services.
type ServicesConfig struct {
	Quote QuoteServiceConfig `koanf:"quote" validate:"required"`
}

// QuoteServiceConfig locates the remote quote API.
type QuoteServiceConfig struct {
	BaseURL string `koanf:"base_url" validate:"required,url"`
	Name    string `koanf:"name"     validate:"required"`
	Path    string `koanf:"path"     validate:"required,startswith=/"`
}

// StorageConfig describes the storage candidates, in priority order.
type StorageConfig struct {
	CollectionKey string                `koanf:"collection_key" validate:"required"`
	Primary       PrimaryStorageConfig  `koanf:"primary"`
	Fallback      FallbackStorageConfig `koanf:"fallback"`
}

// PrimaryStorageConfig configures the persistent SQLite store.
type PrimaryStorageConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	QuotaBytes int64  `koanf:"quota_bytes" validate:"min=0"`
}

// FallbackStorageConfig configures the volatile in-memory store.
type FallbackStorageConfig struct {
	Enabled    bool  `koanf:"enabled"`
	QuotaBytes int64 `koanf:"quota_bytes" validate:"min=0"`
}

// NotifyConfig controls how storage notifications reach the user.
type NotifyConfig struct {
	Desktop  bool `koanf:"desktop"`
	FeedSize int  `koanf:"feed_size" validate:"required,min=1,max=1000"`
}

// defaults is the lowest layer. A failed fetch falls back to a local quote,
// so the client makes one attempt unless configured otherwise.
func defaults() map[string]any {
	return map[string]any{
		"app": map[string]any{
			"name":        "daily-motivation",
			"version":     "dev",
			"environment": "local",
		},
		"server": map[string]any{
			"port":             DefaultServerPort,
			"host":             "0.0.0.0",
			"read_timeout":     "30s",
			"write_timeout":    "30s",
			"idle_timeout":     "120s",
			"shutdown_timeout": "10s",
			"max_request_size": 1 << 20,
		},
		"log": map[string]any{
			"level":  "info",
			"format": "json",
			"file": map[string]any{
				"enabled":     false,
				"path":        "./logs/app.log",
				"max_size":    100,
				"max_backups": 3,
				"max_age":     28,
				"compress":    true,
			},
		},
		"telemetry": map[string]any{
			"enabled":       false,
			"endpoint":      "",
			"service_name":  "daily-motivation",
			"sampling_rate": 1.0,
		},
		"client": map[string]any{
			"timeout": "5s",
			"retry": map[string]any{
				"max_attempts":     1,
				"initial_interval": "100ms",
				"max_interval":     "5s",
				"multiplier":       2.0,
				"jitter_factor":    0.25,
			},
			"circuit_breaker": map[string]any{
				"max_failures":    5,
				"timeout":         "30s",
				"half_open_limit": 3,
			},
			"transport": map[string]any{
				"max_idle_conns":          100,
				"max_idle_conns_per_host": 10,
				"idle_conn_timeout":       "90s",
			},
		},
		"services": map[string]any{
			"quote": map[string]any{
				"base_url": "https://api.quotable.io",
				"name":     "quote-service",
				"path":     "/random",
			},
		},
		"storage": map[string]any{
			"collection_key": DefaultCollectionKey,
			"primary": map[string]any{
				"enabled":     true,
				"path":        "./data/motivation.db",
				"quota_bytes": DefaultStorageQuotaBytes,
			},
			"fallback": map[string]any{
				"enabled":     true,
				"quota_bytes": DefaultStorageQuotaBytes,
			},
		},
		"features": map[string]any{
			"strict_collection_validation": false,
			"latest_quote_wins":            true,
		},
		"notify": map[string]any{
			"desktop":   false,
			"feed_size": DefaultNotifyFeedSize,
		},
	}
}

// Load reads configs/base.yaml and configs/<profile>.yaml over the defaults,
// then APP_ environment variables over both. Missing files are skipped.
func Load(profile string) (*Config, error) {
	return LoadFrom("configs", profile)
}

// LoadFrom is Load with an explicit config directory.
func LoadFrom(dir, profile string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	files := []string{"base"}
	if profile != "" {
		files = append(files, profile)
	}
	for _, name := range files {
		if err := loadYAML(k, filepath.Join(dir, name+".yaml")); err != nil {
			return nil, fmt.Errorf("loading %s config: %w", name, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKey maps APP_STORAGE_PRIMARY_QUOTA__BYTES to storage.primary.quota_bytes.
func envKey(name string) string {
	parts := strings.Split(strings.ToLower(strings.TrimPrefix(name, envPrefix)), "__")
	for i, part := range parts {
		parts[i] = strings.ReplaceAll(part, "_", ".")
	}
	return strings.Join(parts, "_")
}

func loadYAML(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return k.Load(file.Provider(path), yaml.Parser())
}
