package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigs creates name.yaml files in a temp dir and returns it.
func writeConfigs(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), []byte(body), 0o600))
	}
	return dir
}

func TestLoad_DefaultsAreValid(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir(), "")
	require.NoError(t, err)

	require.NoError(t, cfg.Validate(), "the defaults alone must start both binaries")

	assert.Equal(t, AppConfig{Name: "daily-motivation", Version: "dev", Environment: "local"}, cfg.App)
	assert.Equal(t, ServerConfig{
		Port:            DefaultServerPort,
		Host:            "0.0.0.0",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     2 * time.Minute,
		ShutdownTimeout: 10 * time.Second,
		MaxRequestSize:  1 << 20,
	}, cfg.Server)
	assert.Equal(t, LogFileConfig{Path: "./logs/app.log", MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 28, Compress: true}, cfg.Log.File)
	assert.Equal(t, TelemetryConfig{ServiceName: "daily-motivation", SamplingRate: 1.0}, cfg.Telemetry)
}

func TestLoad_ClientDefaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Client.Timeout)
	assert.Equal(t, RetryConfig{
		MaxAttempts:     1,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.25,
	}, cfg.Client.Retry)
	assert.Equal(t, CircuitBreakerConfig{MaxFailures: 5, Timeout: 30 * time.Second, HalfOpenLimit: 3}, cfg.Client.CircuitBreaker)
	assert.Equal(t, TransportConfig{MaxIdleConns: 100, MaxIdleConnsPerHost: 10, IdleConnTimeout: 90 * time.Second}, cfg.Client.Transport)
	assert.Equal(t, QuoteServiceConfig{BaseURL: "https://api.quotable.io", Name: "quote-service", Path: "/random"}, cfg.Services.Quote)
}

func TestLoad_StorageDefaults(t *testing.T) {
	cfg, err := LoadFrom(t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, StorageConfig{
		CollectionKey: DefaultCollectionKey,
		Primary:       PrimaryStorageConfig{Enabled: true, Path: "./data/motivation.db", QuotaBytes: DefaultStorageQuotaBytes},
		Fallback:      FallbackStorageConfig{Enabled: true, QuotaBytes: DefaultStorageQuotaBytes},
	}, cfg.Storage)
	assert.Equal(t, NotifyConfig{FeedSize: DefaultNotifyFeedSize}, cfg.Notify)
	assert.Equal(t, map[string]bool{"latest_quote_wins": true, "strict_collection_validation": false}, cfg.Features)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "9090")
	t.Setenv("APP_LOG_LEVEL", "warn")
	t.Setenv("APP_TELEMETRY_ENABLED", "true")
	t.Setenv("APP_SERVER_READ__TIMEOUT", "45s")
	t.Setenv("APP_STORAGE_PRIMARY_QUOTA__BYTES", "1024")
	t.Setenv("APP_FEATURES_STRICT__COLLECTION__VALIDATION", "true")

	dir := writeConfigs(t, map[string]string{"base": "server:\n  port: 7000\n"})

	cfg, err := LoadFrom(dir, "")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port, "env beats files")
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, 45*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(1024), cfg.Storage.Primary.QuotaBytes)
	assert.True(t, cfg.Features["strict_collection_validation"])
}

func TestLoadFrom_Layers(t *testing.T) {
	dir := writeConfigs(t, map[string]string{
		"base": "log:\n  level: debug\nservices:\n  quote:\n    path: /quotes/random\n",
		"qa":   "log:\n  level: warn\n",
	})

	tests := []struct {
		profile   string
		wantLevel string
	}{
		{profile: "", wantLevel: "debug"},
		{profile: "qa", wantLevel: "warn"},
		{profile: "missing", wantLevel: "debug"},
	}

	for _, tt := range tests {
		t.Run("profile="+tt.profile, func(t *testing.T) {
			cfg, err := LoadFrom(dir, tt.profile)
			require.NoError(t, err)

			assert.Equal(t, tt.wantLevel, cfg.Log.Level)
			assert.Equal(t, "/quotes/random", cfg.Services.Quote.Path, "base survives the profile")
			assert.Equal(t, "json", cfg.Log.Format, "defaults survive both files")
		})
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	for _, name := range []string{"base", "qa"} {
		t.Run(name, func(t *testing.T) {
			dir := writeConfigs(t, map[string]string{name: "log: [unclosed"})

			_, err := LoadFrom(dir, "qa")
			require.ErrorContains(t, err, "loading "+name+" config")
		})
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"APP_SERVER_PORT", "server.port"},
		{"APP_SERVER_READ__TIMEOUT", "server.read_timeout"},
		{"APP_CLIENT_CIRCUIT__BREAKER_MAX__FAILURES", "client.circuit_breaker.max_failures"},
		{"APP_FEATURES_STRICT__COLLECTION__VALIDATION", "features.strict_collection_validation"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, envKey(tt.in))
			assert.Equal(t, tt.in, envVar(tt.want), "envVar inverts envKey")
		})
	}
}
