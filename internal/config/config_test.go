package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/game-store/internal/config"
)

func TestNew(t *testing.T) {
	type Config struct {
		Log     config.Log
		HTTP    config.HTTP
		Store   config.Store
		Catalog config.Catalog
		Relay   config.Relay
	}

	t.Run("Should apply defaults", func(t *testing.T) {
		cfg, err := config.New[Config]()
		require.NoError(t, err)

		assert.Equal(t, config.LogFormatJSON, cfg.Log.Format)
		assert.Equal(t, slog.LevelInfo, cfg.Log.Level)
		assert.Equal(t, uint32(8000), cfg.HTTP.Port)
		assert.Equal(t, config.StoreBackendPostgres, cfg.Store.Backend)
		assert.True(t, cfg.Store.Breaker.Enabled)
		assert.Equal(t, uint32(5), cfg.Store.Breaker.ConsecutiveFailures)
		assert.Equal(t, 5, cfg.Catalog.LowStockThreshold)
		assert.Equal(t, time.Second, cfg.Relay.Interval)
	})

	t.Run("Should read environment variables", func(t *testing.T) {
		t.Setenv("LOG_FORMAT", "text")
		t.Setenv("LOG_LEVEL", "DEBUG")
		t.Setenv("HTTP_PORT", "9090")
		t.Setenv("STORE_BACKEND", "memory")
		t.Setenv("STORE_BREAKER_TIMEOUT", "2s")
		t.Setenv("CATALOG_LOW_STOCK_THRESHOLD", "10")

		cfg, err := config.New[Config]()
		require.NoError(t, err)

		assert.Equal(t, config.LogFormatText, cfg.Log.Format)
		assert.Equal(t, slog.LevelDebug, cfg.Log.Level)
		assert.Equal(t, uint32(9090), cfg.HTTP.Port)
		assert.Equal(t, config.StoreBackendMemory, cfg.Store.Backend)
		assert.Equal(t, 2*time.Second, cfg.Store.Breaker.Timeout)
		assert.Equal(t, 10, cfg.Catalog.LowStockThreshold)
	})

	t.Run("Should reject unknown store backend", func(t *testing.T) {
		t.Setenv("STORE_BACKEND", "redis")

		_, err := config.New[Config]()
		assert.Error(t, err)
	})
}

func TestBackendConfig(t *testing.T) {
	type Config struct {
		Postgres config.Postgres
		Kafka    config.Kafka
		HTTP     config.HTTP
		Otel     config.Otel
	}

	t.Run("Should require the connection settings", func(t *testing.T) {
		_, err := config.New[Config]()
		assert.Error(t, err)
	})

	t.Run("Should default the pool and client settings", func(t *testing.T) {
		t.Setenv("POSTGRES_HOST", "localhost")
		t.Setenv("POSTGRES_USER", "game")
		t.Setenv("POSTGRES_PASSWORD", "secret")
		t.Setenv("POSTGRES_DB", "game_store")
		t.Setenv("KAFKA_ADDRESSES", "broker-1:9092,broker-2:9092")

		cfg, err := config.New[Config]()
		require.NoError(t, err)

		assert.Equal(t, 5432, cfg.Postgres.Port)
		assert.Equal(t, "disable", cfg.Postgres.SSLMode)
		assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
		assert.Equal(t, time.Hour, cfg.Postgres.MaxConnLifetime)
		assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Addresses)
		assert.Equal(t, "game-store", cfg.Kafka.Group)
		assert.Equal(t, []string{"https://*", "http://*"}, cfg.HTTP.AllowedOrigins)
		assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
		assert.Equal(t, "game-store", cfg.Otel.ServiceName)
	})
}

func TestLogFormat(t *testing.T) {
	t.Run("Should round trip through text", func(t *testing.T) {
		var f config.LogFormat
		require.NoError(t, f.UnmarshalText([]byte("Text")))

		text, err := f.MarshalText()
		require.NoError(t, err)
		assert.Equal(t, "TEXT", string(text))
	})

	t.Run("Should reject an unknown format", func(t *testing.T) {
		var f config.LogFormat
		assert.Error(t, f.UnmarshalText([]byte("xml")))
	})

	t.Run("Should name an out of range format", func(t *testing.T) {
		assert.Equal(t, "LogFormat(7)", config.LogFormat(7).String())
	})
}
