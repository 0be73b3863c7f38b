package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, BusMemory, cfg.Events.Bus)
	assert.Equal(t, 200, cfg.Events.BatchSize)
	assert.Equal(t, "sid", cfg.Identity.SessionCookie)
	assert.Equal(t, "memory", cfg.Providers.Registry)
}

func TestLoadValidation(t *testing.T) {
	t.Run("kafka without brokers", func(t *testing.T) {
		t.Setenv("EVENT_BUS", "kafka")
		t.Setenv("KAFKA_BROKERS", "")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "KAFKA_BROKERS")
	})

	t.Run("kafka brokers split on comma", func(t *testing.T) {
		t.Setenv("EVENT_BUS", "kafka")
		t.Setenv("KAFKA_BROKERS", "b1:9092,b2:9092")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, []string{"b1:9092", "b2:9092"}, cfg.Events.KafkaBrokers)
	})

	t.Run("unknown bus", func(t *testing.T) {
		t.Setenv("EVENT_BUS", "carrier-pigeon")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("redis registry requires url", func(t *testing.T) {
		t.Setenv("EVENT_BUS", "memory")
		t.Setenv("PROVIDER_REGISTRY", "redis")
		t.Setenv("REDIS_URL", "")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REDIS_URL")
	})
}
