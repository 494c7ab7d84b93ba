package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"CHEQUEPRINT_ADDR", "DATABASE_URL", "REDIS_URL", "KAFKA_BROKERS", "KAFKA_TOPIC",
		"REQUEST_TIMEOUT", "CORE_BANKING_TIMEOUT", "LOG_LEVEL", "JWT_SIGNING_KEY",
	} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10*time.Second, cfg.CoreBanking.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.JWTSigningKey)
	assert.Empty(t, cfg.Database.URL)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "chequeprint.events", cfg.Kafka.Topic)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CHEQUEPRINT_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,,")
	t.Setenv("REQUEST_TIMEOUT", "15")
	t.Setenv("CORE_BANKING_TIMEOUT", "750ms")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 750*time.Millisecond, cfg.CoreBanking.Timeout)
}

func TestFromEnvRejectsBadDuration(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")
	_, err := FromEnv()
	assert.ErrorContains(t, err, "REQUEST_TIMEOUT")
}
