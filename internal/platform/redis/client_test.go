package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chequeprint/internal/platform/config"
)

func TestNewDisabled(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestOptions(t *testing.T) {
	t.Run("config overrides the URL", func(t *testing.T) {
		opts, err := options(config.RedisConfig{
			URL:         "redis://cache:6380/2",
			PoolSize:    20,
			DialTimeout: 2 * time.Second,
			ReadTimeout: 500 * time.Millisecond,
		})
		require.NoError(t, err)
		assert.Equal(t, "cache:6380", opts.Addr)
		assert.Equal(t, 2, opts.DB)
		assert.Equal(t, 20, opts.PoolSize)
		assert.Equal(t, 2*time.Second, opts.DialTimeout)
		assert.Equal(t, 500*time.Millisecond, opts.ReadTimeout)
	})

	t.Run("bad URL", func(t *testing.T) {
		_, err := options(config.RedisConfig{URL: "mysql://nope"})
		require.Error(t, err)
	})
}
