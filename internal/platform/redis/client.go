// Package redis connects the shared layout cache.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"chequeprint/internal/platform/config"
)

// Client is the go-redis client plus a health check.
type Client struct {
	*redis.Client
}

// New connects and pings. A nil client with a nil error means the cache is
// disabled.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	opts, err := options(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{Client: client}, nil
}

// options parses the URL and lets configured pool and timeout values
// override whatever the URL carries. Zero values keep the URL's settings.
func options(cfg config.RedisConfig) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	for dst, src := range map[*time.Duration]time.Duration{
		&opts.DialTimeout:  cfg.DialTimeout,
		&opts.ReadTimeout:  cfg.ReadTimeout,
		&opts.WriteTimeout: cfg.WriteTimeout,
	} {
		if src > 0 {
			*dst = src
		}
	}
	return opts, nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
