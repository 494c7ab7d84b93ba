package layout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"chequeprint/internal/checkbook/models"
)

const cacheKeyPrefix = "chequeprint:layout:"

// RedisCache fronts an OverrideStore with a shared Redis cache. Layout
// configuration is read-only to this service, so entries simply expire.
// Concurrent misses for the same document type share one store read.
type RedisCache struct {
	next   OverrideStore
	client redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

func NewRedisCache(next OverrideStore, client redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *RedisCache) Overrides(ctx context.Context, docType models.DocumentType) (models.LayoutOverrides, error) {
	key := cacheKeyPrefix + strconv.Itoa(int(docType))

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached models.LayoutOverrides
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return cached, nil
		}
		c.logger.WarnContext(ctx, "discarding undecodable layout cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		// Cache outages degrade to direct reads.
		c.logger.WarnContext(ctx, "layout cache read failed", "key", key, "error", err)
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		overrides, err := c.next.Overrides(ctx, docType)
		if err != nil {
			return nil, err
		}
		if payload, err := json.Marshal(overrides); err == nil {
			if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
				c.logger.WarnContext(ctx, "layout cache write failed", "key", key, "error", err)
			}
		}
		return overrides, nil
	})
	if err != nil {
		return nil, fmt.Errorf("layout cache fill: %w", err)
	}
	return v.(models.LayoutOverrides), nil
}

// Invalidate drops the cached overrides for docType.
func (c *RedisCache) Invalidate(ctx context.Context, docType models.DocumentType) error {
	return c.client.Del(ctx, cacheKeyPrefix+strconv.Itoa(int(docType))).Err()
}
