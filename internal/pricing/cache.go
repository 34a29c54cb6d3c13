package pricing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lotscout/hibid-scanner/internal/models"
)

// QuoteCache is the subset of the redis client the cached source needs.
type QuoteCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedSource wraps a Source with a Redis lookaside cache. Only present
// quotes are stored; an absent outcome is re-queried on the next lookup.
// Cache failures degrade to a direct marketplace call.
type CachedSource struct {
	inner  Source
	cache  QuoteCache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachedSource(inner Source, cache QuoteCache, ttl time.Duration, logger *slog.Logger) *CachedSource {
	return &CachedSource{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With("component", "quote_cache", "source", string(inner.Name())),
	}
}

func (c *CachedSource) Name() models.Source {
	return c.inner.Name()
}

func (c *CachedSource) Quote(ctx context.Context, title string) models.Quote {
	key := cacheKey(c.inner.Name(), title)

	cached, err := c.cache.Get(ctx, key).Result()
	if err == nil {
		if value, parseErr := strconv.ParseFloat(cached, 64); parseErr == nil {
			c.logger.Debug("cache hit", "key", key)
			return models.Quote{Source: c.inner.Name(), Value: &value}
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("cache read failed", "key", key, "error", err)
	}

	quote := c.inner.Quote(ctx, title)

	if quote.Present() {
		value := strconv.FormatFloat(*quote.Value, 'f', 2, 64)
		if err := c.cache.Set(ctx, key, value, c.ttl).Err(); err != nil {
			c.logger.Warn("cache write failed", "key", key, "error", err)
		}
	}

	return quote
}

func cacheKey(source models.Source, title string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(title)), " ")
	return fmt.Sprintf("quote:%s:%s", source, normalized)
}
