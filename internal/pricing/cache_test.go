package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lotscout/hibid-scanner/internal/models"
)

type fakeCache struct {
	store  map[string]string
	getErr error
	sets   int
}

func newFakeCache() *fakeCache {
	return &fakeCache{store: make(map[string]string)}
}

func (f *fakeCache) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if v, ok := f.store[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.sets++
	f.store[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

type countingSource struct {
	name  models.Source
	value *float64
	calls int
}

func (c *countingSource) Name() models.Source {
	return c.name
}

func (c *countingSource) Quote(ctx context.Context, title string) models.Quote {
	c.calls++
	return models.Quote{Source: c.name, Value: c.value}
}

func TestCachedSourceHit(t *testing.T) {
	cache := newFakeCache()
	cache.store["quote:ebay:vintage rolex watch"] = "25.00"

	inner := &countingSource{name: models.SourceEbay, value: fptr(99)}
	source := NewCachedSource(inner, cache, time.Hour, discardLogger())

	quote := source.Quote(context.Background(), "  Vintage  Rolex Watch ")

	require.NotNil(t, quote.Value)
	assert.InDelta(t, 25.0, *quote.Value, 1e-9)
	assert.Equal(t, 0, inner.calls)
}

func TestCachedSourceMissStoresPresentQuote(t *testing.T) {
	cache := newFakeCache()
	inner := &countingSource{name: models.SourceYahoo, value: fptr(30)}
	source := NewCachedSource(inner, cache, time.Hour, discardLogger())

	quote := source.Quote(context.Background(), "Craftsman Tool Chest")

	require.NotNil(t, quote.Value)
	assert.InDelta(t, 30.0, *quote.Value, 1e-9)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "30.00", cache.store["quote:yahoo:craftsman tool chest"])
}

func TestCachedSourceDoesNotStoreAbsentQuote(t *testing.T) {
	cache := newFakeCache()
	inner := &countingSource{name: models.SourceEbay}
	source := NewCachedSource(inner, cache, time.Hour, discardLogger())

	quote := source.Quote(context.Background(), "Craftsman Tool Chest")

	assert.Nil(t, quote.Value)
	assert.Equal(t, 0, cache.sets)
}

func TestCachedSourceDegradesOnCacheError(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errors.New("connection refused")

	inner := &countingSource{name: models.SourceEbay, value: fptr(12)}
	source := NewCachedSource(inner, cache, time.Hour, discardLogger())

	quote := source.Quote(context.Background(), "Craftsman Tool Chest")

	require.NotNil(t, quote.Value)
	assert.InDelta(t, 12.0, *quote.Value, 1e-9)
	assert.Equal(t, 1, inner.calls)
}
