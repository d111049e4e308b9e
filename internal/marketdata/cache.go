package marketdata

import (
	"context"
	"time"

	"github.com/wonny/folio/internal/contracts"
	"github.com/wonny/folio/pkg/redis"
)

// CacheYears labels the cached horizon. Providers return their full
// history; the engine trims to the requested timeframe, so one cache
// entry per ticker serves every timeframe up to this many years.
const CacheYears = 5

// CachedSource wraps a price provider with the Redis cache. With
// Redis disabled the cache degrades to a pass-through.
type CachedSource struct {
	source PriceProvider
	cache  *redis.Cache
	ttl    time.Duration
}

// NewCachedSource wraps source with caching.
func NewCachedSource(source PriceProvider, cache *redis.Cache, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = redis.TTLDaily
	}
	return &CachedSource{source: source, cache: cache, ttl: ttl}
}

// History serves from cache when possible, falling through to the
// underlying provider on a miss.
func (s *CachedSource) History(ctx context.Context, ticker string) (contracts.PriceSeries, error) {
	key := redis.PriceHistoryKey(ticker, CacheYears)

	var series contracts.PriceSeries
	err := s.cache.GetOrSet(ctx, key, &series, s.ttl, func() (interface{}, error) {
		return s.source.History(ctx, ticker)
	})
	if err != nil {
		return contracts.PriceSeries{}, err
	}
	return series, nil
}

// Refresh forces a fetch and repopulates the cache entry. Used by the
// scheduled warmer so interactive requests stay on the hot path.
func (s *CachedSource) Refresh(ctx context.Context, ticker string) (contracts.PriceSeries, error) {
	series, err := s.source.History(ctx, ticker)
	if err != nil {
		return contracts.PriceSeries{}, err
	}

	key := redis.PriceHistoryKey(ticker, CacheYears)
	if err := s.cache.Set(ctx, key, series, s.ttl); err != nil {
		return series, err
	}
	return series, nil
}
