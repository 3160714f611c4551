package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"placefinder/internal/placesearch"
	"placefinder/platform/logger"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// SuggestCache stores suggestion lists by normalised query.
type SuggestCache interface {
	Get(ctx context.Context, key string) ([]placesearch.Suggestion, bool, error)
	Set(ctx context.Context, key string, list []placesearch.Suggestion) error
}

// RedisCache keeps suggestions in Redis so replicas share them.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]placesearch.Suggestion, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var list []placesearch.Suggestion
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, false, err
	}
	return list, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, list []placesearch.Suggestion) error {
	raw, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

// MemoryCache is the in-process fallback used when Redis is not configured.
type MemoryCache struct {
	cache *cache.Cache
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{cache: cache.New(ttl, 2*ttl)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]placesearch.Suggestion, bool, error) {
	if x, found := c.cache.Get(key); found {
		list := x.([]placesearch.Suggestion)
		return append([]placesearch.Suggestion{}, list...), true, nil
	}
	return nil, false, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, list []placesearch.Suggestion) error {
	c.cache.Set(key, append([]placesearch.Suggestion{}, list...), cache.DefaultExpiration)
	return nil
}

// CachingProvider serves repeated suggestion queries from a cache and
// collapses identical concurrent queries into one upstream call. Resolve
// always goes upstream.
type CachingProvider struct {
	next  placesearch.Provider
	cache SuggestCache
	group singleflight.Group
	log   *logger.Logger
}

func NewCachingProvider(next placesearch.Provider, c SuggestCache, log *logger.Logger) *CachingProvider {
	return &CachingProvider{next: next, cache: c, log: log}
}

func (p *CachingProvider) Suggest(ctx context.Context, text string, region placesearch.RegionFilter) ([]placesearch.Suggestion, error) {
	key := suggestKey(text, region)

	list, ok, err := p.cache.Get(ctx, key)
	if err != nil {
		p.log.Warn("suggest cache read failed", "key", key, "error", err)
	} else if ok {
		return list, nil
	}

	ch := p.group.DoChan(key, func() (interface{}, error) {
		list, err := p.next.Suggest(ctx, text, region)
		if err != nil {
			return nil, err
		}
		if err := p.cache.Set(ctx, key, list); err != nil {
			p.log.Warn("suggest cache write failed", "key", key, "error", err)
		}
		return list, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			// The shared call may have run under another caller's
			// cancelled context; retry once under our own.
			if res.Shared && isContextErr(res.Err) && ctx.Err() == nil {
				return p.next.Suggest(ctx, text, region)
			}
			return nil, res.Err
		}
		return append([]placesearch.Suggestion{}, res.Val.([]placesearch.Suggestion)...), nil
	}
}

func (p *CachingProvider) Resolve(ctx context.Context, s placesearch.Suggestion) ([]placesearch.GeocodeDetail, error) {
	return p.next.Resolve(ctx, s)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

var (
	_ placesearch.Provider = (*Nominatim)(nil)
	_ placesearch.Provider = (*CachingProvider)(nil)
	_ SuggestCache         = (*RedisCache)(nil)
	_ SuggestCache         = (*MemoryCache)(nil)
)
