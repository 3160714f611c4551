package geocoding

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"placefinder/internal/placesearch"
	"placefinder/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vietnam = placesearch.RegionFilter{CountryCodes: "vn"}

type countingProvider struct {
	calls   atomic.Int32
	release chan struct{}
	list    []placesearch.Suggestion
	err     error
}

func (p *countingProvider) Suggest(ctx context.Context, _ string, _ placesearch.RegionFilter) ([]placesearch.Suggestion, error) {
	p.calls.Add(1)
	if p.release != nil {
		select {
		case <-p.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return p.list, p.err
}

func (p *countingProvider) Resolve(context.Context, placesearch.Suggestion) ([]placesearch.GeocodeDetail, error) {
	return []placesearch.GeocodeDetail{{Point: placesearch.Point{Lat: 21, Lon: 105}}}, nil
}

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client, time.Minute), mr
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c, mr := newRedisCache(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	list := []placesearch.Suggestion{{Label: "Hanoi", Ref: "R1903516"}}
	require.NoError(t, c.Set(ctx, "k", list))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, list, got)

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheReturnsCopies(t *testing.T) {
	c := NewMemoryCache(time.Minute)
	ctx := context.Background()

	list := []placesearch.Suggestion{{Label: "Hanoi"}}
	require.NoError(t, c.Set(ctx, "k", list))
	list[0].Label = "changed"

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Hanoi", got[0].Label)
}

func TestCachingProviderServesRepeatsFromCache(t *testing.T) {
	c, _ := newRedisCache(t)
	next := &countingProvider{list: []placesearch.Suggestion{{Label: "Hanoi", Ref: "R1"}}}
	p := NewCachingProvider(next, c, logger.Discard())

	first, err := p.Suggest(context.Background(), "Hanoi", vietnam)
	require.NoError(t, err)
	second, err := p.Suggest(context.Background(), "  hanoi ", vietnam)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestCachingProviderKeysByRegion(t *testing.T) {
	next := &countingProvider{list: []placesearch.Suggestion{}}
	p := NewCachingProvider(next, NewMemoryCache(time.Minute), logger.Discard())

	_, err := p.Suggest(context.Background(), "Hanoi", vietnam)
	require.NoError(t, err)
	_, err = p.Suggest(context.Background(), "Hanoi", placesearch.RegionFilter{CountryCodes: "la"})
	require.NoError(t, err)

	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCachingProviderDoesNotCacheFailures(t *testing.T) {
	next := &countingProvider{err: &StatusError{Status: 503}}
	p := NewCachingProvider(next, NewMemoryCache(time.Minute), logger.Discard())

	_, err := p.Suggest(context.Background(), "Hanoi", vietnam)
	require.Error(t, err)
	_, err = p.Suggest(context.Background(), "Hanoi", vietnam)
	require.Error(t, err)

	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCachingProviderCollapsesConcurrentQueries(t *testing.T) {
	next := &countingProvider{
		release: make(chan struct{}),
		list:    []placesearch.Suggestion{{Label: "Hanoi", Ref: "R1"}},
	}
	p := NewCachingProvider(next, NewMemoryCache(time.Minute), logger.Discard())

	var wg sync.WaitGroup
	results := make([][]placesearch.Suggestion, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			list, err := p.Suggest(context.Background(), "Hanoi", vietnam)
			assert.NoError(t, err)
			results[i] = list
		}(i)
	}

	require.Eventually(t, func() bool { return next.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(next.release)
	wg.Wait()

	assert.Equal(t, int32(1), next.calls.Load())
	for _, list := range results {
		assert.Equal(t, []placesearch.Suggestion{{Label: "Hanoi", Ref: "R1"}}, list)
	}
}

func TestCachingProviderCallerCancellation(t *testing.T) {
	next := &countingProvider{release: make(chan struct{})}
	p := NewCachingProvider(next, NewMemoryCache(time.Minute), logger.Discard())
	defer close(next.release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Suggest(ctx, "Hanoi", vietnam)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalizeQuery(t *testing.T) {
	assert.Equal(t, "hà nội", NormalizeQuery("  HÀ   Nội "))
	// Decomposed input composes to the same key.
	assert.Equal(t, NormalizeQuery("H\u00e0 N\u1ed9i"), NormalizeQuery("Ha\u0300 No\u0302\u0323i"))
	assert.Equal(t, suggestKey("Hanoi", vietnam), suggestKey("HANOI", placesearch.RegionFilter{CountryCodes: "VN"}))
}
