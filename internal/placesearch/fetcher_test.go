package placesearch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcProvider struct {
	suggest func(ctx context.Context, text string, region RegionFilter) ([]Suggestion, error)
	resolve func(ctx context.Context, s Suggestion) ([]GeocodeDetail, error)
}

func (p funcProvider) Suggest(ctx context.Context, text string, region RegionFilter) ([]Suggestion, error) {
	return p.suggest(ctx, text, region)
}

func (p funcProvider) Resolve(ctx context.Context, s Suggestion) ([]GeocodeDetail, error) {
	return p.resolve(ctx, s)
}

func TestFetcherSuggestNormalisesEmptyResult(t *testing.T) {
	var gotRegion RegionFilter
	f := NewFetcher(funcProvider{suggest: func(_ context.Context, _ string, region RegionFilter) ([]Suggestion, error) {
		gotRegion = region
		return nil, nil
	}}, 0)

	list, err := f.Suggest(context.Background(), "zzz123", RegionFilter{CountryCodes: "vn"})

	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.Equal(t, "vn", gotRegion.CountryCodes)
}

func TestFetcherSuggestWrapsProviderError(t *testing.T) {
	f := NewFetcher(funcProvider{suggest: func(context.Context, string, RegionFilter) ([]Suggestion, error) {
		return nil, errNetwork
	}}, 0)

	_, err := f.Suggest(context.Background(), "Han", RegionFilter{})

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.ErrorIs(t, err, errNetwork)
}

func TestFetcherAppliesTimeout(t *testing.T) {
	f := NewFetcher(funcProvider{suggest: func(ctx context.Context, _ string, _ RegionFilter) ([]Suggestion, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}, 10*time.Millisecond)

	_, err := f.Suggest(context.Background(), "Han", RegionFilter{})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFetcherResolveUsesFirstDetail(t *testing.T) {
	f := NewFetcher(funcProvider{resolve: func(_ context.Context, s Suggestion) ([]GeocodeDetail, error) {
		assert.Equal(t, "R1903516", s.Ref)
		return []GeocodeDetail{{Point: Point{Lat: 21.03, Lon: 105.85}}, {Point: Point{Lat: 0, Lon: 0}}}, nil
	}}, time.Second)

	detail, err := f.Resolve(context.Background(), hanoiSuggestions[0])

	require.NoError(t, err)
	assert.Equal(t, Point{Lat: 21.03, Lon: 105.85}, detail.Point)
}

func TestFetcherResolveErrors(t *testing.T) {
	cause := errors.New("503 service unavailable")
	failing := NewFetcher(funcProvider{resolve: func(context.Context, Suggestion) ([]GeocodeDetail, error) {
		return nil, cause
	}}, 0)
	empty := NewFetcher(funcProvider{resolve: func(context.Context, Suggestion) ([]GeocodeDetail, error) {
		return []GeocodeDetail{}, nil
	}}, 0)

	_, err := failing.Resolve(context.Background(), hanoiSuggestions[0])
	var resolveErr *ResolveError
	require.ErrorAs(t, err, &resolveErr)
	assert.Equal(t, "Hanoi", resolveErr.Label)
	assert.ErrorIs(t, err, cause)

	_, err = empty.Resolve(context.Background(), hanoiSuggestions[0])
	require.ErrorAs(t, err, &resolveErr)
	assert.ErrorIs(t, err, ErrNoDetail)
}
