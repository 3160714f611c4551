package placesearch

import (
	"context"
	"time"
)

// Fetcher wraps a Provider, normalising its results and failures. It never
// retries.
type Fetcher struct {
	provider Provider
	timeout  time.Duration
}

// NewFetcher creates a fetcher. A positive timeout bounds every provider call.
func NewFetcher(provider Provider, timeout time.Duration) *Fetcher {
	return &Fetcher{provider: provider, timeout: timeout}
}

// Suggest returns the suggestions for query. No matches is an empty,
// non-nil slice and a nil error; any provider failure is a *FetchError.
func (f *Fetcher) Suggest(ctx context.Context, query string, region RegionFilter) ([]Suggestion, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	list, err := f.provider.Suggest(ctx, query, region)
	if err != nil {
		return nil, &FetchError{Query: query, Err: err}
	}
	if list == nil {
		list = []Suggestion{}
	}
	return list, nil
}

// Resolve fetches full detail for a suggestion. Failures, including an
// empty provider answer, are returned as *ResolveError.
func (f *Fetcher) Resolve(ctx context.Context, s Suggestion) (GeocodeDetail, error) {
	ctx, cancel := f.withTimeout(ctx)
	defer cancel()

	details, err := f.provider.Resolve(ctx, s)
	if err != nil {
		return GeocodeDetail{}, &ResolveError{Label: s.Label, Err: err}
	}
	if len(details) == 0 {
		return GeocodeDetail{}, &ResolveError{Label: s.Label, Err: ErrNoDetail}
	}
	return details[0], nil
}

func (f *Fetcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if f.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, f.timeout)
}
