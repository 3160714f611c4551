package geocoding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"placefinder/internal/placesearch"
	"placefinder/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type geocoderConfig struct {
	url string
	rps float64
}

func (c geocoderConfig) GetGeocoderURL() string                { return c.url }
func (c geocoderConfig) GetGeocoderUserAgent() string          { return "placefinder-test/1.0" }
func (c geocoderConfig) GetGeocoderCountryCodes() string       { return "vn" }
func (c geocoderConfig) GetGeocoderLimit() int                 { return 10 }
func (c geocoderConfig) GetGeocoderTimeout() time.Duration     { return 2 * time.Second }
func (c geocoderConfig) GetGeocoderRequestsPerSecond() float64 { return c.rps }

const hanoiSearch = `[
  {"place_id":1,"osm_type":"relation","osm_id":1903516,"lat":"21.0283334","lon":"105.8540410",
   "category":"boundary","type":"administrative","name":"Hà Nội","display_name":"Hà Nội, Việt Nam",
   "address":{"city":"Hà Nội","country":"Việt Nam","country_code":"vn"},
   "boundingbox":["20.5645154","21.3852440","105.2854700","106.0200725"]},
  {"place_id":2,"osm_type":"way","osm_id":158765432,"lat":"21.0340","lon":"105.8510",
   "category":"place","type":"quarter","name":"Phố cổ Hà Nội","display_name":"Phố cổ Hà Nội, Hoàn Kiếm, Hà Nội, Việt Nam",
   "address":{"quarter":"Phố cổ Hà Nội","city":"Hà Nội","country":"Việt Nam"},
   "boundingbox":["21.030","21.038","105.846","105.856"]},
  {"place_id":3,"osm_type":"relation","osm_id":1903516,"lat":"21.0283334","lon":"105.8540410","name":"Hà Nội",
   "display_name":"Hà Nội, Việt Nam","address":{"city":"Hà Nội"}}
]`

func newTestNominatim(t *testing.T, handler http.HandlerFunc) *Nominatim {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewNominatim(geocoderConfig{url: srv.URL}, logger.Discard())
}

func TestSuggestBuildsLabelsAndRefs(t *testing.T) {
	var got *http.Request
	n := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(hanoiSearch))
	})

	list, err := n.Suggest(context.Background(), "Hanoi", placesearch.RegionFilter{CountryCodes: "vn"})

	require.NoError(t, err)
	assert.Equal(t, []placesearch.Suggestion{
		{Label: "Hà Nội, Việt Nam", Ref: "R1903516"},
		{Label: "Phố cổ Hà Nội, Hà Nội, Việt Nam", Ref: "W158765432"},
	}, list)

	require.NotNil(t, got)
	assert.Equal(t, "/search", got.URL.Path)
	assert.Equal(t, "Hanoi", got.URL.Query().Get("q"))
	assert.Equal(t, "vn", got.URL.Query().Get("countrycodes"))
	assert.Equal(t, "10", got.URL.Query().Get("limit"))
	assert.Equal(t, "placefinder-test/1.0", got.Header.Get("User-Agent"))
}

func TestSuggestWithoutRegionOmitsCountryCodes(t *testing.T) {
	var query string
	n := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	})

	list, err := n.Suggest(context.Background(), "zzz123", placesearch.RegionFilter{})

	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotContains(t, query, "countrycodes")
}

func TestSuggestUpstreamStatus(t *testing.T) {
	n := newTestNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := n.Suggest(context.Background(), "Hanoi", placesearch.RegionFilter{})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Status)
}

func TestSuggestMalformedPayload(t *testing.T) {
	n := newTestNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	})

	_, err := n.Suggest(context.Background(), "Hanoi", placesearch.RegionFilter{})

	assert.ErrorIs(t, err, errMalformedPayload)
}

func TestResolveByReference(t *testing.T) {
	var got *http.Request
	n := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(hanoiSearch))
	})

	details, err := n.Resolve(context.Background(), placesearch.Suggestion{Label: "Hà Nội", Ref: "R1903516"})

	require.NoError(t, err)
	require.Len(t, details, 3)
	assert.Equal(t, "/lookup", got.URL.Path)
	assert.Equal(t, "R1903516", got.URL.Query().Get("osm_ids"))

	first := details[0]
	assert.InDelta(t, 21.0283334, first.Point.Lat, 1e-9)
	assert.InDelta(t, 105.8540410, first.Point.Lon, 1e-9)
	require.NotNil(t, first.Extent)
	assert.InDelta(t, 20.5645154, first.Extent.South, 1e-9)
	assert.InDelta(t, 106.0200725, first.Extent.East, 1e-9)
	assert.Equal(t, "administrative", first.Attributes["type"])
	assert.Equal(t, "Hà Nội", first.Attributes["address.city"])
	assert.Equal(t, "R1903516", first.Attributes["osm_ref"])

	assert.Nil(t, details[2].Extent)
}

func TestResolveWithoutReferenceSearchesLabel(t *testing.T) {
	var got *http.Request
	n := newTestNominatim(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		_, _ = w.Write([]byte(`[]`))
	})

	details, err := n.Resolve(context.Background(), placesearch.Suggestion{Label: "Hoan Kiem Lake"})

	require.NoError(t, err)
	assert.Empty(t, details)
	assert.Equal(t, "/search", got.URL.Path)
	assert.Equal(t, "Hoan Kiem Lake", got.URL.Query().Get("q"))
	assert.Equal(t, "1", got.URL.Query().Get("limit"))
}

func TestLookupErrorObject(t *testing.T) {
	n := newTestNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Need osm_ids"}}`))
	})

	_, err := n.Resolve(context.Background(), placesearch.Suggestion{Label: "x", Ref: "N1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Need osm_ids")
}

func TestRequestHonoursCancellation(t *testing.T) {
	release := make(chan struct{})
	n := newTestNominatim(t, func(w http.ResponseWriter, _ *http.Request) {
		<-release
		_, _ = w.Write([]byte(`[]`))
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := n.Suggest(ctx, "Hanoi", placesearch.RegionFilter{})
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("suggest did not return after cancellation")
	}
}

func TestLimiterThrottlesRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)
	n := NewNominatim(geocoderConfig{url: srv.URL, rps: 1}, logger.Discard())

	_, err := n.Suggest(context.Background(), "a", placesearch.RegionFilter{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = n.Suggest(ctx, "b", placesearch.RegionFilter{})
	assert.Error(t, err)
}
