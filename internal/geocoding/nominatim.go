// Package geocoding adapts the OpenStreetMap Nominatim API to the
// placesearch.Provider interface and layers a suggestion cache on top.
package geocoding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"placefinder/internal/placesearch"
	"placefinder/platform/config"
	"placefinder/platform/logger"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	searchPath = "/search"
	lookupPath = "/lookup"

	maxBodyBytes = 2 << 20
)

// StatusError is a non-200 answer from Nominatim.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream api error: %d", e.Status)
}

var errMalformedPayload = errors.New("malformed nominatim payload")

// Nominatim implements placesearch.Provider against a Nominatim instance.
// Requests are throttled by a shared limiter to honour the public
// instance usage policy.
type Nominatim struct {
	client    *http.Client
	baseURL   string
	userAgent string
	limit     int
	limiter   *rate.Limiter
	log       *logger.Logger
}

func NewNominatim(cfg config.GeocoderConfig, log *logger.Logger) *Nominatim {
	limit := rate.Inf
	if rps := cfg.GetGeocoderRequestsPerSecond(); rps > 0 {
		limit = rate.Limit(rps)
	}
	return &Nominatim{
		client:    &http.Client{Timeout: cfg.GetGeocoderTimeout()},
		baseURL:   cfg.GetGeocoderURL(),
		userAgent: cfg.GetGeocoderUserAgent(),
		limit:     cfg.GetGeocoderLimit(),
		limiter:   rate.NewLimiter(limit, 1),
		log:       log,
	}
}

// Suggest runs a free-form search restricted to the region's countries.
func (n *Nominatim) Suggest(ctx context.Context, text string, region placesearch.RegionFilter) ([]placesearch.Suggestion, error) {
	params := url.Values{}
	params.Add("q", text)
	params.Add("format", "jsonv2")
	params.Add("addressdetails", "1")
	params.Add("limit", strconv.Itoa(n.limit))
	if region.CountryCodes != "" {
		params.Add("countrycodes", region.CountryCodes)
	}

	places, err := n.get(ctx, "suggest", searchPath, params)
	if err != nil {
		return nil, err
	}

	suggestions := make([]placesearch.Suggestion, 0, len(places))
	seen := make(map[string]struct{}, len(places))
	for _, place := range places {
		suggestion, ok := buildSuggestion(place)
		if !ok {
			continue
		}
		if _, dup := seen[suggestion.Ref]; dup {
			continue
		}
		seen[suggestion.Ref] = struct{}{}
		suggestions = append(suggestions, suggestion)
	}
	return suggestions, nil
}

// Resolve looks the suggestion up by its OSM reference. Suggestions without
// a reference fall back to a single-result search on the label.
func (n *Nominatim) Resolve(ctx context.Context, s placesearch.Suggestion) ([]placesearch.GeocodeDetail, error) {
	params := url.Values{}
	params.Add("format", "jsonv2")
	params.Add("addressdetails", "1")

	path := lookupPath
	if s.Ref != "" {
		params.Add("osm_ids", s.Ref)
	} else {
		path = searchPath
		params.Add("q", s.Label)
		params.Add("limit", "1")
	}

	places, err := n.get(ctx, "resolve", path, params)
	if err != nil {
		return nil, err
	}

	details := make([]placesearch.GeocodeDetail, 0, len(places))
	for _, place := range places {
		detail, ok := buildDetail(place)
		if !ok {
			continue
		}
		details = append(details, detail)
	}
	return details, nil
}

func (n *Nominatim) get(ctx context.Context, op, path string, params url.Values) (places []gjson.Result, err error) {
	start := time.Now()
	defer func() {
		n.log.GeocoderCall(op, time.Since(start), len(places), err)
	}()

	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s%s?%s", n.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return parsePlaces(body)
}
