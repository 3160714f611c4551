package placesearch

import (
	"errors"
	"fmt"
)

var (
	// ErrRowOutOfRange means the client selected a row the screen never
	// rendered: the client's list and the screen state are out of sync.
	ErrRowOutOfRange = errors.New("placesearch: row index out of range")
	// ErrClosed is returned for commands sent after Close.
	ErrClosed = errors.New("placesearch: screen closed")
)

// FetchError is a provider failure while fetching suggestions.
type FetchError struct {
	Query string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch suggestions for %q: %v", e.Query, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ResolveError is a failure resolving a chosen suggestion to detail.
type ResolveError struct {
	Label string
	Err   error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("resolve %q: %v", e.Label, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// LocationError is a device location service failure.
type LocationError struct {
	Err error
}

func (e *LocationError) Error() string {
	return "location display: " + e.Err.Error()
}

func (e *LocationError) Unwrap() error { return e.Err }

// ZoomError reports that a viewport animation did not complete.
type ZoomError struct {
	Scale float64
}

func (e *ZoomError) Error() string {
	return fmt.Sprintf("zoom to scale %.0f did not complete", e.Scale)
}

// ErrNoDetail is wrapped in a ResolveError when the provider answers with
// an empty detail list.
var ErrNoDetail = errors.New("placesearch: provider returned no detail")
