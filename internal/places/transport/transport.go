// Package transport holds the request, response and wire message types of
// the places API.
package transport

import "placefinder/internal/placesearch"

// SuggestRequest is the stateless type-ahead query.
type SuggestRequest struct {
	Query   string `form:"q" validate:"required,max=200"`
	Country string `form:"country" validate:"omitempty,countrycodes"`
}

type SuggestResponse struct {
	Suggestions []placesearch.Suggestion `json:"suggestions"`
}

// ResolveRequest resolves one suggestion to coordinates.
type ResolveRequest struct {
	Label string `json:"label" validate:"required,max=500"`
	Ref   string `json:"ref" validate:"max=64"`
}

type ResolveResponse struct {
	Detail placesearch.GeocodeDetail `json:"detail"`
}

type CreateSessionRequest struct {
	Country string `json:"country" validate:"omitempty,countrycodes"`
}

type SessionResponse struct {
	ID        string `json:"id"`
	Transport string `json:"transport"`
}

type QueryRequest struct {
	Text string `json:"text" validate:"max=200"`
}

type SelectRequest struct {
	Index *int `json:"index" validate:"required"`
}

type ZoomRequest struct {
	Direction string `json:"direction" validate:"required,oneof=in out"`
}

// ViewportReport is the client's current map viewport.
type ViewportReport struct {
	Center placesearch.Point `json:"center"`
	Scale  float64           `json:"scale" validate:"gt=0"`
}

// AckRequest completes a command that asked for an acknowledgement.
type AckRequest struct {
	ID    uint64 `json:"id" validate:"required"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}
