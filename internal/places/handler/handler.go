// Package handler exposes place search over HTTP: stateless suggest and
// resolve endpoints plus interactive screen sessions over WebSocket or SSE.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"placefinder/internal/places/session"
	"placefinder/internal/places/transport"
	"placefinder/internal/placesearch"
	"placefinder/platform/apperr"
	"placefinder/platform/httpkit"
	"placefinder/platform/logger"
	"placefinder/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgGeocoderDown     = "geocoding service unavailable"
	msgGeocoderTimeout  = "geocoding service timed out"
)

// Handler serves the places endpoints.
type Handler struct {
	fetcher  *placesearch.Fetcher
	registry *session.Registry
	opts     session.Options
	val      *validator.Validator
	log      *logger.Logger
	upgrader websocket.Upgrader
}

// New creates a handler. opts are the defaults for new sessions;
// checkOrigin guards WebSocket upgrades.
func New(fetcher *placesearch.Fetcher, registry *session.Registry, opts session.Options, val *validator.Validator, log *logger.Logger, checkOrigin func(*http.Request) bool) *Handler {
	return &Handler{
		fetcher:  fetcher,
		registry: registry,
		opts:     opts,
		val:      val,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
	}
}

// Suggest handles GET /api/v1/places/suggest?q=...&country=...
func (h *Handler) Suggest(c *gin.Context) {
	var req transport.SuggestRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	list, err := h.fetcher.Suggest(c.Request.Context(), req.Query, h.region(req.Country))
	if err != nil {
		httpkit.HandleError(c, h.geocoderError(c, "places.Suggest", err))
		return
	}
	httpkit.OK(c, transport.SuggestResponse{Suggestions: list})
}

// Resolve handles POST /api/v1/places/resolve
func (h *Handler) Resolve(c *gin.Context) {
	var req transport.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	detail, err := h.fetcher.Resolve(c.Request.Context(), placesearch.Suggestion{Label: req.Label, Ref: req.Ref})
	if errors.Is(err, placesearch.ErrNoDetail) {
		httpkit.HandleError(c, apperr.Wrap(apperr.KindNotFound, "place not found", err).WithOp("places.Resolve"))
		return
	}
	if err != nil {
		httpkit.HandleError(c, h.geocoderError(c, "places.Resolve", err))
		return
	}
	httpkit.OK(c, transport.ResolveResponse{Detail: detail})
}

// geocoderError logs a failed provider call and maps it for the client: a
// timeout is 503, anything else 502.
func (h *Handler) geocoderError(c *gin.Context, op string, err error) error {
	h.log.WithContext(c.Request.Context()).Warn("geocoder request failed", "op", op, "error", err)
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Unavailable(msgGeocoderTimeout).WithOp(op)
	}
	return apperr.Upstream(msgGeocoderDown, err).WithOp(op)
}

// region returns the request's country filter or the configured default.
func (h *Handler) region(country string) placesearch.RegionFilter {
	country = strings.ToLower(strings.TrimSpace(country))
	if country == "" {
		return h.opts.Region
	}
	return placesearch.RegionFilter{CountryCodes: country}
}

func (h *Handler) newSession(t session.Transport, country string) *session.Session {
	opts := h.opts
	opts.Region = h.region(country)
	s := session.New(h.registry.NewID(), t, h.fetcher, opts, h.log)
	h.registry.Add(s)
	return s
}

// clientMessage renders err for a client without leaking internals.
func clientMessage(err error) string {
	var domainErr *apperr.Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return "internal error"
}
