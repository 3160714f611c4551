// Package places provides the place search bounded context module.
package places

import (
	"net/http"
	"strings"

	apphttp "placefinder/internal/http"
	"placefinder/internal/places/handler"
	"placefinder/internal/places/session"
	"placefinder/internal/placesearch"
	"placefinder/platform/config"
	"placefinder/platform/logger"
	"placefinder/platform/validator"
)

// Config is the configuration the places module reads.
type Config interface {
	config.GeocoderConfig
	config.SessionConfig
	config.HTTPConfig
}

// Module is the places module implementing http.Module.
type Module struct {
	handler  *handler.Handler
	registry *session.Registry
}

// NewModule wires the module around a geocoding provider.
func NewModule(provider placesearch.Provider, cfg Config, val *validator.Validator, log *logger.Logger) *Module {
	fetcher := placesearch.NewFetcher(provider, cfg.GetGeocoderTimeout())
	registry := session.NewRegistry(cfg.GetSessionIdleTTL(), log)
	opts := session.Options{
		Region:               placesearch.RegionFilter{CountryCodes: cfg.GetGeocoderCountryCodes()},
		PanelAnimation:       cfg.GetPanelAnimation(),
		ClearMarkersOnSearch: cfg.GetClearMarkersOnSearch(),
	}

	return &Module{
		handler:  handler.New(fetcher, registry, opts, val, log, originChecker(cfg)),
		registry: registry,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "places"
}

// RegisterRoutes mounts the places routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/places")
	group.GET("/suggest", m.handler.Suggest)
	group.POST("/resolve", m.handler.Resolve)
	group.GET("/ws", m.handler.WebSocket)

	sessions := group.Group("/sessions")
	sessions.POST("", m.handler.CreateSession)
	sessions.GET("/:id/events", m.handler.Events)
	sessions.POST("/:id/query", m.handler.Query)
	sessions.POST("/:id/select", m.handler.Select)
	sessions.POST("/:id/zoom", m.handler.Zoom)
	sessions.POST("/:id/recenter", m.handler.Recenter)
	sessions.POST("/:id/viewport", m.handler.Viewport)
	sessions.POST("/:id/acks", m.handler.Ack)
	sessions.DELETE("/:id", m.handler.DeleteSession)
}

// Close tears down every live session.
func (m *Module) Close() {
	m.registry.Close()
}

// Sessions returns the number of live sessions.
func (m *Module) Sessions() int {
	return m.registry.Len()
}

// originChecker applies the CORS origin policy to WebSocket upgrades.
// Requests without an Origin header are not browser requests and pass.
func originChecker(cfg config.HTTPConfig) func(*http.Request) bool {
	allowAll := cfg.GetCORSAllowAll()
	allowed := make(map[string]struct{}, len(cfg.GetCORSOrigins()))
	for _, origin := range cfg.GetCORSOrigins() {
		allowed[strings.TrimRight(origin, "/")] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAll {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

var _ apphttp.Module = (*Module)(nil)
