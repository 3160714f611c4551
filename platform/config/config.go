// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
	IsAuthEnabled() bool
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
	GetRateLimitPerSecond() float64
	GetRateLimitBurst() int
}

// GeocoderConfig provides settings for the upstream geocoding provider.
type GeocoderConfig interface {
	GetGeocoderURL() string
	GetGeocoderUserAgent() string
	GetGeocoderCountryCodes() string
	GetGeocoderLimit() int
	GetGeocoderTimeout() time.Duration
	GetGeocoderRequestsPerSecond() float64
}

// CacheConfig provides settings for the suggestion cache.
type CacheConfig interface {
	GetRedisURL() string
	GetSuggestCacheTTL() time.Duration
	IsRedisEnabled() bool
}

// SessionConfig provides settings for screen sessions.
type SessionConfig interface {
	GetSessionIdleTTL() time.Duration
	GetClearMarkersOnSearch() bool
	GetPanelAnimation() time.Duration
}

// LogConfig provides settings for the logger.
type LogConfig interface {
	GetEnv() string
	GetLogFile() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                       string
	LogFile                   string
	HTTPAddr                  string
	JWTAccessSecret           string
	CORSAllowAll              bool
	CORSOrigins               []string
	CORSAllowCreds            bool
	RateLimitPerSecond        float64
	RateLimitBurst            int
	GeocoderURL               string
	GeocoderUserAgent         string
	GeocoderCountryCodes      string
	GeocoderLimit             int
	GeocoderTimeout           time.Duration
	GeocoderRequestsPerSecond float64
	RedisURL                  string
	SuggestCacheTTL           time.Duration
	SessionIdleTTL            time.Duration
	ClearMarkersOnSearch      bool
	PanelAnimation            time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }
func (c *Config) IsAuthEnabled() bool        { return c.JWTAccessSecret != "" }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string               { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool             { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string          { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool           { return c.CORSAllowCreds }
func (c *Config) GetRateLimitPerSecond() float64    { return c.RateLimitPerSecond }
func (c *Config) GetRateLimitBurst() int            { return c.RateLimitBurst }

// GeocoderConfig implementation
func (c *Config) GetGeocoderURL() string                { return c.GeocoderURL }
func (c *Config) GetGeocoderUserAgent() string          { return c.GeocoderUserAgent }
func (c *Config) GetGeocoderCountryCodes() string       { return c.GeocoderCountryCodes }
func (c *Config) GetGeocoderLimit() int                 { return c.GeocoderLimit }
func (c *Config) GetGeocoderTimeout() time.Duration     { return c.GeocoderTimeout }
func (c *Config) GetGeocoderRequestsPerSecond() float64 { return c.GeocoderRequestsPerSecond }

// CacheConfig implementation
func (c *Config) GetRedisURL() string               { return c.RedisURL }
func (c *Config) GetSuggestCacheTTL() time.Duration { return c.SuggestCacheTTL }
func (c *Config) IsRedisEnabled() bool              { return c.RedisURL != "" }

// SessionConfig implementation
func (c *Config) GetSessionIdleTTL() time.Duration { return c.SessionIdleTTL }
func (c *Config) GetClearMarkersOnSearch() bool    { return c.ClearMarkersOnSearch }
func (c *Config) GetPanelAnimation() time.Duration { return c.PanelAnimation }

// LogConfig implementation
func (c *Config) GetEnv() string     { return c.Env }
func (c *Config) GetLogFile() string { return c.LogFile }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                       getEnv("APP_ENV", "development"),
		LogFile:                   getEnv("LOG_FILE", ""),
		HTTPAddr:                  getEnv("HTTP_ADDR", ":8080"),
		JWTAccessSecret:           getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:              corsAllowAll,
		CORSOrigins:               corsOrigins,
		CORSAllowCreds:            strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		RateLimitPerSecond:        mustFloat(getEnv("RATE_LIMIT_PER_SECOND", "20")),
		RateLimitBurst:            mustInt(getEnv("RATE_LIMIT_BURST", "40")),
		GeocoderURL:               strings.TrimRight(getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org"), "/"),
		GeocoderUserAgent:         getEnv("GEOCODER_USER_AGENT", "placefinder/1.0"),
		GeocoderCountryCodes:      strings.ToLower(getEnv("GEOCODER_COUNTRY_CODES", "vn")),
		GeocoderLimit:             mustInt(getEnv("GEOCODER_LIMIT", "10")),
		GeocoderTimeout:           mustDuration(getEnv("GEOCODER_TIMEOUT", "5s")),
		GeocoderRequestsPerSecond: mustFloat(getEnv("GEOCODER_RPS", "1")),
		RedisURL:                  getEnv("REDIS_URL", ""),
		SuggestCacheTTL:           mustDuration(getEnv("SUGGEST_CACHE_TTL", "10m")),
		SessionIdleTTL:            mustDuration(getEnv("SESSION_IDLE_TTL", "30m")),
		ClearMarkersOnSearch:      strings.EqualFold(getEnv("CLEAR_MARKERS_ON_SEARCH", "true"), "true"),
		PanelAnimation:            mustDuration(getEnv("PANEL_ANIMATION", "100ms")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if _, err := url.ParseRequestURI(c.GeocoderURL); err != nil {
		return fmt.Errorf("GEOCODER_URL is invalid: %w", err)
	}
	if c.GeocoderLimit <= 0 || c.GeocoderLimit > 50 {
		return fmt.Errorf("GEOCODER_LIMIT must be between 1 and 50")
	}
	if c.GeocoderTimeout <= 0 {
		return fmt.Errorf("GEOCODER_TIMEOUT must be a positive duration")
	}
	if c.GeocoderRequestsPerSecond <= 0 {
		return fmt.Errorf("GEOCODER_RPS must be positive")
	}
	if c.SessionIdleTTL <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL must be a positive duration")
	}
	if c.CORSAllowAll && c.CORSAllowCreds {
		return fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
