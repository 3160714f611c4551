package session

import (
	"time"

	"placefinder/platform/apperr"
	"placefinder/platform/logger"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Registry tracks live sessions. An SSE session untouched for the idle TTL
// is evicted and closed. WebSocket sessions never expire; they end with
// their connection.
type Registry struct {
	sessions *cache.Cache
	idleTTL  time.Duration
	log      *logger.Logger
}

func NewRegistry(idleTTL time.Duration, log *logger.Logger) *Registry {
	cleanup := idleTTL / 2
	if cleanup < time.Second {
		cleanup = time.Second
	}
	c := cache.New(idleTTL, cleanup)
	r := &Registry{sessions: c, idleTTL: idleTTL, log: log}
	c.OnEvicted(func(id string, v interface{}) {
		s := v.(*Session)
		s.Close()
		log.SessionEvent("closed", id, string(s.Transport()))
	})
	return r
}

// NewID returns a fresh session id.
func (r *Registry) NewID() string {
	return uuid.NewString()
}

// Add registers s.
func (r *Registry) Add(s *Session) {
	r.sessions.Set(s.ID(), s, expiration(s))
	r.log.SessionEvent("opened", s.ID(), string(s.Transport()))
}

// Get returns the session and refreshes its idle deadline.
func (r *Registry) Get(id string) (*Session, error) {
	x, found := r.sessions.Get(id)
	if !found {
		return nil, apperr.NotFound("session not found").WithOp("registry.Get")
	}
	s := x.(*Session)
	if s.Closed() {
		r.sessions.Delete(id)
		return nil, apperr.NotFound("session not found").WithOp("registry.Get")
	}
	_ = r.sessions.Replace(id, s, expiration(s))
	return s, nil
}

// Touch refreshes the idle deadline of a session that is still registered.
func (r *Registry) Touch(s *Session) {
	if s.Closed() {
		return
	}
	// Replace fails for sessions removed in the meantime.
	_ = r.sessions.Replace(s.ID(), s, expiration(s))
}

func expiration(s *Session) time.Duration {
	if s.Transport() == TransportWebSocket {
		return cache.NoExpiration
	}
	return cache.DefaultExpiration
}

// Remove closes and unregisters the session.
func (r *Registry) Remove(id string) {
	r.sessions.Delete(id)
}

func (r *Registry) Len() int {
	return r.sessions.ItemCount()
}

// Close closes every session.
func (r *Registry) Close() {
	for id := range r.sessions.Items() {
		r.sessions.Delete(id)
	}
}
