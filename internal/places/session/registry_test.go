package session

import (
	"testing"
	"time"

	"placefinder/internal/placesearch"
	"placefinder/platform/apperr"
	"placefinder/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry(time.Minute, logger.Discard())
	s := newTestSession(t, Options{})

	r.Add(s)
	got, err := r.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, r.Len())

	r.Remove(s.ID())
	assert.True(t, s.Closed())
	_, err = r.Get(s.ID())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestRegistryEvictsIdleSessions(t *testing.T) {
	r := NewRegistry(20*time.Millisecond, logger.Discard())
	s := newTestSession(t, Options{})
	r.Add(s)

	require.Eventually(t, s.Closed, 3*time.Second, 10*time.Millisecond)
	_, err := r.Get(s.ID())
	assert.Error(t, err)
}

func TestRegistryKeepsWebSocketSessionsPastIdleTTL(t *testing.T) {
	r := NewRegistry(20*time.Millisecond, logger.Discard())
	idle := newTestSession(t, Options{})
	ws := New(r.NewID(), TransportWebSocket, placesearch.NewFetcher(hanoi, time.Second), Options{}, logger.Discard())
	t.Cleanup(ws.Close)
	r.Add(idle)
	r.Add(ws)

	require.Eventually(t, idle.Closed, 3*time.Second, 10*time.Millisecond)
	r.Touch(ws)
	_, err := r.Get(ws.ID())
	require.NoError(t, err)

	// Touch and Get must not put an expiry back on the socket session.
	time.Sleep(1500 * time.Millisecond)
	assert.False(t, ws.Closed())
	got, err := r.Get(ws.ID())
	require.NoError(t, err)
	assert.Same(t, ws, got)

	r.Remove(ws.ID())
	assert.True(t, ws.Closed())
}

func TestRegistryCloseClosesEverySession(t *testing.T) {
	r := NewRegistry(time.Minute, logger.Discard())
	a := newTestSession(t, Options{})
	b := New(r.NewID(), TransportWebSocket, placesearch.NewFetcher(hanoi, time.Second), Options{}, logger.Discard())
	t.Cleanup(b.Close)
	r.Add(a)
	r.Add(b)

	r.Close()

	assert.True(t, a.Closed())
	assert.True(t, b.Closed())
	assert.Zero(t, r.Len())
}
