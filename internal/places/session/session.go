// Package session binds a placesearch.Screen to a remote client. The screen
// drives a remote view that turns every surface call into a queued UI
// command; transports drain the queue and feed client events back in.
package session

import (
	"errors"
	"sync"
	"time"

	"placefinder/internal/places/transport"
	"placefinder/internal/placesearch"
	"placefinder/platform/apperr"
	"placefinder/platform/logger"
)

// Transport names how a session talks to its client.
type Transport string

const (
	TransportWebSocket Transport = "websocket"
	TransportSSE       Transport = "sse"

	defaultOutboxLimit = 1024
	searchFailedText   = "Could not load suggestions"
)

// Options configures new sessions.
type Options struct {
	Region               placesearch.RegionFilter
	PanelAnimation       time.Duration
	ClearMarkersOnSearch bool
	// OutboxLimit caps the commands queued for a client that stopped
	// draining; past it the session is closed.
	OutboxLimit int
}

// Session is one live map search screen.
type Session struct {
	id        string
	transport Transport
	screen    *placesearch.Screen
	view      *remoteView
	out       *outbox
	log       *logger.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// New creates a session. Call Start once the transport is ready to drain
// commands.
func New(id string, t Transport, fetcher *placesearch.Fetcher, opts Options, log *logger.Logger) *Session {
	if opts.OutboxLimit <= 0 {
		opts.OutboxLimit = defaultOutboxLimit
	}
	log = log.WithSessionID(id)

	s := &Session{
		id:        id,
		transport: t,
		out:       newOutbox(opts.OutboxLimit),
		log:       log,
		done:      make(chan struct{}),
	}
	s.view = newRemoteView(s.enqueue)
	s.screen = placesearch.NewScreen(fetcher, s.view.surfaces(), placesearch.Options{
		Region:               opts.Region,
		PanelAnimation:       opts.PanelAnimation,
		ClearMarkersOnSearch: opts.ClearMarkersOnSearch,
		OnSearchError:        s.searchFailed,
		Logger:               log,
	})
	return s
}

func (s *Session) ID() string           { return s.id }
func (s *Session) Transport() Transport { return s.transport }

// Start shows the initial screen: collapsed panel, placeholder and the
// location display.
func (s *Session) Start() {
	s.screen.Start()
}

// Query forwards a search text change.
func (s *Session) Query(text string) error {
	if s.Closed() {
		return errSessionClosed()
	}
	s.screen.OnQueryChanged(text)
	return nil
}

// Select forwards a row tap.
func (s *Session) Select(index int) error {
	err := s.screen.OnRowSelected(index)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, placesearch.ErrRowOutOfRange):
		return apperr.Wrap(apperr.KindValidation, "row index out of range", err).WithOp("session.Select")
	case errors.Is(err, placesearch.ErrClosed):
		return errSessionClosed()
	default:
		return err
	}
}

// Zoom zooms the map "in" or "out".
func (s *Session) Zoom(direction string) error {
	if s.Closed() {
		return errSessionClosed()
	}
	switch direction {
	case "in":
		s.screen.Zoom(true)
	case "out":
		s.screen.Zoom(false)
	default:
		return apperr.Validation("zoom direction must be in or out").WithOp("session.Zoom")
	}
	return nil
}

func (s *Session) Recenter() error {
	if s.Closed() {
		return errSessionClosed()
	}
	s.screen.Recenter()
	return nil
}

// ReportViewport records the client's current viewport.
func (s *Session) ReportViewport(center placesearch.Point, scale float64) error {
	if s.Closed() {
		return errSessionClosed()
	}
	if scale <= 0 {
		return apperr.Validation("scale must be positive").WithOp("session.ReportViewport")
	}
	s.view.report(center, scale)
	return nil
}

// Ack completes a command that requested acknowledgement.
func (s *Session) Ack(id uint64, ok bool, msg string) error {
	if s.Closed() {
		return errSessionClosed()
	}
	if !s.view.ack(id, ok, msg) {
		return apperr.NotFound("unknown ack id").WithOp("session.Ack")
	}
	return nil
}

// State returns the screen's presentation state.
func (s *Session) State() placesearch.PresentationState {
	return s.screen.State()
}

// Ready is signalled whenever commands are waiting to be drained.
func (s *Session) Ready() <-chan struct{} {
	return s.out.notify
}

// Drain returns the queued commands in order.
func (s *Session) Drain() []transport.Command {
	return s.out.drain()
}

// Done is closed when the session is torn down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Close tears the screen down; in-flight searches and resolves complete as
// no-ops. Close is idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.screen.Close()
	})
}

// Wait blocks until the screen's in-flight provider calls have returned.
func (s *Session) Wait() {
	s.screen.Wait()
}

func (s *Session) enqueue(cmd transport.Command) {
	if s.out.push(cmd) {
		return
	}
	s.log.Warn("session outbox overflow, closing session")
	// enqueue runs under the screen lock; Close takes it.
	go s.Close()
}

// Reject tells the client that one of its messages could not be applied.
func (s *Session) Reject(message string) {
	s.enqueue(transport.Command{Type: transport.CommandError, Data: transport.TextData{Text: message}})
}

func (s *Session) searchFailed(err error) {
	s.enqueue(transport.Command{
		Type: transport.CommandSearchError,
		Data: transport.TextData{Text: searchFailedText},
	})
	s.log.Debug("search error forwarded to client", "error", err)
}

func errSessionClosed() error {
	return apperr.NotFound("session closed")
}
