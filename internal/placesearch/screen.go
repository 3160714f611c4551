package placesearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"placefinder/platform/logger"
)

const (
	DefaultRowHeight    = 44
	DefaultPlaceholder  = "Enter place"
	DefaultNoResultText = "There is no result"

	resolveFailedText = "Could not load the selected place"
	zoomFailedText    = "Zoom Failed"
	zoomDuration      = time.Second
)

// Options configures a Screen.
type Options struct {
	Region RegionFilter
	// RowHeight is the list row height in pixels.
	RowHeight int
	// PanelAnimation is the duration of a panel transition; zero disables
	// animation and the transition lock with it.
	PanelAnimation time.Duration
	// ClearMarkersOnSearch removes placed markers when a new search starts.
	ClearMarkersOnSearch bool
	Placeholder          string
	NoResultText         string
	// OnSearchError receives each suggestion fetch failure exactly once.
	// It is called without the screen lock held.
	OnSearchError func(err error)
	// AfterFunc schedules panel settling; defaults to time.AfterFunc.
	AfterFunc func(d time.Duration, fn func())
	Logger    *logger.Logger
}

// Screen coordinates one map search screen. Its methods are safe to call
// from multiple goroutines; all state transitions are serialised by a single
// lock so the screen behaves as one logical thread of control.
type Screen struct {
	mu sync.Mutex

	fetcher  *Fetcher
	surfaces Surfaces
	opts     Options
	log      *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool

	query      string
	state      PresentationState
	searches   debouncer
	selections debouncer
	panel      panel
	markers    MarkerOverlay
}

// NewScreen creates a screen in the Collapsed state.
func NewScreen(fetcher *Fetcher, surfaces Surfaces, opts Options) *Screen {
	if opts.RowHeight <= 0 {
		opts.RowHeight = DefaultRowHeight
	}
	if opts.Placeholder == "" {
		opts.Placeholder = DefaultPlaceholder
	}
	if opts.NoResultText == "" {
		opts.NoResultText = DefaultNoResultText
	}
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Screen{
		fetcher:  fetcher,
		surfaces: surfaces,
		opts:     opts,
		log:      opts.Logger,
		ctx:      ctx,
		cancel:   cancel,
		state:    CollapsedState(),
	}
	s.panel = panel{
		list:      surfaces.List,
		animation: opts.PanelAnimation,
		schedule:  s.scheduleLocked,
	}
	return s
}

// Start prepares the surfaces: collapsed panel, search placeholder and the
// device location display in recenter mode.
func (s *Screen) Start() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.panel.reset(0)
	s.surfaces.List.SetRowCount(0)
	s.surfaces.List.Refresh()
	s.surfaces.Text.SetPlaceholder(s.opts.Placeholder)
	s.mu.Unlock()

	s.startLocation()
}

// OnQueryChanged handles one text change event. Every call cancels the
// outstanding suggestion request; a non-empty query issues a new one.
func (s *Screen) OnQueryChanged(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.query = text
	s.selections.stop()

	if text == "" {
		s.searches.stop()
		s.transition(CollapsedState())
		return
	}

	if s.opts.ClearMarkersOnSearch && s.markers.Clear() > 0 {
		s.surfaces.Map.ClearMarkers()
	}

	ctx, seq := s.searches.replace(s.ctx)
	s.wg.Add(1)
	go s.runSearch(ctx, seq, text)
}

func (s *Screen) runSearch(ctx context.Context, seq uint64, query string) {
	defer s.wg.Done()

	list, err := s.fetcher.Suggest(ctx, query, s.opts.Region)

	s.mu.Lock()
	if s.closed || !s.searches.current(seq) {
		s.mu.Unlock()
		s.log.Debug("discarding stale suggestions", slog.String("query", query), slog.Uint64("seq", seq))
		return
	}
	s.searches.done(seq)

	if err != nil {
		// A failed fetch clears the list rather than leaving stale rows.
		s.transition(EmptyState())
		report := s.opts.OnSearchError
		s.mu.Unlock()

		s.log.Warn("suggestion fetch failed", slog.String("query", query), slog.String("error", err.Error()))
		if report != nil {
			report(err)
		}
		return
	}

	s.onSuggestionsReady(list)
	s.mu.Unlock()
}

// onSuggestionsReady applies a completed search. Caller holds the lock.
func (s *Screen) onSuggestionsReady(list []Suggestion) {
	s.transition(ResultsState(list))
}

// OnRowSelected resolves the suggestion behind a row. The resolution is
// asynchronous; on success a marker is placed, the viewport moves to the
// place and the panel collapses. An index that does not name a displayed
// suggestion returns ErrRowOutOfRange.
func (s *Screen) OnRowSelected(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	suggestion, ok := s.state.suggestionAt(index)
	if !ok {
		err := fmt.Errorf("%w: index %d with %d rows in state %s", ErrRowOutOfRange, index, s.state.RowCount(), s.state.Kind())
		s.log.Error("row selection out of sync with results", slog.String("error", err.Error()))
		return err
	}

	ctx, seq := s.selections.replace(s.ctx)
	s.wg.Add(1)
	go s.runResolve(ctx, seq, suggestion)
	return nil
}

func (s *Screen) runResolve(ctx context.Context, seq uint64, suggestion Suggestion) {
	defer s.wg.Done()

	detail, err := s.fetcher.Resolve(ctx, suggestion)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.selections.current(seq) {
		return
	}
	s.selections.done(seq)

	if err != nil {
		s.log.Warn("resolve failed", slog.String("label", suggestion.Label), slog.String("error", err.Error()))
		s.surfaces.Alert.ShowMessage(resolveFailedText)
		return
	}

	// The selection wins over a search still in flight.
	s.searches.stop()

	s.markers.Add(Marker{Label: suggestion.Label, Point: detail.Point, Attributes: detail.Attributes})
	s.surfaces.Map.PlaceMarker(detail.Point, detail.Attributes)
	if detail.Extent != nil {
		s.surfaces.Map.SetViewportToExtent(*detail.Extent)
	}
	s.query = suggestion.Label
	s.surfaces.Text.SetText(suggestion.Label)
	s.surfaces.Text.DismissFocus()
	s.transition(CollapsedState())
}

// Zoom halves (in) or doubles (out) the map scale around the current center.
func (s *Screen) Zoom(in bool) {
	if s.isClosed() {
		return
	}

	scale := s.surfaces.Map.CurrentScale()
	center, ok := s.surfaces.Map.CurrentCenter()
	if !ok || scale <= 0 {
		return
	}

	next := scale * 2
	if in {
		next = scale / 2
	}
	s.surfaces.Map.SetViewportCenterScale(center, next, zoomDuration, func(completed bool) {
		if !completed {
			s.alert(&ZoomError{Scale: next}, zoomFailedText)
		}
	})
}

// Recenter restarts the location display in recenter mode.
func (s *Screen) Recenter() {
	if s.isClosed() {
		return
	}
	s.startLocation()
}

func (s *Screen) startLocation() {
	if s.surfaces.Location == nil {
		return
	}
	s.surfaces.Location.Start(AutoPanRecenter, func(err error) {
		if err != nil {
			locErr := &LocationError{Err: err}
			s.alert(locErr, err.Error())
		}
	})
}

func (s *Screen) alert(err error, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.log.Warn("screen alert", slog.String("error", err.Error()))
	s.surfaces.Alert.ShowMessage(text)
}

// Close tears the screen down. Outstanding requests are cancelled and any
// completion arriving later is a no-op. Close is idempotent.
func (s *Screen) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.searches.stop()
	s.selections.stop()
	s.mu.Unlock()

	s.cancel()
}

// Wait blocks until every in-flight provider call has completed.
func (s *Screen) Wait() {
	s.wg.Wait()
}

// State returns the current presentation state.
func (s *Screen) State() PresentationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Query returns the current search text.
func (s *Screen) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Markers returns the placed markers.
func (s *Screen) Markers() []Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markers.All()
}

// Searching reports whether a suggestion request is outstanding.
func (s *Screen) Searching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searches.pending()
}

func (s *Screen) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// transition moves to next and re-renders the list. Caller holds the lock.
func (s *Screen) transition(next PresentationState) {
	if !next.valid() {
		panic(errors.New("placesearch: invalid presentation state " + next.Kind().String()))
	}
	s.state = next
	s.render()
}

func (s *Screen) render() {
	list := s.surfaces.List
	rows := s.state.RowCount()

	list.SetRowCount(rows)
	switch s.state.Kind() {
	case ExpandedEmpty:
		list.SetRowContent(0, s.opts.NoResultText, false)
	case ExpandedWithResults:
		for i, suggestion := range s.state.suggestions {
			list.SetRowContent(i, suggestion.Label, true)
		}
	}
	list.Refresh()

	s.panel.set(rows*s.opts.RowHeight, true)
}

// scheduleLocked runs fn after d with the screen lock held, unless the
// screen has been closed in the meantime.
func (s *Screen) scheduleLocked(d time.Duration, fn func()) {
	after := s.opts.AfterFunc
	if after == nil {
		after = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	}
	after(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		fn()
	})
}
