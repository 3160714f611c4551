package placesearch

import (
	"context"
	"errors"
	"sync"
	"time"
)

type suggestReply struct {
	list []Suggestion
	err  error
}

// gatedProvider blocks every call until the test releases it, ignoring
// cancellation unless honourCancel is set.
type gatedProvider struct {
	mu           sync.Mutex
	honourCancel bool
	suggestGates map[string]chan suggestReply
	resolveGates map[string]chan resolveReply
	suggestCalls []string
	resolveCalls []string
	cancelled    []string
}

type resolveReply struct {
	details []GeocodeDetail
	err     error
}

func newGatedProvider() *gatedProvider {
	return &gatedProvider{
		suggestGates: make(map[string]chan suggestReply),
		resolveGates: make(map[string]chan resolveReply),
	}
}

func (p *gatedProvider) suggestGate(query string) chan suggestReply {
	p.mu.Lock()
	defer p.mu.Unlock()
	gate, ok := p.suggestGates[query]
	if !ok {
		gate = make(chan suggestReply, 1)
		p.suggestGates[query] = gate
	}
	return gate
}

func (p *gatedProvider) resolveGate(label string) chan resolveReply {
	p.mu.Lock()
	defer p.mu.Unlock()
	gate, ok := p.resolveGates[label]
	if !ok {
		gate = make(chan resolveReply, 1)
		p.resolveGates[label] = gate
	}
	return gate
}

func (p *gatedProvider) Suggest(ctx context.Context, text string, _ RegionFilter) ([]Suggestion, error) {
	p.mu.Lock()
	p.suggestCalls = append(p.suggestCalls, text)
	p.mu.Unlock()

	gate := p.suggestGate(text)
	if p.honourCancel {
		select {
		case reply := <-gate:
			return reply.list, reply.err
		case <-ctx.Done():
			p.mu.Lock()
			p.cancelled = append(p.cancelled, text)
			p.mu.Unlock()
			return nil, ctx.Err()
		}
	}
	reply := <-gate
	return reply.list, reply.err
}

func (p *gatedProvider) Resolve(_ context.Context, s Suggestion) ([]GeocodeDetail, error) {
	p.mu.Lock()
	p.resolveCalls = append(p.resolveCalls, s.Label)
	p.mu.Unlock()

	reply := <-p.resolveGate(s.Label)
	return reply.details, reply.err
}

func (p *gatedProvider) calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.suggestCalls...)
}

type row struct {
	label    string
	showIcon bool
}

type recordingList struct {
	mu        sync.Mutex
	rowCount  int
	rows      map[int]row
	refreshes int
	heights   []int
	animated  []bool
	history   []string
}

func newRecordingList() *recordingList {
	return &recordingList{rows: make(map[int]row)}
}

func (l *recordingList) SetRowCount(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rowCount = n
	l.rows = make(map[int]row)
}

func (l *recordingList) SetRowContent(index int, label string, showIcon bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows[index] = row{label: label, showIcon: showIcon}
	l.history = append(l.history, label)
}

func (l *recordingList) rendered() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.history...)
}

func (l *recordingList) rowAt(index int) row {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rows[index]
}

func (l *recordingList) Refresh() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.refreshes++
}

func (l *recordingList) SetPanelHeight(px int, animated bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.heights = append(l.heights, px)
	l.animated = append(l.animated, animated)
}

func (l *recordingList) lastHeight() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.heights) == 0 {
		return -1
	}
	return l.heights[len(l.heights)-1]
}

func (l *recordingList) labels() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, l.rowCount)
	for i := 0; i < l.rowCount; i++ {
		out = append(out, l.rows[i].label)
	}
	return out
}

type placedMarker struct {
	point      Point
	attributes map[string]string
}

type recordingMap struct {
	mu           sync.Mutex
	markers      []placedMarker
	clears       int
	extents      []Extent
	scale        float64
	center       *Point
	zoomComplete bool
	zooms        []float64
}

func (m *recordingMap) PlaceMarker(point Point, attributes map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markers = append(m.markers, placedMarker{point: point, attributes: attributes})
}

func (m *recordingMap) ClearMarkers() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	m.markers = nil
}

func (m *recordingMap) SetViewportToExtent(extent Extent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extents = append(m.extents, extent)
}

func (m *recordingMap) SetViewportCenterScale(_ Point, scale float64, _ time.Duration, done func(bool)) {
	m.mu.Lock()
	m.zooms = append(m.zooms, scale)
	complete := m.zoomComplete
	m.mu.Unlock()
	done(complete)
}

func (m *recordingMap) CurrentScale() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scale
}

func (m *recordingMap) CurrentCenter() (Point, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.center == nil {
		return Point{}, false
	}
	return *m.center, true
}

type recordingText struct {
	mu          sync.Mutex
	text        string
	placeholder string
	dismissed   int
}

func (t *recordingText) SetText(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.text = text
}

func (t *recordingText) SetPlaceholder(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.placeholder = text
}

func (t *recordingText) DismissFocus() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dismissed++
}

type recordingAlert struct {
	mu       sync.Mutex
	messages []string
}

func (a *recordingAlert) ShowMessage(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.messages = append(a.messages, text)
}

func (a *recordingAlert) all() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.messages...)
}

type stubLocation struct {
	err   error
	modes []AutoPanMode
}

func (l *stubLocation) Start(mode AutoPanMode, done func(error)) {
	l.modes = append(l.modes, mode)
	done(l.err)
}

var errNetwork = errors.New("network is unreachable")

type harness struct {
	provider *gatedProvider
	list     *recordingList
	mapView  *recordingMap
	text     *recordingText
	alert    *recordingAlert
	location *stubLocation
	screen   *Screen
	errs     []error
	errsMu   sync.Mutex
}

func newHarness(opts Options) *harness {
	h := &harness{
		provider: newGatedProvider(),
		list:     newRecordingList(),
		mapView:  &recordingMap{},
		text:     &recordingText{},
		alert:    &recordingAlert{},
		location: &stubLocation{},
	}
	if opts.Region.CountryCodes == "" {
		opts.Region = RegionFilter{CountryCodes: "vn"}
	}
	opts.OnSearchError = func(err error) {
		h.errsMu.Lock()
		defer h.errsMu.Unlock()
		h.errs = append(h.errs, err)
	}
	h.screen = NewScreen(NewFetcher(h.provider, time.Second), Surfaces{
		Map:      h.mapView,
		List:     h.list,
		Text:     h.text,
		Alert:    h.alert,
		Location: h.location,
	}, opts)
	return h
}

func (h *harness) reportedErrors() []error {
	h.errsMu.Lock()
	defer h.errsMu.Unlock()
	return append([]error(nil), h.errs...)
}
