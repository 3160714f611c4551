package session

import (
	"errors"
	"sync"
	"time"

	"placefinder/internal/places/transport"
	"placefinder/internal/placesearch"
)

// remoteView implements every placesearch surface by queuing UI commands for
// a remote client. Map state the screen reads back (scale, center) is the
// last value the client reported.
type remoteView struct {
	send func(transport.Command)

	mu        sync.Mutex
	nextAck   uint64
	pending   map[uint64]func(ok bool, msg string)
	center    placesearch.Point
	hasCenter bool
	scale     float64
}

func newRemoteView(send func(transport.Command)) *remoteView {
	return &remoteView{send: send, pending: make(map[uint64]func(bool, string))}
}

func (v *remoteView) surfaces() placesearch.Surfaces {
	return placesearch.Surfaces{Map: v, List: v, Text: v, Alert: v, Location: v}
}

func (v *remoteView) expectAck(fn func(ok bool, msg string)) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nextAck++
	v.pending[v.nextAck] = fn
	return v.nextAck
}

// ack completes a pending command. It reports false for unknown ids.
func (v *remoteView) ack(id uint64, ok bool, msg string) bool {
	v.mu.Lock()
	fn, found := v.pending[id]
	delete(v.pending, id)
	v.mu.Unlock()
	if !found {
		return false
	}
	fn(ok, msg)
	return true
}

func (v *remoteView) report(center placesearch.Point, scale float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.center = center
	v.hasCenter = true
	v.scale = scale
}

func (v *remoteView) PlaceMarker(point placesearch.Point, attributes map[string]string) {
	v.send(transport.Command{Type: transport.CommandMarker, Data: transport.MarkerData{Point: point, Attributes: attributes}})
}

func (v *remoteView) ClearMarkers() {
	v.send(transport.Command{Type: transport.CommandClearMarkers})
}

func (v *remoteView) SetViewportToExtent(extent placesearch.Extent) {
	v.mu.Lock()
	v.center = extent.Center()
	v.hasCenter = true
	v.mu.Unlock()
	v.send(transport.Command{Type: transport.CommandViewportExtent, Data: extent})
}

func (v *remoteView) SetViewportCenterScale(center placesearch.Point, scale float64, duration time.Duration, done func(bool)) {
	id := v.expectAck(func(ok bool, _ string) {
		if ok {
			v.report(center, scale)
		}
		done(ok)
	})
	v.send(transport.Command{
		Type:  transport.CommandViewportCenter,
		AckID: id,
		Data:  transport.ViewportCenterData{Center: center, Scale: scale, DurationMs: duration.Milliseconds()},
	})
}

func (v *remoteView) CurrentScale() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scale
}

func (v *remoteView) CurrentCenter() (placesearch.Point, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.center, v.hasCenter
}

func (v *remoteView) SetRowCount(n int) {
	v.send(transport.Command{Type: transport.CommandRowCount, Data: transport.RowCountData{Count: n}})
}

func (v *remoteView) SetRowContent(index int, label string, showIcon bool) {
	v.send(transport.Command{Type: transport.CommandRow, Data: transport.RowData{Index: index, Label: label, ShowIcon: showIcon}})
}

func (v *remoteView) Refresh() {
	v.send(transport.Command{Type: transport.CommandRefresh})
}

func (v *remoteView) SetPanelHeight(px int, animated bool) {
	v.send(transport.Command{Type: transport.CommandPanelHeight, Data: transport.PanelHeightData{Height: px, Animated: animated}})
}

func (v *remoteView) SetText(text string) {
	v.send(transport.Command{Type: transport.CommandSetText, Data: transport.TextData{Text: text}})
}

func (v *remoteView) SetPlaceholder(text string) {
	v.send(transport.Command{Type: transport.CommandSetPlaceholder, Data: transport.TextData{Text: text}})
}

func (v *remoteView) DismissFocus() {
	v.send(transport.Command{Type: transport.CommandDismissFocus})
}

func (v *remoteView) ShowMessage(text string) {
	v.send(transport.Command{Type: transport.CommandAlert, Data: transport.TextData{Text: text}})
}

func (v *remoteView) Start(mode placesearch.AutoPanMode, done func(error)) {
	id := v.expectAck(func(ok bool, msg string) {
		if ok {
			done(nil)
			return
		}
		if msg == "" {
			msg = "location unavailable"
		}
		done(errors.New(msg))
	})
	v.send(transport.Command{Type: transport.CommandLocationStart, AckID: id, Data: transport.LocationStartData{AutoPan: mode}})
}

var (
	_ placesearch.MapSurface      = (*remoteView)(nil)
	_ placesearch.ListSurface     = (*remoteView)(nil)
	_ placesearch.TextInput       = (*remoteView)(nil)
	_ placesearch.AlertSurface    = (*remoteView)(nil)
	_ placesearch.LocationDisplay = (*remoteView)(nil)
)
