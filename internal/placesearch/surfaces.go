package placesearch

import (
	"context"
	"time"
)

// Provider is the geocoding service. Cancellation is signalled through ctx;
// implementations may ignore it, the Screen discards stale completions anyway.
type Provider interface {
	Suggest(ctx context.Context, text string, region RegionFilter) ([]Suggestion, error)
	// Resolve returns candidate details for a suggestion; the first is used.
	Resolve(ctx context.Context, s Suggestion) ([]GeocodeDetail, error)
}

// The surfaces below are driven by the Screen while it holds its lock.
// Implementations must not call back into the Screen synchronously, except
// for the done callbacks which are always invoked without the lock held.

// MapSurface is the map view.
type MapSurface interface {
	PlaceMarker(point Point, attributes map[string]string)
	ClearMarkers()
	SetViewportToExtent(extent Extent)
	// SetViewportCenterScale animates the viewport and reports whether the
	// animation completed.
	SetViewportCenterScale(center Point, scale float64, duration time.Duration, done func(completed bool))
	CurrentScale() float64
	CurrentCenter() (Point, bool)
}

// ListSurface is the results table and its containing panel.
type ListSurface interface {
	SetRowCount(n int)
	SetRowContent(index int, label string, showIcon bool)
	Refresh()
	SetPanelHeight(px int, animated bool)
}

// TextInput is the search field. Text change events flow the other way,
// into Screen.OnQueryChanged. SetText is programmatic and must not echo
// back as a text change.
type TextInput interface {
	SetText(text string)
	SetPlaceholder(text string)
	DismissFocus()
}

// AlertSurface shows a blocking acknowledgement message.
type AlertSurface interface {
	ShowMessage(text string)
}

// LocationDisplay shows the device location on the map.
type LocationDisplay interface {
	Start(mode AutoPanMode, done func(err error))
}

// Surfaces groups the collaborators a Screen drives.
type Surfaces struct {
	Map      MapSurface
	List     ListSurface
	Text     TextInput
	Alert    AlertSurface
	Location LocationDisplay
}
