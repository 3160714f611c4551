package transport

import (
	"encoding/json"

	"placefinder/internal/placesearch"
)

// CommandType names a UI command sent to the client.
type CommandType string

const (
	CommandRowCount       CommandType = "row_count"
	CommandRow            CommandType = "row"
	CommandRefresh        CommandType = "refresh"
	CommandPanelHeight    CommandType = "panel_height"
	CommandMarker         CommandType = "marker"
	CommandClearMarkers   CommandType = "clear_markers"
	CommandViewportExtent CommandType = "viewport_extent"
	CommandViewportCenter CommandType = "viewport_center"
	CommandSetText        CommandType = "set_text"
	CommandDismissFocus   CommandType = "dismiss_focus"
	CommandSetPlaceholder CommandType = "set_placeholder"
	CommandAlert          CommandType = "alert"
	CommandLocationStart  CommandType = "location_start"
	CommandSearchError    CommandType = "search_error"
	// CommandError reports a rejected inbound message.
	CommandError CommandType = "error"
)

// Command is one outbound UI instruction. Commands with a non-zero AckID
// expect an AckRequest carrying the same id.
type Command struct {
	Type  CommandType `json:"type"`
	AckID uint64      `json:"ackId,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

type RowCountData struct {
	Count int `json:"count"`
}

type RowData struct {
	Index    int    `json:"index"`
	Label    string `json:"label"`
	ShowIcon bool   `json:"showIcon"`
}

type PanelHeightData struct {
	Height   int  `json:"height"`
	Animated bool `json:"animated"`
}

type MarkerData struct {
	Point      placesearch.Point `json:"point"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

type ViewportCenterData struct {
	Center     placesearch.Point `json:"center"`
	Scale      float64           `json:"scale"`
	DurationMs int64             `json:"durationMs"`
}

type TextData struct {
	Text string `json:"text"`
}

type LocationStartData struct {
	AutoPan placesearch.AutoPanMode `json:"autoPan"`
}

// MessageType names an inbound WebSocket message.
type MessageType string

const (
	MessageQuery    MessageType = "query"
	MessageSelect   MessageType = "select"
	MessageZoom     MessageType = "zoom"
	MessageRecenter MessageType = "recenter"
	MessageViewport MessageType = "viewport"
	MessageAck      MessageType = "ack"
)

// Message is an inbound WebSocket envelope; Data is decoded according to
// Type into the matching request struct.
type Message struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}
