package handler

import (
	"encoding/json"
	"time"

	"placefinder/internal/places/session"
	"placefinder/internal/places/transport"
	"placefinder/platform/apperr"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 8 << 10
)

// WebSocket handles GET /api/v1/places/ws. The connection owns one session:
// inbound messages drive the screen, UI commands are written back as JSON,
// and the session ends with the connection.
func (h *Handler) WebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already replied to the client.
		h.log.Warn("websocket upgrade failed", "error", err, "client_ip", c.ClientIP())
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	s := h.newSession(session.TransportWebSocket, c.Query("country"))
	defer h.registry.Remove(s.ID())

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeLoop(conn, s)
	}()

	s.Start()
	h.readLoop(conn, s)

	s.Close()
	<-writerDone
}

func (h *Handler) readLoop(conn *websocket.Conn, s *session.Session) {
	conn.SetReadLimit(wsMaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var msg transport.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket closed unexpectedly", "session_id", s.ID(), "error", err)
			}
			return
		}
		if s.Closed() {
			return
		}
		h.registry.Touch(s)

		if err := h.dispatch(s, msg); err != nil {
			h.log.Debug("websocket message rejected", "session_id", s.ID(), "type", msg.Type, "error", err)
			s.Reject(clientMessage(err))
		}
	}
}

func (h *Handler) writeLoop(conn *websocket.Conn, s *session.Session) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.Ready():
			if err := writeCommands(conn, s); err != nil {
				s.Close()
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.Close()
				return
			}
		case <-s.Done():
			// Commands queued before the close still reach the client.
			if err := writeCommands(conn, s); err != nil {
				return
			}
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
				time.Now().Add(wsWriteWait))
			return
		}
	}
}

func writeCommands(conn *websocket.Conn, s *session.Session) error {
	for _, cmd := range s.Drain() {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(cmd); err != nil {
			return err
		}
	}
	return nil
}

// dispatch applies one inbound message to the session.
func (h *Handler) dispatch(s *session.Session, msg transport.Message) error {
	switch msg.Type {
	case transport.MessageQuery:
		var req transport.QueryRequest
		if err := h.decode(msg.Data, &req); err != nil {
			return err
		}
		return s.Query(req.Text)
	case transport.MessageSelect:
		var req transport.SelectRequest
		if err := h.decode(msg.Data, &req); err != nil {
			return err
		}
		return s.Select(*req.Index)
	case transport.MessageZoom:
		var req transport.ZoomRequest
		if err := h.decode(msg.Data, &req); err != nil {
			return err
		}
		return s.Zoom(req.Direction)
	case transport.MessageRecenter:
		return s.Recenter()
	case transport.MessageViewport:
		var req transport.ViewportReport
		if err := h.decode(msg.Data, &req); err != nil {
			return err
		}
		return s.ReportViewport(req.Center, req.Scale)
	case transport.MessageAck:
		var req transport.AckRequest
		if err := h.decode(msg.Data, &req); err != nil {
			return err
		}
		return s.Ack(req.ID, req.OK, req.Error)
	default:
		return apperr.BadRequest("unknown message type").WithDetails(msg.Type)
	}
}

func (h *Handler) decode(data json.RawMessage, req interface{}) error {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}
	if err := json.Unmarshal(data, req); err != nil {
		return apperr.Wrap(apperr.KindBadRequest, msgInvalidRequest, err)
	}
	if err := h.val.Struct(req); err != nil {
		return apperr.Wrap(apperr.KindValidation, msgValidationFailed, err)
	}
	return nil
}
