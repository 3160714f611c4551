package handler

import (
	"net/http"

	"placefinder/internal/places/session"
	"placefinder/internal/places/transport"
	"placefinder/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// CreateSession handles POST /api/v1/places/sessions. The session's UI
// commands are streamed from its events endpoint.
func (h *Handler) CreateSession(c *gin.Context) {
	var req transport.CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	s := h.newSession(session.TransportSSE, req.Country)
	s.Start()

	c.JSON(http.StatusCreated, transport.SessionResponse{ID: s.ID(), Transport: string(s.Transport())})
}

// DeleteSession handles DELETE /api/v1/places/sessions/:id
func (h *Handler) DeleteSession(c *gin.Context) {
	s, err := h.registry.Get(c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	h.registry.Remove(s.ID())
	c.Status(http.StatusNoContent)
}

// Query handles POST /api/v1/places/sessions/:id/query
func (h *Handler) Query(c *gin.Context) {
	var req transport.QueryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withSession(c, func(s *session.Session) error {
		return s.Query(req.Text)
	})
}

// Select handles POST /api/v1/places/sessions/:id/select
func (h *Handler) Select(c *gin.Context) {
	var req transport.SelectRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withSession(c, func(s *session.Session) error {
		return s.Select(*req.Index)
	})
}

// Zoom handles POST /api/v1/places/sessions/:id/zoom
func (h *Handler) Zoom(c *gin.Context) {
	var req transport.ZoomRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withSession(c, func(s *session.Session) error {
		return s.Zoom(req.Direction)
	})
}

// Recenter handles POST /api/v1/places/sessions/:id/recenter
func (h *Handler) Recenter(c *gin.Context) {
	h.withSession(c, func(s *session.Session) error {
		return s.Recenter()
	})
}

// Viewport handles POST /api/v1/places/sessions/:id/viewport
func (h *Handler) Viewport(c *gin.Context) {
	var req transport.ViewportReport
	if !h.bindJSON(c, &req) {
		return
	}
	h.withSession(c, func(s *session.Session) error {
		return s.ReportViewport(req.Center, req.Scale)
	})
}

// Ack handles POST /api/v1/places/sessions/:id/acks
func (h *Handler) Ack(c *gin.Context) {
	var req transport.AckRequest
	if !h.bindJSON(c, &req) {
		return
	}
	h.withSession(c, func(s *session.Session) error {
		return s.Ack(req.ID, req.OK, req.Error)
	})
}

func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return false
	}
	return true
}

func (h *Handler) withSession(c *gin.Context, fn func(*session.Session) error) {
	s, err := h.registry.Get(c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}
	if httpkit.HandleError(c, fn(s)) {
		return
	}
	httpkit.Accepted(c)
}
