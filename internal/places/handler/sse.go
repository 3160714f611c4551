package handler

import (
	"time"

	"placefinder/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const sseHeartbeat = 25 * time.Second

// Events handles GET /api/v1/places/sessions/:id/events. It streams the
// session's UI commands until the client disconnects or the session ends.
// A disconnect leaves the session open so the client can reconnect.
func (h *Handler) Events(c *gin.Context) {
	s, err := h.registry.Get(c.Param("id"))
	if httpkit.HandleError(c, err) {
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	c.SSEvent("connected", gin.H{"sessionId": s.ID()})
	c.Writer.Flush()

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	clientGone := c.Request.Context().Done()
	for {
		// Commands queued before the stream connected are flushed first.
		for _, cmd := range s.Drain() {
			c.SSEvent(string(cmd.Type), cmd)
		}
		c.Writer.Flush()

		select {
		case <-clientGone:
			h.log.Debug("sse client disconnected", "session_id", s.ID())
			return
		case <-s.Done():
			c.SSEvent("closed", gin.H{"sessionId": s.ID()})
			c.Writer.Flush()
			return
		case <-heartbeat.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			h.registry.Touch(s)
		case <-s.Ready():
			h.registry.Touch(s)
		}
	}
}
