package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// events streams reveal events of one session as server-sent events.
func (s *Server) events(c *gin.Context) {
	id, err := canonicalID(c.Param("id"))
	if err != nil {
		writeGameError(c, err)
		return
	}
	if s.broadcaster == nil {
		writeError(c, http.StatusServiceUnavailable, "event stream disabled", "EVENTS_DISABLED")
		return
	}
	ch, cancel := s.broadcaster.Subscribe(id)
	defer cancel()
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"sessionId": id})
	c.Writer.Flush()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("reveal", ev)
			return true
		}
	})
}
