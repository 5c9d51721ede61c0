package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Ashenafi-pixel/guaguale/history"
)

type historyBody struct {
	SessionID string           `json:"sessionId"`
	Reveals   []history.Record `json:"reveals"`
}

// revealHistory lists the cards revealed in a session, oldest first.
func (s *Server) revealHistory(c *gin.Context) {
	id, err := canonicalID(c.Param("id"))
	if err != nil {
		writeGameError(c, err)
		return
	}
	if s.history == nil {
		writeError(c, http.StatusServiceUnavailable, "reveal history disabled", "HISTORY_DISABLED")
		return
	}
	records, err := s.history.BySession(id)
	if err != nil {
		writeGameError(c, err)
		return
	}
	c.JSON(http.StatusOK, historyBody{SessionID: id, Reveals: records})
}
