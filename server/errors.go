package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"

	"github.com/Ashenafi-pixel/guaguale/game"
	"github.com/Ashenafi-pixel/guaguale/prizepool"
)

// APIError is the standard error response body.
type APIError struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeError(c *gin.Context, code int, errMsg, codeStr string) {
	c.AbortWithStatusJSON(code, APIError{
		Error:   errMsg,
		Code:    codeStr,
		Message: errMsg,
	})
}

// writeGameError maps controller errors onto HTTP statuses.
func writeGameError(c *gin.Context, err error) {
	var ce *prizepool.ConfigError
	switch {
	case errors.As(err, &ce):
		writeError(c, http.StatusBadRequest, ce.Message, "CONFIG_INVALID")
	case errors.Is(err, ErrInvalidSessionID):
		writeError(c, http.StatusBadRequest, err.Error(), "INVALID_SESSION")
	case errors.Is(err, ErrStorageUnavailable):
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		writeError(c, http.StatusServiceUnavailable, "session storage unavailable, retry later", "STORAGE_UNAVAILABLE")
	case errors.Is(err, game.ErrNoGame):
		writeError(c, http.StatusConflict, "no game in progress", "NO_GAME")
	case errors.Is(err, game.ErrUnknownCard):
		writeError(c, http.StatusNotFound, err.Error(), "CARD_NOT_FOUND")
	default:
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		writeError(c, http.StatusInternalServerError, "internal error", "INTERNAL")
	}
}
