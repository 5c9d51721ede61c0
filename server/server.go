package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"

	"github.com/Ashenafi-pixel/guaguale/config"
	"github.com/Ashenafi-pixel/guaguale/events"
	"github.com/Ashenafi-pixel/guaguale/history"
)

// HistoryReader lists the reveal records of one session.
type HistoryReader interface {
	BySession(sessionID string) ([]history.Record, error)
}

type Server struct {
	cfg         *config.Config
	registry    *Registry
	broadcaster *events.Broadcaster
	history     HistoryReader
	engine      *gin.Engine
}

// New wires the routes. broadcaster and hist may be nil, in which case the event
// stream and the reveal history are unavailable.
func New(cfg *config.Config, registry *Registry, broadcaster *events.Broadcaster, hist HistoryReader) *Server {
	s := &Server{cfg: cfg, registry: registry, broadcaster: broadcaster, history: hist}
	r := gin.New()
	r.Use(gin.Recovery(), cors())
	if cfg.LogVerbose {
		r.Use(requestLogger())
	}
	r.GET("/health", s.health)

	api := r.Group("/api/sessions")
	api.POST("", s.createSession)
	api.GET("/:id", s.getSession)
	api.GET("/:id/prizes", s.getPrizes)
	api.PUT("/:id/prizes", s.putPrizes)
	api.POST("/:id/draw", s.draw)
	api.POST("/:id/reset", s.reset)
	api.POST("/:id/shuffle", s.shuffle)
	api.POST("/:id/filter", s.setFilter)
	api.GET("/:id/page", s.page)
	api.POST("/:id/cards/:cardId/pointer", s.pointer)
	api.GET("/:id/events", s.events)
	api.GET("/:id/history", s.revealHistory)
	s.engine = r
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	port := s.cfg.Port
	if port <= 0 {
		port = 8080
	}
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("guaguale listening on %s (store: %s)", srv.Addr, s.cfg.Store)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requestLogger logs method, path and status for each request (no bodies).
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Infof("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "guaguale", "sessions": s.registry.Len()})
}
