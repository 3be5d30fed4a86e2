package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/argo-float-etl/internal/index"
)

// IndexSource hands out the index currently being served.
type IndexSource interface {
	Current() *index.Index
}

// Server exposes the float query API plus health, readiness, and metrics
// endpoints.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	source     IndexSource
	logger     *slog.Logger
}

// NewServer creates an HTTP server for the query API under /api/v1 and the
// /healthz, /readyz, and /metrics routes.
func NewServer(addr string, source IndexSource, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      engine,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		engine: engine,
		source: source,
		logger: logger,
	}

	engine.GET("/healthz", gin.WrapF(sharedobs.LivenessHandler()))
	engine.GET("/readyz", gin.WrapF(sharedobs.ReadinessHandler(ready)))
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.registerV1Routes()

	return s
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) registerV1Routes() {
	v1 := s.engine.Group("/api/v1")

	floats := v1.Group("/floats")
	floats.GET("", s.handleListFloats)
	floats.GET("/:id", s.handleGetFloat)
	floats.GET("/:id/profiles", s.handleProfiles)
	floats.GET("/:id/trajectory", s.handleTrajectory)
	floats.GET("/:id/summary", s.handleSummary)
	floats.GET("/:id/export", s.handleExport)

	v1.GET("/profiles/:id/measurements", s.handleMeasurements)
	v1.GET("/spatial", s.handleSpatial)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
