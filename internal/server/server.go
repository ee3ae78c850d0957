// Package server provides the HTTP API for snapshotd.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/SJMakin/even-better-playwright-mcp/internal/logging"
	"github.com/SJMakin/even-better-playwright-mcp/internal/services"
	"github.com/SJMakin/even-better-playwright-mcp/internal/snapshot"
)

// Config holds HTTP server configuration.
type Config struct {
	Host string
	Port int
}

// Server exposes the snapshot service over HTTP.
type Server struct {
	echo   *echo.Echo
	svc    *services.Snapshots
	logger *logging.Logger
	config *Config
}

// NewServer creates the HTTP server and registers its routes.
func NewServer(svc *services.Snapshots, logger *logging.Logger, cfg *Config) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("snapshot service is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg == nil {
		cfg = &Config{Host: "localhost", Port: 9180}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			logger.Underlying().Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)
			return err
		}
	})

	s := &Server{
		echo:   e,
		svc:    svc,
		logger: logger,
		config: cfg,
	}
	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/v1")
	v1.POST("/compress", s.handleCompress)
	v1.POST("/search", s.handleSearch)
	v1.POST("/diff", s.handleDiff)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:   "ok",
		Sessions: s.svc.Store().Len(),
	})
}

// SearchResponse is the response body for POST /v1/search.
type SearchResponse struct {
	Matches []snapshot.Match `json:"matches"`
	Count   int              `json:"count"`
}

func (s *Server) handleCompress(c echo.Context) error {
	var req services.CompressRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	res, err := s.svc.Compress(requestContext(c), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleSearch(c echo.Context) error {
	var req services.SearchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	matches, err := s.svc.Search(requestContext(c), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, SearchResponse{Matches: matches, Count: len(matches)})
}

func (s *Server) handleDiff(c echo.Context) error {
	var req services.DiffRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	res, err := s.svc.Diff(requestContext(c), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

// requestContext carries the echo request ID into the service layer so log
// lines correlate with the access log.
func requestContext(c echo.Context) context.Context {
	ctx := c.Request().Context()
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		ctx = logging.WithRequestID(ctx, id)
	}
	return ctx
}

func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, snapshot.ErrInvalidPattern):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Underlying().Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Underlying().Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
