// Package http provides the HTTP API for emojid.
package http

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

	"github.com/fyrsmithlabs/emojid/internal/ratelimit"
	"github.com/fyrsmithlabs/emojid/internal/search"
)

// Searcher runs an emoji search for one client request.
type Searcher interface {
	Search(ctx context.Context, clientKey, query string) ([]string, error)
}

// Server provides HTTP endpoints for emojid.
type Server struct {
	echo       *echo.Echo
	searcher   Searcher
	strategies []ratelimit.Strategy
	logger     *zap.Logger
	config     *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
}

// NewServer creates a new HTTP server.
func NewServer(searcher Searcher, logger *zap.Logger, cfg *Config) (*Server, error) {
	if searcher == nil {
		return nil, fmt.Errorf("searcher cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.ApplyDefaults()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:       e,
		searcher:   searcher,
		strategies: ratelimit.DefaultStrategies(),
		logger:     logger,
		config:     cfg,
	}

	// Register routes
	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes() {
	// Health check
	s.echo.GET("/health", s.handleHealth)

	// Prometheus metrics
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API routes
	api := s.echo.Group("/api")
	api.GET("/emojis/search", s.handleSearch)
}

// SearchResponse is the response body for GET /api/emojis/search.
type SearchResponse struct {
	Emojis []string `json:"emojis"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// handleSearch runs the search pipeline for the query parameter.
func (s *Server) handleSearch(c echo.Context) error {
	query := c.QueryParam("query")

	clientKey := ratelimit.ClientKey(s.strategies, c.Request())

	emojis, err := s.searcher.Search(c.Request().Context(), clientKey, query)
	if err != nil {
		switch {
		case errors.Is(err, search.ErrInvalidQuery):
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "query parameter is required"})
		case errors.Is(err, search.ErrRateLimited):
			return c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
		default:
			// Provider and index failures stay generic so upstream
			// details never reach the client.
			s.logger.Error("search failed",
				zap.String("query", query),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				zap.Error(err))
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "search failed"})
		}
	}

	return c.JSON(http.StatusOK, SearchResponse{Emojis: emojis})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
