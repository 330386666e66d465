/*
Package server implements the application's network transport layer.
It initializes the HTTP server, configures timeouts, and exposes the
tracking use cases over a JSON API.
*/
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"hydropulse/internal/tracker"
)

// HealthReporter is implemented by storage backends that can describe
// their own health, such as the PostgreSQL pool.
type HealthReporter interface {
	Health(ctx context.Context) map[string]string
}

// Server holds the dependencies for the HTTP service.
type Server struct {
	port    int
	tracker *tracker.Service
	storage HealthReporter
	log     zerolog.Logger
}

// Config carries the server's dependencies. Storage is optional; when nil
// the health endpoint reports the in-memory store.
type Config struct {
	Port    int
	Tracker *tracker.Service
	Storage HealthReporter
	Logger  zerolog.Logger
}

// NewServer returns a configured *http.Server with production-ready
// network timeouts.
func NewServer(cfg Config) *http.Server {
	app := &Server{
		port:    cfg.Port,
		tracker: cfg.Tracker,
		storage: cfg.Storage,
		log:     cfg.Logger,
	}

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", app.port),
		Handler:      app.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

func (s *Server) healthHandler(c echo.Context) error {
	if s.storage == nil {
		return c.JSON(http.StatusOK, map[string]string{"status": "up", "storage": "memory"})
	}
	return c.JSON(http.StatusOK, s.storage.Health(c.Request().Context()))
}
