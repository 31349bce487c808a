// Package httpserver exposes the ingestion, snapshot, and live-push endpoints
// over HTTP.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/spencerjirehcebrian/weaver/internal/broadcast"
	"github.com/spencerjirehcebrian/weaver/internal/domain"
	"github.com/spencerjirehcebrian/weaver/internal/platform/config"
)

// textService is the application surface the handlers need.
type textService interface {
	SubmitText(ctx context.Context, content string) (*domain.TextRecord, error)
	ListTexts(ctx context.Context) ([]domain.TextRecord, error)
}

// HealthCheck is a named readiness probe dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app         textService
	broadcaster *broadcast.Broadcaster
	upgrader    websocket.Upgrader

	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, app textService, broadcaster *broadcast.Broadcaster, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:        e,
		config:      cfg,
		app:         app,
		broadcaster: broadcaster,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  readBufferSize,
			WriteBufferSize: writeBufferSize,
			CheckOrigin:     NewCheckOrigin(cfg.Origins(), cfg.AppEnv == "development"),
		},
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}
