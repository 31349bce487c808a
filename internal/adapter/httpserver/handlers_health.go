package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const readinessTimeout = 5 * time.Second

func (s *Server) handleLiveness(c echo.Context) error {
	if err := c.JSON(http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	for _, check := range s.healthChecks {
		if err := check.Check(ctx); err != nil {
			if err := c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":       "unhealthy",
				"failed_check": check.Name,
				"error":        err.Error(),
			}); err != nil {
				return fmt.Errorf("failed to send JSON response: %w", err)
			}
			return nil
		}
	}

	if err := c.JSON(http.StatusOK, map[string]any{
		"status": "ready",
		"uptime": time.Since(s.startTime).Seconds(),
	}); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
