package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
)

const (
	readBufferSize  = 1024
	writeBufferSize = 1024
)

// handleWebSocket upgrades the connection and registers it with the
// broadcaster. Joining delivers no history: the viewer is expected to call
// GET /api/texts first and rely on live pushes from then on.
func (s *Server) handleWebSocket(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Warn("Failed to upgrade WebSocket", "error", err)
		// Upgrade already wrote the HTTP error response
		return nil
	}

	if err := s.broadcaster.Register(conn); err != nil {
		slog.Warn("Failed to register viewer", "error", err)
		// Connection already closed by the broadcaster
		return nil
	}

	// Read pump: the viewer sends nothing but close frames and pongs, so this
	// blocks until disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.broadcaster.Unregister(conn)
	return nil
}
