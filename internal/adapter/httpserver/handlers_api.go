package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/spencerjirehcebrian/weaver/internal/domain"
	apperrors "github.com/spencerjirehcebrian/weaver/internal/platform/errors"
)

type submitTextRequest struct {
	// Pointer so a missing field is distinguishable from an empty string.
	Content *string `json:"content"`
}

func (s *Server) handleSubmitText(c echo.Context) error {
	ctx := c.Request().Context()

	var req submitTextRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("request body must be JSON with a string content field")
	}
	if req.Content == nil {
		return apperrors.ValidationError("content is required")
	}

	record, err := s.app.SubmitText(ctx, *req.Content)
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusCreated, record); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleListTexts(c echo.Context) error {
	ctx := c.Request().Context()

	records, err := s.app.ListTexts(ctx)
	if err != nil {
		return err
	}

	if records == nil {
		records = []domain.TextRecord{}
	}
	if err := c.JSON(http.StatusOK, records); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
