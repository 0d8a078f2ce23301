// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"pulse/internal/models"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// EnsureUser handles POST /api/users/ensure. Clients call it on startup so
// the viewer's record exists before any feed interaction.
func (s *Server) EnsureUser(c *fiber.Ctx) error {
	ctx := c.Context()
	viewer := viewerID(c)

	var req struct {
		Username string `json:"username"`
		Avatar   string `json:"avatar,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.feedService.EnsureViewer(ctx, service.EnsureViewerInput{
		UserID:   viewer,
		Username: req.Username,
		Avatar:   req.Avatar,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	ctx := c.Context()
	viewer := viewerID(c)

	user, err := s.feedService.GetViewer(ctx, viewer)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// ClaimDaily handles POST /api/users/me/claim-daily
func (s *Server) ClaimDaily(c *fiber.Ctx) error {
	ctx := c.Context()
	viewer := viewerID(c)

	user, err := s.feedService.ClaimDaily(ctx, viewer)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}
