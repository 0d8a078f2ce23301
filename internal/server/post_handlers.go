// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"pulse/internal/models"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	ctx := c.Context()
	page := parsePagination(c, 50)
	viewer := viewerID(c)

	posts, err := s.feedService.ListFeed(ctx, viewer, page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	ctx := c.Context()
	id := c.Params("id")
	viewer := viewerID(c)

	post, err := s.feedService.GetPost(ctx, id, viewer)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	ctx := c.Context()
	viewer := viewerID(c)

	var req struct {
		Content string `json:"content"`
		Image   string `json:"image,omitempty"`
		LinkURL string `json:"link_url,omitempty"`
		Feeling string `json:"feeling,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.feedService.CreatePost(ctx, service.CreatePostInput{
		UserID:  viewer,
		Content: req.Content,
		Image:   req.Image,
		LinkURL: req.LinkURL,
		Feeling: req.Feeling,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// LikePost handles POST /api/posts/:id/like
func (s *Server) LikePost(c *fiber.Ctx) error {
	ctx := c.Context()
	viewer := viewerID(c)
	id := c.Params("id")

	post, err := s.feedService.ToggleLike(ctx, viewer, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// CreateComment handles POST /api/posts/:id/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	ctx := c.Context()
	viewer := viewerID(c)
	id := c.Params("id")

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.feedService.AddComment(ctx, service.AddCommentInput{
		UserID:  viewer,
		PostID:  id,
		Content: req.Content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// SharePost handles POST /api/posts/:id/share
func (s *Server) SharePost(c *fiber.Ctx) error {
	ctx := c.Context()
	viewer := viewerID(c)
	id := c.Params("id")

	post, err := s.feedService.Share(ctx, viewer, id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}

// GiftPoints handles POST /api/posts/:id/gift
func (s *Server) GiftPoints(c *fiber.Ctx) error {
	ctx := c.Context()
	viewer := viewerID(c)
	id := c.Params("id")

	var req struct {
		Amount int `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.feedService.GiftPoints(ctx, service.GiftPointsInput{
		UserID: viewer,
		PostID: id,
		Amount: req.Amount,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(post)
}
