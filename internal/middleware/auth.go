// Package middleware provides request middleware for the application.
package middleware

import (
	"strings"

	"pulse/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// ViewerID returns the authenticated viewer's user ID from the request, if
// any. Handlers that work for anonymous viewers use the second return to
// fall back to a zero identity.
func ViewerID(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals("userID").(string)
	return id, ok && id != ""
}

// AuthRequired enforces a valid identity token on protected routes. Tokens
// are externally issued; this middleware only decodes and verifies them.
// The subject claim carries the viewer's user ID.
func AuthRequired(c *fiber.Ctx) error {
	id, err := viewerFromHeader(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	c.Locals("userID", id)
	return c.Next()
}

// AuthOptional decodes an identity token when present but lets anonymous
// requests through. Used on read-only feed routes where liked state simply
// stays false for anonymous viewers.
func AuthOptional(c *fiber.Ctx) error {
	if c.Get("Authorization") != "" {
		if id, err := viewerFromHeader(c); err == nil {
			c.Locals("userID", id)
		}
	}
	return c.Next()
}

func viewerFromHeader(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Authorization header required")
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid authorization header format")
	}

	return ParseViewerToken(parts[1])
}

// ParseViewerToken verifies a raw identity token and returns its subject.
// Websocket upgrades pass the token as a query parameter since browsers
// cannot set headers there.
func ParseViewerToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Invalid token structure - missing subject")
	}

	return sub, nil
}
