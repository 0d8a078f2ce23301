// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"encoding/json"
	"log"

	"pulse/internal/feed"
	"pulse/internal/middleware"
	"pulse/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// feedFrame is the wire form of one websocket delivery.
type feedFrame struct {
	Type  string         `json:"type"`
	Posts []*models.Post `json:"posts,omitempty"`
	Error string         `json:"error,omitempty"`
}

func marshalSnapshot(snap feed.Snapshot) ([]byte, error) {
	frame := feedFrame{Type: "feed_snapshot", Posts: snap.Posts}
	if snap.Err != nil {
		frame = feedFrame{Type: "feed_error", Error: "feed refresh failed"}
	}
	return json.Marshal(frame)
}

// FeedUpgrade gates GET /ws/feed: it rejects plain HTTP requests and
// resolves the optional viewer identity from a token query parameter,
// since browsers cannot set headers on websocket upgrades. Anonymous
// connections are allowed; the snapshot carries no viewer-specific state.
func (s *Server) FeedUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if token := c.Query("token"); token != "" {
		id, err := middleware.ParseViewerToken(token)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}
		c.Locals("userID", id)
	}
	return c.Next()
}

// WebSocketFeedHandler handles GET /ws/feed. Each connection receives the
// current full feed snapshot on connect and every refreshed snapshot after.
func (s *Server) WebSocketFeedHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(string)
		if userID == "" {
			userID = "anonymous"
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			log.Printf("WebSocket Feed: failed to register user %s: %v", userID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"feed_error","error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		// Hand the newest known snapshot over immediately; the next refresh
		// follows via the hub.
		s.snapMu.RLock()
		last := s.lastSnapshot
		s.snapMu.RUnlock()
		if last != nil {
			client.TrySend(last)
		}
		s.watcher.Notify()

		go client.WritePump()
		client.ReadPump()
	})
}
