package websocket

import (
	"udla-mentor-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ServeWs attaches a connection to the hub and blocks until it closes.
func ServeWs(hub *Hub, c *websocket.Conn, mentorID string) {
	client := &Client{Hub: hub, Conn: c, MentorID: mentorID, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}

// Upgrade authenticates the mentor from the "token" query or the bearer header
// before switching protocols.
func Upgrade(secret string) fiber.Handler {
	key := []byte(secret)
	return func(ctx *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(ctx) {
			return fiber.ErrUpgradeRequired
		}

		tokenStr := ctx.Query("token")
		if tokenStr == "" {
			tokenStr = serverutils.BearerToken(ctx)
		}
		if tokenStr == "" {
			return serverutils.Unauthorized("Missing token (Query 'token' or Header 'Authorization')")
		}

		claims, err := serverutils.ParseToken(tokenStr, key)
		if err != nil {
			return serverutils.Unauthorized("Invalid token")
		}
		subject, _ := claims.GetSubject()
		ctx.Locals("mentor_id", subject)
		return ctx.Next()
	}
}

// Handler serves upgraded connections.
func Handler(hub *Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		mentorID, _ := c.Locals("mentor_id").(string)
		ServeWs(hub, c, mentorID)
	})
}
