package ws

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const clientBuffer = 256

// Handler upgrades the request into a feed subscription. The optional
// employee_id query parameter narrows the feed to one employee.
func Handler(hub *Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		var employee uuid.UUID
		if raw := c.Query("employee_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				_ = c.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "invalid employee_id"))
				_ = c.Close()
				return
			}
			employee = id
		}

		client := &Client{
			hub:      hub,
			conn:     c,
			employee: employee,
			send:     make(chan []byte, clientBuffer),
		}

		select {
		case hub.register <- client:
		case <-hub.done:
			_ = c.Close()
			return
		}

		go client.WritePump()
		client.ReadPump()
	})
}

func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}
