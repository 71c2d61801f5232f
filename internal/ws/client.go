package ws

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Client is one dashboard connection. A client with an employee filter
// only receives that employee's events.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	employee uuid.UUID
	send     chan []byte
}

func (c *Client) wants(event Event) bool {
	return c.employee == uuid.Nil || c.employee == event.EmployeeID
}

func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	// dashboards never send anything; reading only detects the close
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}
