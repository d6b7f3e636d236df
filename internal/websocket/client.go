package websocket

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

// Client is one physical websocket connection owned by a logical identity.
type Client struct {
	Identity string
	Conn     *websocket.Conn
	Send     chan OutgoingMessage
	Hub      *Hub
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// writePump owns all writes on the connection: queued messages plus the
// keepalive pings. Exits when the hub closes Send or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Hub.unregister <- c
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// readPump decodes client envelopes and hands them to the hub. The sender
// identity is stamped from the connection, whatever the payload claims.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		_ = c.Conn.Close()
	}()

	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env envelope
		if err := c.Conn.ReadJSON(&env); err != nil {
			return
		}
		c.Hub.Receive(IncomingMessage{
			From:  c.Identity,
			Event: env.Event,
			Data:  env.Data,
			Conn:  c,
		})
	}
}
