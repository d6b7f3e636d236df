package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// GET /ws (JWT middleware runs first and injects the identity)
func ServeWS(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := c.GetString("identity")
		if identity == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		client := &Client{
			Identity: identity,
			Conn:     conn,
			Send:     make(chan OutgoingMessage, 32),
			Hub:      hub,
		}

		hub.Register(client)

		go client.writePump()
		go client.readPump()
	}
}
