package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/snooker/internal/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are checked by middleware.WebSocketCORSCheck
	},
}

// HandleWebSocket upgrades a viewer of the session named by the :id path
// parameter. Authentication happens before this handler runs.
func HandleWebSocket(pm *game.PracticeManager, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("id")
		ps, err := pm.GetSession(sessionID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := &Client{
			id:        uuid.NewString()[:8],
			sessionID: sessionID,
			conn:      conn,
			hub:       hub,
			session:   ps,
			send:      make(chan []byte, 256),
		}
		// first frame is queued before the client is visible to broadcasts
		if data, err := json.Marshal(Message{Type: "snapshot", Data: ps.Snapshot()}); err == nil {
			client.send <- data
		}
		if !hub.join(client) {
			conn.Close()
			return
		}
		ps.Touch()

		go client.writePump()
		go client.readPump()
	}
}
