package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/snooker/internal/game"
	"github.com/playmatatu/snooker/internal/ws"
)

// HandlePracticeWebSocket streams snapshots and events for one session
func HandlePracticeWebSocket(pm *game.PracticeManager, hub *ws.Hub) gin.HandlerFunc {
	return ws.HandleWebSocket(pm, hub)
}
