package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/snooker/internal/game"
)

var startTime = time.Now()

const version = "1.0.0-practice"

// HealthCheck returns server health status and the number of live sessions
func HealthCheck(pm *game.PracticeManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"service":  "snooker-practice",
			"version":  version,
			"uptime":   time.Since(startTime).String(),
			"sessions": pm.SessionCount(),
		})
	}
}
