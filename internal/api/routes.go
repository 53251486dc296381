package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/snooker/internal/api/handlers"
	"github.com/playmatatu/snooker/internal/config"
	"github.com/playmatatu/snooker/internal/game"
	"github.com/playmatatu/snooker/internal/middleware"
	"github.com/playmatatu/snooker/internal/ws"
)

// SetupRoutes configures all API routes. history may be nil when no
// database is configured.
func SetupRoutes(router *gin.Engine, pm *game.PracticeManager, hub *ws.Hub, history handlers.ShotHistory, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	// No-cache headers in development so snapshots are never stale
	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] No-cache headers enabled for all routes")
	}

	router.GET("/health", handlers.HealthCheck(pm))

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(pm))
		v1.POST("/practice", handlers.CreatePractice(pm, cfg))

		// Session endpoints require the token issued at creation
		practice := v1.Group("/practice/:id", handlers.RequireSessionToken(cfg))
		{
			practice.GET("", handlers.GetPractice(pm))
			practice.POST("/commands", handlers.SubmitCommand(pm))
			practice.DELETE("", handlers.ClosePractice(pm))
			practice.GET("/history", handlers.GetPracticeHistory(history))
			practice.GET("/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandlePracticeWebSocket(pm, hub))
		}
	}
}
