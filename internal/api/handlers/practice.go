package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/snooker/internal/config"
	"github.com/playmatatu/snooker/internal/game"
	"github.com/playmatatu/snooker/internal/models"
)

// ShotHistory reads journaled shots. It is nil when no database is configured.
type ShotHistory interface {
	ListShots(ctx context.Context, sessionID string, limit int) ([]models.ShotRecord, error)
	SessionStats(ctx context.Context, sessionID string) (models.SessionStats, error)
}

// CreatePractice starts a new practice session and returns its access token
func CreatePractice(pm *game.PracticeManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req game.SessionOptions
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		ps, err := pm.CreateSession(req)
		if err != nil {
			switch {
			case errors.Is(err, game.ErrInvalidLayout):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, game.ErrTooManySessions):
				c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
			default:
				log.Printf("[PRACTICE] Failed to create session: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
			}
			return
		}

		token, err := IssueSessionToken(cfg, ps.ID)
		if err != nil {
			log.Printf("[PRACTICE] Failed to sign token for %s: %v", ps.ID, err)
			pm.CloseSession(ps.ID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"session_id": ps.ID,
			"token":      token,
			"snapshot":   ps.Snapshot(),
		})
	}
}

// GetPractice returns the latest snapshot of a live session
func GetPractice(pm *game.PracticeManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ps, err := pm.GetSession(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		ps.Touch()
		c.JSON(http.StatusOK, ps.Snapshot())
	}
}

// SubmitCommand queues one command for the session's next tick. Command
// errors from the simulation arrive later as command_rejected events.
func SubmitCommand(pm *game.PracticeManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		ps, err := pm.GetSession(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}

		var cmd game.Command
		if err := c.ShouldBindJSON(&cmd); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid command"})
			return
		}
		if !cmd.Type.Valid() {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unknown command " + string(cmd.Type)})
			return
		}

		if err := ps.Submit(cmd); err != nil {
			switch {
			case errors.Is(err, game.ErrSessionClosed):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			case errors.Is(err, game.ErrCommandQueueFull):
				c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"queued": true, "type": cmd.Type})
	}
}

// ClosePractice stops a session and frees its slot
func ClosePractice(pm *game.PracticeManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := pm.CloseSession(c.Param("id")); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"closed": true})
	}
}

// GetPracticeHistory returns journaled shots and aggregate stats. It works
// after the session itself has closed.
func GetPracticeHistory(history ShotHistory) gin.HandlerFunc {
	return func(c *gin.Context) {
		if history == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "shot journal not configured"})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		sessionID := c.Param("id")
		shots, err := history.ListShots(ctx, sessionID, limit)
		if err != nil {
			log.Printf("[DB] Failed to list shots for %s: %v", sessionID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
			return
		}
		stats, err := history.SessionStats(ctx, sessionID)
		if err != nil {
			log.Printf("[DB] Failed to load stats for %s: %v", sessionID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
			return
		}
		if shots == nil {
			shots = []models.ShotRecord{}
		}
		c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "shots": shots, "stats": stats})
	}
}
