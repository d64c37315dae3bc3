package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"caira-engine/internal/model"
	"caira-engine/internal/service/engine"
)

const defaultInteractionLimit = 20

// InteractionReader exposes the persisted interaction log for inspection.
type InteractionReader interface {
	RecentBySession(ctx context.Context, sessionID string, limit int) ([]model.Interaction, error)
}

type HistoryHandler struct {
	engine       *engine.Engine
	interactions InteractionReader
	logger       *zap.Logger
}

// NewHistoryHandler builds the handler. interactions is nil when no
// database is configured; the interactions endpoint then reports 404.
func NewHistoryHandler(eng *engine.Engine, interactions InteractionReader, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		engine:       eng,
		interactions: interactions,
		logger:       logger,
	}
}

// Get handles GET /history/:session_id.
func (h *HistoryHandler) Get(c *gin.Context) {
	sessionID := c.Param("session_id")

	history, err := h.engine.History(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("Failed to load history",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":  sessionID,
		"history":     history,
		"total_turns": len(history),
	})
}

// Delete handles DELETE /history/:session_id.
func (h *HistoryHandler) Delete(c *gin.Context) {
	sessionID := c.Param("session_id")

	cleared, err := h.engine.ClearHistory(c.Request.Context(), sessionID)
	if err != nil {
		h.logger.Error("Failed to clear history",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear history"})
		return
	}

	message := "No history found for this session"
	if cleared {
		message = "Conversation history cleared"
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"cleared":    cleared,
		"message":    message,
	})
}

// Interactions handles GET /interactions/:session_id.
func (h *HistoryHandler) Interactions(c *gin.Context) {
	if h.interactions == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "interaction log is not configured"})
		return
	}

	sessionID := c.Param("session_id")

	limit := defaultInteractionLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer between 1 and 100"})
			return
		}
		limit = n
	}

	interactions, err := h.interactions.RecentBySession(c.Request.Context(), sessionID, limit)
	if err != nil {
		h.logger.Error("Failed to load interactions",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load interactions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":   sessionID,
		"interactions": interactions,
		"count":        len(interactions),
	})
}
