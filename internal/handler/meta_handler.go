package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"caira-engine/internal/model"
	"caira-engine/internal/service/engine"
)

// MetaHandler serves the liveness and capability endpoints.
type MetaHandler struct {
	engine *engine.Engine
	ready  bool // whether an API key was configured at startup
}

func NewMetaHandler(eng *engine.Engine, ready bool) *MetaHandler {
	return &MetaHandler{
		engine: eng,
		ready:  ready,
	}
}

// Health handles GET /health.
func (h *MetaHandler) Health(c *gin.Context) {
	status := "healthy"
	if !h.ready {
		status = "unhealthy"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":                status,
		"ai_engine_initialized": h.ready,
		"model_info":            h.engine.ModelInfo(),
	})
}

// Capabilities handles GET /capabilities.
func (h *MetaHandler) Capabilities(c *gin.Context) {
	actionTypes := make([]string, 0, len(model.AllActionTypes()))
	for _, at := range model.AllActionTypes() {
		actionTypes = append(actionTypes, string(at))
	}

	c.JSON(http.StatusOK, gin.H{
		"action_types": actionTypes,
		"workflows": gin.H{
			"one_call": "Direct actions like generating queries or blocking senders",
			"two_call": "Data-bearing actions like summarizing emails or answering questions",
		},
		"follow_up_actions": []string{
			string(model.ActionFetchAndSummarize),
			string(model.ActionFetchAndAnswer),
		},
		"endpoints": gin.H{
			"process":      "POST /process - Process a command or a follow-up with email data",
			"validate":     "POST /validate - Pre-validate a request without a model call",
			"history":      "GET /history/:session_id - Get conversation history",
			"clear":        "DELETE /history/:session_id - Clear conversation history",
			"interactions": "GET /interactions/:session_id - Recent interaction log entries",
			"health":       "GET /health - System health check",
		},
		"model_info": h.engine.ModelInfo(),
	})
}
