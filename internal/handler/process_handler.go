package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"caira-engine/internal/model"
	"caira-engine/internal/service/engine"
)

type ProcessHandler struct {
	engine *engine.Engine
	logger *zap.Logger
}

func NewProcessHandler(eng *engine.Engine, logger *zap.Logger) *ProcessHandler {
	return &ProcessHandler{
		engine: eng,
		logger: logger,
	}
}

// Process handles POST /process. The body is either a Command or a
// FollowUpRequest; follow_up_action discriminates. The response is always
// a single ActionResult, ERROR-tagged on any failure.
func (h *ProcessHandler) Process(c *gin.Context) {
	var req model.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		engErr := model.NewValidationError("malformed request body: " + err.Error())
		c.JSON(engErr.HTTPStatus(), engErr.Result())
		return
	}

	var (
		result *model.ActionResult
		err    error
	)
	if req.IsFollowUp() {
		result, err = h.engine.ProcessFollowUp(c.Request.Context(), req.FollowUp())
	} else {
		result, err = h.engine.ProcessCommand(c.Request.Context(), req.Command())
	}

	if err != nil {
		engErr := model.AsEngineError(err)
		h.logger.Warn("Request resolved to error result",
			zap.String("error_code", string(engErr.Code)),
			zap.String("message", engErr.Message),
		)
		c.JSON(engErr.HTTPStatus(), engErr.Result())
		return
	}

	c.JSON(http.StatusOK, result)
}

// Validate handles POST /validate: request-shape checks without touching
// the model.
func (h *ProcessHandler) Validate(c *gin.Context) {
	var req model.ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, engine.ValidationReport{
			Valid:    false,
			Kind:     "unknown",
			Problems: []string{"malformed request body: " + err.Error()},
		})
		return
	}

	c.JSON(http.StatusOK, engine.ValidateRequest(req))
}
