package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"caira-engine/internal/config"
	"caira-engine/internal/model"
	"caira-engine/internal/service/llm"
	"caira-engine/internal/service/prompt"
	"caira-engine/pkg/logger"
	"caira-engine/pkg/metrics"
	"caira-engine/pkg/util"
)

const maxCommandLength = 4000

// Follow-up generation parameters differ per task.
const (
	summarizeMaxTokens   = 1500
	summarizeTemperature = 0.3
	answerMaxTokens      = 1000
	answerTemperature    = 0.2
)

// HistoryStore keeps per-session conversation turns. Sessions are a prompt
// enrichment only; the two-call protocol never depends on them.
type HistoryStore interface {
	Append(ctx context.Context, sessionID string, entries ...model.HistoryEntry) error
	List(ctx context.Context, sessionID string) ([]model.HistoryEntry, error)
	Clear(ctx context.Context, sessionID string) (bool, error)
}

// InteractionLog records processed requests, best-effort.
type InteractionLog interface {
	Record(ctx context.Context, in model.Interaction) error
}

// EventPublisher emits engine events, best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Engine is the workflow dispatcher: classify a command, parse the model's
// reply, and either finish in one call or hand the caller a fetch
// instruction for the second call.
type Engine struct {
	llm          llm.Client
	history      HistoryStore
	interactions InteractionLog
	events       EventPublisher
	logger       *zap.Logger

	routerMaxTokens   int
	routerTemperature float64
}

func New(client llm.Client, cfg config.LLMConfig, history HistoryStore, interactions InteractionLog, events EventPublisher, log *zap.Logger) *Engine {
	if history == nil {
		history = NopHistoryStore{}
	}
	if interactions == nil {
		interactions = NopInteractionLog{}
	}
	if events == nil {
		events = NopEventPublisher{}
	}
	return &Engine{
		llm:               client,
		history:           history,
		interactions:      interactions,
		events:            events,
		logger:            log,
		routerMaxTokens:   cfg.MaxTokens,
		routerTemperature: cfg.Temperature,
	}
}

// ProcessCommand handles the first call: classification plus workflow
// selection. On failure the returned error is always an *model.EngineError.
func (e *Engine) ProcessCommand(ctx context.Context, cmd model.Command) (*model.ActionResult, error) {
	start := time.Now()
	log := logger.WithTrace(ctx, e.logger)

	text := strings.TrimSpace(cmd.CommandText)
	if text == "" {
		err := model.NewValidationError("command_text is required")
		e.finish(ctx, start, cmd.SessionID, profileID(cmd.UserProfile), "command", text, model.ActionError, err)
		return nil, err
	}
	if len(text) > maxCommandLength {
		err := model.NewValidationError(fmt.Sprintf("command_text exceeds %d characters", maxCommandLength))
		e.finish(ctx, start, cmd.SessionID, profileID(cmd.UserProfile), "command", "", model.ActionError, err)
		return nil, err
	}

	history := e.loadHistory(ctx, cmd.SessionID, log)

	promptText := prompt.MasterRouter(text, cmd.UserProfile, cmd.EmailContext, history)

	raw, err := e.llm.Complete(ctx, llm.CompletionRequest{
		Prompt:      promptText,
		MaxTokens:   e.routerMaxTokens,
		Temperature: e.routerTemperature,
	})
	if err != nil {
		engErr := model.NewUpstreamError("model api call failed", err)
		retryable, errType := util.IsRetryableError(err)
		log.Error("Model call failed",
			zap.String("error_type", errType),
			zap.Bool("retryable", retryable),
			zap.Error(err),
		)
		e.finish(ctx, start, cmd.SessionID, profileID(cmd.UserProfile), "command", text, model.ActionError, engErr)
		return nil, engErr
	}

	result, perr := ParseModelResponse(raw)
	if perr != nil {
		log.Warn("Failed to parse model output",
			zap.String("message", perr.Message),
			zap.String("raw_response", raw),
		)
		e.finish(ctx, start, cmd.SessionID, profileID(cmd.UserProfile), "command", text, model.ActionError, perr)
		return nil, perr
	}

	annotateWorkflow(result)

	e.appendHistory(ctx, cmd.SessionID, text, result, log)

	log.Info("Command classified",
		zap.String("session_id", cmd.SessionID),
		zap.String("action_type", string(result.ActionType)),
		zap.String("workflow", string(result.ActionType.Workflow())),
	)

	e.finish(ctx, start, cmd.SessionID, profileID(cmd.UserProfile), "command", text, result.ActionType, nil)
	return result, nil
}

// ProcessFollowUp handles the second call of a two-call workflow. The
// caller resupplies the fetched emails and the original command; nothing
// was retained server-side between the calls.
func (e *Engine) ProcessFollowUp(ctx context.Context, req model.FollowUpRequest) (*model.ActionResult, error) {
	start := time.Now()
	log := logger.WithTrace(ctx, e.logger)

	action, ok := NormalizeFollowUpAction(req.FollowUpAction)
	if !ok {
		err := model.NewValidationError(fmt.Sprintf("unknown follow_up_action: %q", req.FollowUpAction))
		e.finish(ctx, start, req.SessionID, profileID(req.UserProfile), "follow_up", req.OriginalCommand, model.ActionError, err)
		return nil, err
	}

	original := strings.TrimSpace(req.OriginalCommand)
	if original == "" {
		err := model.NewValidationError("original_command is required")
		e.finish(ctx, start, req.SessionID, profileID(req.UserProfile), "follow_up", "", model.ActionError, err)
		return nil, err
	}

	var (
		promptText   string
		responseType string
		completion   llm.CompletionRequest
	)
	switch action {
	case model.ActionFetchAndSummarize:
		promptText = prompt.Summarizer(original, req.EmailData)
		responseType = "summary"
		completion = llm.CompletionRequest{Prompt: promptText, MaxTokens: summarizeMaxTokens, Temperature: summarizeTemperature}
	case model.ActionFetchAndAnswer:
		promptText = prompt.QuestionAnswerer(original, req.EmailData)
		responseType = "answer"
		completion = llm.CompletionRequest{Prompt: promptText, MaxTokens: answerMaxTokens, Temperature: answerTemperature}
	}

	raw, err := e.llm.Complete(ctx, completion)
	if err != nil {
		engErr := model.NewUpstreamError("model api call failed", err)
		retryable, errType := util.IsRetryableError(err)
		log.Error("Model call failed",
			zap.String("error_type", errType),
			zap.Bool("retryable", retryable),
			zap.Error(err),
		)
		e.finish(ctx, start, req.SessionID, profileID(req.UserProfile), "follow_up", original, model.ActionError, engErr)
		return nil, engErr
	}

	result := model.NewFinalResponse(raw, responseType, len(req.EmailData))
	result.Metadata = map[string]any{"workflow": string(model.WorkflowTwoCall)}

	e.appendHistory(ctx, req.SessionID,
		fmt.Sprintf("System: Processed %s for %d emails", action, len(req.EmailData)),
		result, log)

	log.Info("Follow-up processed",
		zap.String("session_id", req.SessionID),
		zap.String("follow_up_action", string(action)),
		zap.Int("email_count", len(req.EmailData)),
	)

	e.finish(ctx, start, req.SessionID, profileID(req.UserProfile), "follow_up", original, result.ActionType, nil)
	return result, nil
}

// History returns the stored conversation for a session.
func (e *Engine) History(ctx context.Context, sessionID string) ([]model.HistoryEntry, error) {
	return e.history.List(ctx, sessionID)
}

// ClearHistory drops the stored conversation for a session.
func (e *Engine) ClearHistory(ctx context.Context, sessionID string) (bool, error) {
	return e.history.Clear(ctx, sessionID)
}

// ModelInfo describes the configured model, for health and capabilities.
func (e *Engine) ModelInfo() map[string]any {
	return map[string]any{
		"model":        e.llm.Model(),
		"provider":     "Together AI",
		"capabilities": []string{"text_generation", "json_output", "conversation_history"},
	}
}

// NormalizeFollowUpAction maps both accepted spellings of a follow-up
// action onto the fetch tag it belongs to.
func NormalizeFollowUpAction(action string) (model.ActionType, bool) {
	switch strings.ToUpper(strings.TrimSpace(action)) {
	case string(model.ActionFetchAndSummarize), "SUMMARIZE_CONTENT":
		return model.ActionFetchAndSummarize, true
	case string(model.ActionFetchAndAnswer), "ANSWER_QUESTION":
		return model.ActionFetchAndAnswer, true
	}
	return "", false
}

// ValidationReport is the answer of POST /validate: request-shape checks
// without a model call.
type ValidationReport struct {
	Valid    bool     `json:"valid"`
	Kind     string   `json:"kind"`
	Problems []string `json:"problems,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// ValidateRequest pre-validates a process envelope.
func ValidateRequest(req model.ProcessRequest) ValidationReport {
	report := ValidationReport{Valid: true}

	if req.IsFollowUp() {
		report.Kind = "follow_up"
		if _, ok := NormalizeFollowUpAction(req.FollowUpAction); !ok {
			report.Valid = false
			report.Problems = append(report.Problems, fmt.Sprintf("unknown follow_up_action: %q", req.FollowUpAction))
		}
		if strings.TrimSpace(req.OriginalCommand) == "" {
			report.Valid = false
			report.Problems = append(report.Problems, "original_command is required")
		}
		if len(req.EmailData) == 0 {
			report.Warnings = append(report.Warnings, "email_data is empty; the response will note that no emails were found")
		}
		return report
	}

	report.Kind = "command"
	text := strings.TrimSpace(req.CommandText)
	if text == "" {
		report.Valid = false
		report.Problems = append(report.Problems, "command_text is required")
	}
	if len(text) > maxCommandLength {
		report.Valid = false
		report.Problems = append(report.Problems, fmt.Sprintf("command_text exceeds %d characters", maxCommandLength))
	}
	return report
}

func annotateWorkflow(result *model.ActionResult) {
	if result.Metadata == nil {
		result.Metadata = map[string]any{}
	}
	result.Metadata["workflow"] = string(result.ActionType.Workflow())
	if result.ActionType.RequiresFetch() {
		result.Metadata["requires_fetch"] = true
		result.Metadata["follow_up_action"] = string(result.ActionType)
	}
}

func (e *Engine) loadHistory(ctx context.Context, sessionID string, log *zap.Logger) []model.HistoryEntry {
	if sessionID == "" {
		return nil
	}
	history, err := e.history.List(ctx, sessionID)
	if err != nil {
		log.Warn("Failed to load conversation history, continuing without it",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return nil
	}
	return history
}

func (e *Engine) appendHistory(ctx context.Context, sessionID, userText string, result *model.ActionResult, log *zap.Logger) {
	if sessionID == "" {
		return
	}

	aiContent, err := json.Marshal(result)
	if err != nil {
		log.Warn("Failed to marshal result for history", zap.Error(err))
		return
	}

	if err := e.history.Append(ctx, sessionID,
		model.HistoryEntry{Role: "user", Content: userText},
		model.HistoryEntry{Role: "ai", Content: string(aiContent)},
	); err != nil {
		log.Warn("Failed to append conversation history",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
}

// finish records metrics, the interaction log entry and the processed
// event for one request. All best-effort.
func (e *Engine) finish(ctx context.Context, start time.Time, sessionID, userID, kind, commandText string, actionType model.ActionType, engErr *model.EngineError) {
	log := logger.WithTrace(ctx, e.logger)
	latency := time.Since(start)

	status := "success"
	errCode := ""
	if engErr != nil {
		status = "error"
		errCode = string(engErr.Code)
	}
	metrics.IncrementCommandProcessed(string(actionType), status)

	now := time.Now()

	if err := e.interactions.Record(ctx, model.Interaction{
		SessionID:   sessionID,
		UserID:      userID,
		Kind:        kind,
		CommandText: commandText,
		ActionType:  actionType,
		ErrorCode:   errCode,
		LatencyMS:   latency.Milliseconds(),
		CreatedAt:   now,
	}); err != nil {
		log.Warn("Failed to record interaction", zap.Error(err))
	}

	if err := e.events.Publish(ctx, model.RoutingKeyCommandProcessed, model.CommandProcessedEvent{
		SessionID:  sessionID,
		UserID:     userID,
		Kind:       kind,
		ActionType: actionType,
		Workflow:   actionType.Workflow(),
		ErrorCode:  errCode,
		LatencyMS:  latency.Milliseconds(),
		OccurredAt: now,
	}); err != nil {
		log.Warn("Failed to publish processed event", zap.Error(err))
	}
}

func profileID(p *model.UserProfile) string {
	if p == nil {
		return ""
	}
	return p.UserID
}

// No-op implementations used when the optional infrastructure is absent.

type NopHistoryStore struct{}

func (NopHistoryStore) Append(context.Context, string, ...model.HistoryEntry) error {
	return nil
}
func (NopHistoryStore) List(context.Context, string) ([]model.HistoryEntry, error) {
	return nil, nil
}
func (NopHistoryStore) Clear(context.Context, string) (bool, error) { return false, nil }

type NopInteractionLog struct{}

func (NopInteractionLog) Record(context.Context, model.Interaction) error { return nil }

type NopEventPublisher struct{}

func (NopEventPublisher) Publish(context.Context, string, any) error { return nil }
