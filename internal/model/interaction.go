package model

import "time"

// Interaction is one processed request, recorded to the interaction log.
// Recording is best-effort and never fails the request.
type Interaction struct {
	ID          int64      `json:"id"`
	SessionID   string     `json:"session_id"`
	UserID      string     `json:"user_id"`
	Kind        string     `json:"kind"` // "command" or "follow_up"
	CommandText string     `json:"command_text"`
	ActionType  ActionType `json:"action_type"`
	ErrorCode   string     `json:"error_code,omitempty"`
	LatencyMS   int64      `json:"latency_ms"`
	CreatedAt   time.Time  `json:"created_at"`
}

// HistoryEntry is one turn of a session's conversation history.
type HistoryEntry struct {
	Role    string `json:"role"` // "user" or "ai"
	Content string `json:"content"`
}

// CommandProcessedEvent is published to the engine exchange after every
// processed request.
type CommandProcessedEvent struct {
	SessionID  string     `json:"session_id"`
	UserID     string     `json:"user_id"`
	Kind       string     `json:"kind"`
	ActionType ActionType `json:"action_type"`
	Workflow   Workflow   `json:"workflow"`
	ErrorCode  string     `json:"error_code,omitempty"`
	LatencyMS  int64      `json:"latency_ms"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// RoutingKeyCommandProcessed is the routing key for CommandProcessedEvent.
const RoutingKeyCommandProcessed = "engine.command.processed"
