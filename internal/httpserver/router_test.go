package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"caira-engine/internal/config"
	"caira-engine/internal/handler"
	"caira-engine/internal/httpserver"
	"caira-engine/internal/service/engine"
	"caira-engine/internal/service/llm"
	"caira-engine/pkg/util"
)

type stubClient struct {
	response string
	err      error
}

func (s *stubClient) Complete(context.Context, llm.CompletionRequest) (string, error) {
	return s.response, s.err
}

func (s *stubClient) Model() string { return "stub-model" }

func newTestRouter(t *testing.T, client llm.Client, jwtSecret string) *httpserver.Router {
	t.Helper()
	gin.SetMode(gin.TestMode)

	eng := engine.New(client, config.LLMConfig{MaxTokens: 1000, Temperature: 0.1}, nil, nil, nil, zap.NewNop())

	return httpserver.NewRouter(
		handler.NewProcessHandler(eng, zap.NewNop()),
		handler.NewHistoryHandler(eng, nil, zap.NewNop()),
		handler.NewMetaHandler(eng, true),
		nil,
		jwtSecret,
		nil,
		nil,
	)
}

func doJSON(router *httpserver.Router, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.Engine.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t, &stubClient{}, "")

	w := doJSON(router, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["ai_engine_initialized"])
}

func TestCapabilities(t *testing.T) {
	router := newTestRouter(t, &stubClient{}, "")

	w := doJSON(router, http.MethodGet, "/capabilities", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		ActionTypes []string `json:"action_types"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.ActionTypes, 6)
	assert.Contains(t, body.ActionTypes, "GMAIL_QUERY_GENERATED")
	assert.Contains(t, body.ActionTypes, "ERROR")
}

func TestProcessCommand(t *testing.T) {
	client := &stubClient{
		response: `{"action_type": "GMAIL_QUERY_GENERATED", "payload": {"gmail_search_string": "from:john@example.com"}}`,
	}
	router := newTestRouter(t, client, "")

	w := doJSON(router, http.MethodPost, "/process",
		`{"command_text": "Show me emails from john@example.com"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		ActionType string         `json:"action_type"`
		Payload    map[string]any `json:"payload"`
		Metadata   map[string]any `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "GMAIL_QUERY_GENERATED", body.ActionType)
	assert.Equal(t, "from:john@example.com", body.Payload["gmail_search_string"])
	assert.Equal(t, "one_call", body.Metadata["workflow"])
}

func TestProcessFollowUp(t *testing.T) {
	client := &stubClient{response: "Summary of two emails."}
	router := newTestRouter(t, client, "")

	w := doJSON(router, http.MethodPost, "/process", `{
		"follow_up_action": "FETCH_AND_SUMMARIZE",
		"original_command": "Summarize my emails from HR",
		"email_data": [
			{"subject": "Benefits", "sender": "hr@corp.com", "body": "Dental."},
			{"subject": "Schedule", "sender": "hr@corp.com", "body": "Friday."}
		]
	}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		ActionType string         `json:"action_type"`
		Payload    map[string]any `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "FINAL_RESPONSE", body.ActionType)
	assert.Equal(t, "Summary of two emails.", body.Payload["text_response"])
	assert.Equal(t, float64(2), body.Payload["processed_emails"])
}

func TestProcessMalformedBody(t *testing.T) {
	router := newTestRouter(t, &stubClient{}, "")

	w := doJSON(router, http.MethodPost, "/process", `{"command_text": 42`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Status     string         `json:"status"`
		ActionType string         `json:"action_type"`
		Payload    map[string]any `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "ERROR", body.ActionType)
	assert.Equal(t, "VALIDATION_ERROR", body.Payload["error_code"])
}

func TestProcessParseErrorStillTagged(t *testing.T) {
	client := &stubClient{response: "I am not JSON."}
	router := newTestRouter(t, client, "")

	w := doJSON(router, http.MethodPost, "/process", `{"command_text": "do something"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		ActionType string         `json:"action_type"`
		Payload    map[string]any `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ERROR", body.ActionType)
	assert.Equal(t, "PARSE_ERROR", body.Payload["error_code"])
	assert.Equal(t, "I am not JSON.", body.Payload["raw_response"])
}

func TestValidateEndpoint(t *testing.T) {
	router := newTestRouter(t, &stubClient{}, "")

	w := doJSON(router, http.MethodPost, "/validate", `{"command_text": ""}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Valid    bool     `json:"valid"`
		Kind     string   `json:"kind"`
		Problems []string `json:"problems"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Valid)
	assert.Equal(t, "command", body.Kind)
	assert.NotEmpty(t, body.Problems)
}

func TestHistoryWithoutStore(t *testing.T) {
	router := newTestRouter(t, &stubClient{}, "")

	w := doJSON(router, http.MethodGet, "/history/some-session", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		TotalTurns int    `json:"total_turns"`
		SessionID  string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0, body.TotalTurns)
	assert.Equal(t, "some-session", body.SessionID)
}

func TestInteractionsWithoutDB(t *testing.T) {
	router := newTestRouter(t, &stubClient{}, "")

	w := doJSON(router, http.MethodGet, "/interactions/some-session", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthProtection(t *testing.T) {
	const secret = "test-secret"
	client := &stubClient{
		response: `{"action_type": "GMAIL_QUERY_GENERATED", "payload": {"gmail_search_string": "from:a"}}`,
	}
	router := newTestRouter(t, client, secret)

	// No token
	w := doJSON(router, http.MethodPost, "/process", `{"command_text": "show emails"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Garbage token
	req := httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(`{"command_text": "show emails"}`))
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	router.Engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid token
	token, err := util.GenerateJWT(7, secret, time.Hour)
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodPost, "/process", strings.NewReader(`{"command_text": "show emails"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.Engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Health stays public
	w = doJSON(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTraceHeaderEchoed(t *testing.T) {
	router := newTestRouter(t, &stubClient{}, "")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Trace-ID", "abc123")
	w := httptest.NewRecorder()
	router.Engine.ServeHTTP(w, req)

	assert.Equal(t, "abc123", w.Header().Get("X-Trace-ID"))

	// Generated when absent
	w = doJSON(router, http.MethodGet, "/healthz", "")
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
}
