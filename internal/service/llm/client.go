package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"caira-engine/internal/config"
	"caira-engine/pkg/circuitbreaker"
	"caira-engine/pkg/metrics"
)

// The model is steered toward tagged JSON at the system level; per-task
// framing lives in the prompt package.
const systemPrompt = "You are a helpful AI assistant that responds with valid JSON objects for Gmail operations."

// Client is the engine's view of the model provider.
type Client interface {
	// Complete sends one prompt and returns the model's trimmed text.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// Model returns the configured model identifier.
	Model() string
}

// CompletionRequest carries per-call generation parameters.
type CompletionRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// TogetherClient talks to the Together AI chat-completions API.
type TogetherClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	logger     *zap.Logger
}

func NewTogetherClient(cfg config.LLMConfig, logger *zap.Logger) *TogetherClient {
	return &TogetherClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		breaker: circuitbreaker.New(circuitbreaker.DefaultConfig()),
		logger:  logger,
	}
}

func (c *TogetherClient) Model() string { return c.model }

// Ready reports whether the client has an API key configured.
func (c *TogetherClient) Ready() bool { return c.apiKey != "" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete runs one chat completion under breaker protection. An open
// breaker fails immediately without touching the network; there is no
// per-request retry either way.
func (c *TogetherClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	start := time.Now()

	var content string
	err := c.breaker.Execute(func() error {
		var callErr error
		content, callErr = c.call(ctx, req)
		return callErr
	})

	metrics.SetBreakerState(int(c.breaker.GetState()))

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.RecordLLMCallLatency("chat_completions", status, time.Since(start))

	if errors.Is(err, circuitbreaker.ErrOpen) {
		c.logger.Warn("Model call short-circuited by open breaker",
			zap.String("model", c.model),
		)
		return "", fmt.Errorf("model api unavailable: %w", err)
	}
	if err != nil {
		return "", err
	}
	return content, nil
}

func (c *TogetherClient) call(ctx context.Context, req CompletionRequest) (string, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        0.9,
	}

	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call model api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return "", fmt.Errorf("model api 5xx: %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("model api error: %d: %s", resp.StatusCode, string(snippet))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode model api response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("model api returned no choices")
	}

	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
