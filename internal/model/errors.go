package model

import (
	"errors"
	"net/http"
)

// ErrorCode is the engine's error taxonomy. Every failure surfaces to the
// caller as an ERROR-tagged ActionResult carrying one of these codes.
type ErrorCode string

const (
	CodeValidation ErrorCode = "VALIDATION_ERROR"
	CodeUpstream   ErrorCode = "UPSTREAM_ERROR"
	CodeParse      ErrorCode = "PARSE_ERROR"
)

// EngineError carries the taxonomy code alongside the underlying cause.
// Raw holds the model's verbatim output for parse failures.
type EngineError struct {
	Code    ErrorCode
	Message string
	Raw     string
	Err     error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *EngineError) Unwrap() error { return e.Err }

func NewValidationError(message string) *EngineError {
	return &EngineError{Code: CodeValidation, Message: message}
}

func NewUpstreamError(message string, err error) *EngineError {
	return &EngineError{Code: CodeUpstream, Message: message, Err: err}
}

func NewParseError(message, raw string) *EngineError {
	return &EngineError{Code: CodeParse, Message: message, Raw: raw}
}

// Result renders the error as an ERROR-tagged ActionResult. The tag field
// is always present, so malformed model output never crashes a caller.
func (e *EngineError) Result() *ActionResult {
	payload := map[string]any{
		"error_code": string(e.Code),
		"message":    e.Message,
	}
	if e.Raw != "" {
		payload["raw_response"] = e.Raw
	}
	return &ActionResult{
		Status:     "error",
		ActionType: ActionError,
		Payload:    payload,
	}
}

// HTTPStatus maps the taxonomy to transport status codes. Parse failures
// are a completed exchange with the upstream, so they report 200 with the
// ERROR result in the body.
func (e *EngineError) HTTPStatus() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}

// AsEngineError coerces any error into the taxonomy. Unknown errors are
// treated as upstream failures since the model call is the only fallible
// dependency on the request path.
func AsEngineError(err error) *EngineError {
	var engErr *EngineError
	if errors.As(err, &engErr) {
		return engErr
	}
	return NewUpstreamError("unexpected failure while processing command", err)
}
