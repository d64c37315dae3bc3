package engine

import (
	"encoding/json"
	"fmt"
	"strings"

	"caira-engine/internal/model"
)

// requiredPayloadKeys lists the payload fields each tag must carry for the
// response to be considered well-formed.
var requiredPayloadKeys = map[model.ActionType][]string{
	model.ActionGmailQueryGenerated: {"gmail_search_string"},
	model.ActionFetchAndSummarize:   {"gmail_search_string"},
	model.ActionFetchAndAnswer:      {"gmail_search_string"},
	model.ActionRequired:            {"action"},
}

// ParseModelResponse extracts an ActionResult from the model's free-form
// text. Anything malformed comes back as a PARSE_ERROR carrying the raw
// text for diagnostics; the caller never sees a crash or a retry.
func ParseModelResponse(raw string) (*model.ActionResult, *model.EngineError) {
	cleaned := stripCodeFences(raw)
	if cleaned == "" {
		return nil, model.NewParseError("model returned an empty response", raw)
	}

	var out struct {
		ActionType model.ActionType `json:"action_type"`
		Payload    map[string]any   `json:"payload"`
	}
	if err := json.Unmarshal([]byte(cleaned), &out); err != nil {
		return nil, model.NewParseError("model output is not valid JSON", raw)
	}

	if out.ActionType == "" {
		return nil, model.NewParseError("model output missing action_type field", raw)
	}
	if !out.ActionType.Valid() {
		return nil, model.NewParseError(
			fmt.Sprintf("model returned unknown action type %q", out.ActionType), raw)
	}

	for _, key := range requiredPayloadKeys[out.ActionType] {
		if _, ok := out.Payload[key]; !ok {
			return nil, model.NewParseError(
				fmt.Sprintf("payload for %s missing required field %q", out.ActionType, key), raw)
		}
	}

	return model.NewActionResult(out.ActionType, out.Payload), nil
}

// stripCodeFences removes markdown code fences the model sometimes wraps
// its JSON in.
func stripCodeFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
