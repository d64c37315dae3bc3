package model

// ActionType identifies which branch of the response schema applies.
// The set is closed: Valid rejects anything the model invents.
type ActionType string

const (
	ActionGmailQueryGenerated ActionType = "GMAIL_QUERY_GENERATED"
	ActionRequired            ActionType = "ACTION_REQUIRED"
	ActionFetchAndSummarize   ActionType = "FETCH_AND_SUMMARIZE"
	ActionFetchAndAnswer      ActionType = "FETCH_AND_ANSWER"
	ActionFinalResponse       ActionType = "FINAL_RESPONSE"
	ActionError               ActionType = "ERROR"
)

// AllActionTypes lists every valid tag, in a stable order.
func AllActionTypes() []ActionType {
	return []ActionType{
		ActionGmailQueryGenerated,
		ActionRequired,
		ActionFetchAndSummarize,
		ActionFetchAndAnswer,
		ActionFinalResponse,
		ActionError,
	}
}

func (a ActionType) Valid() bool {
	switch a {
	case ActionGmailQueryGenerated, ActionRequired,
		ActionFetchAndSummarize, ActionFetchAndAnswer,
		ActionFinalResponse, ActionError:
		return true
	}
	return false
}

// RequiresFetch reports whether the tag starts a two-call workflow: the
// caller must fetch matching emails and resubmit them as a follow-up.
func (a ActionType) RequiresFetch() bool {
	return a == ActionFetchAndSummarize || a == ActionFetchAndAnswer
}

// Workflow names the resolution path for a tag.
type Workflow string

const (
	WorkflowOneCall Workflow = "one_call"
	WorkflowTwoCall Workflow = "two_call"
)

func (a ActionType) Workflow() Workflow {
	if a.RequiresFetch() {
		return WorkflowTwoCall
	}
	return WorkflowOneCall
}

// ActionResult is the single response shape of the engine. Exactly one
// action tag per response, payload keyed by that tag's schema.
type ActionResult struct {
	Status     string         `json:"status"`
	ActionType ActionType     `json:"action_type"`
	Payload    map[string]any `json:"payload"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// NewActionResult builds a success result for a parsed model action.
func NewActionResult(actionType ActionType, payload map[string]any) *ActionResult {
	if payload == nil {
		payload = map[string]any{}
	}
	return &ActionResult{
		Status:     "success",
		ActionType: actionType,
		Payload:    payload,
	}
}

// NewFinalResponse builds the FINAL_RESPONSE result ending a two-call workflow.
func NewFinalResponse(text, responseType string, processedEmails int) *ActionResult {
	return NewActionResult(ActionFinalResponse, map[string]any{
		"text_response":    text,
		"response_type":    responseType,
		"processed_emails": processedEmails,
	})
}
