package model

// UserProfile carries caller identity and preferences into prompts.
type UserProfile struct {
	UserID      string         `json:"user_id"`
	Email       string         `json:"email"`
	Preferences map[string]any `json:"preferences,omitempty"`
	Timezone    string         `json:"timezone,omitempty"`
	Language    string         `json:"language,omitempty"`
}

// EmailContext is the email the user is currently viewing, if any.
type EmailContext struct {
	Subject   string `json:"subject,omitempty"`
	Sender    string `json:"sender,omitempty"`
	Body      string `json:"body,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	ThreadID  string `json:"thread_id,omitempty"`
}

// EmailData is one fetched email record supplied by the caller on the
// second call of a two-call workflow.
type EmailData struct {
	Subject   string   `json:"subject"`
	Sender    string   `json:"sender"`
	Body      string   `json:"body"`
	Timestamp string   `json:"timestamp,omitempty"`
	ThreadID  string   `json:"thread_id,omitempty"`
	Labels    []string `json:"labels,omitempty"`
}

// Command is the initial natural-language request. Immutable once received.
type Command struct {
	SessionID    string        `json:"session_id,omitempty"`
	CommandText  string        `json:"command_text"`
	UserProfile  *UserProfile  `json:"user_profile,omitempty"`
	EmailContext *EmailContext `json:"email_context,omitempty"`
}

// FollowUpRequest is the second call of a two-call workflow. The caller
// resupplies everything; the server correlates nothing.
type FollowUpRequest struct {
	SessionID       string       `json:"session_id,omitempty"`
	FollowUpAction  string       `json:"follow_up_action"`
	EmailData       []EmailData  `json:"email_data"`
	OriginalCommand string       `json:"original_command"`
	UserProfile     *UserProfile `json:"user_profile,omitempty"`
}

// ProcessRequest is the wire envelope of POST /process. It holds the union
// of Command and FollowUpRequest fields; follow_up_action discriminates.
type ProcessRequest struct {
	SessionID       string        `json:"session_id,omitempty"`
	CommandText     string        `json:"command_text,omitempty"`
	UserProfile     *UserProfile  `json:"user_profile,omitempty"`
	EmailContext    *EmailContext `json:"email_context,omitempty"`
	FollowUpAction  string        `json:"follow_up_action,omitempty"`
	EmailData       []EmailData   `json:"email_data,omitempty"`
	OriginalCommand string        `json:"original_command,omitempty"`
}

// IsFollowUp reports which of the two request kinds this envelope carries.
func (r *ProcessRequest) IsFollowUp() bool {
	return r.FollowUpAction != ""
}

// Command extracts the initial-command view of the envelope.
func (r *ProcessRequest) Command() Command {
	return Command{
		SessionID:    r.SessionID,
		CommandText:  r.CommandText,
		UserProfile:  r.UserProfile,
		EmailContext: r.EmailContext,
	}
}

// FollowUp extracts the follow-up view of the envelope.
func (r *ProcessRequest) FollowUp() FollowUpRequest {
	return FollowUpRequest{
		SessionID:       r.SessionID,
		FollowUpAction:  r.FollowUpAction,
		EmailData:       r.EmailData,
		OriginalCommand: r.OriginalCommand,
		UserProfile:     r.UserProfile,
	}
}
