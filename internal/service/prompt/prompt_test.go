package prompt_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"caira-engine/internal/model"
	"caira-engine/internal/service/prompt"
)

func TestMasterRouter(t *testing.T) {
	p := prompt.MasterRouter("Show emails from John", &model.UserProfile{
		Email:    "user@example.com",
		Timezone: "Europe/Helsinki",
	}, nil, nil)

	assert.Contains(t, p, `"Show emails from John"`)
	assert.Contains(t, p, "user@example.com")
	assert.Contains(t, p, "Europe/Helsinki")
	assert.Contains(t, p, "No previous conversation history.")
	assert.Contains(t, p, "GMAIL_QUERY_GENERATED")
	assert.Contains(t, p, "ACTION_REQUIRED")
	assert.Contains(t, p, "FETCH_AND_SUMMARIZE")
	assert.Contains(t, p, "FETCH_AND_ANSWER")
	assert.Contains(t, p, "Respond with ONLY valid JSON")
}

func TestMasterRouterProfileDefaults(t *testing.T) {
	p := prompt.MasterRouter("hello", &model.UserProfile{}, nil, nil)

	assert.Contains(t, p, "Timezone: UTC")
	assert.Contains(t, p, "Language: en")
}

func TestMasterRouterEmailContextTruncation(t *testing.T) {
	longBody := strings.Repeat("x", 500)
	p := prompt.MasterRouter("what is this about", nil, &model.EmailContext{
		Subject: "Quarterly report",
		Sender:  "boss@corp.com",
		Body:    longBody,
	}, nil)

	assert.Contains(t, p, "Quarterly report")
	assert.Contains(t, p, strings.Repeat("x", 200)+"...")
	assert.NotContains(t, p, strings.Repeat("x", 201))
}

func TestMasterRouterHistory(t *testing.T) {
	history := []model.HistoryEntry{
		{Role: "user", Content: "find emails from alice"},
		{Role: "ai", Content: `{"action_type":"GMAIL_QUERY_GENERATED"}`},
	}

	p := prompt.MasterRouter("and from bob", nil, nil, history)

	assert.Contains(t, p, "Conversation History:")
	assert.Contains(t, p, "find emails from alice")
	assert.NotContains(t, p, "No previous conversation history.")
}

func TestSummarizer(t *testing.T) {
	emails := []model.EmailData{
		{Subject: "Benefits", Sender: "hr@corp.com", Body: "Dental plan update."},
		{Subject: "Schedule", Sender: "hr@corp.com", Body: "Closed Friday."},
	}

	p := prompt.Summarizer("Summarize my HR emails", emails)

	assert.Contains(t, p, `"Summarize my HR emails"`)
	assert.Contains(t, p, "Email 1:")
	assert.Contains(t, p, "Email 2:")
	assert.Contains(t, p, "Subject: Benefits")
	assert.Contains(t, p, "From: hr@corp.com")
	assert.Contains(t, p, "Provide a clear summary")
}

func TestSummarizerEmptyList(t *testing.T) {
	p := prompt.Summarizer("Summarize my HR emails", nil)

	assert.Contains(t, p, "(no emails were found)")
	assert.NotContains(t, p, "Email 1:")
}

func TestQuestionAnswerer(t *testing.T) {
	emails := []model.EmailData{
		{Subject: "Sync", Sender: "pm@corp.com", Body: "Meeting moved to 3pm."},
	}

	p := prompt.QuestionAnswerer("What time is the meeting?", emails)

	assert.Contains(t, p, `"What time is the meeting?"`)
	assert.Contains(t, p, "Meeting moved to 3pm.")
	assert.Contains(t, p, "Answer the user's question")
}

func TestEmailFieldDefaults(t *testing.T) {
	p := prompt.Summarizer("summarize", []model.EmailData{{}})

	assert.Contains(t, p, "No Subject")
	assert.Contains(t, p, "Unknown")
	assert.Contains(t, p, "No content")
}
