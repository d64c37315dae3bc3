// Package prompt renders the fixed templates sent to the model. One prompt
// per call, no iterative refinement.
package prompt

import (
	"fmt"
	"strings"

	"caira-engine/internal/model"
)

const (
	contextBodyPreviewLen = 200
	summarizeEmailBodyLen = 1000
	answerEmailBodyLen    = 1200
)

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// MasterRouter builds the classification prompt for the first call. The
// same template serves every command; the model picks the tag.
func MasterRouter(commandText string, profile *model.UserProfile, emailCtx *model.EmailContext, history []model.HistoryEntry) string {
	var b strings.Builder

	b.WriteString("[INST] You are the Caira AI Engine's Master Router. Analyze the user's email command and return ONLY a JSON response.\n\n")

	if profile != nil {
		fmt.Fprintf(&b, "User Profile:\n- Email: %s\n- Timezone: %s\n- Language: %s\n\n",
			orDefault(profile.Email, "N/A"),
			orDefault(profile.Timezone, "UTC"),
			orDefault(profile.Language, "en"),
		)
	}

	if emailCtx != nil {
		fmt.Fprintf(&b, "Current Email Context:\n- Subject: %s\n- Sender: %s\n- Body Preview: %s...\n\n",
			orDefault(emailCtx.Subject, "N/A"),
			orDefault(emailCtx.Sender, "N/A"),
			truncate(orDefault(emailCtx.Body, "N/A"), contextBodyPreviewLen),
		)
	}

	if len(history) > 0 {
		b.WriteString("Conversation History:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "- %s: %s\n", turn.Role, turn.Content)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("No previous conversation history.\n\n")
	}

	fmt.Fprintf(&b, "User Command: %q\n\n", commandText)

	b.WriteString(`CLASSIFICATION RULES:

1. GMAIL_QUERY_GENERATED (One-Call):
   - Search, find, show, list emails
   - Example: "Show emails from John" -> {"action_type": "GMAIL_QUERY_GENERATED", "payload": {"gmail_search_string": "from:john"}}

2. ACTION_REQUIRED (One-Call):
   - Direct actions: block, delete, archive
   - Example: "Block sender X" -> {"action_type": "ACTION_REQUIRED", "payload": {"action": "BLOCK_SENDER", "parameters": {"email": "x@example.com"}}}

3. FETCH_AND_SUMMARIZE (Two-Call):
   - Summaries, overviews
   - Example: "Summarize HR emails" -> {"action_type": "FETCH_AND_SUMMARIZE", "payload": {"gmail_search_string": "from:hr"}}

4. FETCH_AND_ANSWER (Two-Call):
   - Specific questions about content
   - Example: "What time is the meeting?" -> {"action_type": "FETCH_AND_ANSWER", "payload": {"gmail_search_string": "meeting"}}

Respond with ONLY valid JSON: [/INST]`)

	return b.String()
}

// Summarizer builds the second-call prompt for FETCH_AND_SUMMARIZE.
func Summarizer(originalCommand string, emails []model.EmailData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[INST] You are Caira, an intelligent email assistant. The user requested: %q\n\n", originalCommand)
	b.WriteString("Here are the emails to summarize:\n")
	writeEmailBlocks(&b, emails, summarizeEmailBodyLen)

	b.WriteString(`
Provide a clear summary focusing on:
1. Key information and main points
2. Important dates/times/deadlines
3. Action items or requests
4. Overall themes

Be conversational and helpful. [/INST]`)

	return b.String()
}

// QuestionAnswerer builds the second-call prompt for FETCH_AND_ANSWER.
func QuestionAnswerer(originalCommand string, emails []model.EmailData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[INST] You are Caira, an intelligent email assistant. The user asked: %q\n\n", originalCommand)
	b.WriteString("Here are the relevant emails:\n")
	writeEmailBlocks(&b, emails, answerEmailBodyLen)

	b.WriteString(`
Answer the user's question based on the email content. Be specific and quote relevant details when possible. If the information isn't available, say so honestly. [/INST]`)

	return b.String()
}

func writeEmailBlocks(b *strings.Builder, emails []model.EmailData, bodyLimit int) {
	if len(emails) == 0 {
		b.WriteString("\n(no emails were found)\n")
		return
	}
	for i, email := range emails {
		fmt.Fprintf(b, "\nEmail %d:\nSubject: %s\nFrom: %s\nContent: %s\n---\n",
			i+1,
			orDefault(email.Subject, "No Subject"),
			orDefault(email.Sender, "Unknown"),
			truncate(orDefault(email.Body, "No content"), bodyLimit),
		)
	}
}
