package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"caira-engine/internal/model"
	"caira-engine/internal/service/engine"
)

func TestParseModelResponse(t *testing.T) {
	cases := []struct {
		name       string
		raw        string
		actionType model.ActionType
		payloadKey string
		payloadVal any
	}{
		{
			name:       "plain json",
			raw:        `{"action_type": "GMAIL_QUERY_GENERATED", "payload": {"gmail_search_string": "from:john@example.com"}}`,
			actionType: model.ActionGmailQueryGenerated,
			payloadKey: "gmail_search_string",
			payloadVal: "from:john@example.com",
		},
		{
			name: "fenced json",
			raw: "```json\n" +
				`{"action_type": "FETCH_AND_SUMMARIZE", "payload": {"gmail_search_string": "from:hr"}}` +
				"\n```",
			actionType: model.ActionFetchAndSummarize,
			payloadKey: "gmail_search_string",
			payloadVal: "from:hr",
		},
		{
			name:       "action required with parameters",
			raw:        `{"action_type": "ACTION_REQUIRED", "payload": {"action": "BLOCK_SENDER", "parameters": {"email": "x@example.com"}}}`,
			actionType: model.ActionRequired,
			payloadKey: "action",
			payloadVal: "BLOCK_SENDER",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, perr := engine.ParseModelResponse(tc.raw)
			require.Nil(t, perr)
			require.NotNil(t, result)

			assert.Equal(t, "success", result.Status)
			assert.Equal(t, tc.actionType, result.ActionType)
			assert.Equal(t, tc.payloadVal, result.Payload[tc.payloadKey])
		})
	}
}

func TestParseModelResponseMalformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"free text", "I cannot help with that request."},
		{"empty", ""},
		{"fences only", "```json\n```"},
		{"missing action_type", `{"payload": {"gmail_search_string": "from:hr"}}`},
		{"unknown action_type", `{"action_type": "DO_A_BARREL_ROLL", "payload": {}}`},
		{"wrong case action_type", `{"action_type": "gmail_query_generated", "payload": {}}`},
		{"missing required payload field", `{"action_type": "GMAIL_QUERY_GENERATED", "payload": {}}`},
		{"truncated json", `{"action_type": "GMAIL_QUERY_GENERATED", "payload"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, perr := engine.ParseModelResponse(tc.raw)
			require.Nil(t, result)
			require.NotNil(t, perr)

			assert.Equal(t, model.CodeParse, perr.Code)

			// The rendered result must still carry a valid tag.
			rendered := perr.Result()
			assert.Equal(t, model.ActionError, rendered.ActionType)
			if tc.raw != "" {
				assert.Equal(t, tc.raw, rendered.Payload["raw_response"])
			}
		})
	}
}

func TestParseModelResponseMissingPayloadDefaultsEmpty(t *testing.T) {
	result, perr := engine.ParseModelResponse(`{"action_type": "FINAL_RESPONSE"}`)
	require.Nil(t, perr)
	require.NotNil(t, result.Payload)
	assert.Empty(t, result.Payload)
}
