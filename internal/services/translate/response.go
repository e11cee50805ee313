package translate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lmbridge/lmbridge/internal/domain/chat/models"
	"github.com/lmbridge/lmbridge/pkg/jsonval"
)

// ErrNoChoices reports a backend reply without a choices sequence.
var ErrNoChoices = errors.New("backend response has no choices")

// FromBackendResponse maps a decoded backend reply onto source-schema
// choices. The reply is first deep-stripped of null members (the
// backend emits nulls at arbitrary depth), then each choice is
// normalized: the index is forced to 0, logprobs and refusal are pinned
// to explicit nulls, and a function call is rewritten into the
// tool_calls convention.
func FromBackendResponse(raw any) ([]models.Choice, error) {
	stripped := jsonval.StripNulls(raw)

	doc, ok := stripped.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("backend response is not an object")
	}
	if _, ok := doc["choices"]; !ok {
		return nil, ErrNoChoices
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("re-encode backend response: %w", err)
	}

	var resp models.BackendResponse
	if err := json.Unmarshal(encoded, &resp); err != nil {
		return nil, fmt.Errorf("backend response shape mismatch: %w", err)
	}

	choices := make([]models.Choice, 0, len(resp.Choices))
	for _, bc := range resp.Choices {
		choices = append(choices, fromBackendChoice(bc))
	}
	return choices, nil
}

func fromBackendChoice(bc models.BackendChoice) models.Choice {
	msg := models.AssistantMessage{
		Role:    bc.Message.Role,
		Content: bc.Message.Content,
	}
	finishReason := bc.FinishReason

	if bc.Message.Role == models.RoleAssistant && bc.Message.FunctionCall != nil {
		msg.ToolCalls = []models.ToolCall{{
			ID:   toolCallID(bc.Message.FunctionsStateID),
			Type: "function",
			Function: models.ToolCallFunction{
				Name:      bc.Message.FunctionCall.Name,
				Arguments: encodeArguments(bc.Message.FunctionCall.Arguments),
			},
		}}

		// Either text or a call, never empty text alongside a call.
		if msg.Content != nil && *msg.Content == "" {
			msg.Content = nil
		}
		if finishReason == "function_call" {
			finishReason = "tool_calls"
		}
	}

	return models.Choice{
		Index:        0,
		Message:      msg,
		Logprobs:     nil,
		FinishReason: finishReason,
	}
}

// toolCallID reuses the backend's call-state id when present so the
// call can be correlated across turns, and mints a fresh one otherwise.
func toolCallID(stateID string) string {
	if stateID != "" {
		return stateID
	}
	return "call_" + uuid.New().String()
}

// encodeArguments re-serializes function-call arguments as JSON text:
// the backend may return them as a structured value, while the source
// schema always carries them as a string.
func encodeArguments(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "{}"
	}
	return buf.String()
}
