// Package translate implements the bidirectional mapping between the
// source (OpenAI-compatible) chat-completion schema and the backend's
// target schema. All functions are pure: they allocate fresh values and
// never mutate their input.
package translate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/lmbridge/lmbridge/internal/domain/chat/models"
)

// ErrNoMessages reports a request whose messages sequence is missing or
// empty; the backend rejects such requests, so translation fails early.
var ErrNoMessages = errors.New("request has no messages")

// use a single instance of Validate, it caches struct info
var validate = validator.New(validator.WithRequiredStructEnabled())

// ToBackendRequest maps a source-schema request onto the backend
// schema. The caller-supplied model name is not part of the result; it
// is only echoed back later when the response envelope is assembled.
func ToBackendRequest(req *models.ChatRequest) (*models.BackendChatRequest, error) {
	if len(req.Messages) == 0 {
		return nil, ErrNoMessages
	}

	out := &models.BackendChatRequest{
		MaxTokens: req.MaxTokens,
	}

	// The backend accepts either temperature or top_p, never both. A
	// zero temperature is expressed as top_p = 0; a positive one passes
	// through; an absent one leaves sampling to the backend defaults
	// (the caller's top_p is then honoured if present).
	switch {
	case req.Temperature != nil && *req.Temperature == 0:
		zero := 0.0
		out.TopP = &zero
	case req.Temperature != nil:
		t := *req.Temperature
		out.Temperature = &t
	case req.TopP != nil:
		p := *req.TopP
		out.TopP = &p
	}

	// Legacy caller-supplied functions win; tools are only consulted
	// when no functions were sent, and only type "function" entries
	// contribute, in their original order.
	switch {
	case len(req.Functions) > 0:
		out.Functions = append([]models.FunctionSpec(nil), req.Functions...)
	case len(req.Tools) > 0:
		for _, tool := range req.Tools {
			if tool.Type != "function" {
				continue
			}
			out.Functions = append(out.Functions, tool.Function)
		}
	}

	out.Messages = make([]models.BackendMessage, 0, len(req.Messages))
	for i, msg := range req.Messages {
		translated, err := toBackendMessage(msg, i)
		if err != nil {
			return nil, err
		}
		out.Messages = append(out.Messages, translated)
	}

	if err := validate.Struct(out); err != nil {
		return nil, fmt.Errorf("translated request failed validation: %w", err)
	}

	return out, nil
}

// toBackendMessage translates a single turn. The name field is dropped,
// tool turns become function turns with their content re-encoded as a
// JSON string, and any system turn after the first is demoted to a user
// turn (the backend accepts a single leading system message only).
func toBackendMessage(msg models.Message, index int) (models.BackendMessage, error) {
	out := models.BackendMessage{Role: msg.Role}

	switch {
	case msg.Role == models.RoleTool:
		out.Role = models.RoleFunction
		out.Content = encodeToolContent(msg.Content)
	default:
		if msg.Role == models.RoleSystem && index > 0 {
			out.Role = models.RoleUser
		}
		content, err := decodeTextContent(msg.Content)
		if err != nil {
			return models.BackendMessage{}, fmt.Errorf("message %d: %w", index, err)
		}
		out.Content = content
	}

	return out, nil
}

// encodeToolContent renders a tool result as the JSON text of its
// value, so structured results reach the backend as a string. An
// absent result encodes as the JSON empty string.
func encodeToolContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return `""`
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		// Not valid JSON; encode the raw text as a JSON string.
		encoded, _ := json.Marshal(string(raw))
		return string(encoded)
	}
	return buf.String()
}

// decodeTextContent extracts plain-text content, coercing an absent or
// null value to the empty string. Structured content outside a tool
// turn has no backend representation and fails the translation.
func decodeTextContent(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", fmt.Errorf("content is not a string: %w", err)
	}
	return text, nil
}
