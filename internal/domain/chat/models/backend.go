package models

import "encoding/json"

// BackendChatRequest is the target-schema request sent to the wrapped
// chat service. The model name is deliberately absent: the backend
// serves a single model and the caller-supplied name is only echoed
// back in the response envelope.
type BackendChatRequest struct {
	Messages  []BackendMessage `json:"messages" validate:"required,min=1,dive"`
	Functions []FunctionSpec   `json:"functions,omitempty" validate:"omitempty,dive"`
	// Temperature and TopP are mutually exclusive; the translator sets
	// at most one of them.
	Temperature *float64 `json:"temperature,omitempty" validate:"excluded_with=TopP"`
	TopP        *float64 `json:"top_p,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
}

// BackendMessage is a conversation turn in the target schema: content
// is always a plain string and only a single leading system message is
// permitted.
type BackendMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant function"`
	Content string `json:"content"`
}

// BackendResponse holds the choices of a backend reply after the deep
// null-stripping pass. Everything else in the backend envelope (its
// internal model id, its usage accounting) is discarded.
type BackendResponse struct {
	Choices []BackendChoice `json:"choices"`
}

// BackendChoice is one completion alternative as the backend shapes it.
type BackendChoice struct {
	Message      BackendChoiceMessage `json:"message"`
	FinishReason string               `json:"finish_reason"`
}

// BackendChoiceMessage is the assistant turn inside a backend choice.
// FunctionsStateID is the backend-internal call-state identifier; it is
// consumed as the tool-call id and never emitted to the caller.
type BackendChoiceMessage struct {
	Role             string               `json:"role"`
	Content          *string              `json:"content,omitempty"`
	FunctionCall     *BackendFunctionCall `json:"function_call,omitempty"`
	FunctionsStateID string               `json:"functions_state_id,omitempty"`
}

// BackendFunctionCall is a function invocation as returned by the
// backend. Arguments may be a structured JSON value, not necessarily a
// string.
type BackendFunctionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}
