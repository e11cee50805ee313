package models

import "encoding/json"

// Message roles accepted on the source side of the gateway.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
	RoleFunction  = "function"
)

// ChatRequest is an inbound chat-completion request in the source
// (OpenAI-compatible) schema. Fields the backend cannot express are
// dropped during translation rather than forwarded.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	// Tools is the current-style tool declaration. It is only consulted
	// when the caller did not also send the legacy Functions field.
	Tools []ToolSpec `json:"tools,omitempty"`
	// Functions is the legacy declaration; when present it wins and
	// Tools is ignored entirely.
	Functions   []FunctionSpec `json:"functions,omitempty"`
	Temperature *float64       `json:"temperature,omitempty"`
	TopP        *float64       `json:"top_p,omitempty"`
	MaxTokens   int            `json:"max_tokens,omitempty"`
	Stream      bool           `json:"stream,omitempty"`
}

// Message is a single conversation turn. Content is kept raw because
// tool results may arrive as structured JSON rather than a string, and
// an explicit null must be distinguished from the empty string.
type Message struct {
	Role       string          `json:"role"`
	Content    json.RawMessage `json:"content"`
	Name       string          `json:"name,omitempty"`
	ToolCallID string          `json:"tool_call_id,omitempty"`
}

// ToolSpec declares one callable tool. Only type "function" is
// meaningful to the backend; other types are skipped in translation.
type ToolSpec struct {
	Type     string       `json:"type"`
	Function FunctionSpec `json:"function"`
}

// FunctionSpec is the function payload of a tool declaration. The
// parameter schema is opaque to the gateway and passed through as-is.
type FunctionSpec struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}
