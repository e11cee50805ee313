package models

// ChatResponse is the source-schema completion envelope returned to the
// caller. Created is epoch milliseconds and Model echoes the name the
// caller sent, not the backend's internal model id.
type ChatResponse struct {
	ID                string   `json:"id"`
	Object            string   `json:"object"`
	Created           int64    `json:"created"`
	Model             string   `json:"model"`
	Choices           []Choice `json:"choices"`
	Usage             Usage    `json:"usage"`
	SystemFingerprint string   `json:"system_fingerprint"`
}

// Choice is a single completion alternative. Index is always 0 and
// Logprobs is always serialized as an explicit null: the backend never
// produces more than one alternative and never computes logprobs, but
// callers expect both fields to exist.
type Choice struct {
	Index        int              `json:"index"`
	Message      AssistantMessage `json:"message"`
	Logprobs     any              `json:"logprobs"`
	FinishReason string           `json:"finish_reason,omitempty"`
}

// AssistantMessage is the assistant turn presented to the caller.
// Content is a pointer so that "no text, only a tool call" renders as
// an explicit null rather than an empty string; a backend reply with no
// content at all renders the same way, the field is always on the wire.
// Refusal is a compatibility field, always present and null.
type AssistantMessage struct {
	Role      string     `json:"role"`
	Content   *string    `json:"content"`
	Refusal   any        `json:"refusal"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is a function invocation in the source schema's current
// convention. Arguments is always a JSON-encoded string.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Usage carries placeholder token counters. The backend exposes no
// usable token accounting to the gateway, so these are fixed values
// rather than measurements.
type Usage struct {
	PromptTokens            int                     `json:"prompt_tokens"`
	CompletionTokens        int                     `json:"completion_tokens"`
	TotalTokens             int                     `json:"total_tokens"`
	PromptTokensDetails     PromptTokensDetails     `json:"prompt_tokens_details"`
	CompletionTokensDetails CompletionTokensDetails `json:"completion_tokens_details"`
}

type PromptTokensDetails struct {
	CachedTokens int `json:"cached_tokens"`
}

type CompletionTokensDetails struct {
	ReasoningTokens int `json:"reasoning_tokens"`
}

// PlaceholderUsage returns the fixed usage counters attached to every
// response.
func PlaceholderUsage() Usage {
	return Usage{
		PromptTokens:     10,
		CompletionTokens: 10,
		TotalTokens:      20,
	}
}

// StreamChunk is the single frame of the emulated stream. It is built
// once from the already-completed choice and never followed by further
// deltas, only by the [DONE] sentinel.
type StreamChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
}

// ChunkChoice carries the whole completed message as one delta.
type ChunkChoice struct {
	Index        int              `json:"index"`
	Delta        AssistantMessage `json:"delta"`
	FinishReason *string          `json:"finish_reason"`
}
