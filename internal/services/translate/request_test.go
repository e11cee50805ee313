package translate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmbridge/lmbridge/internal/domain/chat/models"
)

func floatPtr(f float64) *float64 { return &f }

func userMessage(content string) models.Message {
	raw, _ := json.Marshal(content)
	return models.Message{Role: models.RoleUser, Content: raw}
}

func TestToBackendRequestMessages(t *testing.T) {
	tests := []struct {
		name     string
		messages []models.Message
		expected []models.BackendMessage
	}{
		{
			name: "tool role becomes function with JSON-string content",
			messages: []models.Message{
				userMessage("look it up"),
				{Role: models.RoleTool, Content: json.RawMessage(`{"result": 42}`), ToolCallID: "call_1"},
			},
			expected: []models.BackendMessage{
				{Role: "user", Content: "look it up"},
				{Role: "function", Content: `{"result":42}`},
			},
		},
		{
			name: "tool role with plain string content is still JSON-encoded",
			messages: []models.Message{
				userMessage("hi"),
				{Role: models.RoleTool, Content: json.RawMessage(`"done"`)},
			},
			expected: []models.BackendMessage{
				{Role: "user", Content: "hi"},
				{Role: "function", Content: `"done"`},
			},
		},
		{
			name: "tool role without content encodes the empty string",
			messages: []models.Message{
				userMessage("hi"),
				{Role: models.RoleTool},
			},
			expected: []models.BackendMessage{
				{Role: "user", Content: "hi"},
				{Role: "function", Content: `""`},
			},
		},
		{
			name: "null content becomes empty string",
			messages: []models.Message{
				{Role: models.RoleAssistant, Content: json.RawMessage(`null`)},
				userMessage("continue"),
			},
			expected: []models.BackendMessage{
				{Role: "assistant", Content: ""},
				{Role: "user", Content: "continue"},
			},
		},
		{
			name: "non-first system message is demoted to user",
			messages: []models.Message{
				{Role: models.RoleSystem, Content: json.RawMessage(`"be brief"`)},
				userMessage("hi"),
				{Role: models.RoleSystem, Content: json.RawMessage(`"be extra brief"`)},
			},
			expected: []models.BackendMessage{
				{Role: "system", Content: "be brief"},
				{Role: "user", Content: "hi"},
				{Role: "user", Content: "be extra brief"},
			},
		},
		{
			name: "name field is dropped",
			messages: []models.Message{
				{Role: models.RoleUser, Content: json.RawMessage(`"hi"`), Name: "alice"},
			},
			expected: []models.BackendMessage{
				{Role: "user", Content: "hi"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ToBackendRequest(&models.ChatRequest{Model: "gpt-x", Messages: tt.messages})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, out.Messages)
		})
	}
}

func TestToBackendRequestTemperaturePolicy(t *testing.T) {
	tests := []struct {
		name        string
		temperature *float64
		topP        *float64
		wantTemp    *float64
		wantTopP    *float64
	}{
		{
			name:        "zero temperature becomes top_p zero",
			temperature: floatPtr(0),
			wantTopP:    floatPtr(0),
		},
		{
			name:        "positive temperature passes through",
			temperature: floatPtr(0.7),
			wantTemp:    floatPtr(0.7),
		},
		{
			name: "absent temperature sends neither",
		},
		{
			name:     "caller top_p honoured when temperature absent",
			topP:     floatPtr(0.9),
			wantTopP: floatPtr(0.9),
		},
		{
			name:        "positive temperature wins over caller top_p",
			temperature: floatPtr(1.2),
			topP:        floatPtr(0.9),
			wantTemp:    floatPtr(1.2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ToBackendRequest(&models.ChatRequest{
				Model:       "gpt-x",
				Messages:    []models.Message{userMessage("hi")},
				Temperature: tt.temperature,
				TopP:        tt.topP,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantTemp, out.Temperature)
			assert.Equal(t, tt.wantTopP, out.TopP)

			// The wire form must never carry both knobs.
			encoded, err := json.Marshal(out)
			require.NoError(t, err)
			var wire map[string]any
			require.NoError(t, json.Unmarshal(encoded, &wire))
			_, hasTemp := wire["temperature"]
			_, hasTopP := wire["top_p"]
			assert.False(t, hasTemp && hasTopP)
		})
	}
}

func TestToBackendRequestFunctions(t *testing.T) {
	weather := models.FunctionSpec{Name: "get_weather", Parameters: json.RawMessage(`{"type":"object"}`)}
	clock := models.FunctionSpec{Name: "get_time"}

	t.Run("tools derive functions preserving order", func(t *testing.T) {
		out, err := ToBackendRequest(&models.ChatRequest{
			Model:    "gpt-x",
			Messages: []models.Message{userMessage("hi")},
			Tools: []models.ToolSpec{
				{Type: "function", Function: weather},
				{Type: "retrieval", Function: models.FunctionSpec{Name: "ignored"}},
				{Type: "function", Function: clock},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, []models.FunctionSpec{weather, clock}, out.Functions)
	})

	t.Run("caller-supplied functions win over tools", func(t *testing.T) {
		out, err := ToBackendRequest(&models.ChatRequest{
			Model:     "gpt-x",
			Messages:  []models.Message{userMessage("hi")},
			Functions: []models.FunctionSpec{clock},
			Tools: []models.ToolSpec{
				{Type: "function", Function: weather},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, []models.FunctionSpec{clock}, out.Functions)
	})

	t.Run("no tools and no functions leaves functions empty", func(t *testing.T) {
		out, err := ToBackendRequest(&models.ChatRequest{
			Model:    "gpt-x",
			Messages: []models.Message{userMessage("hi")},
		})
		require.NoError(t, err)
		assert.Empty(t, out.Functions)
	})
}

func TestToBackendRequestFailures(t *testing.T) {
	t.Run("missing messages", func(t *testing.T) {
		_, err := ToBackendRequest(&models.ChatRequest{Model: "gpt-x"})
		assert.ErrorIs(t, err, ErrNoMessages)
	})

	t.Run("structured content outside a tool turn", func(t *testing.T) {
		_, err := ToBackendRequest(&models.ChatRequest{
			Model: "gpt-x",
			Messages: []models.Message{
				{Role: models.RoleUser, Content: json.RawMessage(`{"parts":[]}`)},
			},
		})
		assert.Error(t, err)
	})

	t.Run("unknown role fails validation", func(t *testing.T) {
		_, err := ToBackendRequest(&models.ChatRequest{
			Model: "gpt-x",
			Messages: []models.Message{
				{Role: "narrator", Content: json.RawMessage(`"hi"`)},
			},
		})
		assert.Error(t, err)
	})
}
