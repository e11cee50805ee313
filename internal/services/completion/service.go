package completion

import (
	"context"

	"github.com/lmbridge/lmbridge/internal/domain/chat/models"
)

// Backend is the single capability the completion service requires of
// the wrapped chat client: one synchronous call returning the decoded
// backend-schema reply or an error. It never substitutes a default
// response for a failed call.
type Backend interface {
	Complete(ctx context.Context, req *models.BackendChatRequest) (any, error)
}

// Service defines the interface for chat-completion processing
type Service interface {
	// Complete translates a source-schema request, invokes the backend
	// and assembles the source-schema response envelope.
	Complete(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error)
}
