package completion

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lmbridge/lmbridge/internal/domain/chat/models"
	"github.com/lmbridge/lmbridge/internal/services/translate"
)

type Implementation struct {
	backend Backend
}

func NewService(backend Backend) (*Implementation, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend client is required")
	}
	return &Implementation{backend: backend}, nil
}

func (s *Implementation) Complete(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	backendReq, err := translate.ToBackendRequest(req)
	if err != nil {
		return nil, fmt.Errorf("request translation failed: %w", err)
	}

	log.Debug().
		Int("message_count", len(backendReq.Messages)).
		Int("function_count", len(backendReq.Functions)).
		Msg("Sending translated request to backend")

	raw, err := s.backend.Complete(ctx, backendReq)
	if err != nil {
		return nil, fmt.Errorf("backend call failed: %w", err)
	}

	choices, err := translate.FromBackendResponse(raw)
	if err != nil {
		return nil, fmt.Errorf("response translation failed: %w", err)
	}

	return &models.ChatResponse{
		ID:      "chatcmpl-" + uuid.New().String(),
		Object:  "chat.completion",
		Created: time.Now().UnixMilli(),
		// The caller's model name is echoed back; the backend's
		// internal model id never leaves the gateway.
		Model:             req.Model,
		Choices:           choices,
		Usage:             models.PlaceholderUsage(),
		SystemFingerprint: "fp_" + uuid.New().String(),
	}, nil
}

// ChunkFromResponse folds a completed response into the single frame of
// the emulated stream. There are no genuine incremental deltas: the
// whole assistant message travels in one delta and the frame is
// followed only by the [DONE] sentinel.
func ChunkFromResponse(resp *models.ChatResponse) *models.StreamChunk {
	chunk := &models.StreamChunk{
		ID:      resp.ID,
		Object:  "chat.completion.chunk",
		Created: resp.Created,
		Model:   resp.Model,
	}

	if len(resp.Choices) > 0 {
		choice := resp.Choices[0]
		// An absent finish reason is null on the wire, never "".
		var finishReason *string
		if choice.FinishReason != "" {
			finishReason = &choice.FinishReason
		}
		chunk.Choices = []models.ChunkChoice{{
			Index:        0,
			Delta:        choice.Message,
			FinishReason: finishReason,
		}}
	}

	return chunk
}
