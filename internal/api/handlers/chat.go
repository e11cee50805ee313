package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/lmbridge/lmbridge/internal/domain/chat/models"
	"github.com/lmbridge/lmbridge/internal/services/completion"
	"github.com/lmbridge/lmbridge/pkg/httpext"
)

// HandleChatCompletion serves a source-schema chat-completion request:
// decode, translate, call the backend, translate back and write either
// the JSON envelope or the single-frame emulated stream.
func HandleChatCompletion(svc completion.Service, w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read request body")
		httpext.JsonError(w, fmt.Sprintf("Error processing the request: %v", err), http.StatusInternalServerError)
		return
	}

	// Invalid byte sequences are replaced rather than rejected; the
	// JSON decoder then has the final say.
	body = bytes.ToValidUTF8(body, []byte("�"))

	var req models.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, fmt.Sprintf("Error processing the request: %v", err), http.StatusInternalServerError)
		return
	}

	if log.Debug().Enabled() {
		log.Debug().
			Interface("headers", r.Header).
			RawJSON("request_body", body).
			Msg("Incoming completions request")
	}

	log.Info().
		Int("message_count", len(req.Messages)).
		Bool("stream", req.Stream).
		Str("client_ip", r.RemoteAddr).
		Msg("Received chat completions request")

	// The stream flag drives the transport only; translation and the
	// backend call are identical either way.
	stream := req.Stream
	req.Stream = false

	resp, err := svc.Complete(r.Context(), &req)
	if err != nil {
		log.Error().Err(err).Msg("Failed to process chat completion")
		httpext.JsonError(w, fmt.Sprintf("Error processing the request: %v", err), http.StatusInternalServerError)
		return
	}

	writeSyntheticHeaders(w.Header(), started)

	if stream {
		writeStream(w, resp)
	} else {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Error().Err(err).Msg("Failed to encode response")
			return
		}
	}

	if log.Debug().Enabled() {
		encoded, err := json.Marshal(resp)
		if err == nil {
			log.Debug().RawJSON("response_body", encoded).Msg("Outgoing completions response")
		}
	}

	log.Info().
		Str("client_ip", r.RemoteAddr).
		Int("status", http.StatusOK).
		Dur("elapsed", time.Since(started)).
		Msg("Chat completions request processed successfully")
}

// writeStream emits the emulated stream: exactly one data frame built
// from the completed response, then the [DONE] sentinel. The full
// backend latency has already been paid by the time the first byte is
// written.
func writeStream(w http.ResponseWriter, resp *models.ChatResponse) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, _ := w.(http.Flusher)

	chunk := completion.ChunkFromResponse(resp)
	encoded, err := json.Marshal(chunk)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode stream chunk")
		httpext.JsonError(w, "Failed to encode stream chunk", http.StatusInternalServerError)
		return
	}

	fmt.Fprintf(w, "data: %s\n\n", encoded)
	if flusher != nil {
		flusher.Flush()
	}

	io.WriteString(w, "data: [DONE]\n\n")
	if flusher != nil {
		flusher.Flush()
	}
}

// writeSyntheticHeaders attaches the compatibility metadata callers of
// the source API expect. The rate-limit counters are fixed values, not
// real accounting; only the request id and processing time are genuine.
func writeSyntheticHeaders(h http.Header, started time.Time) {
	h.Set("openai-organization", "org-lmbridge")
	h.Set("openai-processing-ms", fmt.Sprintf("%d", time.Since(started).Milliseconds()))
	h.Set("openai-version", "2020-10-01")
	h.Set("x-ratelimit-limit-requests", "10000")
	h.Set("x-ratelimit-limit-tokens", "50000000")
	if h.Get("x-ratelimit-remaining-requests") == "" {
		h.Set("x-ratelimit-remaining-requests", "9999")
	}
	h.Set("x-ratelimit-remaining-tokens", "49999945")
	h.Set("x-ratelimit-reset-requests", "6ms")
	h.Set("x-ratelimit-reset-tokens", "0s")
	h.Set("x-request-id", "req_"+uuid.New().String())
	h.Set("Access-Control-Expose-Headers", "X-Request-ID")
}
