// Package handlers wires the gateway's HTTP surface: the models
// listing, the CORS preflight answer and the catch-all chat-completion
// routes.
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lmbridge/lmbridge/internal/api/middleware"
	"github.com/lmbridge/lmbridge/internal/config"
	"github.com/lmbridge/lmbridge/internal/services/completion"
)

// NewRouter builds the gateway router. Everything that is not the
// models listing or a preflight is treated as a chat-completion
// request, whatever its path, so SDKs with differing base paths all
// land in the same handler.
func NewRouter(cfg *config.Settings, svc completion.Service) *mux.Router {
	r := mux.NewRouter()

	if cfg.RateLimitEnabled {
		r.Use(middleware.RateLimit(cfg.RateLimitWindow, cfg.RateLimitMaxHits))
	}

	r.HandleFunc("/models", func(w http.ResponseWriter, req *http.Request) {
		HandleModels(cfg.ModelsFile, w, req)
	}).Methods(http.MethodGet)
	r.HandleFunc("/v1/models", func(w http.ResponseWriter, req *http.Request) {
		HandleModels(cfg.ModelsFile, w, req)
	}).Methods(http.MethodGet)

	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(HandlePreflight)
	r.PathPrefix("/").Methods(http.MethodGet, http.MethodPost).HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			HandleChatCompletion(svc, w, req)
		})

	return r
}

// HandlePreflight answers CORS preflight requests on any path with the
// allow headers and an empty body.
func HandlePreflight(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.WriteHeader(http.StatusOK)
}
