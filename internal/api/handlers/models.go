package handlers

import (
	"net/http"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/lmbridge/lmbridge/pkg/httpext"
)

// HandleModels serves the external models-list resource verbatim. The
// gateway does not interpret or rewrite the listing; a missing file is
// a 404, distinct from internal failures.
func HandleModels(modelsFile string, w http.ResponseWriter, r *http.Request) {
	body, err := os.ReadFile(modelsFile)
	if err != nil {
		log.Warn().Err(err).Str("path", modelsFile).Msg("Models resource is not available")
		httpext.JsonError(w, "Models listing not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("Failed to write models listing")
	}
}
