// Package respond writes JSON response bodies for the HTTP handlers.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

type ErrorBody struct {
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

func ErrorDetails(w http.ResponseWriter, status int, msg string, details map[string]any) {
	JSON(w, status, ErrorBody{Error: msg, Details: details})
}
