package gateway

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/dukahub/storefront/internal/api"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleStoreError converts the client error taxonomy into HTTP
// responses: validation failures are the caller's fault, auth gaps are
// 401, backend HTTP errors keep their status, and transport failures
// surface as a retryable 502.
func handleStoreError(w http.ResponseWriter, err error) {
	var ve *api.ValidationError
	if errors.As(err, &ve) {
		respondError(w, http.StatusBadRequest, "validation_error", ve.Error())
		return
	}
	if errors.Is(err, api.ErrAuthRequired) {
		respondError(w, http.StatusUnauthorized, "auth_required", "authentication required")
		return
	}
	var he *api.HTTPError
	if errors.As(err, &he) {
		respondError(w, he.Status, "upstream_error", he.Error())
		return
	}
	if errors.Is(err, api.ErrNetwork) {
		respondError(w, http.StatusBadGateway, "network_error", "backend unreachable, try again")
		return
	}
	respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
