// Package handlers maps HTTP requests onto the onboarding service and
// normalizes every outcome into the shared response envelope.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/prudhvinik1/onboardflow/internal/response"
	"github.com/prudhvinik1/onboardflow/internal/services"
)

type Handlers struct {
	onboarding *services.OnboardingService
	version    string
}

func New(onboarding *services.OnboardingService, version string) *Handlers {
	return &Handlers{onboarding: onboarding, version: version}
}

// decodeBody reads the JSON request body into dst and writes the 400
// envelope itself on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Err(w, http.StatusBadRequest, "invalid-request", "Request body must be valid JSON")
		return false
	}
	return true
}

// writeError maps a service failure onto the envelope. Anything that is not
// a typed domain error becomes a generic 500; the detail stays in the log.
func writeError(w http.ResponseWriter, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		if svcErr.Details != nil {
			response.ErrDetails(w, svcErr.Status, svcErr.Code, svcErr.Message, svcErr.Details)
		} else {
			response.Err(w, svcErr.Status, svcErr.Code, svcErr.Message)
		}
		return
	}

	log.Error().Err(err).Msg("request failed")
	response.Err(w, http.StatusInternalServerError, "internal-error", "Internal server error")
}
