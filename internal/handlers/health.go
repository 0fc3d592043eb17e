package handlers

import (
	"net/http"
	"time"

	"github.com/prudhvinik1/onboardflow/internal/response"
)

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
		"version":   h.version,
	})
}
