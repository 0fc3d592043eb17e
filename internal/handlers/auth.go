package handlers

import (
	"net/http"

	"github.com/prudhvinik1/onboardflow/internal/middleware"
	"github.com/prudhvinik1/onboardflow/internal/response"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handlers) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.onboarding.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"account": result.Account,
		"token":   result.Token,
	})
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	view, err := h.onboarding.CurrentUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, view)
}
