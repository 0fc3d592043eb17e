package handlers

import (
	"net/http"

	"github.com/prudhvinik1/onboardflow/internal/middleware"
	"github.com/prudhvinik1/onboardflow/internal/response"
	"github.com/prudhvinik1/onboardflow/internal/services"
)

type signRequest struct {
	LegalName     string `json:"legalName"`
	AgreedToTerms bool   `json:"agreedToTerms"`
	TermsScrolled bool   `json:"termsScrolled"`
}

func (h *Handlers) Sign(w http.ResponseWriter, r *http.Request) {
	var req signRequest
	if !decodeBody(w, r, &req) {
		return
	}

	userID := middleware.GetUserID(r.Context())
	result, err := h.onboarding.Sign(r.Context(), userID, services.SignRequest{
		LegalName:     req.LegalName,
		AgreedToTerms: req.AgreedToTerms,
		TermsScrolled: req.TermsScrolled,
		IPAddress:     middleware.ClientIP(r),
		UserAgent:     r.UserAgent(),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"signed":    result.Signed,
		"timestamp": result.Timestamp,
		"legalName": result.LegalName,
	})
}
