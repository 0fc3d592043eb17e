package handlers

import (
	"net/http"

	"github.com/prudhvinik1/onboardflow/internal/middleware"
	"github.com/prudhvinik1/onboardflow/internal/response"
	"github.com/prudhvinik1/onboardflow/internal/services"
)

type onboardStartRequest struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Company       string `json:"company"`
	AgreedToTerms bool   `json:"agreedToTerms"`
}

func (h *Handlers) OnboardStart(w http.ResponseWriter, r *http.Request) {
	var req onboardStartRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.onboarding.Start(r.Context(), services.StartRequest{
		Email:         req.Email,
		Password:      req.Password,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Company:       req.Company,
		AgreedToTerms: req.AgreedToTerms,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]any{
		"account": result.Account,
		"token":   result.Token,
	})
}

type onboardStepRequest struct {
	StepID string         `json:"stepId"`
	Data   map[string]any `json:"data"`
}

func (h *Handlers) OnboardStep(w http.ResponseWriter, r *http.Request) {
	var req onboardStepRequest
	if !decodeBody(w, r, &req) {
		return
	}

	userID := middleware.GetUserID(r.Context())
	result, err := h.onboarding.RecordStep(r.Context(), userID, req.StepID, req.Data)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"stepId":    result.StepID,
		"saved":     result.Saved,
		"timestamp": result.Timestamp,
	})
}
