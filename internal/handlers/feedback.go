package handlers

import (
	"net/http"

	"github.com/prudhvinik1/onboardflow/internal/middleware"
	"github.com/prudhvinik1/onboardflow/internal/response"
	"github.com/prudhvinik1/onboardflow/internal/services"
)

type feedbackRequest struct {
	Rating      float64  `json:"rating"`
	Comment     string   `json:"comment"`
	Preferences []string `json:"preferences"`
}

func (h *Handlers) Feedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if !decodeBody(w, r, &req) {
		return
	}

	userID := middleware.GetUserID(r.Context())
	result, err := h.onboarding.SubmitFeedback(r.Context(), userID, services.FeedbackRequest{
		Rating:      req.Rating,
		Comment:     req.Comment,
		Preferences: req.Preferences,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"submitted":          result.Submitted,
		"timestamp":          result.Timestamp,
		"rating":             result.Rating,
		"onboardingComplete": result.OnboardingComplete,
	})
}

func (h *Handlers) FeedbackReminder(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	result, err := h.onboarding.RemindLater(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"reminderSet":        result.ReminderSet,
		"onboardingComplete": result.OnboardingComplete,
	})
}
