package models

import (
	"time"
)

// Step identifiers in flow order. The tour step is client-tracked and only
// ever written through the generic step record.
const (
	StepAccount   = "account"
	StepProfile   = "profile"
	StepTour      = "tour"
	StepSignature = "signature"
	StepFeedback  = "feedback"
)

// StepRecord is the generic "latest step" record, overwritten on every
// step submission.
type StepRecord struct {
	StepID      string         `json:"stepId"`
	Data        map[string]any `json:"data"`
	CompletedAt time.Time      `json:"completedAt"`
}

// ProfileRecord is the dedicated profile projection, kept separately from the
// generic step record for query efficiency. Overwritten on resubmit.
type ProfileRecord struct {
	Role           string `json:"role,omitempty"`
	CompanySize    string `json:"companySize,omitempty"`
	Industry       string `json:"industry,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Timezone       string `json:"timezone,omitempty"`
	ReferralSource string `json:"referralSource,omitempty"`
	UseCase        string `json:"useCase,omitempty"`
}
