package models

import (
	"time"
)

// SignatureRecord is write-once: once stored for a user it is never
// overwritten, re-submission is rejected with a conflict.
type SignatureRecord struct {
	LegalName     string    `json:"legalName"`
	Timestamp     time.Time `json:"timestamp"`
	TermsScrolled bool      `json:"termsScrolled"`
	AgreedToTerms bool      `json:"agreedToTerms"`
	IPAddress     string    `json:"ipAddress"`
	UserAgent     string    `json:"userAgent"`
}
