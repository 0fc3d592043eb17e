// Package validation holds the pure input validators for the onboarding
// flow. Nothing in here touches the store or the network.
package validation

import (
	"regexp"
	"strings"
)

const MinPasswordLength = 8

var (
	emailRegex      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	sanitizeRegex   = regexp.MustCompile(`[<>"'&]`)
	whitespaceSplit = regexp.MustCompile(`\s+`)
)

func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func IsValidPassword(password string) bool {
	return len(password) >= MinPasswordLength
}

func IsValidName(name string) bool {
	return len(strings.TrimSpace(name)) >= 2
}

// IsValidLegalName requires at least two whitespace-separated parts, e.g.
// a first and last name. Surrounding and repeated whitespace is tolerated.
func IsValidLegalName(legalName string) bool {
	trimmed := strings.TrimSpace(legalName)
	if trimmed == "" {
		return false
	}
	parts := whitespaceSplit.Split(trimmed, -1)
	return len(parts) >= 2
}

// SanitizeString trims the value and strips characters with HTML meaning.
func SanitizeString(s string) string {
	return sanitizeRegex.ReplaceAllString(strings.TrimSpace(s), "")
}

// ValidateStepData checks a step payload against the schema for its stepId
// and returns the list of field-level problems. Steps without a schema
// (e.g. the client-only tour step) validate clean.
func ValidateStepData(stepID string, data map[string]any) []string {
	var errs []string

	switch stepID {
	case "account":
		email, _ := data["email"].(string)
		if !IsValidEmail(email) {
			errs = append(errs, "Valid email is required")
		}
		password, _ := data["password"].(string)
		if !IsValidPassword(password) {
			errs = append(errs, "Password must be at least 8 characters")
		}
		if agreed, _ := data["agreedToTerms"].(bool); !agreed {
			errs = append(errs, "Must agree to terms of service")
		}

	case "profile":
		if !hasString(data, "role") {
			errs = append(errs, "Role is required")
		}
		if !hasString(data, "companySize") {
			errs = append(errs, "Company size is required")
		}
		if !hasString(data, "industry") {
			errs = append(errs, "Industry is required")
		}

	case "signature":
		legalName, _ := data["legalName"].(string)
		if !IsValidLegalName(legalName) {
			errs = append(errs, "Valid legal name (first and last) is required")
		}
		if agreed, _ := data["agreedToTerms"].(bool); !agreed {
			errs = append(errs, "Must agree to terms of service")
		}
		if scrolled, _ := data["termsScrolled"].(bool); !scrolled {
			errs = append(errs, "Must read complete terms of service")
		}

	case "feedback":
		rating, ok := data["rating"].(float64)
		if !ok || rating < 1 || rating > 5 {
			errs = append(errs, "Rating must be between 1 and 5")
		}
	}

	return errs
}

func hasString(data map[string]any, key string) bool {
	s, ok := data[key].(string)
	return ok && s != ""
}
