package services

import (
	"net/http"
)

// Error is a domain failure that maps directly onto the response envelope:
// a stable kebab-case code, a caller-facing message, the HTTP status, and
// optional structured details.
type Error struct {
	Code    string
	Message string
	Status  int
	Details any
}

func (e *Error) Error() string {
	return e.Message
}

func validationError(code, message string) *Error {
	return &Error{Code: code, Message: message, Status: http.StatusBadRequest}
}

func conflictError(code, message string) *Error {
	return &Error{Code: code, Message: message, Status: http.StatusConflict}
}

var (
	ErrInvalidEmail = validationError("invalid-email", "Valid email address is required")

	ErrInvalidPassword = validationError("invalid-password", "Password must be at least 8 characters")

	ErrTermsNotAgreed = validationError("terms-not-agreed", "Must agree to terms of service")

	ErrTermsNotRead = validationError("terms-not-read", "Must read complete terms of service")

	ErrInvalidLegalName = validationError("invalid-legal-name", "Valid legal name (first and last) is required")

	ErrInvalidRating = validationError("invalid-rating", "Rating must be an integer between 1 and 5")

	ErrEmailExists = conflictError("email-exists", "An account with this email already exists")

	ErrAlreadySigned = conflictError("already-signed", "Terms of service already signed for this user")

	ErrFeedbackExists = conflictError("feedback-exists", "Feedback already submitted for this user")

	ErrInvalidCredentials = &Error{
		Code:    "invalid-credentials",
		Message: "Invalid email or password",
		Status:  http.StatusUnauthorized,
	}

	ErrUserNotFound = &Error{
		Code:    "user-not-found",
		Message: "User data not found",
		Status:  http.StatusNotFound,
	}
)
