package kv

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("not found")

// Store is the durable key-value port everything persists through. The
// backing store offers independent single-key reads and writes only; the one
// coordination primitive is the conditional put.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put writes key unconditionally. A zero ttl means no expiry.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// PutIfAbsent writes key only if it does not already exist and reports
	// whether the write happened.
	PutIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Key builders for the onboarding schema.

func UserKey(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}

func PasswordKey(userID string) string {
	return fmt.Sprintf("user:%s:password", userID)
}

func StepKey(userID string) string {
	return fmt.Sprintf("user:%s:step", userID)
}

func ProfileKey(userID string) string {
	return fmt.Sprintf("user:%s:profile", userID)
}

func SignatureKey(userID string) string {
	return fmt.Sprintf("user:%s:signature", userID)
}

func FeedbackKey(userID string) string {
	return fmt.Sprintf("user:%s:feedback", userID)
}

func FeedbackReminderKey(userID string) string {
	return fmt.Sprintf("user:%s:feedback_reminder", userID)
}

func OnboardingCompleteKey(userID string) string {
	return fmt.Sprintf("user:%s:onboarding_complete", userID)
}

func EmailIndexKey(normalizedEmail string) string {
	return fmt.Sprintf("email:%s:user_id", normalizedEmail)
}

func RateLimitKey(clientIP, endpoint string) string {
	return fmt.Sprintf("rate_limit:%s:%s", clientIP, endpoint)
}
