package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhvinik1/onboardflow/internal/kv"
	"github.com/prudhvinik1/onboardflow/internal/models"
)

func newTestOnboardingService() (*OnboardingService, kv.Store) {
	store := kv.NewMemoryStore()
	creds := NewCredentialService("test-secret", time.Hour, "test-salt")
	return NewOnboardingService(store, creds), store
}

func validStart() StartRequest {
	return StartRequest{
		Email:         "a@b.com",
		Password:      "password123",
		FirstName:     "John",
		LastName:      "Doe",
		Company:       "Acme",
		AgreedToTerms: true,
	}
}

func startAccount(t *testing.T, svc *OnboardingService) string {
	t.Helper()
	result, err := svc.Start(context.Background(), validStart())
	require.NoError(t, err)
	return result.Account.ID
}

func TestStart_CreatesAccountAndToken(t *testing.T) {
	svc, store := newTestOnboardingService()
	ctx := context.Background()

	result, err := svc.Start(ctx, validStart())
	require.NoError(t, err)

	assert.NotEmpty(t, result.Account.ID)
	assert.Equal(t, "a@b.com", result.Account.Email)
	assert.Equal(t, "John", result.Account.FirstName)
	assert.NotEmpty(t, result.Token)

	// Account, password digest and email index were all written
	_, err = store.Get(ctx, kv.UserKey(result.Account.ID))
	assert.NoError(t, err)
	_, err = store.Get(ctx, kv.PasswordKey(result.Account.ID))
	assert.NoError(t, err)
	userID, err := store.Get(ctx, kv.EmailIndexKey("a@b.com"))
	require.NoError(t, err)
	assert.Equal(t, result.Account.ID, string(userID))
}

func TestStart_NormalizesEmail(t *testing.T) {
	svc, _ := newTestOnboardingService()

	req := validStart()
	req.Email = "Mixed.Case@Example.COM"
	result, err := svc.Start(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "mixed.case@example.com", result.Account.Email)
}

func TestStart_Validation(t *testing.T) {
	svc, _ := newTestOnboardingService()
	ctx := context.Background()

	req := validStart()
	req.Email = "bad-email"
	_, err := svc.Start(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidEmail)

	req = validStart()
	req.Password = "short"
	_, err = svc.Start(ctx, req)
	assert.ErrorIs(t, err, ErrInvalidPassword)

	req = validStart()
	req.AgreedToTerms = false
	_, err = svc.Start(ctx, req)
	assert.ErrorIs(t, err, ErrTermsNotAgreed)
}

func TestStart_DuplicateEmail(t *testing.T) {
	svc, _ := newTestOnboardingService()
	ctx := context.Background()

	_, err := svc.Start(ctx, validStart())
	require.NoError(t, err)

	_, err = svc.Start(ctx, validStart())
	assert.ErrorIs(t, err, ErrEmailExists)

	// Case-insensitive: the index is keyed by the normalized email
	req := validStart()
	req.Email = "A@B.COM"
	_, err = svc.Start(ctx, req)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestRecordStep_OverwritesLatest(t *testing.T) {
	svc, _ := newTestOnboardingService()
	ctx := context.Background()
	userID := startAccount(t, svc)

	first, err := svc.RecordStep(ctx, userID, models.StepTour, map[string]any{"watched": true})
	require.NoError(t, err)
	assert.True(t, first.Saved)
	assert.Equal(t, models.StepTour, first.StepID)

	// Re-submission is last-write-wins, never a conflict
	second, err := svc.RecordStep(ctx, userID, models.StepTour, map[string]any{"watched": false})
	require.NoError(t, err)
	assert.True(t, second.Saved)

	view, err := svc.CurrentUser(ctx, userID)
	require.NoError(t, err)
	assert.Contains(t, view.CompletedSteps, models.StepTour)
}

func TestRecordStep_ProfileWritesDedicatedRecord(t *testing.T) {
	svc, store := newTestOnboardingService()
	ctx := context.Background()
	userID := startAccount(t, svc)

	data := map[string]any{
		"role":        "engineer",
		"companySize": "11-50",
		"industry":    "software",
	}
	_, err := svc.RecordStep(ctx, userID, models.StepProfile, data)
	require.NoError(t, err)

	_, err = store.Get(ctx, kv.ProfileKey(userID))
	assert.NoError(t, err)

	// Profile is mutable: resubmitting overwrites rather than conflicting
	data["role"] = "manager"
	_, err = svc.RecordStep(ctx, userID, models.StepProfile, data)
	assert.NoError(t, err)
}

func TestRecordStep_SchemaValidation(t *testing.T) {
	svc, _ := newTestOnboardingService()
	userID := startAccount(t, svc)

	_, err := svc.RecordStep(context.Background(), userID, models.StepProfile, map[string]any{})
	require.Error(t, err)

	svcErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, "validation-error", svcErr.Code)
	assert.Len(t, svcErr.Details, 3)
}

func validSign() SignRequest {
	return SignRequest{
		LegalName:     "John Doe",
		AgreedToTerms: true,
		TermsScrolled: true,
		IPAddress:     "203.0.113.9",
		UserAgent:     "test-agent",
	}
}

func TestSign_Success(t *testing.T) {
	svc, _ := newTestOnboardingService()
	userID := startAccount(t, svc)

	result, err := svc.Sign(context.Background(), userID, validSign())
	require.NoError(t, err)
	assert.True(t, result.Signed)
	assert.Equal(t, "John Doe", result.LegalName)
	assert.False(t, result.Timestamp.IsZero())
}

func TestSign_Validation(t *testing.T) {
	svc, _ := newTestOnboardingService()
	ctx := context.Background()
	userID := startAccount(t, svc)

	req := validSign()
	req.LegalName = "John"
	_, err := svc.Sign(ctx, userID, req)
	assert.ErrorIs(t, err, ErrInvalidLegalName)

	req = validSign()
	req.AgreedToTerms = false
	_, err = svc.Sign(ctx, userID, req)
	assert.ErrorIs(t, err, ErrTermsNotAgreed)

	req = validSign()
	req.TermsScrolled = false
	_, err = svc.Sign(ctx, userID, req)
	assert.ErrorIs(t, err, ErrTermsNotRead)
}

// Signing is write-once: a second valid submission is a conflict.
func TestSign_AlreadySigned(t *testing.T) {
	svc, _ := newTestOnboardingService()
	ctx := context.Background()
	userID := startAccount(t, svc)

	_, err := svc.Sign(ctx, userID, validSign())
	require.NoError(t, err)

	_, err = svc.Sign(ctx, userID, validSign())
	assert.ErrorIs(t, err, ErrAlreadySigned)
}

func TestSubmitFeedback_Success(t *testing.T) {
	svc, store := newTestOnboardingService()
	ctx := context.Background()
	userID := startAccount(t, svc)

	result, err := svc.SubmitFeedback(ctx, userID, FeedbackRequest{
		Rating:      4,
		Comment:     "Smooth setup",
		Preferences: []string{"easy-setup", "security"},
	})
	require.NoError(t, err)
	assert.True(t, result.Submitted)
	assert.Equal(t, 4, result.Rating)
	assert.True(t, result.OnboardingComplete)

	_, err = store.Get(ctx, kv.OnboardingCompleteKey(userID))
	assert.NoError(t, err)
}

func TestSubmitFeedback_InvalidRating(t *testing.T) {
	svc, _ := newTestOnboardingService()
	ctx := context.Background()
	userID := startAccount(t, svc)

	_, err := svc.SubmitFeedback(ctx, userID, FeedbackRequest{Rating: 0})
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = svc.SubmitFeedback(ctx, userID, FeedbackRequest{Rating: 6})
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = svc.SubmitFeedback(ctx, userID, FeedbackRequest{Rating: 4.5})
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestSubmitFeedback_InvalidPreferences(t *testing.T) {
	svc, _ := newTestOnboardingService()
	userID := startAccount(t, svc)

	_, err := svc.SubmitFeedback(context.Background(), userID, FeedbackRequest{
		Rating:      5,
		Preferences: []string{"easy-setup", "bogus"},
	})
	require.Error(t, err)

	svcErr, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, "invalid-preferences", svcErr.Code)
	assert.Contains(t, svcErr.Message, "bogus")
}

func TestSubmitFeedback_AlreadySubmitted(t *testing.T) {
	svc, _ := newTestOnboardingService()
	ctx := context.Background()
	userID := startAccount(t, svc)

	_, err := svc.SubmitFeedback(ctx, userID, FeedbackRequest{Rating: 5})
	require.NoError(t, err)

	_, err = svc.SubmitFeedback(ctx, userID, FeedbackRequest{Rating: 3})
	assert.ErrorIs(t, err, ErrFeedbackExists)
}

func TestSubmitFeedback_TruncatesComment(t *testing.T) {
	svc, store := newTestOnboardingService()
	ctx := context.Background()
	userID := startAccount(t, svc)

	long := make([]byte, 400)
	for i := range long {
		long[i] = 'x'
	}
	_, err := svc.SubmitFeedback(ctx, userID, FeedbackRequest{Rating: 3, Comment: string(long)})
	require.NoError(t, err)

	data, err := store.Get(ctx, kv.FeedbackKey(userID))
	require.NoError(t, err)
	assert.LessOrEqual(t, len(data), 400)
}

func TestRemindLater_CompletesOnboarding(t *testing.T) {
	svc, store := newTestOnboardingService()
	ctx := context.Background()
	userID := startAccount(t, svc)

	result, err := svc.RemindLater(ctx, userID)
	require.NoError(t, err)
	assert.True(t, result.ReminderSet)
	assert.True(t, result.OnboardingComplete)

	_, err = store.Get(ctx, kv.FeedbackReminderKey(userID))
	assert.NoError(t, err)
	_, err = store.Get(ctx, kv.OnboardingCompleteKey(userID))
	assert.NoError(t, err)

	// No feedback record was written
	_, err = store.Get(ctx, kv.FeedbackKey(userID))
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestSignIn_Success(t *testing.T) {
	svc, _ := newTestOnboardingService()
	ctx := context.Background()
	startAccount(t, svc)

	result, err := svc.SignIn(ctx, "a@b.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", result.Account.Email)
	assert.Equal(t, []string{models.StepAccount}, result.Account.CompletedSteps)
	assert.NotEmpty(t, result.Token)
}

func TestSignIn_BadCredentials(t *testing.T) {
	svc, _ := newTestOnboardingService()
	ctx := context.Background()
	startAccount(t, svc)

	_, err := svc.SignIn(ctx, "a@b.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown email is indistinguishable from a wrong password
	_, err = svc.SignIn(ctx, "nobody@b.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCurrentUser_DerivesCompletedSteps(t *testing.T) {
	svc, _ := newTestOnboardingService()
	ctx := context.Background()
	userID := startAccount(t, svc)

	view, err := svc.CurrentUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{models.StepAccount}, view.CompletedSteps)

	_, err = svc.RecordStep(ctx, userID, models.StepProfile, map[string]any{
		"role":        "engineer",
		"companySize": "11-50",
		"industry":    "software",
	})
	require.NoError(t, err)

	_, err = svc.Sign(ctx, userID, validSign())
	require.NoError(t, err)

	view, err = svc.CurrentUser(ctx, userID)
	require.NoError(t, err)
	assert.Contains(t, view.CompletedSteps, models.StepAccount)
	assert.Contains(t, view.CompletedSteps, models.StepProfile)
	assert.Contains(t, view.CompletedSteps, models.StepSignature)
	assert.NotContains(t, view.CompletedSteps, models.StepFeedback)

	// Derived fresh on each call, with no duplicates
	counts := map[string]int{}
	for _, step := range view.CompletedSteps {
		counts[step]++
	}
	for step, n := range counts {
		assert.Equal(t, 1, n, "step %s appears more than once", step)
	}
}

func TestCurrentUser_NotFound(t *testing.T) {
	svc, _ := newTestOnboardingService()

	_, err := svc.CurrentUser(context.Background(), "missing-user")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
