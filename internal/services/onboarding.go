package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/prudhvinik1/onboardflow/internal/kv"
	"github.com/prudhvinik1/onboardflow/internal/models"
	"github.com/prudhvinik1/onboardflow/internal/validation"
)

const maxFeedbackCommentLength = 250

// ValidPreferences is the fixed set of feedback preference values.
var ValidPreferences = []string{"easy-setup", "performance", "security", "support", "integration", "pricing"}

// OnboardingService drives the step state machine over the key-value store.
// All cross-request state lives in the store; the service itself is
// stateless and safe for concurrent use.
type OnboardingService struct {
	store kv.Store
	creds *CredentialService
}

func NewOnboardingService(store kv.Store, creds *CredentialService) *OnboardingService {
	return &OnboardingService{store: store, creds: creds}
}

type StartRequest struct {
	Email         string
	Password      string
	FirstName     string
	LastName      string
	Company       string
	AgreedToTerms bool
}

type StartResult struct {
	Account models.AccountView
	Token   string
}

// Start creates the account, password digest, email index and credential.
// The email index is claimed with a conditional put before the account is
// written, so a concurrent signup with the same email loses cleanly instead
// of producing a second account.
func (s *OnboardingService) Start(ctx context.Context, req StartRequest) (*StartResult, error) {
	if !validation.IsValidEmail(req.Email) {
		return nil, ErrInvalidEmail
	}
	if !validation.IsValidPassword(req.Password) {
		return nil, ErrInvalidPassword
	}
	if !req.AgreedToTerms {
		return nil, ErrTermsNotAgreed
	}

	email := strings.ToLower(req.Email)
	emailKey := kv.EmailIndexKey(email)

	if _, err := s.store.Get(ctx, emailKey); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, kv.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email index: %w", err)
	}

	userID := uuid.New().String()

	claimed, err := s.store.PutIfAbsent(ctx, emailKey, []byte(userID), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to claim email index: %w", err)
	}
	if !claimed {
		return nil, ErrEmailExists
	}

	account := &models.Account{
		ID:        userID,
		Email:     email,
		FirstName: validation.SanitizeString(req.FirstName),
		LastName:  validation.SanitizeString(req.LastName),
		Company:   validation.SanitizeString(req.Company),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.putJSON(ctx, kv.UserKey(userID), account); err != nil {
		return nil, err
	}

	digest := s.creds.HashPassword(req.Password)
	if err := s.store.Put(ctx, kv.PasswordKey(userID), []byte(digest), 0); err != nil {
		return nil, fmt.Errorf("failed to store password digest: %w", err)
	}

	token, err := s.creds.IssueToken(userID)
	if err != nil {
		return nil, err
	}

	return &StartResult{Account: account.View(), Token: token}, nil
}

type StepResult struct {
	StepID    string
	Saved     bool
	Timestamp time.Time
}

// RecordStep validates the payload against the per-step schema and
// overwrites the generic "latest step" record. A profile step additionally
// overwrites the dedicated profile record; both are latest-wins, unlike the
// write-once signature and feedback records.
func (s *OnboardingService) RecordStep(ctx context.Context, userID, stepID string, data map[string]any) (*StepResult, error) {
	if problems := validation.ValidateStepData(stepID, data); len(problems) > 0 {
		return nil, &Error{
			Code:    "validation-error",
			Message: "Invalid step data",
			Status:  http.StatusBadRequest,
			Details: problems,
		}
	}

	record := &models.StepRecord{
		StepID:      stepID,
		Data:        data,
		CompletedAt: time.Now().UTC(),
	}

	if stepID == models.StepProfile {
		profile := &models.ProfileRecord{
			Role:           stringField(data, "role"),
			CompanySize:    stringField(data, "companySize"),
			Industry:       stringField(data, "industry"),
			Phone:          stringField(data, "phone"),
			Timezone:       stringField(data, "timezone"),
			ReferralSource: stringField(data, "referralSource"),
			UseCase:        stringField(data, "useCase"),
		}
		if err := s.putJSON(ctx, kv.ProfileKey(userID), profile); err != nil {
			return nil, err
		}
	}

	if err := s.putJSON(ctx, kv.StepKey(userID), record); err != nil {
		return nil, err
	}

	return &StepResult{StepID: stepID, Saved: true, Timestamp: record.CompletedAt}, nil
}

type SignRequest struct {
	LegalName     string
	AgreedToTerms bool
	TermsScrolled bool
	IPAddress     string
	UserAgent     string
}

type SignResult struct {
	Signed    bool
	Timestamp time.Time
	LegalName string
}

// Sign persists the write-once signature record with its audit fields.
// Re-signing is a conflict, enforced both by the upfront read and by the
// conditional put that closes the concurrent-submission race.
func (s *OnboardingService) Sign(ctx context.Context, userID string, req SignRequest) (*SignResult, error) {
	if !validation.IsValidLegalName(req.LegalName) {
		return nil, ErrInvalidLegalName
	}
	if !req.AgreedToTerms {
		return nil, ErrTermsNotAgreed
	}
	if !req.TermsScrolled {
		return nil, ErrTermsNotRead
	}

	sigKey := kv.SignatureKey(userID)
	if _, err := s.store.Get(ctx, sigKey); err == nil {
		return nil, ErrAlreadySigned
	} else if !errors.Is(err, kv.ErrNotFound) {
		return nil, fmt.Errorf("failed to check signature: %w", err)
	}

	record := &models.SignatureRecord{
		LegalName:     validation.SanitizeString(req.LegalName),
		Timestamp:     time.Now().UTC(),
		TermsScrolled: req.TermsScrolled,
		AgreedToTerms: req.AgreedToTerms,
		IPAddress:     req.IPAddress,
		UserAgent:     req.UserAgent,
	}

	written, err := s.putJSONIfAbsent(ctx, sigKey, record)
	if err != nil {
		return nil, err
	}
	if !written {
		return nil, ErrAlreadySigned
	}

	return &SignResult{Signed: true, Timestamp: record.Timestamp, LegalName: record.LegalName}, nil
}

type FeedbackRequest struct {
	Rating      float64
	Comment     string
	Preferences []string
}

type FeedbackResult struct {
	Submitted          bool
	Timestamp          time.Time
	Rating             int
	OnboardingComplete bool
}

// SubmitFeedback persists the write-once feedback record and marks
// onboarding complete.
func (s *OnboardingService) SubmitFeedback(ctx context.Context, userID string, req FeedbackRequest) (*FeedbackResult, error) {
	if req.Rating < 1 || req.Rating > 5 || req.Rating != math.Trunc(req.Rating) {
		return nil, ErrInvalidRating
	}

	var invalid []string
	for _, pref := range req.Preferences {
		if !isValidPreference(pref) {
			invalid = append(invalid, pref)
		}
	}
	if len(invalid) > 0 {
		return nil, &Error{
			Code:    "invalid-preferences",
			Message: fmt.Sprintf("Invalid preferences: %s", strings.Join(invalid, ", ")),
			Status:  http.StatusBadRequest,
			Details: map[string]any{"validPreferences": ValidPreferences},
		}
	}

	fbKey := kv.FeedbackKey(userID)
	if _, err := s.store.Get(ctx, fbKey); err == nil {
		return nil, ErrFeedbackExists
	} else if !errors.Is(err, kv.ErrNotFound) {
		return nil, fmt.Errorf("failed to check feedback: %w", err)
	}

	comment := validation.SanitizeString(req.Comment)
	if len(comment) > maxFeedbackCommentLength {
		comment = comment[:maxFeedbackCommentLength]
	}

	record := &models.FeedbackRecord{
		Rating:      int(req.Rating),
		Comment:     comment,
		Preferences: req.Preferences,
		Timestamp:   time.Now().UTC(),
	}

	written, err := s.putJSONIfAbsent(ctx, fbKey, record)
	if err != nil {
		return nil, err
	}
	if !written {
		return nil, ErrFeedbackExists
	}

	if err := s.markOnboardingComplete(ctx, userID); err != nil {
		return nil, err
	}

	return &FeedbackResult{
		Submitted:          true,
		Timestamp:          record.Timestamp,
		Rating:             record.Rating,
		OnboardingComplete: true,
	}, nil
}

type ReminderResult struct {
	ReminderSet        bool
	OnboardingComplete bool
}

// RemindLater is the alternate terminal transition out of the feedback
// step: onboarding completes without a feedback record.
func (s *OnboardingService) RemindLater(ctx context.Context, userID string) (*ReminderResult, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	if err := s.store.Put(ctx, kv.FeedbackReminderKey(userID), []byte(now), 0); err != nil {
		return nil, fmt.Errorf("failed to set feedback reminder: %w", err)
	}
	if err := s.markOnboardingComplete(ctx, userID); err != nil {
		return nil, err
	}
	return &ReminderResult{ReminderSet: true, OnboardingComplete: true}, nil
}

type SignInResult struct {
	Account models.AccountView
	Token   string
}

// SignIn verifies credentials by re-hashing the password and comparing it
// against the stored digest, then issues a fresh token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *OnboardingService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	if !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if password == "" {
		return nil, &Error{Code: "invalid-password", Message: "Password is required", Status: http.StatusBadRequest}
	}

	userIDBytes, err := s.store.Get(ctx, kv.EmailIndexKey(strings.ToLower(email)))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up email index: %w", err)
	}
	userID := string(userIDBytes)

	digest, err := s.store.Get(ctx, kv.PasswordKey(userID))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get password digest: %w", err)
	}

	if !s.creds.VerifyPassword(password, string(digest)) {
		return nil, ErrInvalidCredentials
	}

	view, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	token, err := s.creds.IssueToken(userID)
	if err != nil {
		return nil, err
	}

	return &SignInResult{Account: *view, Token: token}, nil
}

// CurrentUser returns the account with its derived completedSteps set. The
// set is recomputed on every call from record existence, never stored:
// account is complete by definition, the generic step record contributes
// its declared stepId, and the three dedicated records contribute by
// existing.
func (s *OnboardingService) CurrentUser(ctx context.Context, userID string) (*models.AccountView, error) {
	data, err := s.store.Get(ctx, kv.UserKey(userID))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	var account models.Account
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	var (
		latestStepID                          string
		hasProfile, hasSignature, hasFeedback bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stepData, err := s.store.Get(gctx, kv.StepKey(userID))
		if errors.Is(err, kv.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get step record: %w", err)
		}
		var record models.StepRecord
		if err := json.Unmarshal(stepData, &record); err != nil {
			return fmt.Errorf("failed to unmarshal step record: %w", err)
		}
		latestStepID = record.StepID
		return nil
	})
	g.Go(func() error {
		var err error
		hasProfile, err = s.exists(gctx, kv.ProfileKey(userID))
		return err
	})
	g.Go(func() error {
		var err error
		hasSignature, err = s.exists(gctx, kv.SignatureKey(userID))
		return err
	})
	g.Go(func() error {
		var err error
		hasFeedback, err = s.exists(gctx, kv.FeedbackKey(userID))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	completed := []string{models.StepAccount}
	appendStep := func(step string) {
		for _, existing := range completed {
			if existing == step {
				return
			}
		}
		completed = append(completed, step)
	}
	if latestStepID != "" {
		appendStep(latestStepID)
	}
	if hasProfile {
		appendStep(models.StepProfile)
	}
	if hasSignature {
		appendStep(models.StepSignature)
	}
	if hasFeedback {
		appendStep(models.StepFeedback)
	}

	view := account.View()
	view.CompletedSteps = completed
	return &view, nil
}

func (s *OnboardingService) markOnboardingComplete(ctx context.Context, userID string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	if err := s.store.Put(ctx, kv.OnboardingCompleteKey(userID), []byte(now), 0); err != nil {
		return fmt.Errorf("failed to mark onboarding complete: %w", err)
	}
	return nil
}

func (s *OnboardingService) exists(ctx context.Context, key string) (bool, error) {
	_, err := s.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", key, err)
	}
	return true, nil
}

func (s *OnboardingService) putJSON(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.store.Put(ctx, key, data, 0); err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

func (s *OnboardingService) putJSONIfAbsent(ctx context.Context, key string, value any) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	written, err := s.store.PutIfAbsent(ctx, key, data, 0)
	if err != nil {
		return false, fmt.Errorf("failed to conditionally put %s: %w", key, err)
	}
	return written, nil
}

func isValidPreference(pref string) bool {
	for _, valid := range ValidPreferences {
		if pref == valid {
			return true
		}
	}
	return false
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}
