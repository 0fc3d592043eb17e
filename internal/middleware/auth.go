package middleware

import (
	"context"
	"net/http"

	"github.com/prudhvinik1/onboardflow/internal/response"
	"github.com/prudhvinik1/onboardflow/internal/services"
)

type contextKey string

const userIDKey contextKey = "userID"

// AuthMiddleware verifies the bearer token and stashes the subject account
// ID in the request context.
type AuthMiddleware struct {
	creds *services.CredentialService
}

func NewAuthMiddleware(creds *services.CredentialService) *AuthMiddleware {
	return &AuthMiddleware{creds: creds}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := services.ExtractBearer(r.Header.Get("Authorization"))
		if !ok {
			response.Err(w, http.StatusUnauthorized, "unauthorized", "Authorization token required")
			return
		}

		userID, err := m.creds.VerifyToken(token)
		if err != nil {
			response.Err(w, http.StatusUnauthorized, "invalid-token", "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID returns the authenticated account ID, or "" when the request
// did not pass through the auth middleware.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey).(string)
	return userID
}
