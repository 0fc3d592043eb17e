package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhvinik1/onboardflow/internal/config"
	"github.com/prudhvinik1/onboardflow/internal/kv"
)

func rateLimitedHandler(limits map[string]config.RateLimit) http.Handler {
	rl := NewRateLimiter(kv.NewMemoryStore(), limits, config.RateLimit{Requests: 100, Window: time.Minute})
	return rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func doRequest(handler http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/test", nil)
	req.Header.Set("X-Forwarded-For", ip)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_RejectsOverLimit(t *testing.T) {
	handler := rateLimitedHandler(map[string]config.RateLimit{
		"/api/test": {Requests: 5, Window: 5 * time.Minute},
	})

	for i := 0; i < 5; i++ {
		rec := doRequest(handler, "203.0.113.1")
		require.Equal(t, http.StatusOK, rec.Code, "request %d should be admitted", i+1)
	}

	// 6th request in the same window is rejected
	rec := doRequest(handler, "203.0.113.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
	assert.Contains(t, rec.Body.String(), "rate-limited")
}

func TestRateLimiter_WindowsAreKeyedByClient(t *testing.T) {
	handler := rateLimitedHandler(map[string]config.RateLimit{
		"/api/test": {Requests: 1, Window: 5 * time.Minute},
	})

	rec := doRequest(handler, "203.0.113.1")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(handler, "203.0.113.1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// A different client has its own window
	rec = doRequest(handler, "203.0.113.2")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_WindowResets(t *testing.T) {
	handler := rateLimitedHandler(map[string]config.RateLimit{
		"/api/test": {Requests: 1, Window: time.Second},
	})

	rec := doRequest(handler, "203.0.113.1")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(handler, "203.0.113.1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	// Wait for the window to expire
	time.Sleep(2 * time.Second)

	rec = doRequest(handler, "203.0.113.1")
	assert.Equal(t, http.StatusOK, rec.Code, "first request after resetAt starts a fresh window")
}

func TestRateLimiter_UnlistedEndpointUsesDefault(t *testing.T) {
	rl := NewRateLimiter(kv.NewMemoryStore(), map[string]config.RateLimit{}, config.RateLimit{Requests: 2, Window: time.Minute})
	handler := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := doRequest(handler, "203.0.113.1")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := doRequest(handler, "203.0.113.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
