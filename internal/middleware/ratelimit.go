package middleware

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prudhvinik1/onboardflow/internal/config"
	"github.com/prudhvinik1/onboardflow/internal/kv"
	"github.com/prudhvinik1/onboardflow/internal/models"
	"github.com/prudhvinik1/onboardflow/internal/response"
)

// TTL buffer beyond the window so stale counters expire on their own.
const windowTTLBuffer = 60 * time.Second

// RateLimiter is a fixed-window counter keyed by (client IP, endpoint
// path), backed by the key-value store so all handler instances share one
// view of the window. Concurrent requests can each read a stale count and
// over-admit slightly; that imprecision is accepted in exchange for
// single-key reads.
type RateLimiter struct {
	store        kv.Store
	limits       map[string]config.RateLimit
	defaultLimit config.RateLimit
}

func NewRateLimiter(store kv.Store, limits map[string]config.RateLimit, defaultLimit config.RateLimit) *RateLimiter {
	return &RateLimiter{store: store, limits: limits, defaultLimit: defaultLimit}
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		limit, ok := rl.limits[r.URL.Path]
		if !ok {
			limit = rl.defaultLimit
		}

		clientIP := ClientIP(r)
		key := kv.RateLimitKey(clientIP, r.URL.Path)
		now := time.Now().Unix()
		windowSeconds := int64(limit.Window / time.Second)

		var window models.RateWindow
		data, err := rl.store.Get(r.Context(), key)
		switch {
		case errors.Is(err, kv.ErrNotFound):
			window = models.RateWindow{Count: 1, ResetAt: now + windowSeconds}
		case err != nil:
			response.Err(w, http.StatusInternalServerError, "internal-error", "Internal server error")
			return
		default:
			if jsonErr := json.Unmarshal(data, &window); jsonErr != nil || now >= window.ResetAt {
				window = models.RateWindow{Count: 1, ResetAt: now + windowSeconds}
			} else {
				window.Count++
			}
		}

		if window.Count > limit.Requests {
			retryAfter := window.ResetAt - now
			log.Warn().
				Str("client_ip", clientIP).
				Str("path", r.URL.Path).
				Int("count", window.Count).
				Msg("rate limit exceeded")

			w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit.Requests))
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(window.ResetAt, 10))
			response.ErrDetails(w, http.StatusTooManyRequests, "rate-limited",
				"Rate limit exceeded. Try again in "+strconv.FormatInt(retryAfter, 10)+" seconds.",
				map[string]any{
					"limit":      limit.Requests,
					"window":     windowSeconds,
					"retryAfter": retryAfter,
				})
			return
		}

		updated, err := json.Marshal(window)
		if err != nil {
			response.Err(w, http.StatusInternalServerError, "internal-error", "Internal server error")
			return
		}
		if err := rl.store.Put(r.Context(), key, updated, limit.Window+windowTTLBuffer); err != nil {
			response.Err(w, http.StatusInternalServerError, "internal-error", "Internal server error")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ClientIP prefers the first X-Forwarded-For hop (the edge proxy fills it
// in) and falls back to the connection's remote address.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.IndexByte(forwarded, ','); idx >= 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
