package middleware

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/prudhvinik1/onboardflow/internal/response"
)

// Recoverer converts panics into a generic 500 envelope so nothing escapes
// to the transport layer. Internal detail stays in the log.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Msg("panic recovered")
				response.Err(w, http.StatusInternalServerError, "internal-error", "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
