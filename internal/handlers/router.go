package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prudhvinik1/onboardflow/internal/config"
	"github.com/prudhvinik1/onboardflow/internal/kv"
	"github.com/prudhvinik1/onboardflow/internal/middleware"
	"github.com/prudhvinik1/onboardflow/internal/response"
	"github.com/prudhvinik1/onboardflow/internal/services"
)

// NewRouter wires the middleware chain and routes. Order matters: recover
// first, then logging, CORS (handles preflight), rate limiting on mutating
// routes, and bearer auth on protected routes.
func NewRouter(cfg *config.Config, store kv.Store, creds *services.CredentialService, onboarding *services.OnboardingService, version string) http.Handler {
	h := New(onboarding, version)
	auth := middleware.NewAuthMiddleware(creds)
	rateLimiter := middleware.NewRateLimiter(store, cfg.RateLimits, cfg.DefaultRateLimit)

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.RequestLogger)
	router.Use(middleware.CORS)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Err(w, http.StatusNotFound, "not-found", "Not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Err(w, http.StatusMethodNotAllowed, "method-not-allowed", "Method not allowed")
	})

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.With(auth.Handler).Get("/auth/me", h.Me)

		// Mutating endpoints all pass through the rate limiter first.
		r.Group(func(r chi.Router) {
			r.Use(rateLimiter.Handler)

			r.Post("/onboard/start", h.OnboardStart)
			r.Post("/auth/signin", h.SignIn)

			r.Group(func(r chi.Router) {
				r.Use(auth.Handler)

				r.Put("/onboard/step", h.OnboardStep)
				r.Post("/sign", h.Sign)
				r.Post("/feedback", h.Feedback)
				r.Post("/feedback/reminder", h.FeedbackReminder)
			})
		})
	})

	return router
}
