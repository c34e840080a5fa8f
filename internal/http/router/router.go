// Package router cablea las rutas públicas del servicio sobre chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fitpulse/identity/internal/app"
	httpx "github.com/fitpulse/identity/internal/http"
	"github.com/fitpulse/identity/internal/http/handlers"
	"github.com/fitpulse/identity/internal/http/middlewares"
)

// New arma el router completo. metricsHandler puede ser nil (sin /metrics).
func New(c *app.Container, metricsHandler http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middlewares.WithRequestID(),
		middlewares.WithCORS(c.Cfg.Server.CORSAllowedOrigins),
		middlewares.WithLogging(),
		httpx.WithMetrics,
	)

	requireAuth := middlewares.RequireAuth(c.Auth)

	// Health
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", handlers.NewReadyzHandler(c))

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handlers.NewAuthRegisterHandler(c))
			r.With(middlewares.WithRateLimit(c.LoginLimiter)).
				Post("/login", handlers.NewAuthLoginHandler(c))
			r.Post("/refresh", handlers.NewAuthRefreshHandler(c))

			// Email flows
			r.With(requireAuth).Post("/verify-email", handlers.NewVerifyEmailHandler(c))
			r.With(requireAuth).Post("/verify-email/resend", handlers.NewResendVerificationHandler(c))
			r.With(middlewares.WithRateLimit(c.ForgotLimiter)).
				Post("/forgot", handlers.NewForgotHandler(c))
			r.Post("/reset", handlers.NewResetHandler(c))

			// Social
			r.Get("/social/{provider}/url", handlers.NewSocialURLHandler(c))
			r.Post("/social/{provider}/exchange", handlers.NewSocialExchangeHandler(c))
		})

		r.With(requireAuth).Get("/me", handlers.NewMeHandler(c))
		r.With(requireAuth).Put("/me", handlers.NewMeUpdateHandler(c))
	})

	return r
}
