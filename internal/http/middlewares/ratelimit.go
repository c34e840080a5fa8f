package middlewares

import (
	"net/http"
	"strconv"

	httpx "github.com/fitpulse/identity/internal/http"
	"github.com/fitpulse/identity/internal/observability/logger"
	"github.com/fitpulse/identity/internal/rate"
)

// WithRateLimit aplica un limiter fixed-window por IP del cliente. Si el cache
// falla dejamos pasar: preferimos disponibilidad a bloquear logins legítimos.
func WithRateLimit(limiter rate.Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			res, err := limiter.Allow(r.Context(), r.URL.Path+":"+clientIP(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter unavailable", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				if secs := int(res.RetryAfter.Seconds()); secs > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(secs))
				}
				httpx.WriteError(w, http.StatusTooManyRequests, "rate_limited", "demasiadas solicitudes, probá más tarde", 1430)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
