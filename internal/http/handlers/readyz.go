package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/fitpulse/identity/internal/app"
	httpx "github.com/fitpulse/identity/internal/http"
	jwtx "github.com/fitpulse/identity/internal/jwt"
	"github.com/fitpulse/identity/internal/observability/logger"
)

// NewReadyzHandler chequea store, cache y firma JWT. Un fallo en cualquiera
// devuelve 503: el pod no debe recibir tráfico.
func NewReadyzHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if v := os.Getenv("SERVICE_VERSION"); v != "" {
			w.Header().Set("X-Service-Version", v)
		}

		// 1) DB
		if err := c.Store.Ping(r.Context()); err != nil {
			logger.From(r.Context()).Error("db unavailable", logger.Err(err))
			httpx.WriteError(w, http.StatusServiceUnavailable, "db_unavailable", "database unavailable", 2001)
			return
		}

		// 2) Self-check de firma: emitir y verificar un access efímero.
		signed, _, err := c.Issuer.IssueAccess("selfcheck")
		if err != nil {
			httpx.WriteError(w, http.StatusServiceUnavailable, "sign_failed", "no se pudo firmar self-check", 2004)
			return
		}
		if _, err := c.Issuer.VerifyTyped(signed, jwtx.TypeAccess); err != nil {
			httpx.WriteError(w, http.StatusServiceUnavailable, "verify_failed", "self-check: verificación falló", 2005)
			return
		}

		// 3) Cache (round-trip con TTL corto)
		key := "readyz:" + time.Now().UTC().Format("150405.000")
		if _, err := c.Cache.SetNX(r.Context(), key, "1", 5*time.Second); err != nil {
			logger.From(r.Context()).Error("cache unavailable", logger.Err(err))
			httpx.WriteError(w, http.StatusServiceUnavailable, "cache_unavailable", "cache unavailable", 2002)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
