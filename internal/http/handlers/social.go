package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fitpulse/identity/internal/app"
	"github.com/fitpulse/identity/internal/auth"
	httpx "github.com/fitpulse/identity/internal/http"
	"github.com/fitpulse/identity/internal/observability/logger"
)

// NewSocialURLHandler devuelve la URL de autorización del provider para que
// el front inicie el flujo. GET /v1/auth/social/{provider}/url?state=...
func NewSocialURLHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "provider")
		p, ok := c.Provider(name)
		if !ok {
			httpx.WriteError(w, http.StatusNotFound, "unknown_provider", "provider no configurado: "+name, 1404)
			return
		}

		u, err := p.AuthURL(r.Context(), r.URL.Query().Get("state"))
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "no se pudo armar la URL", 1500)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"url": u})
	}
}

type SocialExchangeRequest struct {
	Code string `json:"code"`
}

// NewSocialExchangeHandler canjea el code del provider, reconcilia el perfil
// contra la cuenta local (creándola en el primer login) y emite sesión.
// POST /v1/auth/social/{provider}/exchange
func NewSocialExchangeHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "provider")
		p, ok := c.Provider(name)
		if !ok {
			httpx.WriteError(w, http.StatusNotFound, "unknown_provider", "provider no configurado: "+name, 1404)
			return
		}

		var req SocialExchangeRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}
		if req.Code == "" {
			httpx.WriteError(w, http.StatusBadRequest, "missing_fields", "code es requerido", 1101)
			return
		}

		profile, err := p.Exchange(r.Context(), req.Code)
		if err != nil {
			logger.From(r.Context()).Warn("social exchange failed",
				logger.Provider(name), logger.Err(err))
			httpx.WriteError(w, http.StatusBadGateway, "external_service", "el provider rechazó el intercambio", 1502)
			return
		}

		u, pair, err := c.Auth.LoginSocial(r.Context(), auth.Profile{
			ProviderID:  profile.ProviderID,
			DisplayName: profile.DisplayName,
			Email:       profile.Email,
			PhotoURL:    profile.PhotoURL,
		})
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, AuthLoginResponse{
			User:   toUserResponse(u),
			Tokens: toTokenResponse(pair),
		})
	}
}
