package handlers

import (
	"net/http"

	"github.com/fitpulse/identity/internal/app"
	httpx "github.com/fitpulse/identity/internal/http"
)

type AuthRefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// NewAuthRefreshHandler redime un refresh token por un par nuevo. El refresh
// es single-use: redimirlo dos veces da 401.
func NewAuthRefreshHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AuthRefreshRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}
		if req.RefreshToken == "" {
			httpx.WriteError(w, http.StatusBadRequest, "missing_fields", "refresh_token es requerido", 1101)
			return
		}

		pair, err := c.Auth.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toTokenResponse(pair))
	}
}
