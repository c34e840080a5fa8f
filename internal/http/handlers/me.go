package handlers

import (
	"net/http"

	"github.com/fitpulse/identity/internal/app"
	"github.com/fitpulse/identity/internal/auth"
	httpx "github.com/fitpulse/identity/internal/http"
	"github.com/fitpulse/identity/internal/http/middlewares"
)

// NewMeHandler devuelve el perfil del usuario autenticado.
func NewMeHandler(_ *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := middlewares.GetUser(r.Context())
		if u == nil {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required", 1401)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
	}
}

type MeUpdateRequest struct {
	Username     *string `json:"username"`
	Email        *string `json:"email"`
	ProfileImage *string `json:"profile_image"`
}

// NewMeUpdateHandler aplica un update parcial del perfil. Cambiar el email
// vuelve la cuenta a estado no verificado.
func NewMeUpdateHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := middlewares.GetUser(r.Context())
		if u == nil {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required", 1401)
			return
		}

		var req MeUpdateRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}
		if req.Username == nil && req.Email == nil && req.ProfileImage == nil {
			httpx.WriteError(w, http.StatusBadRequest, "missing_fields", "nada para actualizar", 1101)
			return
		}

		updated, err := c.Auth.UpdateProfile(r.Context(), u.ID, auth.ProfileUpdate{
			Username:     req.Username,
			Email:        req.Email,
			ProfileImage: req.ProfileImage,
		})
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toUserResponse(updated))
	}
}
