package handlers

import (
	"errors"
	"net/http"

	"github.com/fitpulse/identity/internal/app"
	"github.com/fitpulse/identity/internal/domain"
	httpx "github.com/fitpulse/identity/internal/http"
)

type AuthLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthLoginResponse struct {
	User   UserResponse  `json:"user"`
	Tokens TokenResponse `json:"tokens"`
}

func NewAuthLoginHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AuthLoginRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}
		if req.Email == "" || req.Password == "" {
			httpx.WriteError(w, http.StatusBadRequest, "missing_fields", "email y password son requeridos", 1101)
			return
		}

		u, pair, err := c.Auth.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthorized) {
				httpx.RecordLoginFailed()
				// Mismo mensaje para email inexistente y password incorrecta.
				httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "credenciales inválidas", 1401)
				return
			}
			httpx.WriteDomainError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, AuthLoginResponse{
			User:   toUserResponse(u),
			Tokens: toTokenResponse(pair),
		})
	}
}
