package handlers

import (
	"net/http"

	"github.com/fitpulse/identity/internal/app"
	httpx "github.com/fitpulse/identity/internal/http"
	"github.com/fitpulse/identity/internal/http/middlewares"
)

type VerifyEmailRequest struct {
	Code string `json:"code"`
}

// NewVerifyEmailHandler confirma la casilla con el código de 6 dígitos.
// Requiere sesión: el usuario sale del contexto, pero el registro completo
// (con código y contador) se re-fetchea del store.
func NewVerifyEmailHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VerifyEmailRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}
		if req.Code == "" {
			httpx.WriteError(w, http.StatusBadRequest, "missing_fields", "code es requerido", 1101)
			return
		}

		cur := middlewares.GetUser(r.Context())
		if cur == nil {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required", 1401)
			return
		}
		u, err := c.Store.FindByID(r.Context(), cur.ID)
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		if err := c.Auth.ValidateVerification(r.Context(), u, req.Code); err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toUserResponse(u.Sanitized()))
	}
}

// NewResendVerificationHandler reemite el código. Resetea el contador de
// intentos: es la salida cuando el presupuesto se agotó.
func NewResendVerificationHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cur := middlewares.GetUser(r.Context())
		if cur == nil {
			httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "authentication required", 1401)
			return
		}
		u, err := c.Store.FindByID(r.Context(), cur.ID)
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		err = c.Auth.ResendVerification(r.Context(), u)
		httpx.RecordEmail("verify", err == nil)
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
	}
}

type ForgotRequest struct {
	Email string `json:"email"`
}

// NewForgotHandler inicia el reset de password. La respuesta es la misma
// exista o no la cuenta: no filtramos existencia de emails.
func NewForgotHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ForgotRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}
		if req.Email == "" {
			httpx.WriteError(w, http.StatusBadRequest, "missing_fields", "email es requerido", 1101)
			return
		}

		if err := c.Auth.RequestReset(r.Context(), req.Email); err != nil {
			httpx.RecordEmail("reset", false)
			httpx.WriteDomainError(w, err)
			return
		}
		httpx.RecordEmail("reset", true)

		httpx.WriteJSON(w, http.StatusAccepted, map[string]string{
			"status": "si la cuenta existe, se envió un mail con instrucciones",
		})
	}
}

type ResetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// NewResetHandler consume el token de reset y fija la password nueva. El
// token es single-use: el segundo redeem da invalid_token.
func NewResetHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResetRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}
		if req.Token == "" || req.NewPassword == "" {
			httpx.WriteError(w, http.StatusBadRequest, "missing_fields", "token y new_password son requeridos", 1101)
			return
		}

		u, err := c.Auth.RedeemReset(r.Context(), req.Token, req.NewPassword)
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, toUserResponse(u))
	}
}
