package handlers

import (
	"net/http"

	"github.com/fitpulse/identity/internal/app"
	"github.com/fitpulse/identity/internal/auth"
	httpx "github.com/fitpulse/identity/internal/http"
)

type AuthRegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthRegisterResponse struct {
	User   UserResponse  `json:"user"`
	Tokens TokenResponse `json:"tokens"`

	// VerificationEmailSent queda en false si el SMTP falló. La cuenta
	// existe igual y el código se puede reemitir con resend.
	VerificationEmailSent bool `json:"verification_email_sent"`
}

func NewAuthRegisterHandler(c *app.Container) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AuthRegisterRequest
		if !httpx.ReadJSON(w, r, &req) {
			return
		}

		res, err := c.Auth.Register(r.Context(), auth.RegisterInput{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		httpx.RecordEmail("verify", res.MailErr == nil)

		httpx.WriteJSON(w, http.StatusCreated, AuthRegisterResponse{
			User:                  toUserResponse(res.User),
			Tokens:                toTokenResponse(res.Tokens),
			VerificationEmailSent: res.MailErr == nil,
		})
	}
}
