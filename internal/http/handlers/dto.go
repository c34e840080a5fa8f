package handlers

import (
	"time"

	"github.com/fitpulse/identity/internal/auth"
	"github.com/fitpulse/identity/internal/domain"
)

// UserResponse es la vista pública de un usuario. Nunca incluye hash de
// password, códigos de verificación ni tokens de reset.
type UserResponse struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	Roles             []string   `json:"roles"`
	ProfileImage      string     `json:"profile_image,omitempty"`
	VerificationState string     `json:"verification_state"`
	LastLogin         *time.Time `json:"last_login,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Username:          u.Username,
		Email:             u.Email,
		Roles:             u.Roles,
		ProfileImage:      u.ProfileImage,
		VerificationState: string(u.VerificationState),
		LastLogin:         u.LastLogin,
		CreatedAt:         u.CreatedAt,
	}
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"` // "Bearer"
	ExpiresIn    int64  `json:"expires_in"` // segundos
}

func toTokenResponse(p *auth.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(time.Until(p.ExpiresAt).Seconds()),
	}
}
