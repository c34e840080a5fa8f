package auth

import (
	"context"
	"strings"

	"github.com/fitpulse/identity/internal/domain"
)

// ProfileUpdate son los campos editables del perfil. nil = sin cambio.
type ProfileUpdate struct {
	Username     *string
	Email        *string
	ProfileImage *string
}

// UpdateProfile aplica un update parcial del perfil. La unicidad de
// username/email la resuelve el store (Conflict). Cambiar el email invalida
// la verificación: la casilla nueva no está atestiguada.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*domain.User, error) {
	u, err := s.Store.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if l := len(name); l < minUsernameLen || l > maxUsernameLen {
			return nil, domain.Invalid("username", "must be 3-30 characters")
		}
		u.Username = name
	}
	if in.Email != nil {
		addr := strings.TrimSpace(strings.ToLower(*in.Email))
		if !emailRe.MatchString(addr) {
			return nil, domain.Invalid("email", "malformed address")
		}
		if addr != u.Email {
			u.Email = addr
			u.VerificationState = domain.VerificationUnverified
			u.VerificationCode = ""
			u.VerificationCodeExpiresAt = nil
			u.VerificationAttempts = 0
		}
	}
	if in.ProfileImage != nil {
		u.ProfileImage = strings.TrimSpace(*in.ProfileImage)
	}

	if err := s.Store.Update(ctx, u); err != nil {
		return nil, err
	}
	return u.Sanitized(), nil
}
