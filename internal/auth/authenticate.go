package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/fitpulse/identity/internal/domain"
	"github.com/fitpulse/identity/internal/jwt"
)

// UnauthorizedError lleva el motivo presentable al caller, sin material
// secreto. Envuelve domain.ErrUnauthorized.
type UnauthorizedError struct{ Reason string }

func (e *UnauthorizedError) Error() string { return "unauthorized: " + e.Reason }
func (e *UnauthorizedError) Unwrap() error { return domain.ErrUnauthorized }

func unauthorized(reason string) error { return &UnauthorizedError{Reason: reason} }

// Authenticate resuelve un header Authorization a una identidad saneada.
//
//   - header ausente o sin esquema Bearer: "authentication required"
//   - firma inválida o token vencido: "invalid token"
//   - sujeto que ya no existe: "user not found" — un token huérfano nunca
//     sigue como request anónimo.
func (s *Service) Authenticate(ctx context.Context, authorization string) (*domain.User, error) {
	ah := strings.TrimSpace(authorization)
	if ah == "" || !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
		return nil, unauthorized("authentication required")
	}
	raw := strings.TrimSpace(ah[len("bearer "):])
	if raw == "" {
		return nil, unauthorized("authentication required")
	}

	claims, err := s.Issuer.VerifyTyped(raw, jwt.TypeAccess)
	if err != nil {
		return nil, unauthorized("invalid token")
	}

	u, err := s.Store.FindByID(ctx, claims.Subject)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, unauthorized("user not found")
		}
		return nil, fmt.Errorf("%w: store: %v", domain.ErrExternalService, err)
	}
	return u.Sanitized(), nil
}
