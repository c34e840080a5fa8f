package auth

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fitpulse/identity/internal/audit"
	"github.com/fitpulse/identity/internal/domain"
	"github.com/fitpulse/identity/internal/observability/logger"
	"github.com/fitpulse/identity/internal/store"
)

// Profile es la identidad que entrega un provider externo ya autenticado.
// El handshake con el provider no pasa por acá: este core solo mapea el
// perfil a una cuenta local.
type Profile struct {
	ProviderID  string // único global, prefijado por provider ("google:1234")
	DisplayName string
	Email       string
	PhotoURL    string
}

// usernameAttempts acota el loop de sufijos ante un vecindario patológico de
// usernames ocupados.
const usernameAttempts = 50

// Reconcile mapea un perfil social a una cuenta local, creándola en el primer
// login. En logins repetidos devuelve el registro guardado sin re-sincronizar
// displayName/email: los edits locales del usuario no se pisan.
//
// El doble first-login concurrente se resuelve en el constraint de unicidad
// del store: ante Conflict por provider_id se re-fetchea y devuelve el
// ganador.
func (s *Service) Reconcile(ctx context.Context, p Profile) (*domain.User, error) {
	if p.ProviderID == "" {
		return nil, domain.Invalid("provider_id", "missing")
	}
	if existing, err := s.Store.FindByProviderID(ctx, p.ProviderID); err == nil {
		return existing, nil
	} else if !domain.IsNotFound(err) {
		return nil, err
	}

	img := p.PhotoURL
	if img == "" {
		img = domain.DefaultProfileImage
	}

	username := p.DisplayName
	for i := 0; i < usernameAttempts; i++ {
		if i > 0 {
			username = p.DisplayName + strconv.Itoa(i)
		}
		if _, err := s.Store.FindByUsername(ctx, username); err == nil {
			continue // ocupado, probar siguiente sufijo
		} else if !domain.IsNotFound(err) {
			return nil, err
		}

		u := &domain.User{
			Username:        username,
			Email:           p.Email,
			OAuthProviderID: p.ProviderID,
			Roles:           []string{"user"},
			ProfileImage:    img,
			// El provider ya atestiguó la casilla.
			VerificationState: domain.VerificationVerified,
		}
		err := s.Store.Insert(ctx, u)
		if err == nil {
			logger.From(ctx).Info("social account created",
				logger.UserID(u.ID), logger.Flow("social"))
			return u, nil
		}
		switch store.ConflictField(err) {
		case "provider_id":
			// Perdimos la carrera del first-login: devolver el ganador.
			return s.Store.FindByProviderID(ctx, p.ProviderID)
		case "username":
			// Alguien tomó el username entre el lookup y el insert.
			continue
		default:
			return nil, err
		}
	}
	return nil, fmt.Errorf("could not resolve unique username for %q", p.DisplayName)
}

// LoginSocial reconcilia el perfil y emite sesión en un paso.
func (s *Service) LoginSocial(ctx context.Context, p Profile) (*domain.User, *TokenPair, error) {
	u, err := s.Reconcile(ctx, p)
	if err != nil {
		return nil, nil, err
	}
	pair, err := s.issuePair(u.ID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Store.SetLastLogin(ctx, u.ID, s.now()); err != nil {
		logger.From(ctx).Warn("set last_login failed", logger.UserID(u.ID), logger.Err(err))
	}
	audit.Log(ctx, audit.EventSocialLogin, logger.UserID(u.ID))
	return u.Sanitized(), pair, nil
}
