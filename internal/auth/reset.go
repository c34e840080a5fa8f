package auth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fitpulse/identity/internal/audit"
	"github.com/fitpulse/identity/internal/domain"
	"github.com/fitpulse/identity/internal/email"
	"github.com/fitpulse/identity/internal/observability/logger"
	tokens "github.com/fitpulse/identity/internal/security/token"
)

// RequestReset arranca el flujo de reset. La respuesta es idéntica exista o
// no la cuenta (nil en ambos casos) para no filtrar existencia de emails; la
// diferencia es solo interna: con cuenta se persiste el hash del token y se
// despacha el mail, sin cuenta no se toca nada.
func (s *Service) RequestReset(ctx context.Context, emailAddr string) error {
	u, err := s.Store.FindByEmail(ctx, emailAddr)
	if err != nil {
		if domain.IsNotFound(err) {
			logger.From(ctx).Info("reset requested for unknown email",
				logger.Email(emailAddr), logger.Flow("reset"))
			return nil
		}
		return err
	}

	token, err := tokens.GenerateResetToken()
	if err != nil {
		return err
	}
	exp := s.now().Add(s.ResetTTL)
	u.ResetTokenHash = tokens.SHA256Hex(token)
	u.ResetTokenExpiresAt = &exp
	if err := s.Store.Update(ctx, u); err != nil {
		return err
	}

	link := s.BaseURL + "/reset-password?token=" + url.QueryEscape(token)
	html, text, err := s.Templates.RenderReset(email.ResetVars{
		Username: u.Username,
		Link:     link,
		TTL:      s.ResetTTL,
	})
	if err != nil {
		return err
	}
	if err := s.Sender.Send(u.Email, "Restablecé tu password", html, text); err != nil {
		// El token quedó persistido; un retry de requestReset emite otro.
		return fmt.Errorf("%w: mailer: %v", domain.ErrExternalService, err)
	}
	logger.From(ctx).Info("reset token issued", logger.UserID(u.ID), logger.Flow("reset"))
	audit.Log(ctx, audit.EventResetRequest, logger.UserID(u.ID))
	return nil
}

// RedeemReset canjea el token por un password nuevo. El hash nuevo se computa
// acá (el store no transforma nada) y el canje es un update condicional
// atómico: o redime y limpia el token, o falla InvalidOrExpired. Nunca dos
// redenciones del mismo token.
func (s *Service) RedeemReset(ctx context.Context, token, newPassword string) (*domain.User, error) {
	if len(newPassword) < minPasswordLen {
		return nil, domain.Invalid("password", "must be at least 8 characters")
	}
	newHash, err := s.Hasher.Hash(ctx, newPassword)
	if err != nil {
		return nil, err
	}
	u, err := s.Store.ConsumeResetToken(ctx, tokens.SHA256Hex(token), newHash, s.now())
	if err != nil {
		return nil, err
	}
	logger.From(ctx).Info("password reset", logger.UserID(u.ID), logger.Flow("reset"))
	audit.Log(ctx, audit.EventResetDone, logger.UserID(u.ID))
	return u.Sanitized(), nil
}
