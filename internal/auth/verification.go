package auth

import (
	"context"
	"fmt"

	"github.com/fitpulse/identity/internal/audit"
	"github.com/fitpulse/identity/internal/domain"
	"github.com/fitpulse/identity/internal/email"
	"github.com/fitpulse/identity/internal/observability/logger"
	tokens "github.com/fitpulse/identity/internal/security/token"
)

// Máquina de estados de verificación:
//
//	unverified --issue--> pending --código correcto--> verified (terminal)
//
// pending tiene self-loop en Mismatch/Expired, y un dead-end al agotar los
// intentos del que solo se sale con Resend (código nuevo, contador en cero).

// IssueVerification genera un código fresco de 6 dígitos, lo persiste con
// su expiración y contador en cero, y recién entonces lo despacha por mail.
// Un fallo del mailer devuelve ErrExternalService con el registro ya durable.
func (s *Service) IssueVerification(ctx context.Context, u *domain.User) error {
	code, err := tokens.GenerateVerificationCode()
	if err != nil {
		return err
	}
	exp := s.now().Add(s.VerifyTTL)

	u.VerificationState = domain.VerificationPending
	u.VerificationCode = code
	u.VerificationCodeExpiresAt = &exp
	u.VerificationAttempts = 0
	if err := s.Store.Update(ctx, u); err != nil {
		return err
	}

	html, text, err := s.Templates.RenderVerify(email.VerifyVars{
		Username: u.Username,
		Code:     code,
		TTL:      s.VerifyTTL,
	})
	if err != nil {
		return err
	}
	if err := s.Sender.Send(u.Email, "Verificá tu email", html, text); err != nil {
		return fmt.Errorf("%w: mailer: %v", domain.ErrExternalService, err)
	}
	logger.From(ctx).Info("verification code issued",
		logger.UserID(u.ID), logger.Flow("verify"))
	return nil
}

// ValidateVerification valida el código submitido contra el estado del
// usuario, en este orden: estado, expiración, presupuesto de intentos,
// comparación. La expiración no consume intentos; el mismatch sí, con un
// incremento atómico en el store.
func (s *Service) ValidateVerification(ctx context.Context, u *domain.User, submitted string) error {
	if u.VerificationState != domain.VerificationPending {
		if u.VerificationState == domain.VerificationVerified {
			return domain.ErrAlreadyVerified
		}
		return domain.ErrNotPending
	}
	if u.VerificationCodeExpiresAt == nil || s.now().After(*u.VerificationCodeExpiresAt) {
		return domain.ErrCodeExpired
	}
	// El tope se chequea antes de comparar: un sexto intento con el código
	// correcto también falla.
	if u.VerificationAttempts >= domain.MaxVerificationAttempts {
		return domain.ErrAttemptsExceeded
	}
	if submitted != u.VerificationCode {
		attempts, applied, err := s.Store.IncrementVerificationAttempts(ctx, u.ID, domain.MaxVerificationAttempts)
		if err != nil {
			return err
		}
		u.VerificationAttempts = attempts
		// applied=false significa que otro submit ya llegó al tope: el
		// snapshot local venía viejo y esto ya es lockout, no mismatch.
		if !applied && attempts >= domain.MaxVerificationAttempts {
			return domain.ErrAttemptsExceeded
		}
		return domain.ErrCodeMismatch
	}

	u.VerificationState = domain.VerificationVerified
	u.VerificationCode = ""
	u.VerificationCodeExpiresAt = nil
	u.VerificationAttempts = 0
	if err := s.Store.Update(ctx, u); err != nil {
		return err
	}
	logger.From(ctx).Info("email verified", logger.UserID(u.ID), logger.Flow("verify"))
	audit.Log(ctx, audit.EventVerified, logger.UserID(u.ID))
	return nil
}

// ResendVerification emite un código fresco. Es la única salida del dead-end
// de intentos agotados. Falla AlreadyVerified en estado terminal.
func (s *Service) ResendVerification(ctx context.Context, u *domain.User) error {
	if u.VerificationState == domain.VerificationVerified {
		return domain.ErrAlreadyVerified
	}
	return s.IssueVerification(ctx, u)
}
