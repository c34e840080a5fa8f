// Package audit deja un rastro estructurado de eventos de seguridad
// (logins, registros, resets). Va al logger con namespace propio; a futuro
// puede colgarse un sink externo.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/fitpulse/identity/internal/observability/logger"
)

const (
	EventRegister     = "user.register"
	EventLogin        = "user.login"
	EventLoginFailed  = "user.login_failed"
	EventRefresh      = "session.refresh"
	EventVerified     = "email.verified"
	EventResetRequest = "password.reset_requested"
	EventResetDone    = "password.reset_done"
	EventSocialLogin  = "user.social_login"
)

// Log emite un evento de auditoría. Los fields no deben contener secretos;
// para emails usar logger.Email, que enmascara.
func Log(ctx context.Context, event string, fields ...zap.Field) {
	all := append([]zap.Field{zap.String("event", event)}, fields...)
	logger.From(ctx).Named("audit").Info("audit", all...)
}
