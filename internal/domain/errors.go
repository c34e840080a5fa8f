package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indica que el recurso solicitado no existe.
	ErrNotFound = errors.New("not found")

	// ErrConflict indica un duplicado (email, username o provider_id).
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized indica credenciales ausentes, inválidas o huérfanas.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indica que se agotó el presupuesto de intentos.
	ErrRateLimited = errors.New("rate limited")

	// ErrExternalService indica fallo de un colaborador externo (store, mailer).
	// El detalle se loguea internamente; al caller le llega genérico.
	ErrExternalService = errors.New("external service failure")
)

// Errores del flujo de verificación de email.
var (
	ErrNotPending       = errors.New("verification not pending")
	ErrCodeExpired      = errors.New("verification code expired")
	ErrCodeMismatch     = errors.New("verification code mismatch")
	ErrAttemptsExceeded = fmt.Errorf("verification attempts exceeded: %w", ErrRateLimited)
	ErrAlreadyVerified  = errors.New("email already verified")
)

// ErrResetInvalidOrExpired cubre token de reset inexistente, usado o vencido.
// A propósito no distingue entre los tres casos.
var ErrResetInvalidOrExpired = errors.New("reset token invalid or expired")

// ValidationError es un error de input malformado, culpa del caller.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Invalid construye un ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reporta si err es (o envuelve) un ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsConflict reporta si el error es ErrConflict.
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

// IsNotFound reporta si el error es ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
