// Package store define el contrato del CredentialStore: registros de usuario
// durables con constraints de unicidad resueltos por el propio store.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitpulse/identity/internal/domain"
)

// ConflictError señala qué constraint de unicidad se violó en un Insert/Update.
// Envuelve domain.ErrConflict para que errors.Is siga funcionando.
type ConflictError struct {
	Field string // "email" | "username" | "provider_id"
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s", e.Field)
}

func (e *ConflictError) Unwrap() error { return domain.ErrConflict }

// ConflictField devuelve el campo en conflicto, o "" si err no es un ConflictError.
func ConflictField(err error) string {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Field
	}
	return ""
}

// CredentialStore es la única fuente de verdad de usuarios. Las carreras de
// escritura concurrente (registro duplicado, doble first-login social, doble
// incremento de intentos) se resuelven acá, no con check-then-insert en capas
// superiores.
type CredentialStore interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByProviderID(ctx context.Context, providerID string) (*domain.User, error)

	// Insert persiste un usuario nuevo. Retorna *ConflictError (envuelve
	// domain.ErrConflict) si email, username o provider_id ya existen.
	Insert(ctx context.Context, u *domain.User) error

	// Update reescribe el registro completo. Retorna domain.ErrNotFound si
	// el registro desapareció.
	Update(ctx context.Context, u *domain.User) error

	// IncrementVerificationAttempts suma 1 al contador de forma atómica,
	// solo si attempts < max. Devuelve el contador resultante y si el
	// incremento se aplicó. Dos submits concurrentes con attempts=4 no
	// pueden ambos quedar en 5.
	IncrementVerificationAttempts(ctx context.Context, userID string, max int) (attempts int, applied bool, err error)

	// ConsumeResetToken redime un reset token de forma atómica: si existe un
	// usuario con ese hash y el token no venció a la hora `now`, setea el
	// nuevo password hash, limpia el token y devuelve el usuario. Si no,
	// domain.ErrResetInvalidOrExpired. Un token nunca se redime dos veces.
	ConsumeResetToken(ctx context.Context, tokenHash, newPasswordHash string, now time.Time) (*domain.User, error)

	// SetLastLogin registra el último login. Best effort: un fallo acá no
	// debe abortar el login.
	SetLastLogin(ctx context.Context, userID string, at time.Time) error

	// Ping verifica la conexión al backend.
	Ping(ctx context.Context) error
}
