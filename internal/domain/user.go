package domain

import "time"

// VerificationState es el estado de verificación de email de un usuario.
type VerificationState string

const (
	VerificationUnverified VerificationState = "unverified"
	VerificationPending    VerificationState = "pending"
	VerificationVerified   VerificationState = "verified"
)

// MaxVerificationAttempts limita los intentos de validación por código emitido.
// Al llegar al límite, solo un resend (código nuevo) desbloquea al usuario.
const MaxVerificationAttempts = 5

// DefaultProfileImage se usa cuando un provider social no entrega foto.
const DefaultProfileImage = "https://static.fitpulse.dev/avatars/default.png"

// User es la única entidad persistente del core de identidad.
//
// Invariantes:
//   - username, email y provider_id (si existe) son únicos a nivel de store.
//   - PasswordHash u OAuthProviderID: al menos uno presente.
//   - VerificationCode y VerificationCodeExpiresAt: ambos o ninguno.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // vacío para cuentas solo-social
	// OAuthProviderID identifica la cuenta en el provider externo ("google:123...").
	OAuthProviderID string
	Roles           []string
	ProfileImage    string

	VerificationState         VerificationState
	VerificationCode          string
	VerificationCodeExpiresAt *time.Time
	VerificationAttempts      int

	// ResetTokenHash guarda sha256(token); el token plano viaja solo por email.
	ResetTokenHash      string
	ResetTokenExpiresAt *time.Time

	LastLogin *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Sanitized devuelve una copia sin material secreto (hash, códigos, tokens).
// Es lo único que se expone a handlers y respuestas.
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	c.VerificationCode = ""
	c.ResetTokenHash = ""
	c.Roles = append([]string(nil), u.Roles...)
	return &c
}

// HasRole reporta si el usuario tiene el rol indicado.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
