package auth

import (
	"regexp"
	"strings"

	"github.com/fitpulse/identity/internal/domain"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 30
	minPasswordLen = 8
)

// emailRe es deliberadamente laxo: el chequeo real de la casilla lo hace el
// código de verificación.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func validateRegister(in *RegisterInput) error {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if l := len(in.Username); l < minUsernameLen || l > maxUsernameLen {
		return domain.Invalid("username", "must be 3-30 characters")
	}
	if !emailRe.MatchString(in.Email) {
		return domain.Invalid("email", "malformed address")
	}
	if len(in.Password) < minPasswordLen {
		return domain.Invalid("password", "must be at least 8 characters")
	}
	return nil
}
