// Package bootstrap crea la cuenta admin inicial en el primer arranque.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/fitpulse/identity/internal/domain"
	"github.com/fitpulse/identity/internal/observability/logger"
	"github.com/fitpulse/identity/internal/security/password"
	"github.com/fitpulse/identity/internal/store"
)

// EnsureAdmin garantiza que la cuenta indicada en ADMIN_EMAIL exista con rol
// admin. Sin ADMIN_EMAIL no hace nada. La password sale de ADMIN_PASSWORD o,
// si hay terminal, de un prompt interactivo (nunca queda en argv ni en logs).
func EnsureAdmin(ctx context.Context, st store.CredentialStore, hasher *password.Hasher) error {
	emailAddr := strings.TrimSpace(strings.ToLower(os.Getenv("ADMIN_EMAIL")))
	if emailAddr == "" {
		return nil
	}
	log := logger.Named("bootstrap")

	u, err := st.FindByEmail(ctx, emailAddr)
	if err == nil {
		if u.HasRole("admin") {
			return nil
		}
		u.Roles = append(u.Roles, "admin")
		if err := st.Update(ctx, u); err != nil {
			return fmt.Errorf("promote admin: %w", err)
		}
		log.Info("existing account promoted to admin", logger.UserID(u.ID))
		return nil
	}
	if !domain.IsNotFound(err) {
		return err
	}

	plain := os.Getenv("ADMIN_PASSWORD")
	if plain == "" {
		if !term.IsTerminal(int(syscall.Stdin)) {
			return fmt.Errorf("ADMIN_EMAIL set but no ADMIN_PASSWORD and no terminal to prompt")
		}
		fmt.Printf("password para admin %s: ", emailAddr)
		b, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		plain = string(b)
	}
	if len(plain) < 8 {
		return fmt.Errorf("admin password too short (min 8)")
	}

	hash, err := hasher.Hash(ctx, plain)
	if err != nil {
		return err
	}

	username := emailAddr
	if at := strings.IndexByte(emailAddr, '@'); at > 0 {
		username = emailAddr[:at]
	}
	admin := &domain.User{
		Username:     username,
		Email:        emailAddr,
		PasswordHash: hash,
		Roles:        []string{"user", "admin"},
		// Cuenta operativa: no pasa por el flujo de verificación.
		VerificationState: domain.VerificationVerified,
	}
	if err := st.Insert(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Info("admin account created", logger.UserID(admin.ID), logger.Email(admin.Email))
	return nil
}
