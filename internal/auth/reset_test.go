package auth_test

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fitpulse/identity/internal/domain"
)

// resetTokenFromMail extrae el token del link en el último mail enviado.
func resetTokenFromMail(t *testing.T, env *testEnv) string {
	t.Helper()
	body := env.sender.last().Text
	i := strings.Index(body, "/reset-password?token=")
	require.GreaterOrEqual(t, i, 0, "el mail debe llevar el link de reset: %s", body)
	rest := body[i+len("/reset-password?token="):]
	if j := strings.IndexAny(rest, " \n\t"); j >= 0 {
		rest = rest[:j]
	}
	tok, err := url.QueryUnescape(rest)
	require.NoError(t, err)
	return tok
}

func TestResetHappyPath(t *testing.T) {
	env := newTestEnv(t)
	mustRegister(t, env, "alice", "alice@test.dev")
	ctx := context.Background()

	require.NoError(t, env.svc.RequestReset(ctx, "alice@test.dev"))
	token := resetTokenFromMail(t, env)
	require.Len(t, token, 40)

	// El store solo guarda el hash, nunca el token plano.
	stored, err := env.store.FindByEmail(ctx, "alice@test.dev")
	require.NoError(t, err)
	require.NotEmpty(t, stored.ResetTokenHash)
	require.NotEqual(t, token, stored.ResetTokenHash)

	u, err := env.svc.RedeemReset(ctx, token, "brand-new-password")
	require.NoError(t, err)
	require.Empty(t, u.PasswordHash)

	// La password nueva sirve, la vieja no.
	_, _, err = env.svc.Login(ctx, "alice@test.dev", "brand-new-password")
	require.NoError(t, err)
	_, _, err = env.svc.Login(ctx, "alice@test.dev", "super-secret-pw")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestResetDoubleRedeemFails(t *testing.T) {
	env := newTestEnv(t)
	mustRegister(t, env, "alice", "alice@test.dev")
	ctx := context.Background()

	require.NoError(t, env.svc.RequestReset(ctx, "alice@test.dev"))
	token := resetTokenFromMail(t, env)

	_, err := env.svc.RedeemReset(ctx, token, "brand-new-password")
	require.NoError(t, err)
	_, err = env.svc.RedeemReset(ctx, token, "another-password")
	require.ErrorIs(t, err, domain.ErrResetInvalidOrExpired)
}

func TestResetExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	mustRegister(t, env, "alice", "alice@test.dev")
	ctx := context.Background()

	require.NoError(t, env.svc.RequestReset(ctx, "alice@test.dev"))
	token := resetTokenFromMail(t, env)

	env.svc.WithClock(func() time.Time {
		return time.Now().UTC().Add(env.svc.ResetTTL + time.Minute)
	})

	_, err := env.svc.RedeemReset(ctx, token, "brand-new-password")
	require.ErrorIs(t, err, domain.ErrResetInvalidOrExpired)
}

func TestResetUnknownEmailIsSilent(t *testing.T) {
	env := newTestEnv(t)

	// Misma respuesta exista o no la cuenta, y sin mail despachado.
	require.NoError(t, env.svc.RequestReset(context.Background(), "ghost@test.dev"))
	require.Zero(t, env.sender.count())
}

func TestResetRejectsGarbage(t *testing.T) {
	env := newTestEnv(t)
	mustRegister(t, env, "alice", "alice@test.dev")
	ctx := context.Background()

	_, err := env.svc.RedeemReset(ctx, strings.Repeat("ab", 20), "brand-new-password")
	require.ErrorIs(t, err, domain.ErrResetInvalidOrExpired)

	require.NoError(t, env.svc.RequestReset(ctx, "alice@test.dev"))
	token := resetTokenFromMail(t, env)
	_, err = env.svc.RedeemReset(ctx, token, "short")
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}
