package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fitpulse/identity/internal/auth"
	"github.com/fitpulse/identity/internal/domain"
)

func strp(s string) *string { return &s }

func TestUpdateProfilePartial(t *testing.T) {
	env := newTestEnv(t)
	res := mustRegister(t, env, "alice", "alice@test.dev")
	ctx := context.Background()

	u, err := env.svc.UpdateProfile(ctx, res.User.ID, auth.ProfileUpdate{
		ProfileImage: strp("https://img.test/new.png"),
	})
	require.NoError(t, err)
	require.Equal(t, "https://img.test/new.png", u.ProfileImage)
	require.Equal(t, "alice", u.Username, "los campos no tocados se conservan")
}

func TestUpdateProfileEmailChangeResetsVerification(t *testing.T) {
	env := newTestEnv(t)
	res := mustRegister(t, env, "alice", "alice@test.dev")
	ctx := context.Background()

	// Verificar primero.
	full := fetch(t, env, res.User.ID)
	require.NoError(t, env.svc.ValidateVerification(ctx, full, full.VerificationCode))

	u, err := env.svc.UpdateProfile(ctx, res.User.ID, auth.ProfileUpdate{
		Email: strp("new-alice@test.dev"),
	})
	require.NoError(t, err)
	require.Equal(t, "new-alice@test.dev", u.Email)
	require.Equal(t, domain.VerificationUnverified, u.VerificationState,
		"la casilla nueva no está atestiguada")
}

func TestUpdateProfileConflicts(t *testing.T) {
	env := newTestEnv(t)
	a := mustRegister(t, env, "alice", "alice@test.dev")
	mustRegister(t, env, "bob", "bob@test.dev")
	ctx := context.Background()

	_, err := env.svc.UpdateProfile(ctx, a.User.ID, auth.ProfileUpdate{Username: strp("bob")})
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = env.svc.UpdateProfile(ctx, a.User.ID, auth.ProfileUpdate{Email: strp("bob@test.dev")})
	require.ErrorIs(t, err, domain.ErrConflict)

	_, err = env.svc.UpdateProfile(ctx, a.User.ID, auth.ProfileUpdate{Username: strp("x")})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
}
