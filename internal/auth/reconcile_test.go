package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fitpulse/identity/internal/auth"
	"github.com/fitpulse/identity/internal/domain"
)

func TestReconcileFirstLoginCreatesVerifiedAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.svc.Reconcile(ctx, auth.Profile{
		ProviderID:  "google:1234",
		DisplayName: "alice",
		Email:       "alice@gmail.test",
		PhotoURL:    "https://img.test/alice.png",
	})
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)
	require.Equal(t, "google:1234", u.OAuthProviderID)
	require.Equal(t, domain.VerificationVerified, u.VerificationState, "el provider ya atestiguó la casilla")
	require.Equal(t, "https://img.test/alice.png", u.ProfileImage)
	require.Empty(t, u.PasswordHash)
}

func TestReconcileIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := auth.Profile{ProviderID: "google:1", DisplayName: "alice", Email: "a@gmail.test"}

	first, err := env.svc.Reconcile(ctx, p)
	require.NoError(t, err)
	second, err := env.svc.Reconcile(ctx, p)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestReconcileDoesNotOverwriteLocalEdits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := auth.Profile{ProviderID: "google:1", DisplayName: "alice", Email: "a@gmail.test"}

	first, err := env.svc.Reconcile(ctx, p)
	require.NoError(t, err)

	// El usuario edita su perfil local.
	renamed := "alice-renamed"
	_, err = env.svc.UpdateProfile(ctx, first.ID, auth.ProfileUpdate{Username: &renamed})
	require.NoError(t, err)

	// Un login posterior con displayName distinto no pisa el edit.
	p.DisplayName = "Alice Cooper"
	again, err := env.svc.Reconcile(ctx, p)
	require.NoError(t, err)
	require.Equal(t, first.ID, again.ID)
	require.Equal(t, "alice-renamed", again.Username)
}

func TestReconcileUsernameCollisionGetsSuffix(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	mustRegister(t, env, "alice", "local-alice@test.dev")

	u, err := env.svc.Reconcile(ctx, auth.Profile{
		ProviderID:  "github:9",
		DisplayName: "alice",
		Email:       "social-alice@test.dev",
	})
	require.NoError(t, err)
	require.Equal(t, "alice1", u.Username)

	// Otro provider con el mismo display name sigue la secuencia.
	u2, err := env.svc.Reconcile(ctx, auth.Profile{
		ProviderID:  "google:9",
		DisplayName: "alice",
		Email:       "third-alice@test.dev",
	})
	require.NoError(t, err)
	require.Equal(t, "alice2", u2.Username)
}

func TestReconcileDefaultsPhoto(t *testing.T) {
	env := newTestEnv(t)

	u, err := env.svc.Reconcile(context.Background(), auth.Profile{
		ProviderID:  "github:7",
		DisplayName: "bob",
		Email:       "bob@test.dev",
	})
	require.NoError(t, err)
	require.Equal(t, domain.DefaultProfileImage, u.ProfileImage)
}

func TestLoginSocialIssuesSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, pair, err := env.svc.LoginSocial(ctx, auth.Profile{
		ProviderID:  "google:55",
		DisplayName: "carol",
		Email:       "carol@gmail.test",
	})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)

	stored, err := env.store.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)

	got, err := env.svc.Authenticate(ctx, "Bearer "+pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
}
