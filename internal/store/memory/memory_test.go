package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fitpulse/identity/internal/domain"
	"github.com/fitpulse/identity/internal/store"
	storemem "github.com/fitpulse/identity/internal/store/memory"
)

func newUser(username, email string) *domain.User {
	return &domain.User{
		Username:          username,
		Email:             email,
		PasswordHash:      "$2a$10$xxxxxxxxxxxxxxxxxxxxxx",
		Roles:             []string{"user"},
		VerificationState: domain.VerificationUnverified,
	}
}

func TestInsertAssignsIDAndTimestamps(t *testing.T) {
	st := storemem.New()
	u := newUser("alice", "alice@test.dev")

	require.NoError(t, st.Insert(context.Background(), u))
	require.NotEmpty(t, u.ID)
	require.False(t, u.CreatedAt.IsZero())

	got, err := st.FindByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
}

func TestInsertConflicts(t *testing.T) {
	st := storemem.New()
	ctx := context.Background()
	require.NoError(t, st.Insert(ctx, newUser("alice", "alice@test.dev")))

	err := st.Insert(ctx, newUser("bob", "ALICE@test.dev"))
	require.Error(t, err)
	require.Equal(t, "email", store.ConflictField(err))
	require.ErrorIs(t, err, domain.ErrConflict)

	err = st.Insert(ctx, newUser("alice", "other@test.dev"))
	require.Equal(t, "username", store.ConflictField(err))

	social := newUser("carol", "carol@test.dev")
	social.OAuthProviderID = "google:1"
	require.NoError(t, st.Insert(ctx, social))

	dup := newUser("dave", "dave@test.dev")
	dup.OAuthProviderID = "google:1"
	err = st.Insert(ctx, dup)
	require.Equal(t, "provider_id", store.ConflictField(err))
}

func TestUpdateChecksConflictsAgainstOthers(t *testing.T) {
	st := storemem.New()
	ctx := context.Background()

	a := newUser("alice", "alice@test.dev")
	b := newUser("bob", "bob@test.dev")
	require.NoError(t, st.Insert(ctx, a))
	require.NoError(t, st.Insert(ctx, b))

	// Conservar el propio email no es conflicto.
	a.ProfileImage = "https://img.test/a.png"
	require.NoError(t, st.Update(ctx, a))

	b.Email = "alice@test.dev"
	err := st.Update(ctx, b)
	require.Equal(t, "email", store.ConflictField(err))
}

func TestIncrementVerificationAttemptsCapsAtMax(t *testing.T) {
	st := storemem.New()
	ctx := context.Background()
	u := newUser("alice", "alice@test.dev")
	require.NoError(t, st.Insert(ctx, u))

	for want := 1; want <= 5; want++ {
		n, applied, err := st.IncrementVerificationAttempts(ctx, u.ID, 5)
		require.NoError(t, err)
		require.True(t, applied)
		require.Equal(t, want, n)
	}

	n, applied, err := st.IncrementVerificationAttempts(ctx, u.ID, 5)
	require.NoError(t, err)
	require.False(t, applied, "al tope no se incrementa más")
	require.Equal(t, 5, n)
}

func TestConsumeResetTokenSingleUse(t *testing.T) {
	st := storemem.New()
	ctx := context.Background()
	now := time.Now().UTC()
	exp := now.Add(time.Hour)

	u := newUser("alice", "alice@test.dev")
	u.ResetTokenHash = "hash-1"
	u.ResetTokenExpiresAt = &exp
	require.NoError(t, st.Insert(ctx, u))

	got, err := st.ConsumeResetToken(ctx, "hash-1", "new-hash", now)
	require.NoError(t, err)
	require.Equal(t, "new-hash", got.PasswordHash)
	require.Empty(t, got.ResetTokenHash)

	_, err = st.ConsumeResetToken(ctx, "hash-1", "other-hash", now)
	require.ErrorIs(t, err, domain.ErrResetInvalidOrExpired)
}

func TestConsumeResetTokenExpired(t *testing.T) {
	st := storemem.New()
	ctx := context.Background()
	exp := time.Now().UTC().Add(-time.Minute)

	u := newUser("alice", "alice@test.dev")
	u.ResetTokenHash = "hash-1"
	u.ResetTokenExpiresAt = &exp
	require.NoError(t, st.Insert(ctx, u))

	_, err := st.ConsumeResetToken(ctx, "hash-1", "new-hash", time.Now().UTC())
	require.ErrorIs(t, err, domain.ErrResetInvalidOrExpired)
}

func TestSetLastLogin(t *testing.T) {
	st := storemem.New()
	ctx := context.Background()
	u := newUser("alice", "alice@test.dev")
	require.NoError(t, st.Insert(ctx, u))

	at := time.Now().UTC()
	require.NoError(t, st.SetLastLogin(ctx, u.ID, at))

	got, err := st.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	require.WithinDuration(t, at, *got.LastLogin, time.Second)

	require.ErrorIs(t, st.SetLastLogin(ctx, "nope", at), domain.ErrNotFound)
}
