package password_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fitpulse/identity/internal/security/password"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	h := password.New(password.DefaultCost)
	ctx := context.Background()

	digest, err := h.Hash(ctx, "correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", digest)
	require.True(t, strings.HasPrefix(digest, "$2"), "digest debe ser bcrypt: %s", digest)

	require.True(t, h.Verify(ctx, "correct horse battery staple", digest))
	require.False(t, h.Verify(ctx, "wrong password", digest))
}

func TestHashesAreSalted(t *testing.T) {
	h := password.New(password.DefaultCost)
	ctx := context.Background()

	a, err := h.Hash(ctx, "same-password")
	require.NoError(t, err)
	b, err := h.Hash(ctx, "same-password")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyMalformedDigest(t *testing.T) {
	h := password.New(password.DefaultCost)
	ctx := context.Background()

	require.False(t, h.Verify(ctx, "whatever", "not-a-bcrypt-digest"))
	require.False(t, h.Verify(ctx, "whatever", ""))
}

func TestHashHonorsContextCancel(t *testing.T) {
	h := password.New(password.DefaultCost)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Hash(ctx, "pw")
	require.Error(t, err)
	require.False(t, h.Verify(ctx, "pw", "whatever"))
}
