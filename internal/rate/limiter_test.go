package rate_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cachemem "github.com/fitpulse/identity/internal/cache/memory"
	"github.com/fitpulse/identity/internal/rate"
)

func TestFixedWindowBlocksOverLimit(t *testing.T) {
	l := rate.NewFixedWindow(cachemem.New(), "t:", 3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "ip-1")
		require.NoError(t, err)
		require.True(t, res.Allowed, "intento %d debería pasar", i+1)
	}

	res, err := l.Allow(ctx, "ip-1")
	require.NoError(t, err)
	require.False(t, res.Allowed)
	require.Zero(t, res.Remaining)
	require.Greater(t, res.RetryAfter, time.Duration(0))
}

func TestFixedWindowKeysAreIndependent(t *testing.T) {
	l := rate.NewFixedWindow(cachemem.New(), "t:", 1, time.Hour)
	ctx := context.Background()

	res, err := l.Allow(ctx, "ip-1")
	require.NoError(t, err)
	require.True(t, res.Allowed)

	res, err = l.Allow(ctx, "ip-2")
	require.NoError(t, err)
	require.True(t, res.Allowed, "otra key no comparte presupuesto")
}

func TestNoopAlwaysAllows(t *testing.T) {
	var l rate.Limiter = rate.Noop{}
	for i := 0; i < 100; i++ {
		res, err := l.Allow(context.Background(), "any")
		require.NoError(t, err)
		require.True(t, res.Allowed)
	}
}
