package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cachemem "github.com/fitpulse/identity/internal/cache/memory"
)

func TestSetNXFirstWins(t *testing.T) {
	m := cachemem.New()
	ctx := context.Background()

	ok, err := m.SetNX(ctx, "k", "a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = m.SetNX(ctx, "k", "b", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	v, found, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "a", v)
}

func TestSetNXExpires(t *testing.T) {
	m := cachemem.New()
	ctx := context.Background()

	ok, err := m.SetNX(ctx, "k", "a", 20*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(40 * time.Millisecond)

	ok, err = m.SetNX(ctx, "k", "b", time.Minute)
	require.NoError(t, err)
	require.True(t, ok, "la key vencida debe poder re-escribirse")
}

func TestIncrCounts(t *testing.T) {
	m := cachemem.New()
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := m.Incr(ctx, "hits", time.Minute)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}
