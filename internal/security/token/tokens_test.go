package tokens_test

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	tokens "github.com/fitpulse/identity/internal/security/token"
)

var hex40 = regexp.MustCompile(`^[0-9a-f]{40}$`)

func TestGenerateResetTokenFormat(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		tok, err := tokens.GenerateResetToken()
		require.NoError(t, err)
		require.True(t, hex40.MatchString(tok), "token fuera de formato: %q", tok)
		require.False(t, seen[tok], "token repetido")
		seen[tok] = true
	}
}

func TestGenerateVerificationCodeFormat(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := tokens.GenerateVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err, "el código debe ser numérico: %q", code)
		require.GreaterOrEqual(t, n, 0)
		require.Less(t, n, 1000000)
	}
}

func TestSHA256HexDeterministic(t *testing.T) {
	a := tokens.SHA256Hex("abc")
	b := tokens.SHA256Hex("abc")
	require.Equal(t, a, b)
	require.NotEqual(t, a, tokens.SHA256Hex("abd"))
	require.Len(t, a, 64)
}
