package email_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fitpulse/identity/internal/email"
)

func TestRenderVerify(t *testing.T) {
	tpls := email.NewTemplates()

	html, text, err := tpls.RenderVerify(email.VerifyVars{
		Username: "carla",
		Code:     "481592",
		TTL:      30 * time.Minute,
	})
	require.NoError(t, err)

	require.Contains(t, html, "carla")
	require.Contains(t, html, "481592")
	require.Contains(t, html, "30 minutos")
	require.Contains(t, text, "481592")
	require.Contains(t, text, "30 minutos")
}

func TestRenderVerifyEscapesUsername(t *testing.T) {
	tpls := email.NewTemplates()

	html, _, err := tpls.RenderVerify(email.VerifyVars{
		Username: `<script>alert("x")</script>`,
		Code:     "000000",
		TTL:      time.Minute,
	})
	require.NoError(t, err)
	require.NotContains(t, html, "<script>")
}

func TestRenderReset(t *testing.T) {
	tpls := email.NewTemplates()

	link := "https://app.fitpulse.io/reset-password?token=" + strings.Repeat("ab", 20)
	html, text, err := tpls.RenderReset(email.ResetVars{
		Username: "carla",
		Link:     link,
		TTL:      time.Hour,
	})
	require.NoError(t, err)

	require.Contains(t, html, link)
	require.Contains(t, html, "60 minutos")

	// el link va en su propia línea en la versión texto
	var found bool
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == link {
			found = true
		}
	}
	require.True(t, found)
}
