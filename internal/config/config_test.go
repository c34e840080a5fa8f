package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fitpulse/identity/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, "dev", cfg.App.Env)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "memory", cfg.Cache.Kind)
	require.Equal(t, time.Hour, cfg.JWT.AccessTTL.Std())
	require.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshTTL.Std())
	require.Equal(t, 30*time.Minute, cfg.Auth.VerifyTTL.Std())
	require.Equal(t, time.Hour, cfg.Auth.ResetTTL.Std())
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
app:
  env: prod
server:
  addr: ":9999"
storage:
  driver: postgres
  dsn: "postgres://from-yaml"
jwt:
  issuer: "https://yaml.issuer"
  access_ttl: 30m
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	// El entorno pisa al YAML.
	t.Setenv("SERVER_ADDR", ":7777")
	t.Setenv("JWT_SECRET", "env-secret")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "prod", cfg.App.Env)
	require.Equal(t, ":7777", cfg.Server.Addr)
	require.Equal(t, "postgres://from-yaml", cfg.Storage.DSN)
	require.Equal(t, 30*time.Minute, cfg.JWT.AccessTTL.Std())
	require.Equal(t, "env-secret", cfg.JWT.Secret)
}

func TestSecretsNeverFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
jwt:
  secret: "should-be-ignored"
smtp:
  password: "should-be-ignored"
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Empty(t, cfg.JWT.Secret, "el secreto JWT solo entra por env")
	require.Empty(t, cfg.SMTP.Password, "la password SMTP solo entra por env")
}

func TestValidateRequiresSecret(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	cfg.JWT.Secret = ""
	require.Error(t, cfg.Validate())

	cfg.JWT.Secret = "some-secret"
	cfg.Storage.Driver = "memory"
	require.NoError(t, cfg.Validate())

	cfg.Storage.Driver = "postgres"
	cfg.Storage.DSN = ""
	require.Error(t, cfg.Validate(), "postgres sin DSN no valida")
}
