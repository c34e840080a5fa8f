// Package app arma el contenedor de dependencias que comparten los handlers.
package app

import (
	"github.com/fitpulse/identity/internal/auth"
	"github.com/fitpulse/identity/internal/cache"
	"github.com/fitpulse/identity/internal/config"
	"github.com/fitpulse/identity/internal/jwt"
	"github.com/fitpulse/identity/internal/oauth"
	"github.com/fitpulse/identity/internal/rate"
	"github.com/fitpulse/identity/internal/store"
)

type Container struct {
	Cfg    *config.Config
	Store  store.CredentialStore
	Cache  cache.Cache
	Issuer *jwt.Issuer
	Auth   *auth.Service

	// Providers sociales registrados por nombre ("google", "github").
	Providers map[string]oauth.Provider

	// Limiters por flujo sensible.
	LoginLimiter  rate.Limiter
	ForgotLimiter rate.Limiter
}

func (c *Container) Provider(name string) (oauth.Provider, bool) {
	p, ok := c.Providers[name]
	return p, ok
}
