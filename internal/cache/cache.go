// Package cache abstrae el cache efímero con soporte multi-backend.
//
//   - Memory (in-process): desarrollo y tests.
//   - Redis: producción.
//
// Lo usan la marca single-use de refresh tokens y el rate limiter.
package cache

import (
	"context"
	"time"
)

// Cache define las operaciones mínimas que necesita el core.
type Cache interface {
	// Get obtiene un valor. ok=false si la key no existe o expiró.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// SetNX setea la key solo si no existe. Devuelve true si la seteo esta
	// llamada. Es la primitiva para marcas single-use.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Incr incrementa un contador, creándolo con el TTL dado si no existía.
	// Devuelve el valor resultante.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Close libera recursos del backend.
	Close() error
}
