// Package password implementa el hashing one-way de credenciales.
package password

import (
	"context"
	"errors"
	"runtime"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// DefaultCost es el work factor de bcrypt. Fijo a nivel de proceso.
const DefaultCost = 10

// Hasher hashea y verifica passwords con bcrypt (salt fresco por hash).
//
// bcrypt es CPU-bound: un semáforo acotado a GOMAXPROCS evita que una ráfaga
// de logins monopolice el scheduler y bloquee requests no relacionados.
type Hasher struct {
	cost int
	sem  *semaphore.Weighted
}

// New crea un Hasher con el cost dado. cost <= 0 usa DefaultCost.
func New(cost int) *Hasher {
	if cost <= 0 {
		cost = DefaultCost
	}
	n := int64(runtime.GOMAXPROCS(0))
	if n < 1 {
		n = 1
	}
	return &Hasher{cost: cost, sem: semaphore.NewWeighted(n)}
}

// Hash genera un digest bcrypt con salt fresco. Dos llamadas con el mismo
// plaintext producen digests distintos.
func (h *Hasher) Hash(ctx context.Context, plain string) (string, error) {
	if plain == "" {
		return "", errors.New("empty password")
	}
	// Acquire no mira ctx.Err() cuando el semáforo está libre; el chequeo
	// explícito garantiza que un contexto ya cancelado corta siempre.
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.sem.Release(1)
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reporta si plain corresponde al digest. Mismatch y digest malformado
// devuelven false; nunca propaga error.
func (h *Hasher) Verify(ctx context.Context, plain, digest string) bool {
	if plain == "" || digest == "" {
		return false
	}
	if ctx.Err() != nil {
		return false
	}
	if err := h.sem.Acquire(ctx, 1); err != nil {
		return false
	}
	defer h.sem.Release(1)
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
