// Package memory implementa cache.Cache in-process sobre patrickmn/go-cache.
package memory

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/fitpulse/identity/internal/cache"
)

type Mem struct {
	mu sync.Mutex // serializa SetNX/Incr (go-cache no expone check-and-set atómico)
	c  *gocache.Cache
}

func New() *Mem {
	return &Mem{c: gocache.New(gocache.NoExpiration, time.Minute)}
}

var _ cache.Cache = (*Mem)(nil)

func (m *Mem) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", false, nil
	}
	s, _ := v.(string)
	return s, true, nil
}

func (m *Mem) SetNX(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.c.Get(key); ok {
		return false, nil
	}
	m.c.Set(key, value, ttl)
	return true, nil
}

func (m *Mem) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.c.Get(key); !ok {
		m.c.Set(key, int64(1), ttl)
		return 1, nil
	}
	n, err := m.c.IncrementInt64(key, 1)
	if err != nil {
		// la key expiró entre el Get y el Increment
		m.c.Set(key, int64(1), ttl)
		return 1, nil
	}
	return n, nil
}

func (m *Mem) Close() error {
	m.c.Flush()
	return nil
}
