// Package rate implementa un rate limiter fixed-window sobre cache.Cache.
// Protege los endpoints de login y forgot-password contra fuerza bruta.
package rate

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/fitpulse/identity/internal/cache"
)

type Result struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// FixedWindow: ventana fija simple (INCR + EXPIRE sobre el cache).
type FixedWindow struct {
	Cache  cache.Cache
	Prefix string
	Max    int64
	Window time.Duration
}

func NewFixedWindow(c cache.Cache, prefix string, max int, window time.Duration) *FixedWindow {
	if prefix == "" {
		prefix = "rl:"
	}
	return &FixedWindow{Cache: c, Prefix: prefix, Max: int64(max), Window: window}
}

func (l *FixedWindow) Allow(ctx context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	win := now.Truncate(l.Window)
	k := l.Prefix + strings.ReplaceAll(key, " ", "_") + ":" + strconv.FormatInt(win.Unix(), 10)

	hits, err := l.Cache.Incr(ctx, k, l.Window)
	if err != nil {
		return Result{}, err
	}
	remaining := l.Max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{
		Allowed:   hits <= l.Max,
		Remaining: remaining,
	}
	if !res.Allowed {
		res.RetryAfter = win.Add(l.Window).Sub(now)
	}
	return res, nil
}

// Noop permite todo. Para tests y para deshabilitar por config.
type Noop struct{}

func (Noop) Allow(context.Context, string) (Result, error) {
	return Result{Allowed: true, Remaining: 1 << 30}, nil
}
