package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"outdial-platform/internal/statestore"
)

// Class partitions operations by cost. Reads get the lenient ceiling;
// expensive operations (call placement, enrichment) get the strict one.
type Class string

const (
	ClassLenient Class = "lenient"
	ClassStrict  Class = "strict"
)

// ErrDenied is the sentinel for admission rejections; match with errors.Is.
var ErrDenied = errors.New("ratelimit: denied")

// DeniedError carries the retry-after hint: the time remaining in the
// caller's current fixed window.
type DeniedError struct {
	Class      Class
	RetryAfter time.Duration
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("ratelimit: %s limit exceeded, retry after %s", e.Class, e.RetryAfter)
}

func (e *DeniedError) Is(target error) bool { return target == ErrDenied }

type Config struct {
	// Enabled gates the whole layer; outside production it defaults to off.
	Enabled bool

	Window           time.Duration
	StrictPerWindow  int
	LenientPerWindow int
}

// Limiter is fixed-window admission control per (user, class). Counters live
// in the distributed state layer so ceilings hold across instances while it
// is reachable, and degrade to per-instance ceilings when it is not.
type Limiter struct {
	store statestore.Store
	cfg   Config
	log   *slog.Logger
}

func NewLimiter(store statestore.Store, cfg Config, log *slog.Logger) *Limiter {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.StrictPerWindow <= 0 {
		cfg.StrictPerWindow = 10
	}
	if cfg.LenientPerWindow <= 0 {
		cfg.LenientPerWindow = 200
	}
	if log == nil {
		log = slog.Default()
	}
	return &Limiter{store: store, cfg: cfg, log: log}
}

// CheckAndIncrement counts this attempt and returns nil if admitted.
// Denials return a *DeniedError (errors.Is(err, ErrDenied)).
//
// State-layer failures are absorbed by the failover store; if the counter
// still cannot be incremented the request is admitted (fail open) so a
// broken limiter never halts campaigns.
func (l *Limiter) CheckAndIncrement(ctx context.Context, userID string, class Class) error {
	if !l.cfg.Enabled {
		return nil
	}
	if userID == "" {
		return errors.New("ratelimit: user id required")
	}

	key := fmt.Sprintf("rl:%s:%s", class, userID)
	count, remaining, err := l.store.IncrWindow(ctx, key, l.cfg.Window)
	if err != nil {
		l.log.Warn("rate limit counter unavailable, admitting", "key", key, "err", err)
		return nil
	}

	if count > int64(l.ceiling(class)) {
		l.log.Warn("rate limit exceeded", "user_id", userID, "class", class, "count", count)
		return &DeniedError{Class: class, RetryAfter: remaining}
	}
	return nil
}

func (l *Limiter) ceiling(class Class) int {
	if class == ClassStrict {
		return l.cfg.StrictPerWindow
	}
	return l.cfg.LenientPerWindow
}
