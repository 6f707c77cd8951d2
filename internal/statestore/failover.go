package statestore

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Failover routes operations to the remote store while it is reachable and
// to the local store otherwise. Callers never see routing errors: when the
// remote store is down, correctness degrades (no cross-instance sharing) but
// availability is preserved.
//
// Recovery is automatic. Once the probe succeeds again, new operations target
// the remote store; entries written to the fallback are not migrated (both
// use cases are short-lived and TTL-bounded).
type Failover struct {
	remote Store
	local  *Local
	log    *slog.Logger

	probeTimeout  time.Duration
	probeInterval time.Duration

	mu        sync.Mutex
	lastProbe time.Time
	reachable bool
	clock     func() time.Time
}

func NewFailover(remote Store, local *Local, log *slog.Logger) *Failover {
	if log == nil {
		log = slog.Default()
	}
	return &Failover{
		remote:        remote,
		local:         local,
		log:           log,
		probeTimeout:  500 * time.Millisecond,
		probeInterval: time.Second,
		clock:         time.Now,
	}
}

// reachableNow re-evaluates remote reachability, caching the probe result
// briefly so hot paths do not pay a ping round trip per operation.
func (f *Failover) reachableNow(ctx context.Context) bool {
	f.mu.Lock()
	now := f.clock()
	if now.Sub(f.lastProbe) < f.probeInterval {
		ok := f.reachable
		f.mu.Unlock()
		return ok
	}
	f.lastProbe = now
	f.mu.Unlock()

	probeCtx, cancel := context.WithTimeout(ctx, f.probeTimeout)
	defer cancel()
	err := f.remote.Ping(probeCtx)

	f.mu.Lock()
	was := f.reachable
	f.reachable = err == nil
	f.mu.Unlock()

	if err != nil && was {
		f.log.Warn("state store unreachable, using local fallback", "err", err)
	}
	if err == nil && !was {
		f.log.Info("state store reachable again")
	}
	return err == nil
}

func (f *Failover) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if f.reachableNow(ctx) {
		if err := f.remote.SetJSON(ctx, key, v, ttl); err == nil {
			return nil
		} else {
			f.log.Warn("state store write failed, using local fallback", "key", key, "err", err)
		}
	}
	return f.local.SetJSON(ctx, key, v, ttl)
}

func (f *Failover) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	if f.reachableNow(ctx) {
		if ok, err := f.remote.GetJSON(ctx, key, out); err == nil {
			if ok {
				return true, nil
			}
			// Not in the remote store; the entry may have been written to
			// the fallback during an outage.
		}
	}
	return f.local.GetJSON(ctx, key, out)
}

func (f *Failover) Delete(ctx context.Context, key string) error {
	if f.reachableNow(ctx) {
		_ = f.remote.Delete(ctx, key)
	}
	// Always clear the fallback too; the key may live in either.
	return f.local.Delete(ctx, key)
}

func (f *Failover) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if f.reachableNow(ctx) {
		if n, rem, err := f.remote.IncrWindow(ctx, key, window); err == nil {
			return n, rem, nil
		} else {
			f.log.Warn("state store incr failed, using local fallback", "key", key, "err", err)
		}
	}
	return f.local.IncrWindow(ctx, key, window)
}

func (f *Failover) Ping(ctx context.Context) error {
	return f.remote.Ping(ctx)
}
