package statestore

import (
	"context"
	"time"
)

// Store is the capability interface for the distributed state layer.
//
// It holds only short-lived, TTL-bounded, single-key state: voice persona
// assignments and rate-limit counters. There are no cross-key transactions;
// each key is owned by exactly one call or one (user, class) pair.
//
// Implementations:
// - Redis: shared across instances.
// - Local: process-scoped fallback.
// - Failover: routes per operation based on a reachability probe.
type Store interface {
	// SetJSON stores v under key with a bounded TTL.
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error

	// GetJSON loads the value at key into out. Returns false when the key
	// does not exist or has expired.
	GetJSON(ctx context.Context, key string, out any) (bool, error)

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// IncrWindow atomically increments a fixed-window counter, returning the
	// post-increment count and the time remaining until the window resets.
	IncrWindow(ctx context.Context, key string, window time.Duration) (count int64, remaining time.Duration, err error)

	// Ping reports reachability.
	Ping(ctx context.Context) error
}
