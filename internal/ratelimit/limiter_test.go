package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"outdial-platform/internal/statestore"
)

func newTestLimiter(strict, lenient int) *Limiter {
	return NewLimiter(statestore.NewLocal(), Config{
		Enabled:          true,
		Window:           time.Minute,
		StrictPerWindow:  strict,
		LenientPerWindow: lenient,
	}, nil)
}

func TestCheckAndIncrement_StrictCeiling(t *testing.T) {
	l := newTestLimiter(10, 200)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		if err := l.CheckAndIncrement(ctx, "u1", ClassStrict); err != nil {
			t.Fatalf("attempt %d: unexpected denial: %v", i+1, err)
		}
	}

	err := l.CheckAndIncrement(ctx, "u1", ClassStrict)
	if !errors.Is(err, ErrDenied) {
		t.Fatalf("expected 11th attempt denied, got %v", err)
	}
	var denied *DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected DeniedError, got %T", err)
	}
	if denied.RetryAfter <= 0 || denied.RetryAfter > time.Minute {
		t.Fatalf("expected retry-after within window, got %v", denied.RetryAfter)
	}
}

func TestCheckAndIncrement_ClassesAreIndependent(t *testing.T) {
	l := newTestLimiter(1, 200)
	ctx := context.Background()

	if err := l.CheckAndIncrement(ctx, "u1", ClassStrict); err != nil {
		t.Fatalf("unexpected denial: %v", err)
	}
	if err := l.CheckAndIncrement(ctx, "u1", ClassStrict); !errors.Is(err, ErrDenied) {
		t.Fatalf("expected strict denial, got %v", err)
	}
	// Lenient class for the same user is unaffected.
	if err := l.CheckAndIncrement(ctx, "u1", ClassLenient); err != nil {
		t.Fatalf("expected lenient admit, got %v", err)
	}
}

func TestCheckAndIncrement_UsersAreIndependent(t *testing.T) {
	l := newTestLimiter(1, 200)
	ctx := context.Background()

	if err := l.CheckAndIncrement(ctx, "u1", ClassStrict); err != nil {
		t.Fatalf("unexpected denial: %v", err)
	}
	if err := l.CheckAndIncrement(ctx, "u2", ClassStrict); err != nil {
		t.Fatalf("expected u2 admit, got %v", err)
	}
}

func TestCheckAndIncrement_DisabledAdmitsEverything(t *testing.T) {
	l := NewLimiter(statestore.NewLocal(), Config{Enabled: false, StrictPerWindow: 1}, nil)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		if err := l.CheckAndIncrement(ctx, "u1", ClassStrict); err != nil {
			t.Fatalf("expected admit while disabled, got %v", err)
		}
	}
}
