package statestore

import (
	"context"
	"errors"
	"testing"
	"time"
)

type probe struct {
	Name string `json:"name"`
}

func TestLocal_SetGetDelete(t *testing.T) {
	s := NewLocal()
	ctx := context.Background()

	if err := s.SetJSON(ctx, "k", probe{Name: "a"}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var out probe
	ok, err := s.GetJSON(ctx, "k", &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if out.Name != "a" {
		t.Fatalf("expected a, got %q", out.Name)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ok, err = s.GetJSON(ctx, "k", &out)
	if err != nil || ok {
		t.Fatalf("expected miss after delete, ok=%v err=%v", ok, err)
	}
}

func TestLocal_TTLExpiry(t *testing.T) {
	s := NewLocal()
	now := time.Unix(1700000000, 0)
	s.clock = func() time.Time { return now }
	ctx := context.Background()

	if err := s.SetJSON(ctx, "k", probe{Name: "a"}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	now = now.Add(2 * time.Minute)
	var out probe
	ok, err := s.GetJSON(ctx, "k", &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("expected expiry after TTL")
	}
}

func TestLocal_IncrWindowResets(t *testing.T) {
	s := NewLocal()
	now := time.Unix(1700000000, 0)
	s.clock = func() time.Time { return now }
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		n, rem, err := s.IncrWindow(ctx, "c", time.Minute)
		if err != nil {
			t.Fatalf("incr: %v", err)
		}
		if n != int64(i) {
			t.Fatalf("expected count %d, got %d", i, n)
		}
		if rem <= 0 || rem > time.Minute {
			t.Fatalf("unexpected remaining %v", rem)
		}
	}

	now = now.Add(61 * time.Second)
	n, _, err := s.IncrWindow(ctx, "c", time.Minute)
	if err != nil {
		t.Fatalf("incr: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected counter reset after window, got %d", n)
	}
}

// downStore fails every operation, simulating an unreachable redis.
type downStore struct{}

var errDown = errors.New("connection refused")

func (downStore) SetJSON(context.Context, string, any, time.Duration) error { return errDown }
func (downStore) GetJSON(context.Context, string, any) (bool, error)        { return false, errDown }
func (downStore) Delete(context.Context, string) error                      { return errDown }
func (downStore) IncrWindow(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, errDown
}
func (downStore) Ping(context.Context) error { return errDown }

func TestFailover_RoutesToLocalWhenRemoteDown(t *testing.T) {
	f := NewFailover(downStore{}, NewLocal(), nil)
	ctx := context.Background()

	if err := f.SetJSON(ctx, "voice:c1", probe{Name: "Sarah"}, time.Minute); err != nil {
		t.Fatalf("expected fallback write to succeed, got %v", err)
	}
	var out probe
	ok, err := f.GetJSON(ctx, "voice:c1", &out)
	if err != nil || !ok {
		t.Fatalf("expected fallback read to succeed, ok=%v err=%v", ok, err)
	}
	if out.Name != "Sarah" {
		t.Fatalf("expected Sarah, got %q", out.Name)
	}

	n, rem, err := f.IncrWindow(ctx, "rl:strict:u1", time.Minute)
	if err != nil {
		t.Fatalf("expected fallback incr to succeed, got %v", err)
	}
	if n != 1 || rem <= 0 {
		t.Fatalf("unexpected incr result n=%d rem=%v", n, rem)
	}
}

// flakyStore is reachable but fails writes, exercising the op-level fallback.
type flakyStore struct {
	Local
}

func (f *flakyStore) SetJSON(context.Context, string, any, time.Duration) error { return errDown }
func (f *flakyStore) Ping(context.Context) error                                { return nil }

func TestFailover_WriteErrorFallsBackWithoutError(t *testing.T) {
	local := NewLocal()
	f := NewFailover(&flakyStore{}, local, nil)
	ctx := context.Background()

	if err := f.SetJSON(ctx, "k", probe{Name: "x"}, time.Minute); err != nil {
		t.Fatalf("expected write error to be absorbed, got %v", err)
	}
	var out probe
	ok, _ := local.GetJSON(ctx, "k", &out)
	if !ok {
		t.Fatalf("expected value in local fallback")
	}
}

func TestFailover_RecoveryTargetsRemote(t *testing.T) {
	remote := NewLocal()
	local := NewLocal()
	f := NewFailover(remote, local, nil)
	ctx := context.Background()

	if err := f.SetJSON(ctx, "k", probe{Name: "x"}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var out probe
	ok, _ := remote.GetJSON(ctx, "k", &out)
	if !ok {
		t.Fatalf("expected reachable remote to receive the write")
	}
}
