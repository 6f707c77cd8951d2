package statestore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Local is the in-process fallback store. State held here is scoped to this
// instance and is lost on restart; acceptable because everything stored is
// short-lived and TTL-bounded.
type Local struct {
	mu       sync.Mutex
	values   map[string]localValue
	counters map[string]localCounter
	clock    func() time.Time
}

type localValue struct {
	raw       []byte
	expiresAt time.Time
}

type localCounter struct {
	count     int64
	windowEnd time.Time
}

func NewLocal() *Local {
	return &Local{
		values:   make(map[string]localValue),
		counters: make(map[string]localCounter),
		clock:    time.Now,
	}
}

func (s *Local) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("statestore: ttl must be > 0")
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("statestore: marshal %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.values[key] = localValue{raw: raw, expiresAt: s.clock().Add(ttl)}
	return nil
}

func (s *Local) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	s.mu.Lock()
	v, ok := s.values[key]
	if ok && s.clock().After(v.expiresAt) {
		delete(s.values, key)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(v.raw, out); err != nil {
		return false, fmt.Errorf("statestore: unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (s *Local) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *Local) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if window <= 0 {
		return 0, 0, fmt.Errorf("statestore: window must be > 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock()
	c, ok := s.counters[key]
	if !ok || now.After(c.windowEnd) {
		c = localCounter{count: 0, windowEnd: now.Add(window)}
	}
	c.count++
	s.counters[key] = c
	return c.count, c.windowEnd.Sub(now), nil
}

func (s *Local) Ping(ctx context.Context) error { return nil }

// sweepLocked drops expired entries so a long-lived fallback does not grow
// unbounded while redis is down. Counters expire lazily in IncrWindow.
func (s *Local) sweepLocked() {
	now := s.clock()
	for k, v := range s.values {
		if now.After(v.expiresAt) {
			delete(s.values, k)
		}
	}
	for k, c := range s.counters {
		if now.After(c.windowEnd) {
			delete(s.counters, k)
		}
	}
}
