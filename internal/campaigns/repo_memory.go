package campaigns

import (
	"context"
	"sync"
	"time"

	"outdial-platform/internal/calls"
)

// MemoryRepo is an in-memory campaign repository for tests and early
// development.
type MemoryRepo struct {
	mu    sync.Mutex
	byID  map[string]Campaign
	order []string

	now func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Campaign), now: time.Now}
}

func (r *MemoryRepo) Create(ctx context.Context, c Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[c.ID]; !exists {
		r.order = append(r.order, c.ID)
	}
	r.byID[c.ID] = c
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return Campaign{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Campaign, 0)
	for _, id := range r.order {
		c := r.byID[id]
		if userID != "" && c.UserID != userID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *MemoryRepo) ListByStatus(ctx context.Context, status Status) ([]Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Campaign, 0)
	for _, id := range r.order {
		if c := r.byID[id]; c.Status == status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *MemoryRepo) UpdateStatus(ctx context.Context, id string, from []Status, to Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return false, ErrNotFound
	}
	matched := false
	for _, f := range from {
		if c.Status == f {
			matched = true
			break
		}
	}
	if !matched {
		return false, nil
	}
	c.Status = to
	if to.Terminal() {
		t := r.now().UTC()
		c.CompletedAt = &t
	}
	r.byID[id] = c
	return true, nil
}

func (r *MemoryRepo) SaveCheckpoint(ctx context.Context, id string, cp Checkpoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	c.CurrentLeadIndex = cp.CurrentLeadIndex
	c.CompletedCalls = cp.CompletedCalls
	c.SuccessfulCalls = cp.SuccessfulCalls
	c.FailedCalls = cp.FailedCalls
	r.byID[id] = c
	return nil
}

// MemoryLeadSource serves leads from a fixed map; test and development
// stand-in for the lead persistence collaborator.
type MemoryLeadSource struct {
	mu    sync.Mutex
	leads map[string]calls.Lead
}

func NewMemoryLeadSource(leads ...calls.Lead) *MemoryLeadSource {
	s := &MemoryLeadSource{leads: make(map[string]calls.Lead)}
	for _, l := range leads {
		s.leads[l.ID] = l
	}
	return s
}

func (s *MemoryLeadSource) Lead(ctx context.Context, id string) (calls.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return calls.Lead{}, ErrNotFound
	}
	return l, nil
}

// MemoryScriptSource serves scripts from a fixed map.
type MemoryScriptSource struct {
	mu      sync.Mutex
	scripts map[string]Script
}

func NewMemoryScriptSource(scripts ...Script) *MemoryScriptSource {
	s := &MemoryScriptSource{scripts: make(map[string]Script)}
	for _, sc := range scripts {
		s.scripts[sc.ID] = sc
	}
	return s
}

func (s *MemoryScriptSource) Script(ctx context.Context, id string) (Script, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.scripts[id]
	if !ok {
		return Script{}, ErrNotFound
	}
	return sc, nil
}
