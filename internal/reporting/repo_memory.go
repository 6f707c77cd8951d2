package reporting

import (
	"context"
	"errors"
	"sync"
	"time"

	"outdial-platform/internal/calls"
)

// MemoryRepo is an in-memory reporting repository for tests and early
// development. It enforces user scoping on reads.
type MemoryRepo struct {
	mu    sync.Mutex
	Calls []calls.Call
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListCalls(ctx context.Context, userID string, from, to time.Time, campaignID string) ([]calls.Call, error) {
	if userID == "" {
		return nil, errors.New("user_id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]calls.Call, 0)
	for _, c := range r.Calls {
		if c.UserID != userID {
			continue
		}
		if !c.CreatedAt.IsZero() {
			if c.CreatedAt.Before(from) || !c.CreatedAt.Before(to) {
				continue
			}
		}
		if campaignID != "" && c.CampaignID != campaignID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}
