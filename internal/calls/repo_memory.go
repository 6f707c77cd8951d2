package calls

import (
	"context"
	"sync"
)

// MemoryRepo is a simple in-memory call repository for tests and early
// development.
type MemoryRepo struct {
	mu    sync.Mutex
	byID  map[string]Call
	order []string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Call)}
}

func (r *MemoryRepo) Insert(ctx context.Context, c Call) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[c.CallID]; !exists {
		r.order = append(r.order, c.CallID)
	}
	r.byID[c.CallID] = c
	return nil
}

func (r *MemoryRepo) AttachAnalysis(ctx context.Context, callID, summary, interestLevel string, sentimentScore float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[callID]
	if !ok {
		return ErrNotFound
	}
	c.AISummary = summary
	c.InterestLevel = interestLevel
	c.SentimentScore = sentimentScore
	r.byID[callID] = c
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, callID string) (Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[callID]
	if !ok {
		return Call{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) ListByCampaign(ctx context.Context, campaignID string) ([]Call, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, 0)
	for _, id := range r.order {
		c := r.byID[id]
		if campaignID != "" && c.CampaignID != campaignID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// Inserted reports how many records have been written; test helper.
func (r *MemoryRepo) Inserted() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
