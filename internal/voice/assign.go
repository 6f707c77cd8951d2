package voice

import (
	"context"
	"time"

	"outdial-platform/internal/statestore"
)

const assignmentKeyPrefix = "voice:"

// Assignments pins a persona to a call for the call's lifetime so the
// synthesized identity stays consistent across speech round trips.
//
// Entries live in the distributed state layer with a TTL that must exceed
// the maximum plausible call duration; cleanup on finalize is best-effort
// and the TTL is the backstop.
type Assignments struct {
	store statestore.Store
	ttl   time.Duration
}

func NewAssignments(store statestore.Store, ttl time.Duration) *Assignments {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Assignments{store: store, ttl: ttl}
}

func (a *Assignments) Assign(ctx context.Context, callID string, v Voice) error {
	return a.store.SetJSON(ctx, assignmentKeyPrefix+callID, v, a.ttl)
}

func (a *Assignments) Get(ctx context.Context, callID string) (Voice, bool, error) {
	var v Voice
	ok, err := a.store.GetJSON(ctx, assignmentKeyPrefix+callID, &v)
	if err != nil || !ok {
		return Voice{}, false, err
	}
	return v, true, nil
}

func (a *Assignments) Clear(ctx context.Context, callID string) error {
	return a.store.Delete(ctx, assignmentKeyPrefix+callID)
}
