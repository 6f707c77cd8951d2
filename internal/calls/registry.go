package calls

import (
	"sync"
	"time"
)

// Registry holds live calls keyed by call id. It is an explicitly owned
// store injected into the Engine (and anything that polls live state),
// never package-global, so concurrent instances can be tested in isolation.
//
// Each entry carries its own lock: provider events for one call are
// serialized while events for different calls proceed independently.
type Registry struct {
	mu    sync.Mutex
	calls map[string]*liveCall
}

type liveCall struct {
	mu   sync.Mutex
	call Call
	// answeredAt is set on media establishment; duration falls back to it
	// when the provider omits a duration on hangup.
	answeredAt time.Time
	// done is closed exactly once when the call reaches a terminal state.
	done chan struct{}
}

func NewRegistry() *Registry {
	return &Registry{calls: make(map[string]*liveCall)}
}

func (r *Registry) put(c Call) *liveCall {
	lc := &liveCall{call: c, done: make(chan struct{})}
	r.mu.Lock()
	r.calls[c.CallID] = lc
	r.mu.Unlock()
	return lc
}

func (r *Registry) get(callID string) (*liveCall, bool) {
	r.mu.Lock()
	lc, ok := r.calls[callID]
	r.mu.Unlock()
	return lc, ok
}

// Snapshot returns a copy of the live call record.
func (r *Registry) Snapshot(callID string) (Call, bool) {
	lc, ok := r.get(callID)
	if !ok {
		return Call{}, false
	}
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.snapshotLocked(), true
}

// Wait returns a channel closed when the call reaches a terminal state.
// Waiting on an unknown call id returns a closed channel.
func (r *Registry) Wait(callID string) <-chan struct{} {
	lc, ok := r.get(callID)
	if !ok {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return lc.done
}

// Evict drops a call from the registry. Callers evict after reading the
// terminal snapshot; the durable record is the source of truth from there.
func (r *Registry) Evict(callID string) {
	r.mu.Lock()
	delete(r.calls, callID)
	r.mu.Unlock()
}

// Len reports the number of live calls, for monitoring.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// snapshotLocked deep-copies the transcript so callers cannot alias the
// live slice. Caller holds lc.mu.
func (lc *liveCall) snapshotLocked() Call {
	out := lc.call
	if len(lc.call.Transcript) > 0 {
		out.Transcript = make([]TranscriptEntry, len(lc.call.Transcript))
		copy(out.Transcript, lc.call.Transcript)
	}
	return out
}
