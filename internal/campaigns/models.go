package campaigns

import "time"

// Campaign is an ordered batch of outbound calls against a fixed lead list,
// processed strictly sequentially with a configurable inter-call delay.
//
// Invariants:
// - LeadIDs is immutable after creation.
// - CurrentLeadIndex only increases and never exceeds len(LeadIDs).
// - CompletedCalls == SuccessfulCalls + FailedCalls at every checkpoint.
// - Only the campaign runner mutates counters and the cursor.
type Campaign struct {
	ID       string `json:"id" db:"id"`
	UserID   string `json:"user_id" db:"user_id"`
	Name     string `json:"name" db:"name"`
	ScriptID string `json:"script_id" db:"script_id"`

	LeadIDs []string `json:"lead_ids" db:"lead_ids"`

	Status Status `json:"status" db:"status"`

	CurrentLeadIndex int `json:"current_lead_index" db:"current_lead_index"`
	CompletedCalls   int `json:"completed_calls" db:"completed_calls"`
	SuccessfulCalls  int `json:"successful_calls" db:"successful_calls"`
	FailedCalls      int `json:"failed_calls" db:"failed_calls"`

	DelaySeconds int `json:"delay_seconds" db:"delay_seconds"`

	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

func (c Campaign) TotalLeads() int { return len(c.LeadIDs) }

// Exhausted reports whether the cursor has passed the last lead.
func (c Campaign) Exhausted() bool { return c.CurrentLeadIndex >= len(c.LeadIDs) }

type Status string

const (
	StatusDraft     Status = "draft"
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the campaign can never advance again.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether moving from s to next is a legal control
// step: draft -> running <-> paused -> {completed, cancelled}, where
// completed is only reachable from running (cursor exhaustion) and cancelled
// from either non-terminal active state.
func (s Status) CanTransition(next Status) bool {
	switch next {
	case StatusRunning:
		return s == StatusDraft || s == StatusPaused
	case StatusPaused:
		return s == StatusRunning
	case StatusCompleted:
		return s == StatusRunning
	case StatusCancelled:
		return s == StatusRunning || s == StatusPaused
	default:
		return false
	}
}

// Checkpoint is the persisted (cursor, counters) tuple written after each
// call resolves. A restart resumes from the last checkpoint without
// re-dialing processed leads or losing counts.
type Checkpoint struct {
	CurrentLeadIndex int `json:"current_lead_index"`
	CompletedCalls   int `json:"completed_calls"`
	SuccessfulCalls  int `json:"successful_calls"`
	FailedCalls      int `json:"failed_calls"`
}

// Script is the projection of a call script this core needs: the template
// content plus the sales-rep name substituted into it. Script CRUD lives
// with an external collaborator.
type Script struct {
	ID      string `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Content string `json:"content" db:"content"`
	RepName string `json:"rep_name,omitempty" db:"rep_name"`
}
