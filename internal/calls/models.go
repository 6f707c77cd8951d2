package calls

import "time"

// Call is one outbound voice interaction with a lead.
//
// Lifecycle invariants:
// - Status transitions are monotonic; see CanTransition.
// - Transcript is append-only and ordered by server-assigned timestamps.
// - The live record is owned exclusively by the Engine until a terminal
//   state; ownership then transfers to durable storage. Only post-call
//   analysis fields (AISummary, InterestLevel, SentimentScore) may still be
//   attached afterward.
type Call struct {
	CallID         string `json:"call_id" db:"call_id"`
	ProviderCallID string `json:"provider_call_id,omitempty" db:"provider_call_id"`
	UserID         string `json:"user_id" db:"user_id"`
	LeadID         string `json:"lead_id" db:"lead_id"`
	ScriptID       string `json:"script_id" db:"script_id"`
	CampaignID     string `json:"campaign_id,omitempty" db:"campaign_id"`

	Status CallStatus `json:"status" db:"status"`

	Transcript []TranscriptEntry `json:"transcript" db:"transcript"`

	// DurationSeconds covers answer to hangup; zero when never answered.
	DurationSeconds  int              `json:"duration" db:"duration"`
	DisconnectReason DisconnectReason `json:"disconnect_reason,omitempty" db:"disconnect_reason"`

	// VoiceID is the persona pinned for this call's lifetime.
	VoiceID string `json:"voice_id,omitempty" db:"voice_id"`

	// Post-call analysis, attached asynchronously after the terminal state.
	AISummary      string  `json:"ai_summary,omitempty" db:"ai_summary"`
	InterestLevel  string  `json:"interest_level,omitempty" db:"interest_level"`
	SentimentScore float64 `json:"sentiment_score,omitempty" db:"sentiment_score"`
	Outcome        string  `json:"outcome,omitempty" db:"outcome"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TranscriptEntry is one utterance. Ordering is append order with a
// server-assigned timestamp, never client-claimed time.
type TranscriptEntry struct {
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	SpeakerAgent = "agent"
	SpeakerLead  = "lead"
)

type CallStatus string

const (
	CallStatusInitiated  CallStatus = "initiated"
	CallStatusRinging    CallStatus = "ringing"
	CallStatusInProgress CallStatus = "in_progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
	CallStatusVoicemail  CallStatus = "voicemail"
	CallStatusNoAnswer   CallStatus = "no_answer"
	CallStatusBusy       CallStatus = "busy"
)

// Terminal reports whether no further status transition may occur.
func (s CallStatus) Terminal() bool {
	switch s {
	case CallStatusCompleted, CallStatusFailed, CallStatusVoicemail, CallStatusNoAnswer, CallStatusBusy:
		return true
	default:
		return false
	}
}

// CanTransition reports whether moving from s to next is a valid step of
// the call lifecycle: initiated -> ringing -> in_progress -> terminal,
// where ringing may be skipped and any non-terminal state may jump straight
// to a terminal one (immediate busy, error before alerting, ...).
func (s CallStatus) CanTransition(next CallStatus) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case CallStatusRinging:
		return s == CallStatusInitiated
	case CallStatusInProgress:
		return s == CallStatusInitiated || s == CallStatusRinging
	case CallStatusCompleted, CallStatusFailed, CallStatusVoicemail, CallStatusNoAnswer, CallStatusBusy:
		return true
	default:
		return false
	}
}

// DisconnectReason is the provider's account of why a call ended.
type DisconnectReason string

const (
	DisconnectCompleted     DisconnectReason = "completed"
	DisconnectBusy          DisconnectReason = "busy"
	DisconnectNoAnswer      DisconnectReason = "no-answer"
	DisconnectNoMedia       DisconnectReason = "no-media"
	DisconnectVoicemail     DisconnectReason = "voicemail"
	DisconnectVoicemailTone DisconnectReason = "voicemail-tone"
	DisconnectCanceled      DisconnectReason = "canceled"
	DisconnectError         DisconnectReason = "error"
	DisconnectTimeout       DisconnectReason = "timeout"
)

// TerminalStatus maps a disconnect reason to the terminal state it implies.
// Unknown reasons classify as failed rather than stalling the call.
func (r DisconnectReason) TerminalStatus() CallStatus {
	switch r {
	case DisconnectCompleted:
		return CallStatusCompleted
	case DisconnectBusy:
		return CallStatusBusy
	case DisconnectNoAnswer, DisconnectNoMedia:
		return CallStatusNoAnswer
	case DisconnectVoicemail, DisconnectVoicemailTone:
		return CallStatusVoicemail
	default:
		return CallStatusFailed
	}
}

// ProviderEvent is one inbound lifecycle callback from the telephony
// provider.
type ProviderEvent struct {
	Type             ProviderEventType
	DisconnectReason DisconnectReason
	DurationSeconds  int
}

type ProviderEventType string

const (
	EventRinging  ProviderEventType = "ringing"
	EventAnswered ProviderEventType = "answered"
	EventHangup   ProviderEventType = "hangup"
	EventError    ProviderEventType = "error"
)

// EventFromProviderStatus maps a provider callback status string onto a
// lifecycle event. Statuses that carry no lifecycle meaning ("queued",
// "initiated") return ok=false and should be ignored.
func EventFromProviderStatus(status string, durationSeconds int) (ProviderEvent, bool) {
	switch status {
	case "ringing":
		return ProviderEvent{Type: EventRinging}, true
	case "answered", "in-progress":
		return ProviderEvent{Type: EventAnswered}, true
	case "completed":
		return ProviderEvent{Type: EventHangup, DisconnectReason: DisconnectCompleted, DurationSeconds: durationSeconds}, true
	case "busy":
		return ProviderEvent{Type: EventHangup, DisconnectReason: DisconnectBusy, DurationSeconds: durationSeconds}, true
	case "no-answer":
		return ProviderEvent{Type: EventHangup, DisconnectReason: DisconnectNoAnswer, DurationSeconds: durationSeconds}, true
	case "canceled":
		return ProviderEvent{Type: EventHangup, DisconnectReason: DisconnectCanceled, DurationSeconds: durationSeconds}, true
	case "failed":
		return ProviderEvent{Type: EventError, DisconnectReason: DisconnectError, DurationSeconds: durationSeconds}, true
	default:
		return ProviderEvent{}, false
	}
}

// Lead is the projection of a lead this core needs: contact fields only.
// Lead CRUD lives with an external collaborator.
type Lead struct {
	ID        string `json:"id" db:"id"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
	Company   string `json:"company,omitempty" db:"company"`
	JobTitle  string `json:"job_title,omitempty" db:"job_title"`
	Phone     string `json:"phone" db:"phone"`
	Region    string `json:"region,omitempty" db:"region"`
}

func (l Lead) FullName() string {
	if l.FirstName == "" {
		return l.LastName
	}
	if l.LastName == "" {
		return l.FirstName
	}
	return l.FirstName + " " + l.LastName
}
