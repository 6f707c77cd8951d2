package calls

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"outdial-platform/internal/ratelimit"
	"outdial-platform/internal/telephony"
	"outdial-platform/internal/voice"
)

var (
	// ErrInvalidLead is returned when a lead cannot be dialed at all, most
	// commonly because it carries no phone number.
	ErrInvalidLead = errors.New("calls: lead is not dialable")

	// ErrNotInProgress is returned when a transcript append arrives before
	// media is established or after the call has ended.
	ErrNotInProgress = errors.New("calls: call is not in progress")
)

// Analysis is the post-call output attached to a finished record.
type Analysis struct {
	Summary        string  `json:"summary"`
	InterestLevel  string  `json:"interest_level"`
	SentimentScore float64 `json:"sentiment_score"`
}

// Analyzer produces a post-call analysis from the final transcript. It runs
// after the terminal state, off the call's critical path.
type Analyzer interface {
	Summarize(ctx context.Context, callID string, transcript []TranscriptEntry) (Analysis, error)
}

// EngineConfig carries the dialing policy for the call engine.
type EngineConfig struct {
	// FromNumber is the caller id presented to leads.
	FromNumber string
	// StatusCallbackURL receives provider lifecycle callbacks.
	StatusCallbackURL string
	// MaxCallDuration force-fails calls whose terminal event never arrives.
	MaxCallDuration time.Duration
	// DialAttempts bounds retries on transport failures when placing a call.
	DialAttempts int
	// DialBackoff is the initial retry delay; it doubles per attempt.
	DialBackoff time.Duration
	// AnalysisTimeout bounds the post-call analysis request.
	AnalysisTimeout time.Duration
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.MaxCallDuration <= 0 {
		c.MaxCallDuration = 15 * time.Minute
	}
	if c.DialAttempts <= 0 {
		c.DialAttempts = 3
	}
	if c.DialBackoff <= 0 {
		c.DialBackoff = 500 * time.Millisecond
	}
	if c.AnalysisTimeout <= 0 {
		c.AnalysisTimeout = 30 * time.Second
	}
	return c
}

// EngineDeps lists the engine's collaborators. Registry, Dialer, Voices,
// Assignments, Repo and Log are required; Limiter and Analyzer are optional.
type EngineDeps struct {
	Registry    *Registry
	Dialer      telephony.Dialer
	Voices      *voice.Picker
	Assignments *voice.Assignments
	Limiter     *ratelimit.Limiter
	Repo        Repository
	Analyzer    Analyzer
	Log         *slog.Logger
}

// Engine owns the lifecycle of live calls: admission, dialing, provider
// event application, transcript accumulation and exactly-once handoff of the
// terminal record to durable storage.
type Engine struct {
	registry    *Registry
	dialer      telephony.Dialer
	voices      *voice.Picker
	assignments *voice.Assignments
	limiter     *ratelimit.Limiter
	repo        Repository
	analyzer    Analyzer
	log         *slog.Logger
	cfg         EngineConfig

	now func() time.Time
}

func NewEngine(cfg EngineConfig, deps EngineDeps) *Engine {
	return &Engine{
		registry:    deps.Registry,
		dialer:      deps.Dialer,
		voices:      deps.Voices,
		assignments: deps.Assignments,
		limiter:     deps.Limiter,
		repo:        deps.Repo,
		analyzer:    deps.Analyzer,
		log:         deps.Log,
		cfg:         cfg.withDefaults(),
		now:         time.Now,
	}
}

// StartRequest describes one outbound call to place.
type StartRequest struct {
	UserID     string
	CampaignID string
	ScriptID   string
	// Script is the personalized agent script handed to the provider flow.
	Script string
	Lead   Lead
}

// Start admits, registers and dials a new call.
//
// A non-empty call id with a non-nil error means the call was created and
// already finalized as failed (the durable failure record exists); an empty
// call id means nothing was created, which covers admission denials and
// undialable leads.
func (e *Engine) Start(ctx context.Context, req StartRequest) (string, error) {
	if strings.TrimSpace(req.Lead.Phone) == "" {
		return "", fmt.Errorf("%w: lead %s has no phone number", ErrInvalidLead, req.Lead.ID)
	}
	if e.limiter != nil {
		if err := e.limiter.CheckAndIncrement(ctx, req.UserID, ratelimit.ClassStrict); err != nil {
			return "", err
		}
	}

	callID := uuid.NewString()
	v := e.voices.ByRegion(req.Lead.Region)
	now := e.now().UTC()
	lc := e.registry.put(Call{
		CallID:     callID,
		UserID:     req.UserID,
		LeadID:     req.Lead.ID,
		ScriptID:   req.ScriptID,
		CampaignID: req.CampaignID,
		Status:     CallStatusInitiated,
		VoiceID:    v.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	})

	// The assignment store is failover-backed; an error here means the value
	// itself could not be encoded, which is worth a log but not a dead call.
	if err := e.assignments.Assign(ctx, callID, v); err != nil {
		e.log.Warn("voice assignment not persisted", "call_id", callID, "error", err)
	}

	res, err := e.dial(ctx, telephony.PlaceCallRequest{
		CallID:            callID,
		To:                req.Lead.Phone,
		From:              e.cfg.FromNumber,
		StatusCallbackURL: e.cfg.StatusCallbackURL,
		VoiceID:           v.ID,
		Script:            req.Script,
	})
	if err != nil {
		e.log.Warn("placing call failed", "call_id", callID, "lead_id", req.Lead.ID, "error", err)
		lc.mu.Lock()
		e.finalizeLocked(ctx, lc, DisconnectError, 0)
		lc.mu.Unlock()
		return callID, err
	}

	lc.mu.Lock()
	lc.call.ProviderCallID = res.ProviderCallID
	lc.call.UpdatedAt = e.now().UTC()
	lc.mu.Unlock()

	go e.watchdog(callID, lc.done)

	e.log.Info("call placed",
		"call_id", callID,
		"lead_id", req.Lead.ID,
		"campaign_id", req.CampaignID,
		"voice", v.Name,
	)
	return callID, nil
}

// dial places the call, retrying transport failures with doubling backoff.
// Provider rejections are permanent and returned immediately.
func (e *Engine) dial(ctx context.Context, req telephony.PlaceCallRequest) (telephony.PlaceCallResult, error) {
	backoff := e.cfg.DialBackoff
	var lastErr error
	for attempt := 1; attempt <= e.cfg.DialAttempts; attempt++ {
		if attempt > 1 {
			t := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				t.Stop()
				return telephony.PlaceCallResult{}, ctx.Err()
			case <-t.C:
			}
			backoff *= 2
		}
		res, err := e.dialer.PlaceCall(ctx, req)
		if err == nil {
			return res, nil
		}
		lastErr = err
		if !errors.Is(err, telephony.ErrTransport) {
			return telephony.PlaceCallResult{}, err
		}
		e.log.Warn("dial attempt failed", "call_id", req.CallID, "attempt", attempt, "error", err)
	}
	return telephony.PlaceCallResult{}, lastErr
}

// OnProviderEvent applies one provider lifecycle event. Events for unknown
// calls, stale events and duplicate terminal events are all no-ops; the
// provider retries callbacks and delivers them out of order.
func (e *Engine) OnProviderEvent(ctx context.Context, callID string, ev ProviderEvent) {
	lc, ok := e.registry.get(callID)
	if !ok {
		e.log.Debug("provider event for unknown call", "call_id", callID, "event", ev.Type)
		return
	}
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if lc.call.Status.Terminal() {
		return
	}
	switch ev.Type {
	case EventRinging:
		if lc.call.Status.CanTransition(CallStatusRinging) {
			lc.call.Status = CallStatusRinging
			lc.call.UpdatedAt = e.now().UTC()
		}
	case EventAnswered:
		if lc.call.Status.CanTransition(CallStatusInProgress) {
			now := e.now().UTC()
			lc.call.Status = CallStatusInProgress
			lc.call.UpdatedAt = now
			lc.answeredAt = now
		}
	case EventHangup, EventError:
		reason := ev.DisconnectReason
		if reason == "" {
			reason = DisconnectError
		}
		e.finalizeLocked(ctx, lc, reason, ev.DurationSeconds)
	}
}

// AppendTranscript records one utterance with a server-assigned timestamp.
// Appends are only legal while the call is in progress.
func (e *Engine) AppendTranscript(ctx context.Context, callID, speaker, text string) error {
	lc, ok := e.registry.get(callID)
	if !ok {
		return ErrNotFound
	}
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if lc.call.Status != CallStatusInProgress {
		return fmt.Errorf("%w: status %s", ErrNotInProgress, lc.call.Status)
	}
	now := e.now().UTC()
	lc.call.Transcript = append(lc.call.Transcript, TranscriptEntry{
		Speaker:   speaker,
		Text:      text,
		Timestamp: now,
	})
	lc.call.UpdatedAt = now
	return nil
}

// Finalize forces a live call into the terminal state implied by reason.
// Finalizing an already terminal call is a no-op.
func (e *Engine) Finalize(ctx context.Context, callID string, reason DisconnectReason, durationSeconds int) error {
	lc, ok := e.registry.get(callID)
	if !ok {
		return ErrNotFound
	}
	lc.mu.Lock()
	defer lc.mu.Unlock()
	e.finalizeLocked(ctx, lc, reason, durationSeconds)
	return nil
}

// finalizeLocked transitions the call to its terminal state, writes the
// durable record exactly once and releases waiters. Caller holds lc.mu.
func (e *Engine) finalizeLocked(ctx context.Context, lc *liveCall, reason DisconnectReason, providerDuration int) {
	if lc.call.Status.Terminal() {
		return
	}
	now := e.now().UTC()
	status := reason.TerminalStatus()

	lc.call.Status = status
	lc.call.DisconnectReason = reason
	lc.call.DurationSeconds = providerDuration
	if providerDuration == 0 && !lc.answeredAt.IsZero() {
		lc.call.DurationSeconds = int(now.Sub(lc.answeredAt).Seconds())
	}
	if status == CallStatusCompleted {
		lc.call.Outcome = "connected"
	} else {
		lc.call.Outcome = string(status)
	}
	lc.call.UpdatedAt = now

	record := lc.snapshotLocked()
	close(lc.done)

	if err := e.repo.Insert(ctx, record); err != nil {
		e.log.Error("durable call record write failed",
			"call_id", record.CallID, "status", record.Status, "error", err)
	}
	if err := e.assignments.Clear(ctx, record.CallID); err != nil {
		e.log.Warn("voice assignment cleanup failed", "call_id", record.CallID, "error", err)
	}

	e.log.Info("call finished",
		"call_id", record.CallID,
		"status", record.Status,
		"reason", record.DisconnectReason,
		"duration", record.DurationSeconds,
	)

	if e.analyzer != nil && len(record.Transcript) > 0 {
		go e.analyze(record)
	}
}

// analyze runs post-call analysis and attaches the result to the durable
// record. Failures are logged; the call record stands without analysis.
func (e *Engine) analyze(record Call) {
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.AnalysisTimeout)
	defer cancel()

	a, err := e.analyzer.Summarize(ctx, record.CallID, record.Transcript)
	if err != nil {
		e.log.Warn("post-call analysis failed", "call_id", record.CallID, "error", err)
		return
	}
	if err := e.repo.AttachAnalysis(ctx, record.CallID, a.Summary, a.InterestLevel, a.SentimentScore); err != nil {
		e.log.Warn("attaching analysis failed", "call_id", record.CallID, "error", err)
	}
}

// watchdog force-fails a call whose terminal callback never arrives, so a
// lost hangup cannot wedge the live registry or a waiting campaign.
func (e *Engine) watchdog(callID string, done <-chan struct{}) {
	t := time.NewTimer(e.cfg.MaxCallDuration)
	defer t.Stop()
	select {
	case <-done:
	case <-t.C:
		e.log.Warn("call exceeded maximum duration", "call_id", callID, "max", e.cfg.MaxCallDuration)
		_ = e.Finalize(context.Background(), callID, DisconnectTimeout, 0)
	}
}

// Snapshot returns the live record for a call still in the registry.
func (e *Engine) Snapshot(callID string) (Call, bool) {
	return e.registry.Snapshot(callID)
}

// Wait returns a channel closed when the call reaches a terminal state.
func (e *Engine) Wait(callID string) <-chan struct{} {
	return e.registry.Wait(callID)
}

// Evict drops a finished call from the live registry.
func (e *Engine) Evict(callID string) {
	e.registry.Evict(callID)
}
