package campaigns

import (
	"context"
	"errors"
	"time"

	"outdial-platform/internal/calls"
	"outdial-platform/internal/ratelimit"
)

// dialOutcome classifies one pass over the lead at the cursor.
type dialOutcome int

const (
	// outcomeSuccess: terminal status completed.
	outcomeSuccess dialOutcome = iota
	// outcomeFailure: every other terminal status, plus leads that could
	// not be dialed at all. Counts toward completedCalls either way.
	outcomeFailure
	// outcomeRetry: admission denied; the runner slept out the window and
	// must retry the same lead without touching counters.
	outcomeRetry
	// outcomeAbort: service shutting down; stop without a checkpoint so a
	// restart re-examines this lead.
	outcomeAbort
)

// spawnRunner starts the advancement loop for a campaign unless one is
// already attached. Exactly one call is in flight per campaign. Each runner
// holds a token so a stale runner's cleanup cannot evict its successor.
func (s *Service) spawnRunner(id string) {
	s.mu.Lock()
	if _, active := s.runners[id]; active {
		s.mu.Unlock()
		return
	}
	s.seq++
	token := s.seq
	s.runners[id] = token
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.releaseRunner(id, token)
		s.run(id, token)
	}()
}

func (s *Service) releaseRunner(id string, token uint64) {
	s.mu.Lock()
	if s.runners[id] == token {
		delete(s.runners, id)
	}
	s.mu.Unlock()
}

// run is the sequential dial loop for one campaign. The persisted record is
// re-read every iteration, so pause and cancel land between calls and after
// a crash the loop picks up from the last checkpoint.
func (s *Service) run(campaignID string, token uint64) {
	ctx := s.ctx
	for {
		if ctx.Err() != nil {
			return
		}
		c, err := s.repo.Get(ctx, campaignID)
		if err != nil {
			s.log.Error("campaign runner cannot read campaign", "campaign_id", campaignID, "error", err)
			return
		}
		if c.Status == StatusPaused {
			// Deregister before the final status read, so a resume that
			// lands while this runner winds down still gets a runner.
			s.releaseRunner(campaignID, token)
			if again, err := s.repo.Get(ctx, campaignID); err == nil && again.Status == StatusRunning {
				s.spawnRunner(campaignID)
				return
			}
			s.log.Info("campaign runner stopping", "campaign_id", campaignID, "status", StatusPaused)
			return
		}
		if c.Status != StatusRunning {
			s.log.Info("campaign runner stopping", "campaign_id", campaignID, "status", c.Status)
			return
		}
		if c.Exhausted() {
			s.complete(ctx, c)
			return
		}

		leadID := c.LeadIDs[c.CurrentLeadIndex]
		outcome := s.dialLead(ctx, c, leadID)
		switch outcome {
		case outcomeAbort:
			return
		case outcomeRetry:
			continue
		}

		cp := Checkpoint{
			CurrentLeadIndex: c.CurrentLeadIndex + 1,
			CompletedCalls:   c.CompletedCalls + 1,
			SuccessfulCalls:  c.SuccessfulCalls,
			FailedCalls:      c.FailedCalls,
		}
		if outcome == outcomeSuccess {
			cp.SuccessfulCalls++
		} else {
			cp.FailedCalls++
		}
		if err := s.repo.SaveCheckpoint(ctx, campaignID, cp); err != nil {
			// Without a durable checkpoint the next iteration would re-dial
			// this lead; stop and let resume-on-restart sort it out.
			s.log.Error("campaign checkpoint write failed", "campaign_id", campaignID, "error", err)
			return
		}
		s.log.Info("campaign advanced",
			"campaign_id", campaignID,
			"lead_id", leadID,
			"cursor", cp.CurrentLeadIndex,
			"total", c.TotalLeads(),
			"successful", cp.SuccessfulCalls,
			"failed", cp.FailedCalls,
		)

		if !s.sleep(ctx, time.Duration(c.DelaySeconds)*time.Second) {
			return
		}
	}
}

// dialLead places one call for the lead at the cursor and waits for its
// terminal state. Per-call errors are absorbed into a failed outcome so the
// campaign continues; only admission denials are retried.
func (s *Service) dialLead(ctx context.Context, c Campaign, leadID string) dialOutcome {
	lead, err := s.leads.Lead(ctx, leadID)
	if err != nil {
		s.log.Warn("lead lookup failed, counting failed", "campaign_id", c.ID, "lead_id", leadID, "error", err)
		return outcomeFailure
	}
	script, err := s.scripts.Script(ctx, c.ScriptID)
	if err != nil {
		s.log.Warn("script lookup failed, counting failed", "campaign_id", c.ID, "script_id", c.ScriptID, "error", err)
		return outcomeFailure
	}

	callID, err := s.engine.Start(ctx, calls.StartRequest{
		UserID:     c.UserID,
		CampaignID: c.ID,
		ScriptID:   c.ScriptID,
		Script:     Personalize(script.Content, lead, script.RepName),
		Lead:       lead,
	})
	if err != nil {
		var denied *ratelimit.DeniedError
		if errors.As(err, &denied) {
			s.log.Warn("campaign throttled, waiting out window",
				"campaign_id", c.ID, "retry_after", denied.RetryAfter)
			if !s.sleep(ctx, denied.RetryAfter) {
				return outcomeAbort
			}
			return outcomeRetry
		}
		if callID != "" {
			// Dial failed after the call record was created; the failure
			// record is already durable.
			s.engine.Evict(callID)
		}
		s.log.Warn("dial failed, counting failed", "campaign_id", c.ID, "lead_id", leadID, "error", err)
		return outcomeFailure
	}

	select {
	case <-s.engine.Wait(callID):
	case <-ctx.Done():
		return outcomeAbort
	}

	snap, ok := s.engine.Snapshot(callID)
	s.engine.Evict(callID)
	if ok && snap.Status == calls.CallStatusCompleted {
		return outcomeSuccess
	}
	return outcomeFailure
}

func (s *Service) complete(ctx context.Context, c Campaign) {
	ok, err := s.repo.UpdateStatus(ctx, c.ID, []Status{StatusRunning}, StatusCompleted)
	if err != nil {
		s.log.Error("campaign completion write failed", "campaign_id", c.ID, "error", err)
		return
	}
	if !ok {
		// Lost a race with pause or cancel on the last call; their status
		// stands.
		return
	}
	s.log.Info("campaign completed",
		"campaign_id", c.ID,
		"total", c.TotalLeads(),
		"successful", c.SuccessfulCalls,
		"failed", c.FailedCalls,
	)
}

// sleep waits d unless the service shuts down first.
func (s *Service) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
