package campaigns

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"outdial-platform/internal/calls"
)

// CallEngine is the slice of the call engine the scheduler needs: start a
// call, wait for its terminal state, read the terminal snapshot, release it.
type CallEngine interface {
	Start(ctx context.Context, req calls.StartRequest) (string, error)
	Wait(callID string) <-chan struct{}
	Snapshot(callID string) (calls.Call, bool)
	Evict(callID string)
}

// Auditor records campaign control actions. Optional.
type Auditor interface {
	RecordCampaignControl(ctx context.Context, userID, campaignID, action string)
}

// Service is the campaign control plane. Each active campaign is advanced by
// its own runner goroutine; control operations only flip persisted status,
// and the runner observes the flip at its next status read.
type Service struct {
	repo    Repository
	engine  CallEngine
	leads   LeadSource
	scripts ScriptSource
	audit   Auditor
	log     *slog.Logger

	// ctx bounds the lifetime of every runner; Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	runners map[string]uint64
	seq     uint64

	now func() time.Time
}

func NewService(repo Repository, engine CallEngine, leads LeadSource, scripts ScriptSource, audit Auditor, log *slog.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		repo:    repo,
		engine:  engine,
		leads:   leads,
		scripts: scripts,
		audit:   audit,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		runners: make(map[string]uint64),
		now:     time.Now,
	}
}

// Close stops all runners and waits for them to exit. In-flight calls are
// abandoned to their own lifecycle; checkpoints already written stand.
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}

type CreateRequest struct {
	UserID       string
	Name         string
	ScriptID     string
	LeadIDs      []string
	DelaySeconds int
}

// Create persists a running campaign and begins asynchronous processing
// without blocking the caller.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Campaign, error) {
	if strings.TrimSpace(req.Name) == "" {
		return Campaign{}, errors.New("campaigns: name required")
	}
	if len(req.LeadIDs) == 0 {
		return Campaign{}, errors.New("campaigns: at least one lead required")
	}
	if req.DelaySeconds < 0 {
		return Campaign{}, errors.New("campaigns: delay must not be negative")
	}
	if _, err := s.scripts.Script(ctx, req.ScriptID); err != nil {
		return Campaign{}, fmt.Errorf("campaigns: script %s: %w", req.ScriptID, err)
	}

	c := Campaign{
		ID:           uuid.NewString(),
		UserID:       req.UserID,
		Name:         req.Name,
		ScriptID:     req.ScriptID,
		LeadIDs:      append([]string(nil), req.LeadIDs...),
		Status:       StatusRunning,
		DelaySeconds: req.DelaySeconds,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Campaign{}, err
	}

	s.recordControl(ctx, req.UserID, c.ID, "create")
	s.log.Info("campaign created",
		"campaign_id", c.ID, "name", c.Name, "leads", len(c.LeadIDs), "delay_seconds", c.DelaySeconds)
	s.spawnRunner(c.ID)
	return c, nil
}

// Pause withholds cursor advancement. Valid from running only; an in-flight
// call is allowed to reach its terminal state and its checkpoint is still
// written.
func (s *Service) Pause(ctx context.Context, userID, id string) error {
	if err := s.swapStatus(ctx, id, []Status{StatusRunning}, StatusPaused); err != nil {
		return err
	}
	s.recordControl(ctx, userID, id, "pause")
	s.log.Info("campaign paused", "campaign_id", id)
	return nil
}

// Resume continues advancement from the persisted cursor. Valid from paused
// only.
func (s *Service) Resume(ctx context.Context, userID, id string) error {
	if err := s.swapStatus(ctx, id, []Status{StatusPaused}, StatusRunning); err != nil {
		return err
	}
	s.recordControl(ctx, userID, id, "resume")
	s.log.Info("campaign resumed", "campaign_id", id)
	s.spawnRunner(id)
	return nil
}

// Cancel stops all future dials. Valid from running or paused; an in-flight
// call finishes naturally, no forced hangup.
func (s *Service) Cancel(ctx context.Context, userID, id string) error {
	if err := s.swapStatus(ctx, id, []Status{StatusRunning, StatusPaused}, StatusCancelled); err != nil {
		return err
	}
	s.recordControl(ctx, userID, id, "cancel")
	s.log.Info("campaign cancelled", "campaign_id", id)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (Campaign, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Campaign, error) {
	return s.repo.ListByUser(ctx, userID)
}

// ResumeInterrupted spawns runners for campaigns persisted as running with
// no live runner attached, which is every running campaign at process start.
// Their last checkpoint makes the resume exact.
func (s *Service) ResumeInterrupted(ctx context.Context) error {
	running, err := s.repo.ListByStatus(ctx, StatusRunning)
	if err != nil {
		return err
	}
	for _, c := range running {
		s.log.Info("resuming interrupted campaign",
			"campaign_id", c.ID, "cursor", c.CurrentLeadIndex, "total", c.TotalLeads())
		s.spawnRunner(c.ID)
	}
	return nil
}

func (s *Service) swapStatus(ctx context.Context, id string, from []Status, to Status) error {
	ok, err := s.repo.UpdateStatus(ctx, id, from, to)
	if err != nil {
		return err
	}
	if !ok {
		c, err := s.repo.Get(ctx, id)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, to, c.Status)
	}
	return nil
}

func (s *Service) recordControl(ctx context.Context, userID, campaignID, action string) {
	if s.audit != nil {
		s.audit.RecordCampaignControl(ctx, userID, campaignID, action)
	}
}
