package reporting

import (
	"context"
	"errors"
	"time"

	"outdial-platform/internal/calls"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts read access to finished call records. Implementations
// must enforce user scoping; calls are immutable once terminal, so reads need
// no coordination with the live registry.
type Repository interface {
	ListCalls(ctx context.Context, userID string, from, to time.Time, campaignID string) ([]calls.Call, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) CallsSummary(ctx context.Context, req CallsSummaryRequest) (CallsSummary, error) {
	if req.UserID == "" {
		return CallsSummary{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return CallsSummary{}, ErrInvalidRequest
	}

	rows, err := s.repo.ListCalls(ctx, req.UserID, req.Range.From, req.Range.To, req.CampaignID)
	if err != nil {
		return CallsSummary{}, err
	}

	out := CallsSummary{UserID: req.UserID, CampaignID: req.CampaignID}
	for _, c := range rows {
		out.TotalCalls++
		out.TotalDurationSeconds += c.DurationSeconds
		switch c.Status {
		case calls.CallStatusCompleted:
			out.CompletedCalls++
		case calls.CallStatusFailed:
			out.FailedCalls++
		case calls.CallStatusNoAnswer:
			out.NoAnswerCalls++
		case calls.CallStatusBusy:
			out.BusyCalls++
		case calls.CallStatusVoicemail:
			out.VoicemailCalls++
		}
	}
	if out.TotalCalls > 0 {
		out.AverageDurationSeconds = out.TotalDurationSeconds / out.TotalCalls
	}
	return out, nil
}

// CampaignCalls returns the individual records behind a campaign's
// aggregates, newest ordering left to the repository.
func (s *Service) CampaignCalls(ctx context.Context, req CallsSummaryRequest) ([]calls.Call, error) {
	if req.UserID == "" || req.CampaignID == "" {
		return nil, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return nil, ErrInvalidRequest
	}
	return s.repo.ListCalls(ctx, req.UserID, req.Range.From, req.Range.To, req.CampaignID)
}

func (s *Service) EngagementMetrics(ctx context.Context, req EngagementMetricsRequest) (EngagementMetrics, error) {
	if req.UserID == "" || req.CampaignID == "" {
		return EngagementMetrics{}, ErrInvalidRequest
	}
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return EngagementMetrics{}, ErrInvalidRequest
	}

	rows, err := s.repo.ListCalls(ctx, req.UserID, req.Range.From, req.Range.To, req.CampaignID)
	if err != nil {
		return EngagementMetrics{}, err
	}

	out := EngagementMetrics{UserID: req.UserID, CampaignID: req.CampaignID}
	out.CallsAttempted = len(rows)
	var sentimentSum float64
	var sentimentCount int
	for _, c := range rows {
		if c.Status == calls.CallStatusCompleted {
			out.CallsConnected++
		}
		switch c.InterestLevel {
		case "high":
			out.HighInterest++
		case "medium":
			out.MediumInterest++
		case "low":
			out.LowInterest++
		}
		if c.AISummary != "" {
			sentimentSum += c.SentimentScore
			sentimentCount++
		}
	}
	if out.CallsAttempted > 0 {
		out.ConnectionRate = float64(out.CallsConnected) / float64(out.CallsAttempted)
	}
	if sentimentCount > 0 {
		out.AverageSentimentScore = sentimentSum / float64(sentimentCount)
	}
	return out, nil
}
