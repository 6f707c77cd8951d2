package calls

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("calls: not found")

// Repository is durable storage for finished calls. Records are written
// exactly once at the terminal state; the only later mutation allowed is
// attaching post-call analysis.
type Repository interface {
	Insert(ctx context.Context, c Call) error
	AttachAnalysis(ctx context.Context, callID, summary, interestLevel string, sentimentScore float64) error
	Get(ctx context.Context, callID string) (Call, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]Call, error)
}
