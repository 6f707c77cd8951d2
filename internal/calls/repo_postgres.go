package calls

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PostgresRepo stores finished calls. Assumed table:
//
//	calls (
//	  call_id TEXT PRIMARY KEY,
//	  provider_call_id TEXT,
//	  user_id TEXT NOT NULL,
//	  lead_id TEXT NOT NULL,
//	  script_id TEXT,
//	  campaign_id TEXT,
//	  status TEXT NOT NULL,
//	  transcript JSONB NOT NULL DEFAULT '[]',
//	  duration INT NOT NULL DEFAULT 0,
//	  disconnect_reason TEXT,
//	  voice_id TEXT,
//	  ai_summary TEXT,
//	  interest_level TEXT,
//	  sentiment_score DOUBLE PRECISION,
//	  outcome TEXT,
//	  created_at TIMESTAMPTZ NOT NULL,
//	  updated_at TIMESTAMPTZ NOT NULL
//	)
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Insert(ctx context.Context, c Call) error {
	transcript, err := json.Marshal(c.Transcript)
	if err != nil {
		return fmt.Errorf("calls: marshal transcript: %w", err)
	}
	const q = `
INSERT INTO calls (
  call_id, provider_call_id, user_id, lead_id, script_id, campaign_id,
  status, transcript, duration, disconnect_reason, voice_id,
  ai_summary, interest_level, sentiment_score, outcome, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
ON CONFLICT (call_id) DO NOTHING
`
	_, err = r.db.ExecContext(ctx, q,
		c.CallID, c.ProviderCallID, c.UserID, c.LeadID, c.ScriptID, c.CampaignID,
		c.Status, transcript, c.DurationSeconds, c.DisconnectReason, c.VoiceID,
		c.AISummary, c.InterestLevel, c.SentimentScore, c.Outcome, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (r *PostgresRepo) AttachAnalysis(ctx context.Context, callID, summary, interestLevel string, sentimentScore float64) error {
	const q = `
UPDATE calls
SET ai_summary = $2, interest_level = $3, sentiment_score = $4, updated_at = now()
WHERE call_id = $1
`
	res, err := r.db.ExecContext(ctx, q, callID, summary, interestLevel, sentimentScore)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Get(ctx context.Context, callID string) (Call, error) {
	const q = `
SELECT call_id, provider_call_id, user_id, lead_id, script_id, campaign_id,
       status, transcript, duration, disconnect_reason, voice_id,
       ai_summary, interest_level, sentiment_score, outcome, created_at, updated_at
FROM calls
WHERE call_id = $1
`
	var c Call
	var transcript []byte
	if err := r.db.QueryRowContext(ctx, q, callID).Scan(
		&c.CallID, &c.ProviderCallID, &c.UserID, &c.LeadID, &c.ScriptID, &c.CampaignID,
		&c.Status, &transcript, &c.DurationSeconds, &c.DisconnectReason, &c.VoiceID,
		&c.AISummary, &c.InterestLevel, &c.SentimentScore, &c.Outcome, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Call{}, ErrNotFound
		}
		return Call{}, err
	}
	if err := json.Unmarshal(transcript, &c.Transcript); err != nil {
		return Call{}, fmt.Errorf("calls: unmarshal transcript: %w", err)
	}
	return c, nil
}

func (r *PostgresRepo) ListByCampaign(ctx context.Context, campaignID string) ([]Call, error) {
	const q = `
SELECT call_id, provider_call_id, user_id, lead_id, script_id, campaign_id,
       status, transcript, duration, disconnect_reason, voice_id,
       ai_summary, interest_level, sentiment_score, outcome, created_at, updated_at
FROM calls
WHERE campaign_id = $1
ORDER BY created_at
`
	rows, err := r.db.QueryContext(ctx, q, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Call, 0)
	for rows.Next() {
		var c Call
		var transcript []byte
		if err := rows.Scan(
			&c.CallID, &c.ProviderCallID, &c.UserID, &c.LeadID, &c.ScriptID, &c.CampaignID,
			&c.Status, &transcript, &c.DurationSeconds, &c.DisconnectReason, &c.VoiceID,
			&c.AISummary, &c.InterestLevel, &c.SentimentScore, &c.Outcome, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(transcript, &c.Transcript); err != nil {
			return nil, fmt.Errorf("calls: unmarshal transcript: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
