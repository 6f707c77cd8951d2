package reporting

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"outdial-platform/internal/calls"
)

// PostgresRepo reads finished calls for aggregation. It queries the calls
// table owned by the calls package; see calls.PostgresRepo for the schema.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) ListCalls(ctx context.Context, userID string, from, to time.Time, campaignID string) ([]calls.Call, error) {
	const q = `
SELECT call_id, campaign_id, status, transcript, duration,
       ai_summary, interest_level, sentiment_score, created_at
FROM calls
WHERE user_id = $1
  AND created_at >= $2 AND created_at < $3
  AND ($4 = '' OR campaign_id = $4)
ORDER BY created_at
`
	rows, err := r.db.QueryContext(ctx, q, userID, from, to, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]calls.Call, 0)
	for rows.Next() {
		var c calls.Call
		var transcript []byte
		if err := rows.Scan(
			&c.CallID, &c.CampaignID, &c.Status, &transcript, &c.DurationSeconds,
			&c.AISummary, &c.InterestLevel, &c.SentimentScore, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(transcript, &c.Transcript); err != nil {
			return nil, fmt.Errorf("reporting: unmarshal transcript: %w", err)
		}
		c.UserID = userID
		out = append(out, c)
	}
	return out, rows.Err()
}
