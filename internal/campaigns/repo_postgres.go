package campaigns

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"outdial-platform/pkg/utils"
)

// PostgresRepo stores campaigns. Assumed table:
//
//	campaigns (
//	  id TEXT PRIMARY KEY,
//	  user_id TEXT NOT NULL,
//	  name TEXT NOT NULL,
//	  script_id TEXT NOT NULL,
//	  lead_ids JSONB NOT NULL DEFAULT '[]',
//	  status TEXT NOT NULL,
//	  current_lead_index INT NOT NULL DEFAULT 0,
//	  completed_calls INT NOT NULL DEFAULT 0,
//	  successful_calls INT NOT NULL DEFAULT 0,
//	  failed_calls INT NOT NULL DEFAULT 0,
//	  delay_seconds INT NOT NULL DEFAULT 0,
//	  created_at TIMESTAMPTZ NOT NULL,
//	  completed_at TIMESTAMPTZ
//	)
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

const campaignColumns = `id, user_id, name, script_id, lead_ids, status,
current_lead_index, completed_calls, successful_calls, failed_calls,
delay_seconds, created_at, completed_at`

func (r *PostgresRepo) Create(ctx context.Context, c Campaign) error {
	leadIDs, err := json.Marshal(c.LeadIDs)
	if err != nil {
		return fmt.Errorf("campaigns: marshal lead ids: %w", err)
	}
	const q = `
INSERT INTO campaigns (` + campaignColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
`
	_, err = r.db.ExecContext(ctx, q,
		c.ID, c.UserID, c.Name, c.ScriptID, leadIDs, c.Status,
		c.CurrentLeadIndex, c.CompletedCalls, c.SuccessfulCalls, c.FailedCalls,
		c.DelaySeconds, c.CreatedAt, c.CompletedAt,
	)
	return err
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (Campaign, error) {
	const q = `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`
	return scanCampaign(r.db.QueryRowContext(ctx, q, id))
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string) ([]Campaign, error) {
	const q = `SELECT ` + campaignColumns + ` FROM campaigns WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, q, userID)
}

func (r *PostgresRepo) ListByStatus(ctx context.Context, status Status) ([]Campaign, error) {
	const q = `SELECT ` + campaignColumns + ` FROM campaigns WHERE status = $1 ORDER BY created_at`
	return r.list(ctx, q, status)
}

func (r *PostgresRepo) list(ctx context.Context, q string, arg any) ([]Campaign, error) {
	rows, err := r.db.QueryContext(ctx, q, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Campaign, 0)
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) UpdateStatus(ctx context.Context, id string, from []Status, to Status) (bool, error) {
	args := []any{id, to}
	marks := make([]string, 0, len(from))
	for _, f := range from {
		args = append(args, f)
		marks = append(marks, fmt.Sprintf("$%d", len(args)))
	}
	q := fmt.Sprintf(`
UPDATE campaigns
SET status = $2,
    completed_at = CASE WHEN $2 IN ('completed','cancelled') THEN now() ELSE completed_at END
WHERE id = $1 AND status IN (%s)
`, strings.Join(marks, ","))

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		// Distinguish a lost race from a missing campaign.
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM campaigns WHERE id = $1)`, id).Scan(&exists); err != nil {
			return false, err
		}
		if !exists {
			return false, ErrNotFound
		}
		return false, nil
	}
	return true, nil
}

// SaveCheckpoint writes cursor and counters as one atomic unit, holding the
// row lock so a checkpoint cannot interleave with a concurrent status swap.
func (r *PostgresRepo) SaveCheckpoint(ctx context.Context, id string, cp Checkpoint) error {
	return utils.WithTx(ctx, r.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		var status Status
		err := tx.QueryRowContext(ctx, `SELECT status FROM campaigns WHERE id = $1 FOR UPDATE`, id).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
UPDATE campaigns
SET current_lead_index = $2, completed_calls = $3, successful_calls = $4, failed_calls = $5
WHERE id = $1
`, id, cp.CurrentLeadIndex, cp.CompletedCalls, cp.SuccessfulCalls, cp.FailedCalls)
		return err
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCampaign(row rowScanner) (Campaign, error) {
	var c Campaign
	var leadIDs []byte
	var completedAt sql.NullTime
	if err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.ScriptID, &leadIDs, &c.Status,
		&c.CurrentLeadIndex, &c.CompletedCalls, &c.SuccessfulCalls, &c.FailedCalls,
		&c.DelaySeconds, &c.CreatedAt, &completedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Campaign{}, ErrNotFound
		}
		return Campaign{}, err
	}
	if err := json.Unmarshal(leadIDs, &c.LeadIDs); err != nil {
		return Campaign{}, fmt.Errorf("campaigns: unmarshal lead ids: %w", err)
	}
	if completedAt.Valid {
		t := completedAt.Time
		c.CompletedAt = &t
	}
	return c, nil
}
