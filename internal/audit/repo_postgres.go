package audit

import (
	"context"
	"database/sql"
)

// PostgresRepo appends audit events. Assumed table:
//
//	audit_events (
//	  id TEXT PRIMARY KEY,
//	  type TEXT NOT NULL,
//	  actor_user_id TEXT NOT NULL,
//	  actor_role TEXT,
//	  ip_address TEXT,
//	  campaign_id TEXT,
//	  call_id TEXT,
//	  action TEXT,
//	  message TEXT,
//	  metadata TEXT,
//	  created_at TIMESTAMPTZ NOT NULL
//	)
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events (
  id, type, actor_user_id, actor_role, ip_address,
  campaign_id, call_id, action, message, metadata, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.Type, e.ActorUserID, e.ActorRole, e.IPAddress,
		e.CampaignID, e.CallID, e.Action, e.Message, e.Metadata, e.CreatedAt,
	)
	return err
}
