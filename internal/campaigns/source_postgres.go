package campaigns

import (
	"context"
	"database/sql"
	"errors"

	"outdial-platform/internal/calls"
)

// PostgresLeadSource reads lead contact fields from the lead persistence
// collaborator's table. Assumed columns on leads: id, first_name, last_name,
// company, job_title, phone, region.
type PostgresLeadSource struct {
	db *sql.DB
}

func NewPostgresLeadSource(db *sql.DB) *PostgresLeadSource {
	return &PostgresLeadSource{db: db}
}

func (s *PostgresLeadSource) Lead(ctx context.Context, id string) (calls.Lead, error) {
	const q = `
SELECT id, first_name, last_name, company, job_title, phone, region
FROM leads
WHERE id = $1
`
	var l calls.Lead
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&l.ID, &l.FirstName, &l.LastName, &l.Company, &l.JobTitle, &l.Phone, &l.Region,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return calls.Lead{}, ErrNotFound
	}
	if err != nil {
		return calls.Lead{}, err
	}
	return l, nil
}

// PostgresScriptSource reads script content from the script persistence
// collaborator's table. Assumed columns on scripts: id, name, content,
// rep_name.
type PostgresScriptSource struct {
	db *sql.DB
}

func NewPostgresScriptSource(db *sql.DB) *PostgresScriptSource {
	return &PostgresScriptSource{db: db}
}

func (s *PostgresScriptSource) Script(ctx context.Context, id string) (Script, error) {
	const q = `SELECT id, name, content, rep_name FROM scripts WHERE id = $1`
	var sc Script
	err := s.db.QueryRowContext(ctx, q, id).Scan(&sc.ID, &sc.Name, &sc.Content, &sc.RepName)
	if errors.Is(err, sql.ErrNoRows) {
		return Script{}, ErrNotFound
	}
	if err != nil {
		return Script{}, err
	}
	return sc, nil
}
