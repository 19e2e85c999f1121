package followups

import (
	"context"
	"time"

	"leadnest/platform/db"

	"github.com/google/uuid"
)

type Business struct {
	ID   uuid.UUID
	Name string
}

type DueLead struct {
	ID   uuid.UUID
	Name string
}

const (
	listBusinessesQuery = `SELECT id, name FROM businesses ORDER BY created_at ASC`

	// New leads age from creation; the other rules age from the last update.
	dueByCreatedQuery = `
		SELECT l.id, l.name
		FROM leads l
		WHERE l.business_id = $1 AND l.status = $2 AND l.created_at < $3
		  AND NOT EXISTS (SELECT 1 FROM lead_followups f WHERE f.lead_id = l.id AND f.rule = $4)
		ORDER BY l.created_at ASC`

	dueByUpdatedQuery = `
		SELECT l.id, l.name
		FROM leads l
		WHERE l.business_id = $1 AND l.status = $2 AND l.updated_at < $3
		  AND NOT EXISTS (SELECT 1 FROM lead_followups f WHERE f.lead_id = l.id AND f.rule = $4)
		ORDER BY l.updated_at ASC`

	recordFollowupQuery = `
		INSERT INTO lead_followups (lead_id, rule)
		VALUES ($1, $2)
		ON CONFLICT (lead_id, rule) DO NOTHING`
)

type Repository struct {
	pool db.Pool
}

func NewRepository(pool db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListBusinesses(ctx context.Context) ([]Business, error) {
	rows, err := r.pool.Query(ctx, listBusinessesQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Business
	for rows.Next() {
		var b Business
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DueLeads returns leads of the business in status that went idle before
// cutoff and have not been followed up under rule.
func (r *Repository) DueLeads(ctx context.Context, businessID uuid.UUID, rule, status string, cutoff time.Time) ([]DueLead, error) {
	query := dueByUpdatedQuery
	if rule == RuleRemindUncontacted {
		query = dueByCreatedQuery
	}

	rows, err := r.pool.Query(ctx, query, businessID, status, cutoff, rule)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DueLead
	for rows.Next() {
		var l DueLead
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// RecordFollowup claims the follow-up for a lead. It reports false when the
// lead was already followed up under rule.
func (r *Repository) RecordFollowup(ctx context.Context, leadID uuid.UUID, rule string) (bool, error) {
	tag, err := r.pool.Exec(ctx, recordFollowupQuery, leadID, rule)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
