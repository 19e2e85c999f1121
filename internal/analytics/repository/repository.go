package repository

import (
	"context"
	"time"

	"leadnest/platform/db"

	"github.com/google/uuid"
)

// SourceRow aggregates the leads of one source within a window.
type SourceRow struct {
	Source             string
	Total              int
	Booked             int
	QualificationNotes []string
}

const (
	sourceStatsQuery = `
		SELECT COALESCE(source, 'direct') AS src,
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'booked'),
			array_agg(COALESCE(qualification_notes, ''))
		FROM leads
		WHERE business_id = $1 AND created_at >= $2
		GROUP BY src
		ORDER BY COUNT(*) DESC, src ASC`

	createdSinceQuery = `
		SELECT created_at
		FROM leads
		WHERE business_id = $1 AND COALESCE(source, 'direct') = $2 AND created_at >= $3
		ORDER BY created_at ASC`
)

type Repository struct {
	pool db.Pool
}

// New creates the analytics repository.
func New(pool db.Pool) *Repository {
	return &Repository{pool: pool}
}

// SourceStats groups the leads created since the given instant by source.
func (r *Repository) SourceStats(ctx context.Context, businessID uuid.UUID, since time.Time) ([]SourceRow, error) {
	rows, err := r.pool.Query(ctx, sourceStatsQuery, businessID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SourceRow, 0)
	for rows.Next() {
		var s SourceRow
		if err := rows.Scan(&s.Source, &s.Total, &s.Booked, &s.QualificationNotes); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CreatedSince returns the creation times of one source's leads since the
// given instant. Day bucketing is left to the caller so it follows the
// caller's time zone rather than the database session's.
func (r *Repository) CreatedSince(ctx context.Context, businessID uuid.UUID, source string, since time.Time) ([]time.Time, error) {
	rows, err := r.pool.Query(ctx, createdSinceQuery, businessID, source, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]time.Time, 0)
	for rows.Next() {
		var createdAt time.Time
		if err := rows.Scan(&createdAt); err != nil {
			return nil, err
		}
		out = append(out, createdAt)
	}
	return out, rows.Err()
}
