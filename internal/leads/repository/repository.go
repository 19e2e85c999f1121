package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadnest/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("not found")

const leadColumns = `id, business_id, name, email, phone, service_type, location, status, priority, tags,
	message, qualification_notes, internal_notes, source, created_at, updated_at`

const (
	selectLeadQuery = `SELECT ` + leadColumns + ` FROM leads WHERE id = $1 AND business_id = $2`

	insertLeadQuery = `
		INSERT INTO leads (business_id, name, email, phone, service_type, location, status, priority, tags, message, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + leadColumns

	updateStatusQuery = `
		WITH prev AS (
			SELECT id, status FROM leads WHERE id = $1 AND business_id = $2 FOR UPDATE
		)
		UPDATE leads l SET status = $3, updated_at = now()
		FROM prev
		WHERE l.id = prev.id
		RETURNING prev.status, l.id, l.business_id, l.name, l.email, l.phone, l.service_type, l.location, l.status,
			l.priority, l.tags, l.message, l.qualification_notes, l.internal_notes, l.source, l.created_at, l.updated_at`

	bulkUpdateStatusQuery = `
		UPDATE leads SET status = $1, updated_at = now()
		WHERE business_id = $2 AND id = ANY($3)
		RETURNING id, name`

	insertSystemNotesQuery = `
		INSERT INTO lead_notes (lead_id, user_id, note)
		SELECT unnest($1::uuid[]), NULL, $2`

	updateInternalNotesQuery = `
		UPDATE leads SET internal_notes = $3, updated_at = now()
		WHERE id = $1 AND business_id = $2
		RETURNING ` + leadColumns

	businessBySlugQuery = `SELECT id, name FROM businesses WHERE slug = $1`
)

type Repository struct {
	pool db.Pool
}

func New(pool db.Pool) *Repository {
	return &Repository{pool: pool}
}

type Lead struct {
	ID                 uuid.UUID
	BusinessID         uuid.UUID
	Name               string
	Email              string
	Phone              string
	ServiceType        string
	Location           string
	Status             string
	Priority           string
	Tags               []string
	Message            string
	QualificationNotes string
	InternalNotes      string
	Source             *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// StatusChange is the outcome of a single status update.
type StatusChange struct {
	Lead           Lead
	PreviousStatus string
}

// UpdatedLead identifies a lead touched by a bulk update.
type UpdatedLead struct {
	ID   uuid.UUID
	Name string
}

type CreateLeadParams struct {
	BusinessID  uuid.UUID
	Name        string
	Email       string
	Phone       string
	ServiceType string
	Location    string
	Status      string
	Priority    string
	Tags        []string
	Message     string
	Source      *string
}

type ListParams struct {
	BusinessID uuid.UUID
	Status     *string
	Source     *string
	Search     string
	Limit      int
	Offset     int
}

// PublicBusiness is what the intake form needs to know about a business.
type PublicBusiness struct {
	ID   uuid.UUID
	Name string
}

func scanLead(row pgx.Row, extra ...any) (Lead, error) {
	var l Lead
	dest := append(extra,
		&l.ID, &l.BusinessID, &l.Name, &l.Email, &l.Phone, &l.ServiceType, &l.Location, &l.Status, &l.Priority, &l.Tags,
		&l.Message, &l.QualificationNotes, &l.InternalNotes, &l.Source, &l.CreatedAt, &l.UpdatedAt,
	)
	err := row.Scan(dest...)
	return l, err
}

func (r *Repository) GetByID(ctx context.Context, id, businessID uuid.UUID) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, selectLeadQuery, id, businessID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) Create(ctx context.Context, p CreateLeadParams) (Lead, error) {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return scanLead(r.pool.QueryRow(ctx, insertLeadQuery,
		p.BusinessID, p.Name, p.Email, p.Phone, p.ServiceType, p.Location, p.Status, p.Priority, tags, p.Message, p.Source,
	))
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]Lead, int, error) {
	whereClause, args := buildLeadListWhere(params)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM leads WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s FROM leads
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, leadColumns, whereClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return leads, total, nil
}

func buildLeadListWhere(params ListParams) (string, []interface{}) {
	// Business ID is always the first filter (mandatory for tenant isolation)
	whereClauses := []string{"business_id = $1"}
	args := []interface{}{params.BusinessID}

	if params.Status != nil {
		args = append(args, *params.Status)
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.Source != nil {
		args = append(args, *params.Source)
		whereClauses = append(whereClauses, fmt.Sprintf("COALESCE(source, 'direct') = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		n := len(args)
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d OR location ILIKE $%d)", n, n, n, n,
		))
	}

	return strings.Join(whereClauses, " AND "), args
}

// UpdateStatus sets the status of one lead and appends a note recording the
// transition. The note is attributed to actorID when given.
func (r *Repository) UpdateStatus(ctx context.Context, id, businessID uuid.UUID, status string, actorID *uuid.UUID) (StatusChange, error) {
	var change StatusChange
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		lead, err := scanLead(tx.QueryRow(ctx, updateStatusQuery, id, businessID, status), &change.PreviousStatus)
		if err != nil {
			return err
		}
		change.Lead = lead

		note := StatusNote(change.PreviousStatus, status)
		_, err = tx.Exec(ctx, `INSERT INTO lead_notes (lead_id, user_id, note) VALUES ($1, $2, $3)`, id, actorID, note)
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return StatusChange{}, ErrNotFound
	}
	return change, err
}

// BulkUpdateStatus updates every listed lead owned by businessID in one
// statement and appends one system note per updated lead. Ids owned by other
// businesses are skipped.
func (r *Repository) BulkUpdateStatus(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID, status string) ([]UpdatedLead, error) {
	updated := make([]UpdatedLead, 0, len(ids))
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, bulkUpdateStatusQuery, status, businessID, ids)
		if err != nil {
			return err
		}
		for rows.Next() {
			var u UpdatedLead
			if err := rows.Scan(&u.ID, &u.Name); err != nil {
				rows.Close()
				return err
			}
			updated = append(updated, u)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		if len(updated) == 0 {
			return nil
		}

		updatedIDs := make([]uuid.UUID, len(updated))
		for i, u := range updated {
			updatedIDs[i] = u.ID
		}
		_, err = tx.Exec(ctx, insertSystemNotesQuery, updatedIDs, BulkStatusNote(status))
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *Repository) UpdateInternalNotes(ctx context.Context, id, businessID uuid.UUID, text string) (Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, updateInternalNotesQuery, id, businessID, text))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return lead, err
}

func (r *Repository) GetBusinessBySlug(ctx context.Context, slug string) (PublicBusiness, error) {
	var b PublicBusiness
	err := r.pool.QueryRow(ctx, businessBySlugQuery, slug).Scan(&b.ID, &b.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return PublicBusiness{}, ErrNotFound
	}
	return b, err
}

// StatusNote is the audit text for a single status transition.
func StatusNote(from, to string) string {
	if from == to {
		return fmt.Sprintf("Status set to %s", to)
	}
	return fmt.Sprintf("Status changed from %s to %s", from, to)
}

// BulkStatusNote is the audit text written for each lead of a bulk update.
func BulkStatusNote(status string) string {
	return fmt.Sprintf("Status changed to %s (bulk update)", status)
}
