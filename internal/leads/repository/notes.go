package repository

import (
	"context"
	"errors"
	"time"

	"leadnest/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LeadNote struct {
	ID         uuid.UUID
	LeadID     uuid.UUID
	UserID     *uuid.UUID
	AuthorName *string
	Note       string
	CreatedAt  time.Time
}

const (
	touchLeadQuery = `UPDATE leads SET updated_at = now() WHERE id = $1 AND business_id = $2`

	insertNoteQuery = `
		WITH inserted AS (
			INSERT INTO lead_notes (lead_id, user_id, note)
			VALUES ($1, $2, $3)
			RETURNING id, lead_id, user_id, note, created_at
		)
		SELECT inserted.id, inserted.lead_id, inserted.user_id, u.name, inserted.note, inserted.created_at
		FROM inserted
		LEFT JOIN users u ON u.id = inserted.user_id`

	listNotesQuery = `
		SELECT n.id, n.lead_id, n.user_id, u.name, n.note, n.created_at
		FROM lead_notes n
		JOIN leads l ON l.id = n.lead_id
		LEFT JOIN users u ON u.id = n.user_id
		WHERE n.lead_id = $1 AND l.business_id = $2
		ORDER BY n.created_at DESC`
)

// AddNote appends a note and touches the lead's updated_at in one transaction.
// A lead outside businessID is reported as ErrNotFound.
func (r *Repository) AddNote(ctx context.Context, leadID, businessID uuid.UUID, userID *uuid.UUID, text string) (LeadNote, error) {
	var note LeadNote
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, touchLeadQuery, leadID, businessID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return tx.QueryRow(ctx, insertNoteQuery, leadID, userID, text).Scan(
			&note.ID, &note.LeadID, &note.UserID, &note.AuthorName, &note.Note, &note.CreatedAt,
		)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return LeadNote{}, ErrNotFound
	}
	return note, err
}

func (r *Repository) ListNotes(ctx context.Context, leadID, businessID uuid.UUID) ([]LeadNote, error) {
	rows, err := r.pool.Query(ctx, listNotesQuery, leadID, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]LeadNote, 0)
	for rows.Next() {
		var n LeadNote
		if err := rows.Scan(&n.ID, &n.LeadID, &n.UserID, &n.AuthorName, &n.Note, &n.CreatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
