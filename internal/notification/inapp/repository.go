package inapp

import (
	"context"
	"errors"
	"time"

	"leadnest/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("notification not found")

type Notification struct {
	ID         uuid.UUID
	BusinessID uuid.UUID
	UserID     uuid.UUID
	Title      string
	Message    string
	Type       string
	LeadID     *uuid.UUID
	Read       bool
	CreatedAt  time.Time
}

type CreateParams struct {
	BusinessID uuid.UUID
	UserID     uuid.UUID
	Title      string
	Message    string
	Type       string
	LeadID     *uuid.UUID
}

// Recipient is a business owner that receives fan-out notifications.
type Recipient struct {
	UserID uuid.UUID
	Name   string
	Email  string
}

const notificationColumns = `id, business_id, user_id, title, message, type, lead_id, read, created_at`

const (
	insertNotificationQuery = `
		INSERT INTO notifications (business_id, user_id, title, message, type, lead_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + notificationColumns

	countNotificationsQuery = `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE NOT read)
		FROM notifications
		WHERE user_id = $1 AND business_id = $2`

	listNotificationsQuery = `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1 AND business_id = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	markReadQuery = `
		UPDATE notifications SET read = TRUE
		WHERE id = $1 AND user_id = $2 AND business_id = $3`

	markAllReadQuery = `
		UPDATE notifications SET read = TRUE
		WHERE user_id = $1 AND business_id = $2 AND NOT read`

	listOwnersQuery = `
		SELECT u.id, u.name, u.email
		FROM user_business_relations r
		JOIN users u ON u.id = r.user_id
		WHERE r.business_id = $1 AND r.role = 'owner'
		ORDER BY r.created_at ASC`
)

type Repository struct {
	pool db.Pool
}

func NewRepository(pool db.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanNotification(row pgx.Row) (Notification, error) {
	var n Notification
	err := row.Scan(&n.ID, &n.BusinessID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.LeadID, &n.Read, &n.CreatedAt)
	return n, err
}

func (r *Repository) Create(ctx context.Context, p CreateParams) (Notification, error) {
	return scanNotification(r.pool.QueryRow(ctx, insertNotificationQuery,
		p.BusinessID, p.UserID, p.Title, p.Message, p.Type, p.LeadID))
}

// List returns one page of the user's notifications in a business together
// with the total and unread counts.
func (r *Repository) List(ctx context.Context, userID, businessID uuid.UUID, limit, offset int) ([]Notification, int, int, error) {
	var total, unread int
	if err := r.pool.QueryRow(ctx, countNotificationsQuery, userID, businessID).Scan(&total, &unread); err != nil {
		return nil, 0, 0, err
	}

	rows, err := r.pool.Query(ctx, listNotificationsQuery, userID, businessID, limit, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	items := make([]Notification, 0, limit)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, 0, err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, err
	}
	return items, total, unread, nil
}

func (r *Repository) MarkRead(ctx context.Context, userID, businessID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, markReadQuery, id, userID, businessID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) MarkAllRead(ctx context.Context, userID, businessID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, markAllReadQuery, userID, businessID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) ListOwners(ctx context.Context, businessID uuid.UUID) ([]Recipient, error) {
	rows, err := r.pool.Query(ctx, listOwnersQuery, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	owners := make([]Recipient, 0, 1)
	for rows.Next() {
		var o Recipient
		if err := rows.Scan(&o.UserID, &o.Name, &o.Email); err != nil {
			return nil, err
		}
		owners = append(owners, o)
	}
	return owners, rows.Err()
}
