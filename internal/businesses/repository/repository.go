package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadnest/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = errors.New("not found")

type Business struct {
	ID                  uuid.UUID
	Name                string
	Slug                string
	Email               string
	ServiceTypes        []string
	OnboardingStep      int
	OnboardingCompleted bool
	Settings            map[string]any
	LogoKey             *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type Member struct {
	UserID    uuid.UUID
	Name      string
	Email     string
	Role      string
	IsDefault bool
	JoinedAt  time.Time
}

// UpdateParams lists the columns to change. Nil fields are left untouched.
// Qualification is merged into settings.qualification.
type UpdateParams struct {
	Name          *string
	Email         *string
	ServiceTypes  []string
	Qualification map[string]any
}

// IsEmpty reports whether the update would change nothing.
func (p UpdateParams) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.ServiceTypes == nil && p.Qualification == nil
}

const (
	selectBusinessQuery = `
		SELECT id, name, slug, email, service_types, onboarding_step, onboarding_completed, settings, logo_key, created_at, updated_at
		FROM businesses WHERE id = $1`

	listTeamQuery = `
		SELECT u.id, u.name, u.email, r.role, r.is_default, r.created_at
		FROM user_business_relations r
		JOIN users u ON u.id = r.user_id
		WHERE r.business_id = $1
		ORDER BY r.created_at ASC`

	selectMemberQuery = `
		SELECT u.id, u.name, u.email, r.role, r.is_default, r.created_at
		FROM user_business_relations r
		JOIN users u ON u.id = r.user_id
		WHERE r.business_id = $1 AND r.user_id = $2`

	deleteMemberQuery = `
		DELETE FROM user_business_relations
		WHERE business_id = $1 AND user_id = $2 AND is_default = false`

	setLogoKeyQuery = `
		WITH prev AS (SELECT id, logo_key FROM businesses WHERE id = $1 FOR UPDATE)
		UPDATE businesses b SET logo_key = $2, updated_at = now()
		FROM prev
		WHERE b.id = prev.id
		RETURNING prev.logo_key`
)

type Repository struct {
	pool db.Pool
}

func New(pool db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Business, error) {
	var b Business
	var settings []byte
	err := r.pool.QueryRow(ctx, selectBusinessQuery, id).Scan(
		&b.ID, &b.Name, &b.Slug, &b.Email, &b.ServiceTypes, &b.OnboardingStep, &b.OnboardingCompleted,
		&settings, &b.LogoKey, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Business{}, ErrNotFound
	}
	if err != nil {
		return Business{}, err
	}
	b.Settings, err = decodeSettings(settings)
	return b, err
}

// Update applies p in a single statement. The qualification merge happens in
// SQL so concurrent writers cannot drop each other's keys.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) error {
	query, args, err := buildUpdateQuery(id, p)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func buildUpdateQuery(id uuid.UUID, p UpdateParams) (string, []interface{}, error) {
	args := []interface{}{id}
	sets := make([]string, 0, 5)

	if p.Name != nil {
		args = append(args, *p.Name)
		sets = append(sets, fmt.Sprintf("name = $%d", len(args)))
	}
	if p.Email != nil {
		args = append(args, *p.Email)
		sets = append(sets, fmt.Sprintf("email = $%d", len(args)))
	}
	if p.ServiceTypes != nil {
		args = append(args, p.ServiceTypes)
		sets = append(sets, fmt.Sprintf("service_types = $%d", len(args)))
	}
	if p.Qualification != nil {
		raw, err := json.Marshal(p.Qualification)
		if err != nil {
			return "", nil, fmt.Errorf("encode qualification: %w", err)
		}
		args = append(args, string(raw))
		sets = append(sets, fmt.Sprintf(
			"settings = jsonb_set(settings, '{qualification}', COALESCE(settings->'qualification', '{}'::jsonb) || $%d::jsonb)",
			len(args),
		))
	}
	sets = append(sets, "updated_at = now()")

	return fmt.Sprintf("UPDATE businesses SET %s WHERE id = $1", strings.Join(sets, ", ")), args, nil
}

func (r *Repository) ListTeam(ctx context.Context, businessID uuid.UUID) ([]Member, error) {
	rows, err := r.pool.Query(ctx, listTeamQuery, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]Member, 0)
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email, &m.Role, &m.IsDefault, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *Repository) GetMember(ctx context.Context, businessID, userID uuid.UUID) (Member, error) {
	var m Member
	err := r.pool.QueryRow(ctx, selectMemberQuery, businessID, userID).Scan(
		&m.UserID, &m.Name, &m.Email, &m.Role, &m.IsDefault, &m.JoinedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Member{}, ErrNotFound
	}
	return m, err
}

// RemoveMember deletes a non-default relation. A default relation or a
// missing one both report ErrNotFound.
func (r *Repository) RemoveMember(ctx context.Context, businessID, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, deleteMemberQuery, businessID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetLogoKey stores key and returns the key it replaced, if any.
func (r *Repository) SetLogoKey(ctx context.Context, id uuid.UUID, key string) (*string, error) {
	var previous *string
	err := r.pool.QueryRow(ctx, setLogoKeyQuery, id, key).Scan(&previous)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return previous, err
}

func decodeSettings(raw []byte) (map[string]any, error) {
	settings := map[string]any{}
	if len(raw) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return settings, nil
}
