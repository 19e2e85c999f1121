package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"leadnest/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already registered")
	ErrSlugTaken  = errors.New("slug already taken")
	ErrTokenUsed  = errors.New("token already used")
)

const (
	constraintUserEmail    = "users_email_key"
	constraintBusinessSlug = "businesses_slug_key"
)

const (
	userColumns = `id, name, email, password_hash, created_at, updated_at`

	insertUserQuery = `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns

	selectSlugsQuery = `
		SELECT slug FROM businesses
		WHERE slug = $1 OR slug LIKE $1 || '-%'`

	insertBusinessQuery = `
		INSERT INTO businesses (name, slug, email)
		VALUES ($1, $2, $3)
		RETURNING id, name, slug, email, onboarding_step, onboarding_completed`

	insertOwnerRelationQuery = `
		INSERT INTO user_business_relations (user_id, business_id, role, is_default)
		VALUES ($1, $2, 'owner', true)`

	defaultMembershipQuery = `
		SELECT b.id, b.name, b.slug, b.email, b.onboarding_step, b.onboarding_completed, r.role
		FROM user_business_relations r
		JOIN businesses b ON b.id = r.business_id
		WHERE r.user_id = $1
		ORDER BY r.is_default DESC, r.created_at ASC
		LIMIT 1`

	deleteResetTokensByEmailQuery = `DELETE FROM password_reset_tokens WHERE email = $1`

	insertResetTokenQuery = `
		INSERT INTO password_reset_tokens (email, token, expires_at, used)
		VALUES ($1, $2, $3, false)`

	selectResetTokenQuery = `
		SELECT id, email, token, expires_at, used
		FROM password_reset_tokens WHERE token = $1`

	updatePasswordQuery = `UPDATE users SET password_hash = $2, updated_at = now() WHERE email = $1`

	markResetTokenUsedQuery = `UPDATE password_reset_tokens SET used = true WHERE id = $1 AND used = false`

	deleteOtherResetTokensQuery = `DELETE FROM password_reset_tokens WHERE email = $1 AND id <> $2`

	purgeResetTokensQuery = `DELETE FROM password_reset_tokens WHERE used = true OR expires_at < $1`
)

type Repository struct {
	pool db.Pool
}

func New(pool db.Pool) *Repository {
	return &Repository{pool: pool}
}

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Business struct {
	ID                  uuid.UUID
	Name                string
	Slug                string
	Email               string
	OnboardingStep      int
	OnboardingCompleted bool
}

// Membership is a user's business together with the role held there.
type Membership struct {
	Business Business
	Role     string
}

// Account is the result of a signup.
type Account struct {
	User     User
	Business Business
}

type CreateAccountParams struct {
	Name         string
	Email        string
	PasswordHash string
	BusinessName string
	BaseSlug     string
}

type ResetToken struct {
	ID        uuid.UUID
	Email     string
	Token     string
	ExpiresAt time.Time
	Used      bool
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateAccount inserts the user, the business and the default owner relation
// in one transaction. The slug is the smallest free variant of BaseSlug.
func (r *Repository) CreateAccount(ctx context.Context, p CreateAccountParams) (Account, error) {
	var acc Account
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		user, err := scanUser(tx.QueryRow(ctx, insertUserQuery, p.Name, p.Email, p.PasswordHash))
		if err != nil {
			return err
		}

		taken, err := collectSlugs(ctx, tx, p.BaseSlug)
		if err != nil {
			return err
		}
		slug := NextFreeSlug(p.BaseSlug, taken)

		var b Business
		if err := tx.QueryRow(ctx, insertBusinessQuery, p.BusinessName, slug, p.Email).Scan(
			&b.ID, &b.Name, &b.Slug, &b.Email, &b.OnboardingStep, &b.OnboardingCompleted,
		); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, insertOwnerRelationQuery, user.ID, b.ID); err != nil {
			return err
		}

		acc = Account{User: user, Business: b}
		return nil
	})
	if err != nil {
		switch db.ViolatedConstraint(err) {
		case constraintUserEmail:
			return Account{}, ErrEmailTaken
		case constraintBusinessSlug:
			return Account{}, ErrSlugTaken
		}
		return Account{}, fmt.Errorf("create account: %w", err)
	}
	return acc, nil
}

func collectSlugs(ctx context.Context, q db.DBTX, base string) (map[string]struct{}, error) {
	rows, err := q.Query(ctx, selectSlugsQuery, base)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	taken := make(map[string]struct{})
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		taken[slug] = struct{}{}
	}
	return taken, rows.Err()
}

// NextFreeSlug returns base when free, otherwise base-N with the smallest N >= 1
// not present in taken.
func NextFreeSlug(base string, taken map[string]struct{}) string {
	if _, ok := taken[base]; !ok {
		return base
	}
	for n := 1; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

func (r *Repository) GetUserByID(ctx context.Context, userID uuid.UUID) (User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return user, err
}

// GetDefaultMembership returns the user's default business, falling back to
// the oldest relation.
func (r *Repository) GetDefaultMembership(ctx context.Context, userID uuid.UUID) (Membership, error) {
	var m Membership
	b := &m.Business
	err := r.pool.QueryRow(ctx, defaultMembershipQuery, userID).Scan(
		&b.ID, &b.Name, &b.Slug, &b.Email, &b.OnboardingStep, &b.OnboardingCompleted, &m.Role,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Membership{}, ErrNotFound
	}
	return m, err
}

// ReplaceResetToken drops any existing tokens for email and stores a new one,
// so at most one live token exists per email.
func (r *Repository) ReplaceResetToken(ctx context.Context, email, token string, expiresAt time.Time) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, deleteResetTokensByEmailQuery, email); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, insertResetTokenQuery, email, token, expiresAt)
		return err
	})
}

func (r *Repository) GetResetToken(ctx context.Context, token string) (ResetToken, error) {
	var t ResetToken
	err := r.pool.QueryRow(ctx, selectResetTokenQuery, token).Scan(&t.ID, &t.Email, &t.Token, &t.ExpiresAt, &t.Used)
	if errors.Is(err, pgx.ErrNoRows) {
		return ResetToken{}, ErrNotFound
	}
	return t, err
}

func (r *Repository) DeleteResetToken(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM password_reset_tokens WHERE id = $1`, id)
	return err
}

// ConsumeResetToken marks the token used, updates the password and removes the
// email's other tokens atomically. The used flag is claimed with a conditional
// update so two concurrent consumers cannot both succeed.
func (r *Repository) ConsumeResetToken(ctx context.Context, tok ResetToken, passwordHash string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, markResetTokenUsedQuery, tok.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrTokenUsed
		}
		tag, err = tx.Exec(ctx, updatePasswordQuery, tok.Email, passwordHash)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		_, err = tx.Exec(ctx, deleteOtherResetTokensQuery, tok.Email, tok.ID)
		return err
	})
}

// PurgeResetTokens deletes used tokens and tokens that expired before now.
func (r *Repository) PurgeResetTokens(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, purgeResetTokensQuery, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
