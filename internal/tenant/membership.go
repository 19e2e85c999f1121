package tenant

import (
	"context"
	"errors"

	"leadnest/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const memberRoleQuery = `
	SELECT role FROM user_business_relations
	WHERE user_id = $1 AND business_id = $2`

// MembershipReader loads a user's current role in a business. found is false
// when the user is no longer a member.
type MembershipReader interface {
	MemberRole(ctx context.Context, userID, businessID uuid.UUID) (role string, found bool, err error)
}

// MembershipStore reads memberships from user_business_relations.
type MembershipStore struct {
	pool db.Pool
}

// NewMembershipStore creates a MembershipStore.
func NewMembershipStore(pool db.Pool) *MembershipStore {
	return &MembershipStore{pool: pool}
}

func (s *MembershipStore) MemberRole(ctx context.Context, userID, businessID uuid.UUID) (string, bool, error) {
	var role string
	err := s.pool.QueryRow(ctx, memberRoleQuery, userID, businessID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return role, true, nil
}
