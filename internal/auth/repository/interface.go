package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AuthRepository defines the interface for authentication data operations.
// Services depend on it so tests can swap in an in-memory fake.
type AuthRepository interface {
	// Accounts
	CreateAccount(ctx context.Context, params CreateAccountParams) (Account, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (User, error)
	GetDefaultMembership(ctx context.Context, userID uuid.UUID) (Membership, error)

	// Password reset tokens
	ReplaceResetToken(ctx context.Context, email, token string, expiresAt time.Time) error
	GetResetToken(ctx context.Context, token string) (ResetToken, error)
	DeleteResetToken(ctx context.Context, id uuid.UUID) error
	ConsumeResetToken(ctx context.Context, tok ResetToken, passwordHash string) error
	PurgeResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// Ensure Repository implements AuthRepository
var _ AuthRepository = (*Repository)(nil)
