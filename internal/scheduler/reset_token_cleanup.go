package scheduler

import (
	"context"

	"leadnest/platform/logger"
)

// ResetTokenPurger deletes used and expired password reset tokens.
type ResetTokenPurger interface {
	PurgeResetTokens(ctx context.Context) (int64, error)
}

// ResetTokenCleanup is the cron job that keeps password_reset_tokens small.
type ResetTokenCleanup struct {
	purger ResetTokenPurger
	log    *logger.Logger
}

func NewResetTokenCleanup(purger ResetTokenPurger, log *logger.Logger) *ResetTokenCleanup {
	return &ResetTokenCleanup{purger: purger, log: log}
}

func (c *ResetTokenCleanup) Name() string { return "reset-token-purge" }

func (c *ResetTokenCleanup) Run(ctx context.Context) error {
	deleted, err := c.purger.PurgeResetTokens(ctx)
	if err != nil {
		return err
	}

	if deleted > 0 {
		c.log.WithContext(ctx).Info("reset token cleanup deleted tokens", "deleted", deleted)
	}
	return nil
}
