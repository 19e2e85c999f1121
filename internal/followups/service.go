// Package followups runs the periodic lead follow-up sweep.
package followups

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadnest/internal/email"
	"leadnest/internal/notification/inapp"
	"leadnest/platform/logger"

	"github.com/google/uuid"
)

type Store interface {
	ListBusinesses(ctx context.Context) ([]Business, error)
	DueLeads(ctx context.Context, businessID uuid.UUID, rule, status string, cutoff time.Time) ([]DueLead, error)
	RecordFollowup(ctx context.Context, leadID uuid.UUID, rule string) (bool, error)
}

// Notifier fans a notification out to the owners of a business.
type Notifier interface {
	NotifyOwners(ctx context.Context, p inapp.SendParams) ([]inapp.Recipient, error)
}

type Service struct {
	repo         Store
	notifier     Notifier
	sender       email.Sender
	rules        Rules
	dashboardURL string
	log          *logger.Logger
	now          func() time.Time
}

// New creates the follow-up service. sender may be nil to skip digest emails.
func New(repo Store, notifier Notifier, sender email.Sender, rules Rules, appBaseURL string, log *logger.Logger) *Service {
	return &Service{
		repo:         repo,
		notifier:     notifier,
		sender:       sender,
		rules:        rules,
		dashboardURL: appBaseURL + "/dashboard/leads",
		log:          log,
		now:          time.Now,
	}
}

// Outcome lists the leads followed up by one rule run.
type Outcome struct {
	Items      []email.FollowupItem
	Recipients []inapp.Recipient
}

// SweepResult summarizes one sweep over all businesses.
type SweepResult struct {
	Processed int      `json:"processed"`
	Errors    []string `json:"errors"`
}

func (s *Service) RemindUncontacted(ctx context.Context, businessID uuid.UUID) (Outcome, error) {
	return s.apply(ctx, businessID, RuleRemindUncontacted, s.rules.RemindUncontacted)
}

func (s *Service) NudgeQuoted(ctx context.Context, businessID uuid.UUID) (Outcome, error) {
	return s.apply(ctx, businessID, RuleNudgeQuoted, s.rules.NudgeQuoted)
}

func (s *Service) FlagStale(ctx context.Context, businessID uuid.UUID) (Outcome, error) {
	return s.apply(ctx, businessID, RuleFlagStale, s.rules.FlagStale)
}

func (s *Service) apply(ctx context.Context, businessID uuid.UUID, name string, rule Rule) (Outcome, error) {
	var out Outcome
	if !rule.Enabled {
		return out, nil
	}

	leads, err := s.repo.DueLeads(ctx, businessID, name, rule.Status, s.now().Add(-rule.After()))
	if err != nil {
		return out, fmt.Errorf("%s: find due leads: %w", name, err)
	}

	for _, lead := range leads {
		claimed, err := s.repo.RecordFollowup(ctx, lead.ID, name)
		if err != nil {
			return out, fmt.Errorf("%s: record follow-up: %w", name, err)
		}
		if !claimed {
			continue
		}

		leadID := lead.ID
		recipients, err := s.notifier.NotifyOwners(ctx, inapp.SendParams{
			BusinessID: businessID,
			Title:      rule.Title,
			Message:    rule.Render(lead.Name),
			Type:       inapp.TypeWarning,
			LeadID:     &leadID,
		})
		if err != nil {
			return out, fmt.Errorf("%s: notify owners: %w", name, err)
		}
		out.Recipients = recipients
		out.Items = append(out.Items, email.FollowupItem{LeadName: lead.Name, Reason: rule.Title})
	}
	return out, nil
}

// SweepBusiness runs every rule for one business and emails the owners a
// digest of what was flagged.
func (s *Service) SweepBusiness(ctx context.Context, business Business) error {
	var items []email.FollowupItem
	var recipients []inapp.Recipient
	var errs []error

	for _, run := range []func(context.Context, uuid.UUID) (Outcome, error){
		s.RemindUncontacted, s.NudgeQuoted, s.FlagStale,
	} {
		out, err := run(ctx, business.ID)
		if err != nil {
			errs = append(errs, err)
		}
		items = append(items, out.Items...)
		if len(out.Recipients) > 0 {
			recipients = out.Recipients
		}
	}

	s.sendDigest(ctx, business, recipients, items)
	return errors.Join(errs...)
}

func (s *Service) sendDigest(ctx context.Context, business Business, recipients []inapp.Recipient, items []email.FollowupItem) {
	if s.sender == nil || len(items) == 0 {
		return
	}
	digest := email.FollowupDigest{BusinessName: business.Name, Items: items, DashboardURL: s.dashboardURL}
	for _, r := range recipients {
		if r.Email == "" {
			continue
		}
		if err := s.sender.SendFollowupDigestEmail(ctx, r.Email, digest); err != nil {
			s.log.WithContext(ctx).Warn("follow-up digest email failed", "businessId", business.ID, "error", err)
		}
	}
}

// Sweep processes every business sequentially. A failing business is
// recorded and the sweep moves on.
func (s *Service) Sweep(ctx context.Context) (SweepResult, error) {
	result := SweepResult{Errors: []string{}}

	businesses, err := s.repo.ListBusinesses(ctx)
	if err != nil {
		return result, fmt.Errorf("list businesses: %w", err)
	}

	for _, b := range businesses {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.Processed++
		if err := s.SweepBusiness(ctx, b); err != nil {
			s.log.WithContext(ctx).Error("follow-up sweep failed for business", "businessId", b.ID, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", b.ID, err))
		}
	}
	return result, nil
}

// Name implements the scheduler job interface.
func (s *Service) Name() string { return "followups" }

// Run sweeps all businesses and fails when any business failed.
func (s *Service) Run(ctx context.Context) error {
	result, err := s.Sweep(ctx)
	if err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("follow-up sweep: %d of %d businesses failed", len(result.Errors), result.Processed)
	}
	return nil
}
