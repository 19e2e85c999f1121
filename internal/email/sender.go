// Package email delivers transactional mail: password resets, appointment
// reminders and follow-up digests. Messages are rendered from embedded HTML
// templates and handed to a provider transport.
package email

import (
	"context"
	"fmt"
	"time"

	"leadnest/platform/config"
)

const (
	ProviderNone  = "none"
	ProviderBrevo = "brevo"
	ProviderSMTP  = "smtp"
)

// Sender sends LeadNest's transactional emails.
type Sender interface {
	SendPasswordResetEmail(ctx context.Context, toEmail, resetURL string) error
	SendEventReminderEmail(ctx context.Context, toEmail string, reminder EventReminder) error
	SendFollowupDigestEmail(ctx context.Context, toEmail string, digest FollowupDigest) error
}

// EventReminder describes an upcoming calendar event.
type EventReminder struct {
	Title     string
	StartTime time.Time
	Location  string
}

// FollowupDigest lists leads that need attention for one owner.
type FollowupDigest struct {
	BusinessName string
	Items        []FollowupItem
	DashboardURL string
}

// FollowupItem is one line of a digest.
type FollowupItem struct {
	LeadName string
	Reason   string
}

type NoopSender struct{}

func (NoopSender) SendPasswordResetEmail(ctx context.Context, toEmail, resetURL string) error {
	return nil
}

func (NoopSender) SendEventReminderEmail(ctx context.Context, toEmail string, reminder EventReminder) error {
	return nil
}

func (NoopSender) SendFollowupDigestEmail(ctx context.Context, toEmail string, digest FollowupDigest) error {
	return nil
}

// transport delivers an already rendered message.
type transport interface {
	deliver(ctx context.Context, toEmail, subject, htmlContent string) error
}

// templateSender renders templates and hands the result to a transport.
type templateSender struct {
	transport transport
}

// NewSender picks the transport configured by EMAIL_PROVIDER.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	switch cfg.GetEmailProvider() {
	case ProviderNone, "":
		return NoopSender{}, nil
	case ProviderBrevo:
		return &templateSender{transport: newBrevoTransport(cfg.GetBrevoAPIKey(), cfg.GetEmailFromName(), cfg.GetEmailFromAddress())}, nil
	case ProviderSMTP:
		return &templateSender{transport: newSMTPTransport(
			cfg.GetSMTPHost(),
			cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(),
			cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(),
			cfg.GetEmailFromName(),
		)}, nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.GetEmailProvider())
	}
}

func (s *templateSender) SendPasswordResetEmail(ctx context.Context, toEmail, resetURL string) error {
	content, err := renderEmailTemplate("password_reset.html", passwordResetEmailData{
		baseEmailData: baseEmailData{
			Title:    "Reset your password",
			Heading:  "Reset your password",
			CTALabel: "Choose a new password",
			CTAURL:   resetURL,
		},
	})
	if err != nil {
		return err
	}
	return s.transport.deliver(ctx, toEmail, subjectPasswordReset, content)
}

func (s *templateSender) SendEventReminderEmail(ctx context.Context, toEmail string, reminder EventReminder) error {
	content, err := renderEmailTemplate("event_reminder.html", eventReminderEmailData{
		baseEmailData: baseEmailData{
			Title:   "Upcoming appointment",
			Heading: reminder.Title,
		},
		StartsAt: reminder.StartTime.Format("Monday, January 2 at 15:04"),
		Location: reminder.Location,
	})
	if err != nil {
		return err
	}
	return s.transport.deliver(ctx, toEmail, fmt.Sprintf(subjectEventReminderFmt, reminder.Title), content)
}

func (s *templateSender) SendFollowupDigestEmail(ctx context.Context, toEmail string, digest FollowupDigest) error {
	content, err := renderEmailTemplate("followup_digest.html", followupDigestEmailData{
		baseEmailData: baseEmailData{
			Title:    "Leads waiting on you",
			Heading:  "Leads waiting on you",
			CTALabel: "Open dashboard",
			CTAURL:   digest.DashboardURL,
		},
		BusinessName: digest.BusinessName,
		Items:        digest.Items,
	})
	if err != nil {
		return err
	}
	return s.transport.deliver(ctx, toEmail, fmt.Sprintf(subjectFollowupDigestFmt, len(digest.Items)), content)
}
