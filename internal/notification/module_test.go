package notification

import (
	"context"
	"errors"
	"io"
	"testing"

	"leadnest/internal/email"
	"leadnest/internal/events"
	"leadnest/internal/notification/inapp"
	"leadnest/platform/logger"

	"github.com/google/uuid"
)

type recordingStore struct {
	created []inapp.CreateParams
	owners  []inapp.Recipient
}

func (r *recordingStore) Create(_ context.Context, p inapp.CreateParams) (inapp.Notification, error) {
	r.created = append(r.created, p)
	return inapp.Notification{ID: uuid.New(), UserID: p.UserID, BusinessID: p.BusinessID}, nil
}

func (r *recordingStore) List(context.Context, uuid.UUID, uuid.UUID, int, int) ([]inapp.Notification, int, int, error) {
	return nil, 0, 0, nil
}

func (r *recordingStore) MarkRead(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) error { return nil }

func (r *recordingStore) MarkAllRead(context.Context, uuid.UUID, uuid.UUID) (int64, error) {
	return 0, nil
}

func (r *recordingStore) ListOwners(context.Context, uuid.UUID) ([]inapp.Recipient, error) {
	return r.owners, nil
}

type resetSender struct {
	email.NoopSender
	to, url string
	err     error
}

func (s *resetSender) SendPasswordResetEmail(_ context.Context, to, url string) error {
	s.to, s.url = to, url
	return s.err
}

func newTestModule(store inapp.Store, sender email.Sender) *Module {
	log := logger.NewWithWriter("test", io.Discard)
	return &Module{sender: sender, log: log, inAppService: inapp.NewService(store, nil, log)}
}

func TestPublicLeadNotifiesOwners(t *testing.T) {
	store := &recordingStore{owners: []inapp.Recipient{{UserID: uuid.New()}}}
	m := newTestModule(store, email.NoopSender{})

	err := m.Handle(context.Background(), events.LeadCreated{LeadID: uuid.New(), BusinessID: uuid.New(), Name: "Ana", Source: "website"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.created) != 1 || store.created[0].Title != "New lead" {
		t.Fatalf("expected one new lead notification, got %+v", store.created)
	}
}

func TestDashboardLeadIsNotAnnounced(t *testing.T) {
	store := &recordingStore{owners: []inapp.Recipient{{UserID: uuid.New()}}}
	m := newTestModule(store, email.NoopSender{})
	actor := uuid.New()

	if err := m.Handle(context.Background(), events.LeadCreated{LeadID: uuid.New(), CreatedBy: &actor}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.created) != 0 {
		t.Fatalf("expected no notifications, got %d", len(store.created))
	}
}

func TestOnlyBookedStatusNotifies(t *testing.T) {
	store := &recordingStore{owners: []inapp.Recipient{{UserID: uuid.New()}}}
	m := newTestModule(store, email.NoopSender{})
	ctx := context.Background()

	_ = m.Handle(ctx, events.LeadStatusChanged{LeadID: uuid.New(), NewStatus: "contacted"})
	_ = m.Handle(ctx, events.LeadStatusChanged{LeadID: uuid.New(), NewStatus: "booked", LeadName: "Ana"})

	if len(store.created) != 1 || store.created[0].Type != inapp.TypeSuccess {
		t.Fatalf("expected one booked notification, got %+v", store.created)
	}
}

func TestPasswordResetSendsEmail(t *testing.T) {
	sender := &resetSender{}
	m := newTestModule(&recordingStore{}, sender)

	err := m.Handle(context.Background(), events.PasswordResetRequested{Email: "ana@example.com", ResetURL: "https://app/reset-password?token=abc"})
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if sender.to != "ana@example.com" || sender.url != "https://app/reset-password?token=abc" {
		t.Fatalf("unexpected email %q %q", sender.to, sender.url)
	}

	sender.err = errors.New("smtp down")
	if err := m.Handle(context.Background(), events.PasswordResetRequested{Email: "ana@example.com"}); err == nil {
		t.Fatal("expected send error to surface to the bus")
	}
}
