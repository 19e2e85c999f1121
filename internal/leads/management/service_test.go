package management

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"leadnest/internal/events"
	"leadnest/internal/leads/domain"
	"leadnest/internal/leads/repository"
	"leadnest/internal/tenant"
	"leadnest/platform/apperr"
	"leadnest/platform/logger"
	"leadnest/platform/phone"

	"github.com/google/uuid"
)

type fakeRepo struct {
	mu         sync.Mutex
	leads      map[uuid.UUID]repository.Lead
	businesses map[string]repository.PublicBusiness
	bulkCalls  int
	created    []repository.CreateLeadParams
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{leads: map[uuid.UUID]repository.Lead{}, businesses: map[string]repository.PublicBusiness{}}
}

func (f *fakeRepo) add(businessID uuid.UUID, status string) repository.Lead {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := repository.Lead{ID: uuid.New(), BusinessID: businessID, Name: "Lead", Status: status}
	f.leads[l.ID] = l
	return l
}

func (f *fakeRepo) GetByID(_ context.Context, id, businessID uuid.UUID) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.leads[id]
	if !ok || l.BusinessID != businessID {
		return repository.Lead{}, repository.ErrNotFound
	}
	return l, nil
}

func (f *fakeRepo) Create(_ context.Context, p repository.CreateLeadParams) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, p)
	l := repository.Lead{ID: uuid.New(), BusinessID: p.BusinessID, Name: p.Name, Phone: p.Phone, Status: p.Status, Source: p.Source}
	f.leads[l.ID] = l
	return l, nil
}

func (f *fakeRepo) List(_ context.Context, p repository.ListParams) ([]repository.Lead, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Lead
	for _, l := range f.leads {
		if l.BusinessID == p.BusinessID {
			out = append(out, l)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id, businessID uuid.UUID, status string, _ *uuid.UUID) (repository.StatusChange, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.leads[id]
	if !ok || l.BusinessID != businessID {
		return repository.StatusChange{}, repository.ErrNotFound
	}
	prev := l.Status
	l.Status = status
	f.leads[id] = l
	return repository.StatusChange{Lead: l, PreviousStatus: prev}, nil
}

func (f *fakeRepo) BulkUpdateStatus(_ context.Context, businessID uuid.UUID, ids []uuid.UUID, status string) ([]repository.UpdatedLead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkCalls++
	var out []repository.UpdatedLead
	for _, id := range ids {
		l, ok := f.leads[id]
		if !ok || l.BusinessID != businessID {
			continue
		}
		l.Status = status
		f.leads[id] = l
		out = append(out, repository.UpdatedLead{ID: id, Name: l.Name})
	}
	return out, nil
}

func (f *fakeRepo) UpdateInternalNotes(_ context.Context, id, businessID uuid.UUID, text string) (repository.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.leads[id]
	if !ok || l.BusinessID != businessID {
		return repository.Lead{}, repository.ErrNotFound
	}
	l.InternalNotes = text
	f.leads[id] = l
	return l, nil
}

func (f *fakeRepo) GetBusinessBySlug(_ context.Context, slug string) (repository.PublicBusiness, error) {
	b, ok := f.businesses[slug]
	if !ok {
		return repository.PublicBusiness{}, repository.ErrNotFound
	}
	return b, nil
}

type harness struct {
	svc  *Service
	repo *fakeRepo
	bus  *events.InMemoryBus

	mu      sync.Mutex
	changed []events.LeadStatusChanged
	created []events.LeadCreated
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := logger.NewWithWriter("test", io.Discard)
	h := &harness{repo: newFakeRepo(), bus: events.NewInMemoryBus(log)}
	h.bus.Subscribe(events.LeadStatusChanged{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.changed = append(h.changed, e.(events.LeadStatusChanged))
		return nil
	}))
	h.bus.Subscribe(events.LeadCreated{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.created = append(h.created, e.(events.LeadCreated))
		return nil
	}))
	h.svc = New(h.repo, h.bus, phone.NewNormalizer("US"), log)
	return h
}

func scopeFor(businessID uuid.UUID) tenant.Scope {
	return tenant.Scope{UserID: uuid.New(), BusinessID: businessID, Role: tenant.RoleOwner}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	h := newHarness(t)
	bid := uuid.New()
	lead := h.repo.add(bid, "new")

	_, err := h.svc.UpdateStatus(context.Background(), scopeFor(bid), lead.ID, "archived")
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
	if got, _ := h.repo.GetByID(context.Background(), lead.ID, bid); got.Status != "new" {
		t.Fatalf("status should be unchanged, got %q", got.Status)
	}
}

func TestUpdateStatusForeignLeadIsNotFound(t *testing.T) {
	h := newHarness(t)
	lead := h.repo.add(uuid.New(), "new")

	_, err := h.svc.UpdateStatus(context.Background(), scopeFor(uuid.New()), lead.ID, "contacted")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateStatusPublishesEvent(t *testing.T) {
	h := newHarness(t)
	bid := uuid.New()
	lead := h.repo.add(bid, "quoted")

	updated, err := h.svc.UpdateStatus(context.Background(), scopeFor(bid), lead.ID, "booked")
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != "booked" {
		t.Fatalf("expected booked, got %q", updated.Status)
	}

	h.bus.Wait()
	if len(h.changed) != 1 || h.changed[0].NewStatus != "booked" || h.changed[0].LeadID != lead.ID {
		t.Fatalf("unexpected events %+v", h.changed)
	}
}

func TestUpdateInternalNotesReplacesAndSanitizes(t *testing.T) {
	h := newHarness(t)
	bid := uuid.New()
	lead := h.repo.add(bid, "new")
	scope := scopeFor(bid)

	if _, err := h.svc.UpdateInternalNotes(context.Background(), scope, lead.ID, "first visit"); err != nil {
		t.Fatalf("first update: %v", err)
	}
	updated, err := h.svc.UpdateInternalNotes(context.Background(), scope, lead.ID, "<b>prefers</b> mornings")
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if updated.InternalNotes != "prefers mornings" {
		t.Fatalf("expected replaced, sanitized notes, got %q", updated.InternalNotes)
	}
	if got, _ := h.repo.GetByID(context.Background(), lead.ID, bid); got.InternalNotes != "prefers mornings" {
		t.Fatalf("stored notes not replaced, got %q", got.InternalNotes)
	}
}

func TestBulkUpdateStatusValidatesBeforeWriting(t *testing.T) {
	h := newHarness(t)
	bid := uuid.New()
	lead := h.repo.add(bid, "new")

	_, err := h.svc.BulkUpdateStatus(context.Background(), scopeFor(bid), nil, "contacted")
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for empty ids, got %v", err)
	}
	_, err = h.svc.BulkUpdateStatus(context.Background(), scopeFor(bid), []uuid.UUID{lead.ID}, "archived")
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for invalid status, got %v", err)
	}
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected apperr.Error, got %T", err)
	}
	details, _ := appErr.Details.(map[string]interface{})
	allowed, _ := details["allowed"].([]domain.Status)
	if len(allowed) != len(domain.AllStatuses()) {
		t.Fatalf("expected allowed statuses in details, got %+v", appErr.Details)
	}
	if h.repo.bulkCalls != 0 {
		t.Fatalf("expected no writes, got %d", h.repo.bulkCalls)
	}
}

func TestBulkUpdateStatusSkipsForeignLeads(t *testing.T) {
	h := newHarness(t)
	bid := uuid.New()
	own := h.repo.add(bid, "new")
	foreign := h.repo.add(uuid.New(), "new")

	res, err := h.svc.BulkUpdateStatus(context.Background(), scopeFor(bid), []uuid.UUID{own.ID, foreign.ID, own.ID}, "lost")
	if err != nil {
		t.Fatalf("bulk update: %v", err)
	}
	if res.Requested != 2 || res.Updated != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := BulkMessage(res, "lost"); got != "Updated 1 lead to lost" {
		t.Fatalf("unexpected message %q", got)
	}
	if l := h.repo.leads[foreign.ID]; l.Status != "new" {
		t.Fatalf("foreign lead was modified: %q", l.Status)
	}
}

func TestCreatePublicDefaultsSourceAndNormalizesPhone(t *testing.T) {
	h := newHarness(t)
	bid := uuid.New()
	h.repo.businesses["acme"] = repository.PublicBusiness{ID: bid, Name: "Acme"}

	lead, err := h.svc.CreatePublic(context.Background(), " Acme ", CreateInput{
		Name:   "<b>Ana</b>",
		Email:  "Ana@Example.com",
		Phone:  "(650) 253-0000",
		Status: "booked",
	})
	if err != nil {
		t.Fatalf("create public: %v", err)
	}
	if lead.BusinessID != bid || lead.Status != "new" {
		t.Fatalf("unexpected lead %+v", lead)
	}
	if lead.Source == nil || *lead.Source != SourceWebsite {
		t.Fatalf("expected website source, got %v", lead.Source)
	}
	p := h.repo.created[0]
	if p.Name != "Ana" || p.Email != "ana@example.com" || p.Phone != "+16502530000" {
		t.Fatalf("unexpected params %+v", p)
	}

	h.bus.Wait()
	if len(h.created) != 1 || h.created[0].CreatedBy != nil || h.created[0].Source != SourceWebsite {
		t.Fatalf("unexpected created events %+v", h.created)
	}
}

func TestCreatePublicUnknownSlug(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.CreatePublic(context.Background(), "nope", CreateInput{Name: "Ana"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListClampsPaging(t *testing.T) {
	h := newHarness(t)
	bid := uuid.New()
	h.repo.add(bid, "new")

	res, err := h.svc.List(context.Background(), scopeFor(bid), ListFilter{Page: 0, PageSize: 1000})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Page != 1 || res.PageSize != maxPageSize || res.Total != 1 || res.TotalPages != 1 {
		t.Fatalf("unexpected paging %+v", res)
	}
}
