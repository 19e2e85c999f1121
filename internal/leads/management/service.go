// Package management implements lead listing, creation and the status
// lifecycle for a tenant.
package management

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"leadnest/internal/events"
	"leadnest/internal/leads/domain"
	"leadnest/internal/leads/repository"
	"leadnest/internal/tenant"
	"leadnest/platform/apperr"
	"leadnest/platform/logger"
	"leadnest/platform/phone"
	"leadnest/platform/sanitize"

	"github.com/google/uuid"
)

const (
	msgLeadNotFound     = "lead not found"
	msgBusinessNotFound = "business not found"
	msgInvalidStatus    = "invalid status"
	msgEmptyLeadIDs     = "leadIds must be a non-empty list"

	// SourceWebsite is recorded for leads captured by the public intake form.
	SourceWebsite = "website"

	defaultPageSize = 20
	maxPageSize     = 100
)

// invalidStatus lists the accepted statuses in the error details.
func invalidStatus() *apperr.Error {
	return apperr.BadRequest(msgInvalidStatus).WithDetails(map[string]interface{}{"allowed": domain.AllStatuses()})
}

// Repository is the persistence the service needs.
type Repository interface {
	GetByID(ctx context.Context, id, businessID uuid.UUID) (repository.Lead, error)
	Create(ctx context.Context, params repository.CreateLeadParams) (repository.Lead, error)
	List(ctx context.Context, params repository.ListParams) ([]repository.Lead, int, error)
	UpdateStatus(ctx context.Context, id, businessID uuid.UUID, status string, actorID *uuid.UUID) (repository.StatusChange, error)
	BulkUpdateStatus(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID, status string) ([]repository.UpdatedLead, error)
	UpdateInternalNotes(ctx context.Context, id, businessID uuid.UUID, text string) (repository.Lead, error)
	GetBusinessBySlug(ctx context.Context, slug string) (repository.PublicBusiness, error)
}

type Service struct {
	repo     Repository
	eventBus events.Bus
	phone    *phone.Normalizer
	log      *logger.Logger
}

func New(repo Repository, eventBus events.Bus, phones *phone.Normalizer, log *logger.Logger) *Service {
	return &Service{repo: repo, eventBus: eventBus, phone: phones, log: log}
}

type ListFilter struct {
	Status   *string
	Source   *string
	Search   string
	Page     int
	PageSize int
}

type ListResult struct {
	Items      []repository.Lead
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// CreateInput carries the fields of a new lead. Status defaults to new.
type CreateInput struct {
	Name        string
	Email       string
	Phone       string
	ServiceType string
	Location    string
	Status      string
	Priority    string
	Tags        []string
	Message     string
	Source      *string
}

// BulkResult reports how many of the requested leads were updated.
type BulkResult struct {
	Requested int
	Updated   int
}

func (s *Service) List(ctx context.Context, scope tenant.Scope, f ListFilter) (ListResult, error) {
	page := f.Page
	if page < 1 {
		page = 1
	}
	size := f.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	if f.Status != nil && !domain.IsValidStatus(*f.Status) {
		return ListResult{}, invalidStatus()
	}

	items, total, err := s.repo.List(ctx, repository.ListParams{
		BusinessID: scope.BusinessID,
		Status:     f.Status,
		Source:     f.Source,
		Search:     strings.TrimSpace(f.Search),
		Limit:      size,
		Offset:     (page - 1) * size,
	})
	if err != nil {
		return ListResult{}, apperr.Internal("leads.list", err)
	}

	return ListResult{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   size,
		TotalPages: (total + size - 1) / size,
	}, nil
}

func (s *Service) Get(ctx context.Context, scope tenant.Scope, id uuid.UUID) (repository.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id, scope.BusinessID)
	if err != nil {
		return repository.Lead{}, mapLeadError("leads.get", err)
	}
	return lead, nil
}

// Create adds a lead to the caller's business.
func (s *Service) Create(ctx context.Context, scope tenant.Scope, in CreateInput) (repository.Lead, error) {
	actor := scope.UserID
	return s.create(ctx, scope.BusinessID, &actor, in)
}

// CreatePublic records a lead submitted through a business's public intake
// form. The business is resolved by slug.
func (s *Service) CreatePublic(ctx context.Context, slug string, in CreateInput) (repository.Lead, error) {
	business, err := s.repo.GetBusinessBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Lead{}, apperr.NotFound(msgBusinessNotFound)
	}
	if err != nil {
		return repository.Lead{}, apperr.Internal("leads.public.business", err)
	}

	source := SourceWebsite
	if in.Source != nil && strings.TrimSpace(*in.Source) != "" {
		source = strings.TrimSpace(*in.Source)
	}
	in.Source = &source
	in.Status = string(domain.StatusNew)
	in.Priority = ""
	return s.create(ctx, business.ID, nil, in)
}

func (s *Service) create(ctx context.Context, businessID uuid.UUID, actorID *uuid.UUID, in CreateInput) (repository.Lead, error) {
	status := in.Status
	if status == "" {
		status = string(domain.StatusNew)
	}
	if !domain.IsValidStatus(status) {
		return repository.Lead{}, invalidStatus()
	}
	priority := in.Priority
	if priority == "" {
		priority = "medium"
	}
	name := sanitize.Line(in.Name)
	if name == "" {
		return repository.Lead{}, apperr.Validation("name is required")
	}

	lead, err := s.repo.Create(ctx, repository.CreateLeadParams{
		BusinessID:  businessID,
		Name:        name,
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Phone:       s.phone.E164(in.Phone),
		ServiceType: sanitize.Line(in.ServiceType),
		Location:    sanitize.Line(in.Location),
		Status:      status,
		Priority:    priority,
		Tags:        in.Tags,
		Message:     sanitize.Text(in.Message),
		Source:      in.Source,
	})
	if err != nil {
		return repository.Lead{}, apperr.Internal("leads.create", err)
	}

	source := "direct"
	if lead.Source != nil {
		source = *lead.Source
	}
	s.eventBus.Publish(ctx, events.LeadCreated{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      lead.ID,
		BusinessID:  lead.BusinessID,
		CreatedBy:   actorID,
		Name:        lead.Name,
		ServiceType: lead.ServiceType,
		Source:      source,
	})
	return lead, nil
}

// UpdateStatus moves one lead to status. The status must be one of the
// pipeline values.
func (s *Service) UpdateStatus(ctx context.Context, scope tenant.Scope, id uuid.UUID, status string) (repository.Lead, error) {
	if !domain.IsValidStatus(status) {
		return repository.Lead{}, invalidStatus()
	}

	actor := scope.UserID
	change, err := s.repo.UpdateStatus(ctx, id, scope.BusinessID, status, &actor)
	if err != nil {
		return repository.Lead{}, mapLeadError("leads.status.update", err)
	}

	s.eventBus.Publish(ctx, events.LeadStatusChanged{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     change.Lead.ID,
		BusinessID: change.Lead.BusinessID,
		ActorID:    &actor,
		LeadName:   change.Lead.Name,
		NewStatus:  status,
	})
	return change.Lead, nil
}

// BulkUpdateStatus moves every listed lead of the caller's business to
// status. Ids belonging to other businesses are skipped and only counted as
// requested.
func (s *Service) BulkUpdateStatus(ctx context.Context, scope tenant.Scope, ids []uuid.UUID, status string) (BulkResult, error) {
	if len(ids) == 0 {
		return BulkResult{}, apperr.BadRequest(msgEmptyLeadIDs)
	}
	if !domain.IsValidStatus(status) {
		return BulkResult{}, invalidStatus()
	}

	ids = dedupe(ids)
	updated, err := s.repo.BulkUpdateStatus(ctx, scope.BusinessID, ids, status)
	if err != nil {
		return BulkResult{}, apperr.Internal("leads.status.bulk", err)
	}

	for _, lead := range updated {
		s.eventBus.Publish(ctx, events.LeadStatusChanged{
			BaseEvent:  events.NewBaseEvent(),
			LeadID:     lead.ID,
			BusinessID: scope.BusinessID,
			LeadName:   lead.Name,
			NewStatus:  status,
		})
	}

	if len(updated) < len(ids) {
		s.log.WithContext(ctx).Info("bulk status update skipped leads",
			"requested", len(ids), "updated", len(updated), "businessId", scope.BusinessID)
	}
	return BulkResult{Requested: len(ids), Updated: len(updated)}, nil
}

// BulkMessage is the human-readable summary returned to the dashboard.
func BulkMessage(r BulkResult, status string) string {
	noun := "leads"
	if r.Updated == 1 {
		noun = "lead"
	}
	return fmt.Sprintf("Updated %d %s to %s", r.Updated, noun, status)
}

// UpdateInternalNotes replaces the private notes field of a lead.
func (s *Service) UpdateInternalNotes(ctx context.Context, scope tenant.Scope, id uuid.UUID, text string) (repository.Lead, error) {
	lead, err := s.repo.UpdateInternalNotes(ctx, id, scope.BusinessID, sanitize.Text(text))
	if err != nil {
		return repository.Lead{}, mapLeadError("leads.internal_notes.update", err)
	}
	return lead, nil
}

func mapLeadError(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgLeadNotFound)
	}
	return apperr.Internal(op, err)
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
