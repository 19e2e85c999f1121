// Package notes manages the append-only activity notes of a lead.
package notes

import (
	"context"
	"errors"

	"leadnest/internal/leads/repository"
	"leadnest/internal/tenant"
	"leadnest/platform/apperr"
	"leadnest/platform/sanitize"

	"github.com/google/uuid"
)

const (
	msgLeadNotFound = "lead not found"
	msgEmptyNote    = "note cannot be empty"
)

type Repository interface {
	GetByID(ctx context.Context, id, businessID uuid.UUID) (repository.Lead, error)
	AddNote(ctx context.Context, leadID, businessID uuid.UUID, userID *uuid.UUID, text string) (repository.LeadNote, error)
	ListNotes(ctx context.Context, leadID, businessID uuid.UUID) ([]repository.LeadNote, error)
}

type Service struct {
	repo Repository
}

// New creates a notes service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Add appends a note written by the caller. Markup is stripped and a note
// that is empty afterwards is rejected.
func (s *Service) Add(ctx context.Context, scope tenant.Scope, leadID uuid.UUID, text string) (repository.LeadNote, error) {
	clean := sanitize.Text(text)
	if clean == "" {
		return repository.LeadNote{}, apperr.BadRequest(msgEmptyNote)
	}

	author := scope.UserID
	note, err := s.repo.AddNote(ctx, leadID, scope.BusinessID, &author, clean)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.LeadNote{}, apperr.NotFound(msgLeadNotFound)
	}
	if err != nil {
		return repository.LeadNote{}, apperr.Internal("leads.notes.add", err)
	}
	return note, nil
}

// List returns the notes of a lead in the caller's business, newest first.
func (s *Service) List(ctx context.Context, scope tenant.Scope, leadID uuid.UUID) ([]repository.LeadNote, error) {
	if _, err := s.repo.GetByID(ctx, leadID, scope.BusinessID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(msgLeadNotFound)
		}
		return nil, apperr.Internal("leads.notes.lead", err)
	}

	notes, err := s.repo.ListNotes(ctx, leadID, scope.BusinessID)
	if err != nil {
		return nil, apperr.Internal("leads.notes.list", err)
	}
	return notes, nil
}
