// Package service implements the onboarding wizard state of a business.
package service

import (
	"context"
	"errors"
	"strings"

	"leadnest/internal/onboarding/repository"
	"leadnest/internal/tenant"
	"leadnest/platform/apperr"
	"leadnest/platform/sanitize"

	"github.com/google/uuid"
)

const (
	// SettingLocation and SettingServiceArea are the settings keys onboarding writes.
	SettingLocation    = "location"
	SettingServiceArea = "serviceArea"

	msgBusinessNotFound = "business not found"
	msgNegativeStep     = "step must be zero or greater"
)

type Repository interface {
	Advance(ctx context.Context, businessID uuid.UUID, p repository.AdvanceParams) (repository.State, error)
	Get(ctx context.Context, businessID uuid.UUID) (repository.State, error)
}

type Service struct {
	repo Repository
}

func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// BusinessData is the optional profile data collected by the wizard.
type BusinessData struct {
	ServiceTypes  []string
	BusinessEmail *string
	Location      *string
	ServiceArea   *string
}

type AdvanceInput struct {
	Step      int
	Completed bool
	Data      *BusinessData
}

// Advance records the wizard step for the caller's business. Completion can
// only be switched on.
func (s *Service) Advance(ctx context.Context, scope tenant.Scope, in AdvanceInput) (repository.State, error) {
	if in.Step < 0 {
		return repository.State{}, apperr.Validation(msgNegativeStep)
	}

	params := repository.AdvanceParams{Step: in.Step, Completed: in.Completed}
	if d := in.Data; d != nil {
		if d.ServiceTypes != nil {
			params.ServiceTypes = make([]string, 0, len(d.ServiceTypes))
			for _, t := range d.ServiceTypes {
				if t = sanitize.Line(t); t != "" {
					params.ServiceTypes = append(params.ServiceTypes, t)
				}
			}
		}
		if d.BusinessEmail != nil {
			email := strings.ToLower(strings.TrimSpace(*d.BusinessEmail))
			params.Email = &email
		}
		patch := map[string]any{}
		if d.Location != nil {
			patch[SettingLocation] = sanitize.Line(*d.Location)
		}
		if d.ServiceArea != nil {
			patch[SettingServiceArea] = sanitize.Line(*d.ServiceArea)
		}
		if len(patch) > 0 {
			params.SettingsPatch = patch
		}
	}

	state, err := s.repo.Advance(ctx, scope.BusinessID, params)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.State{}, apperr.NotFound(msgBusinessNotFound)
	}
	if err != nil {
		return repository.State{}, apperr.Internal("onboarding.advance", err)
	}
	return state, nil
}

func (s *Service) Get(ctx context.Context, scope tenant.Scope) (repository.State, error) {
	state, err := s.repo.Get(ctx, scope.BusinessID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.State{}, apperr.NotFound(msgBusinessNotFound)
	}
	if err != nil {
		return repository.State{}, apperr.Internal("onboarding.get", err)
	}
	return state, nil
}
