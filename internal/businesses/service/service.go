// Package service implements business profile and team management.
package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"leadnest/internal/adapters/storage"
	"leadnest/internal/businesses/repository"
	"leadnest/internal/tenant"
	"leadnest/platform/apperr"
	"leadnest/platform/logger"
	"leadnest/platform/sanitize"

	"github.com/google/uuid"
)

const (
	msgBusinessNotFound = "business not found"
	msgMemberNotFound   = "team member not found"
	msgRemoveSelf       = "you cannot remove yourself"
	msgRemoveDefault    = "cannot remove a member from their default business"
	msgNothingToUpdate  = "no fields to update"
	msgStorageDisabled  = "logo storage is not configured"
)

type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (repository.Business, error)
	Update(ctx context.Context, id uuid.UUID, p repository.UpdateParams) error
	ListTeam(ctx context.Context, businessID uuid.UUID) ([]repository.Member, error)
	GetMember(ctx context.Context, businessID, userID uuid.UUID) (repository.Member, error)
	RemoveMember(ctx context.Context, businessID, userID uuid.UUID) error
	SetLogoKey(ctx context.Context, id uuid.UUID, key string) (*string, error)
}

type Service struct {
	repo  Repository
	store storage.ObjectStore
	log   *logger.Logger
}

// New creates the service. store may be nil when object storage is disabled.
func New(repo Repository, store storage.ObjectStore, log *logger.Logger) *Service {
	return &Service{repo: repo, store: store, log: log}
}

// Profile is a business plus a presigned logo URL when one is stored.
type Profile struct {
	Business repository.Business
	LogoURL  string
}

type UpdateInput struct {
	Name          *string
	Email         *string
	ServiceTypes  []string
	Qualification map[string]any
}

// LogoUpload is a logo file received from the client.
type LogoUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

func (s *Service) Get(ctx context.Context, scope tenant.Scope, id uuid.UUID) (Profile, error) {
	if err := scope.Authorize(id); err != nil {
		return Profile{}, err
	}

	b, err := s.repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return Profile{}, apperr.NotFound(msgBusinessNotFound)
	}
	if err != nil {
		return Profile{}, apperr.Internal("businesses.get", err)
	}

	profile := Profile{Business: b}
	if b.LogoKey != nil && s.store != nil {
		url, err := s.store.DownloadURL(ctx, *b.LogoKey)
		if err != nil {
			s.log.WithContext(ctx).Warn("presign logo failed", "error", err, "businessId", id)
		} else {
			profile.LogoURL = url.URL
		}
	}
	return profile, nil
}

// Update changes the scalar profile fields and merges qualification keys
// into the stored settings.
func (s *Service) Update(ctx context.Context, scope tenant.Scope, id uuid.UUID, in UpdateInput) error {
	if err := scope.Authorize(id); err != nil {
		return err
	}

	params := repository.UpdateParams{Qualification: in.Qualification}
	if in.Name != nil {
		name := sanitize.Line(*in.Name)
		if name == "" {
			return apperr.Validation("name cannot be empty")
		}
		params.Name = &name
	}
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		params.Email = &email
	}
	if in.ServiceTypes != nil {
		params.ServiceTypes = cleanServiceTypes(in.ServiceTypes)
	}
	if params.IsEmpty() {
		return apperr.BadRequest(msgNothingToUpdate)
	}

	err := s.repo.Update(ctx, id, params)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgBusinessNotFound)
	}
	if err != nil {
		return apperr.Internal("businesses.update", err)
	}
	return nil
}

func (s *Service) ListTeam(ctx context.Context, scope tenant.Scope, id uuid.UUID) ([]repository.Member, error) {
	if err := scope.Authorize(id); err != nil {
		return nil, err
	}
	members, err := s.repo.ListTeam(ctx, id)
	if err != nil {
		return nil, apperr.Internal("businesses.team.list", err)
	}
	return members, nil
}

// RemoveMember removes userID from the business. Only owners may do this, a
// caller cannot remove themselves, and a default relation is never removed.
func (s *Service) RemoveMember(ctx context.Context, scope tenant.Scope, id, userID uuid.UUID) error {
	if err := scope.Authorize(id); err != nil {
		return err
	}
	if err := scope.RequireRole(tenant.RoleOwner); err != nil {
		return err
	}
	if userID == scope.UserID {
		return apperr.BadRequest(msgRemoveSelf)
	}

	member, err := s.repo.GetMember(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgMemberNotFound)
	}
	if err != nil {
		return apperr.Internal("businesses.team.member", err)
	}
	if member.IsDefault {
		return apperr.BadRequest(msgRemoveDefault)
	}

	err = s.repo.RemoveMember(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgMemberNotFound)
	}
	if err != nil {
		return apperr.Internal("businesses.team.remove", err)
	}
	return nil
}

// UploadLogo stores a new logo and replaces the previous one.
func (s *Service) UploadLogo(ctx context.Context, scope tenant.Scope, id uuid.UUID, file LogoUpload) (Profile, error) {
	if err := scope.Authorize(id); err != nil {
		return Profile{}, err
	}
	if err := scope.RequireRole(tenant.RoleOwner); err != nil {
		return Profile{}, err
	}
	if s.store == nil {
		return Profile{}, apperr.BadRequest(msgStorageDisabled)
	}
	if err := s.store.Validate(file.ContentType, file.Size); err != nil {
		return Profile{}, apperr.BadRequest(err.Error())
	}

	key, err := s.store.Upload(ctx, id.String()+"/logo", file.FileName, file.ContentType, file.Reader, file.Size)
	if err != nil {
		return Profile{}, apperr.Internal("businesses.logo.upload", err)
	}

	previous, err := s.repo.SetLogoKey(ctx, id, key)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log.WithContext(ctx).Warn("cleanup of orphaned logo failed", "error", delErr, "key", key)
		}
		if errors.Is(err, repository.ErrNotFound) {
			return Profile{}, apperr.NotFound(msgBusinessNotFound)
		}
		return Profile{}, apperr.Internal("businesses.logo.save", err)
	}
	if previous != nil && *previous != key {
		if err := s.store.Delete(ctx, *previous); err != nil {
			s.log.WithContext(ctx).Warn("delete previous logo failed", "error", err, "key", *previous)
		}
	}

	return s.Get(ctx, scope, id)
}

func cleanServiceTypes(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = sanitize.Line(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
