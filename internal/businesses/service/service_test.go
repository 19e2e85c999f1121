package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"leadnest/internal/adapters/storage"
	"leadnest/internal/businesses/repository"
	"leadnest/internal/tenant"
	"leadnest/platform/apperr"
	"leadnest/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	businesses map[uuid.UUID]repository.Business
	members    map[uuid.UUID]repository.Member
	updates    []repository.UpdateParams
	removed    []uuid.UUID
}

func newFakeRepo(businessID uuid.UUID) *fakeRepo {
	return &fakeRepo{
		businesses: map[uuid.UUID]repository.Business{businessID: {ID: businessID, Name: "Acme", Settings: map[string]any{}}},
		members:    map[uuid.UUID]repository.Member{},
	}
}

func (f *fakeRepo) Get(_ context.Context, id uuid.UUID) (repository.Business, error) {
	b, ok := f.businesses[id]
	if !ok {
		return repository.Business{}, repository.ErrNotFound
	}
	return b, nil
}

func (f *fakeRepo) Update(_ context.Context, id uuid.UUID, p repository.UpdateParams) error {
	if _, ok := f.businesses[id]; !ok {
		return repository.ErrNotFound
	}
	f.updates = append(f.updates, p)
	return nil
}

func (f *fakeRepo) ListTeam(context.Context, uuid.UUID) ([]repository.Member, error) {
	out := make([]repository.Member, 0, len(f.members))
	for _, m := range f.members {
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeRepo) GetMember(_ context.Context, _, userID uuid.UUID) (repository.Member, error) {
	m, ok := f.members[userID]
	if !ok {
		return repository.Member{}, repository.ErrNotFound
	}
	return m, nil
}

func (f *fakeRepo) RemoveMember(_ context.Context, _, userID uuid.UUID) error {
	m, ok := f.members[userID]
	if !ok || m.IsDefault {
		return repository.ErrNotFound
	}
	delete(f.members, userID)
	f.removed = append(f.removed, userID)
	return nil
}

func (f *fakeRepo) SetLogoKey(_ context.Context, id uuid.UUID, key string) (*string, error) {
	b, ok := f.businesses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	prev := b.LogoKey
	b.LogoKey = &key
	f.businesses[id] = b
	return prev, nil
}

type fakeStore struct {
	uploaded []string
	deleted  []string
}

func (s *fakeStore) Upload(_ context.Context, folder, fileName, _ string, r io.Reader, _ int64) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	key := folder + "/" + fileName
	s.uploaded = append(s.uploaded, key)
	return key, nil
}

func (s *fakeStore) DownloadURL(_ context.Context, key string) (*storage.PresignedURL, error) {
	return &storage.PresignedURL{URL: "https://cdn.test/" + key, FileKey: key}, nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStore) Validate(contentType string, size int64) error {
	if err := storage.ValidateContentType(contentType); err != nil {
		return err
	}
	return storage.ValidateFileSize(size, 1024)
}

func newService(repo *fakeRepo, store storage.ObjectStore) *Service {
	return New(repo, store, logger.NewWithWriter("test", io.Discard))
}

func ownerScope(businessID uuid.UUID) tenant.Scope {
	return tenant.Scope{UserID: uuid.New(), BusinessID: businessID, Role: tenant.RoleOwner}
}

func TestUpdateForeignBusinessIsForbidden(t *testing.T) {
	bid := uuid.New()
	repo := newFakeRepo(bid)
	name := "Other"

	err := newService(repo, nil).Update(context.Background(), ownerScope(uuid.New()), bid, UpdateInput{Name: &name})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(repo.updates) != 0 {
		t.Fatal("expected no writes")
	}
}

func TestUpdateNormalizesFields(t *testing.T) {
	bid := uuid.New()
	repo := newFakeRepo(bid)
	email := "  Hi@Acme.TEST "

	err := newService(repo, nil).Update(context.Background(), ownerScope(bid), bid, UpdateInput{
		Email:         &email,
		ServiceTypes:  []string{"Plumbing", " ", "Plumbing", "<i>Heating</i>"},
		Qualification: map[string]any{"minBudget": 500},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	got := repo.updates[0]
	if *got.Email != "hi@acme.test" {
		t.Fatalf("unexpected email %q", *got.Email)
	}
	if strings.Join(got.ServiceTypes, ",") != "Plumbing,Heating" {
		t.Fatalf("unexpected service types %v", got.ServiceTypes)
	}
	if got.Qualification["minBudget"] != 500 {
		t.Fatalf("qualification not forwarded: %v", got.Qualification)
	}
}

func TestUpdateWithNothingIsBadRequest(t *testing.T) {
	bid := uuid.New()
	err := newService(newFakeRepo(bid), nil).Update(context.Background(), ownerScope(bid), bid, UpdateInput{})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}

func TestRemoveMemberRules(t *testing.T) {
	bid := uuid.New()
	owner := ownerScope(bid)
	member := uuid.New()
	defaultMember := uuid.New()

	tests := []struct {
		name   string
		scope  tenant.Scope
		target uuid.UUID
		kind   apperr.Kind
	}{
		{name: "other tenant", scope: ownerScope(uuid.New()), target: member, kind: apperr.KindForbidden},
		{name: "not owner", scope: tenant.Scope{UserID: uuid.New(), BusinessID: bid, Role: tenant.RoleMember}, target: member, kind: apperr.KindUnauthorized},
		{name: "self", scope: owner, target: owner.UserID, kind: apperr.KindBadRequest},
		{name: "default relation", scope: owner, target: defaultMember, kind: apperr.KindBadRequest},
		{name: "missing", scope: owner, target: uuid.New(), kind: apperr.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeRepo(bid)
			repo.members[member] = repository.Member{UserID: member, Role: tenant.RoleMember}
			repo.members[defaultMember] = repository.Member{UserID: defaultMember, Role: tenant.RoleMember, IsDefault: true}

			err := newService(repo, nil).RemoveMember(context.Background(), tt.scope, bid, tt.target)
			if !apperr.Is(err, tt.kind) {
				t.Fatalf("expected %v, got %v", tt.kind, err)
			}
			if len(repo.removed) != 0 {
				t.Fatal("expected no deletion")
			}
		})
	}

	repo := newFakeRepo(bid)
	repo.members[member] = repository.Member{UserID: member, Role: tenant.RoleMember}
	if err := newService(repo, nil).RemoveMember(context.Background(), owner, bid, member); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	if len(repo.removed) != 1 {
		t.Fatalf("expected member removed, got %v", repo.removed)
	}
}

func TestUploadLogoReplacesPrevious(t *testing.T) {
	bid := uuid.New()
	repo := newFakeRepo(bid)
	old := "old/logo.png"
	b := repo.businesses[bid]
	b.LogoKey = &old
	repo.businesses[bid] = b
	store := &fakeStore{}

	profile, err := newService(repo, store).UploadLogo(context.Background(), ownerScope(bid), bid, LogoUpload{
		FileName:    "logo.png",
		ContentType: "image/png",
		Size:        3,
		Reader:      strings.NewReader("png"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if profile.LogoURL != "https://cdn.test/"+bid.String()+"/logo/logo.png" {
		t.Fatalf("unexpected logo url %q", profile.LogoURL)
	}
	if len(store.deleted) != 1 || store.deleted[0] != old {
		t.Fatalf("expected previous logo deleted, got %v", store.deleted)
	}
}

func TestUploadLogoValidation(t *testing.T) {
	bid := uuid.New()
	store := &fakeStore{}
	svc := newService(newFakeRepo(bid), store)

	_, err := svc.UploadLogo(context.Background(), ownerScope(bid), bid, LogoUpload{
		FileName: "cv.pdf", ContentType: "application/pdf", Size: 10, Reader: strings.NewReader("x"),
	})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
	if len(store.uploaded) != 0 {
		t.Fatal("expected nothing uploaded")
	}

	_, err = newService(newFakeRepo(bid), nil).UploadLogo(context.Background(), ownerScope(bid), bid, LogoUpload{})
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request without storage, got %v", err)
	}
}

func TestGetMissingBusiness(t *testing.T) {
	bid := uuid.New()
	repo := newFakeRepo(uuid.New())
	_, err := newService(repo, nil).Get(context.Background(), ownerScope(bid), bid)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if errors.Is(err, repository.ErrNotFound) {
		t.Fatal("repository error should not leak")
	}
}
