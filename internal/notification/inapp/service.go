// Package inapp stores and serves in-app notifications.
package inapp

import (
	"context"
	"errors"

	"leadnest/internal/notification/sse"
	"leadnest/internal/tenant"
	"leadnest/platform/apperr"
	"leadnest/platform/logger"

	"github.com/google/uuid"
)

const (
	TypeInfo    = "info"
	TypeSuccess = "success"
	TypeWarning = "warning"

	defaultPageSize = 20
	maxPageSize     = 100
)

type Store interface {
	Create(ctx context.Context, p CreateParams) (Notification, error)
	List(ctx context.Context, userID, businessID uuid.UUID, limit, offset int) ([]Notification, int, int, error)
	MarkRead(ctx context.Context, userID, businessID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID, businessID uuid.UUID) (int64, error)
	ListOwners(ctx context.Context, businessID uuid.UUID) ([]Recipient, error)
}

type Service struct {
	repo Store
	sse  *sse.Service
	log  *logger.Logger
}

// NewService creates the service. sseSvc may be nil.
func NewService(repo Store, sseSvc *sse.Service, log *logger.Logger) *Service {
	return &Service{repo: repo, sse: sseSvc, log: log}
}

type SendParams struct {
	BusinessID uuid.UUID
	UserID     uuid.UUID
	Title      string
	Message    string
	Type       string
	LeadID     *uuid.UUID
}

// Page is one page of notifications.
type Page struct {
	Items       []Notification
	Total       int
	UnreadCount int
	Page        int
	PageSize    int
}

// Send persists the notification and pushes it to the user's open streams.
func (s *Service) Send(ctx context.Context, p SendParams) (Notification, error) {
	if p.Type == "" {
		p.Type = TypeInfo
	}

	n, err := s.repo.Create(ctx, CreateParams(p))
	if err != nil {
		s.log.WithContext(ctx).Error("failed to persist notification", "error", err, "userId", p.UserID)
		return Notification{}, apperr.Internal("notification.create", err)
	}

	if s.sse != nil {
		s.sse.Publish(p.UserID, sse.Event{
			Type:       sse.EventNotification,
			BusinessID: n.BusinessID,
			Message:    n.Title,
			Data:       n,
		})
	}
	return n, nil
}

// NotifyOwners sends p to every owner of the business and returns the owners
// reached. UserID in p is ignored.
func (s *Service) NotifyOwners(ctx context.Context, p SendParams) ([]Recipient, error) {
	owners, err := s.repo.ListOwners(ctx, p.BusinessID)
	if err != nil {
		return nil, apperr.Internal("notification.owners", err)
	}

	for _, owner := range owners {
		p.UserID = owner.UserID
		if _, err := s.Send(ctx, p); err != nil {
			return owners, err
		}
	}
	return owners, nil
}

func (s *Service) List(ctx context.Context, scope tenant.Scope, page, pageSize int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	items, total, unread, err := s.repo.List(ctx, scope.UserID, scope.BusinessID, pageSize, (page-1)*pageSize)
	if err != nil {
		return Page{}, apperr.Internal("notification.list", err)
	}
	return Page{Items: items, Total: total, UnreadCount: unread, Page: page, PageSize: pageSize}, nil
}

func (s *Service) MarkRead(ctx context.Context, scope tenant.Scope, id uuid.UUID) error {
	err := s.repo.MarkRead(ctx, scope.UserID, scope.BusinessID, id)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("notification not found")
	}
	if err != nil {
		return apperr.Internal("notification.mark_read", err)
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, scope tenant.Scope) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, scope.UserID, scope.BusinessID)
	if err != nil {
		return 0, apperr.Internal("notification.mark_all_read", err)
	}
	return n, nil
}
