package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"leadnest/internal/notification/inapp"
	"leadnest/platform/httpkit"
	"leadnest/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStore struct {
	marked    []uuid.UUID
	markedAll int
	owned     map[uuid.UUID]uuid.UUID // notification -> user
	unread    int
}

func (f *fakeStore) Create(_ context.Context, p inapp.CreateParams) (inapp.Notification, error) {
	return inapp.Notification{ID: uuid.New(), UserID: p.UserID}, nil
}

func (f *fakeStore) List(context.Context, uuid.UUID, uuid.UUID, int, int) ([]inapp.Notification, int, int, error) {
	return []inapp.Notification{{ID: uuid.New(), Title: "New lead"}}, 1, f.unread, nil
}

func (f *fakeStore) MarkRead(_ context.Context, userID, _ uuid.UUID, id uuid.UUID) error {
	if f.owned[id] != userID {
		return inapp.ErrNotFound
	}
	f.marked = append(f.marked, id)
	return nil
}

func (f *fakeStore) MarkAllRead(context.Context, uuid.UUID, uuid.UUID) (int64, error) {
	f.markedAll++
	return 2, nil
}

func (f *fakeStore) ListOwners(context.Context, uuid.UUID) ([]inapp.Recipient, error) { return nil, nil }

func newTestEngine(store *fakeStore, userID uuid.UUID) *gin.Engine {
	svc := inapp.NewService(store, nil, logger.NewWithWriter("test", io.Discard))
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, userID)
		c.Set(httpkit.ContextBusinessIDKey, uuid.New())
		c.Next()
	})
	NewHTTPHandler(svc, nil).RegisterRoutes(r.Group("/api/notifications"))
	return r
}

func post(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/notifications", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestMarkRequiresTarget(t *testing.T) {
	store := &fakeStore{}
	rec := post(newTestEngine(store, uuid.New()), `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(store.marked) != 0 || store.markedAll != 0 {
		t.Fatal("expected no writes")
	}
}

func TestMarkForeignNotificationIsNotFound(t *testing.T) {
	store := &fakeStore{owned: map[uuid.UUID]uuid.UUID{}}
	foreign := uuid.New()
	store.owned[foreign] = uuid.New()

	rec := post(newTestEngine(store, uuid.New()), `{"notificationId":"`+foreign.String()+`"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMarkOwnAndAll(t *testing.T) {
	userID := uuid.New()
	id := uuid.New()
	store := &fakeStore{owned: map[uuid.UUID]uuid.UUID{id: userID}}
	r := newTestEngine(store, userID)

	rec := post(r, `{"notificationId":"`+id.String()+`"}`)
	if rec.Code != http.StatusOK || rec.Body.String() != `{"success":true}` {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}

	rec = post(r, `{"markAll":true}`)
	if rec.Code != http.StatusOK || store.markedAll != 1 {
		t.Fatalf("expected mark all, got %d (%d calls)", rec.Code, store.markedAll)
	}
}

func TestListIncludesUnreadCount(t *testing.T) {
	r := newTestEngine(&fakeStore{unread: 4}, uuid.New())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/notifications", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp ListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.UnreadCount != 4 || len(resp.Notifications) != 1 {
		t.Fatalf("unexpected response %+v", resp)
	}
}
