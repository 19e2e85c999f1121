package inapp

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestMarkReadScopesToUserAndBusiness(t *testing.T) {
	mock := newMock(t)
	id, userID, businessID := uuid.New(), uuid.New(), uuid.New()

	mock.ExpectExec("UPDATE notifications SET read = TRUE\\s+WHERE id = \\$1 AND user_id = \\$2 AND business_id = \\$3").
		WithArgs(id, userID, businessID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := NewRepository(mock).MarkRead(context.Background(), userID, businessID, id)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMarkAllReadReturnsCount(t *testing.T) {
	mock := newMock(t)
	userID, businessID := uuid.New(), uuid.New()

	mock.ExpectExec("AND NOT read").
		WithArgs(userID, businessID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := NewRepository(mock).MarkAllRead(context.Background(), userID, businessID)
	if err != nil {
		t.Fatalf("mark all: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3, got %d", n)
	}
}

func TestListOwnersFiltersRole(t *testing.T) {
	mock := newMock(t)
	businessID := uuid.New()

	mock.ExpectQuery("WHERE r.business_id = \\$1 AND r.role = 'owner'").
		WithArgs(businessID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email"}).AddRow(uuid.New(), "Olga", "olga@example.com"))

	owners, err := NewRepository(mock).ListOwners(context.Background(), businessID)
	if err != nil {
		t.Fatalf("list owners: %v", err)
	}
	if len(owners) != 1 || owners[0].Email != "olga@example.com" {
		t.Fatalf("unexpected owners %+v", owners)
	}
}
