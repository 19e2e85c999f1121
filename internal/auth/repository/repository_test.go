package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestNextFreeSlug(t *testing.T) {
	tests := []struct {
		name  string
		taken []string
		want  string
	}{
		{name: "free base", taken: nil, want: "acme"},
		{name: "base taken", taken: []string{"acme"}, want: "acme-1"},
		{name: "fills gap", taken: []string{"acme", "acme-1", "acme-3"}, want: "acme-2"},
		{name: "unrelated suffix", taken: []string{"acme", "acme-plumbing"}, want: "acme-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taken := make(map[string]struct{}, len(tt.taken))
			for _, s := range tt.taken {
				taken[s] = struct{}{}
			}
			if got := NextFreeSlug("acme", taken); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCreateAccountRunsInOneTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	userID := uuid.New()
	businessID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("Ana", "ana@example.com", "hash").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}).
			AddRow(userID, "Ana", "ana@example.com", "hash", now, now))
	mock.ExpectQuery("SELECT slug FROM businesses").
		WithArgs("acme").
		WillReturnRows(pgxmock.NewRows([]string{"slug"}).AddRow("acme").AddRow("acme-1"))
	mock.ExpectQuery("INSERT INTO businesses").
		WithArgs("Acme", "acme-2", "ana@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "slug", "email", "onboarding_step", "onboarding_completed"}).
			AddRow(businessID, "Acme", "acme-2", "ana@example.com", 0, false))
	mock.ExpectExec("INSERT INTO user_business_relations").
		WithArgs(userID, businessID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	repo := New(mock)
	acc, err := repo.CreateAccount(context.Background(), CreateAccountParams{
		Name:         "Ana",
		Email:        "ana@example.com",
		PasswordHash: "hash",
		BusinessName: "Acme",
		BaseSlug:     "acme",
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if acc.Business.Slug != "acme-2" || acc.User.ID != userID {
		t.Fatalf("unexpected account %+v", acc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateAccountMapsDuplicateEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: constraintUserEmail})
	mock.ExpectRollback()

	_, err = New(mock).CreateAccount(context.Background(), CreateAccountParams{
		Name: "Ana", Email: "ana@example.com", PasswordHash: "hash", BusinessName: "Acme", BaseSlug: "acme",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConsumeResetTokenIsAtomic(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	tok := ResetToken{ID: uuid.New(), Email: "ana@example.com"}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE password_reset_tokens SET used = true").
		WithArgs(tok.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs(tok.Email, "newhash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("DELETE FROM password_reset_tokens").
		WithArgs(tok.Email, tok.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectCommit()

	if err := New(mock).ConsumeResetToken(context.Background(), tok, "newhash"); err != nil {
		t.Fatalf("consume: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConsumeResetTokenRollsBackOnFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	tok := ResetToken{ID: uuid.New(), Email: "ana@example.com"}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE password_reset_tokens SET used = true").
		WithArgs(tok.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs(tok.Email, "newhash").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	if err := New(mock).ConsumeResetToken(context.Background(), tok, "newhash"); err == nil {
		t.Fatal("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConsumeResetTokenRejectsConcurrentReuse(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	defer mock.Close()

	tok := ResetToken{ID: uuid.New(), Email: "ana@example.com"}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE password_reset_tokens SET used = true").
		WithArgs(tok.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectRollback()

	if err := New(mock).ConsumeResetToken(context.Background(), tok, "newhash"); !errors.Is(err, ErrTokenUsed) {
		t.Fatalf("expected ErrTokenUsed, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDefaultMembershipPrefersDefaultRelation(t *testing.T) {
	query := strings.ToLower(defaultMembershipQuery)
	for _, fragment := range []string{"where r.user_id = $1", "order by r.is_default desc"} {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected query fragment %q", fragment)
		}
	}
}
