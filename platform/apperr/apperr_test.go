package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[*Error]int{
		NotFound("lead not found"):           http.StatusNotFound,
		Validation("invalid status"):         http.StatusBadRequest,
		BadRequest("malformed"):              http.StatusBadRequest,
		Forbidden("forbidden"):               http.StatusForbidden,
		Unauthorized("unauthorized"):         http.StatusUnauthorized,
		Internal("leads.update", errors.New("boom")): http.StatusInternalServerError,
		New(KindUnknown, "??"):               http.StatusInternalServerError,
	}

	for err, want := range cases {
		if got := err.HTTPStatus(); got != want {
			t.Fatalf("%q: expected status %d, got %d", err.Message, want, got)
		}
	}
}

func TestInternalHidesCauseFromMessage(t *testing.T) {
	cause := errors.New("pq: connection refused")
	err := Internal("auth.signup", cause)

	if err.Message != "internal server error" {
		t.Fatalf("expected generic message, got %q", err.Message)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable through Unwrap")
	}
}

func TestGetKindLooksThroughWrapping(t *testing.T) {
	err := fmt.Errorf("service: %w", Forbidden("forbidden"))

	if !Is(err, KindForbidden) {
		t.Fatalf("expected forbidden kind, got %v", GetKind(err))
	}
	if GetKind(errors.New("plain")) != KindUnknown {
		t.Fatal("expected unknown kind for plain error")
	}
}

func TestWithDetailsIsReturnedToClients(t *testing.T) {
	err := BadRequest("invalid status").WithDetails(map[string]interface{}{"allowed": []string{"new"}})

	if err.HTTPStatus() != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", err.HTTPStatus())
	}
	if _, ok := err.Details.(map[string]interface{}); !ok {
		t.Fatalf("expected details to be kept, got %#v", err.Details)
	}
}
