package domain

import (
	"testing"

	platformvalidator "leadnest/platform/validator"
)

func TestIsValidStatus(t *testing.T) {
	for _, s := range AllStatuses() {
		if !IsValidStatus(string(s)) {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	for _, s := range []string{"", "NEW", "won", "archived"} {
		if IsValidStatus(s) {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

type statusForm struct {
	Status string `json:"status" validate:"required,leadstatus"`
}

func TestRegisterValidation(t *testing.T) {
	v := platformvalidator.New()
	if err := RegisterValidation(v); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := v.Struct(statusForm{Status: "booked"}); err != nil {
		t.Fatalf("expected booked to pass, got %v", err)
	}
	if err := v.Struct(statusForm{Status: "won"}); err == nil {
		t.Fatal("expected won to fail")
	}
}
