package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
)

type signupForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type colourForm struct {
	Colour string `json:"colour" validate:"required,colour"`
}

func TestMessagesUseJSONFieldNames(t *testing.T) {
	val := New()
	err := val.Struct(signupForm{Email: "nope", Password: "short"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	msgs := Messages(err)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %v", msgs)
	}
	if msgs[0] != "email: email" || msgs[1] != "password: min=8" {
		t.Fatalf("unexpected messages %v", msgs)
	}
}

func TestRegisterValidation(t *testing.T) {
	val := New()
	if err := val.RegisterValidation("colour", func(fl validator.FieldLevel) bool {
		return fl.Field().String() == "red"
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := val.Struct(colourForm{Colour: "red"}); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
	if err := val.Struct(colourForm{Colour: "blue"}); err == nil {
		t.Fatal("expected custom rule to reject blue")
	}
}

func TestMessagesFallsBackForPlainErrors(t *testing.T) {
	msgs := Messages(errors.New("boom"))
	if len(msgs) != 1 || msgs[0] != "boom" {
		t.Fatalf("unexpected messages %v", msgs)
	}
}
