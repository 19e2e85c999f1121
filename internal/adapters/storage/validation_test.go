package storage

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestValidateContentType(t *testing.T) {
	tests := []struct {
		contentType string
		ok          bool
	}{
		{"image/png", true},
		{"IMAGE/JPEG; charset=binary", true},
		{"application/pdf", false},
		{"", false},
	}
	for _, tt := range tests {
		err := ValidateContentType(tt.contentType)
		if (err == nil) != tt.ok {
			t.Fatalf("%q: expected ok=%v, got %v", tt.contentType, tt.ok, err)
		}
		if err != nil && !errors.Is(err, ErrInvalidUpload) {
			t.Fatalf("%q: expected ErrInvalidUpload, got %v", tt.contentType, err)
		}
	}
}

func TestValidateFileSize(t *testing.T) {
	if err := ValidateFileSize(0, 100); err == nil {
		t.Fatal("expected empty file to be rejected")
	}
	if err := ValidateFileSize(101, 100); err == nil {
		t.Fatal("expected oversized file to be rejected")
	}
	if err := ValidateFileSize(100, 100); err != nil {
		t.Fatalf("expected limit to be inclusive, got %v", err)
	}
}

func TestObjectKeyStripsDirectories(t *testing.T) {
	id := uuid.MustParse("12345678-0000-0000-0000-000000000000")
	got := ObjectKey("biz-1/logo", `..\..\evil/Logo.PNG`, id)
	if got != "biz-1/logo/Logo_12345678.png" {
		t.Fatalf("unexpected key %q", got)
	}
	if strings.Contains(got, "..") {
		t.Fatalf("key escapes folder: %q", got)
	}
}
