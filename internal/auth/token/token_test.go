package token

import (
	"encoding/hex"
	"testing"
)

func TestGenerateHex(t *testing.T) {
	a, err := GenerateHex(ResetTokenBytes)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if _, err := hex.DecodeString(a); err != nil {
		t.Fatalf("expected hex, got %q", a)
	}
	b, _ := GenerateHex(ResetTokenBytes)
	if a == b {
		t.Fatal("expected distinct tokens")
	}
}
