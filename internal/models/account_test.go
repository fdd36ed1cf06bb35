package models

import (
	"strings"
	"testing"
)

func TestValidAccountId(t *testing.T) {
	valid := "G" + strings.Repeat("A", 55)

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"valid address", valid, true},
		{"demo-style address", "GA7IOL2PQSSQ2UH3HTFFD4COT2D53LPXJ4CHQQB7TY4ZHM27QWWA6BEI", true},
		{"empty", "", false},
		{"wrong prefix", "X" + strings.Repeat("A", 55), false},
		{"too short", "G" + strings.Repeat("A", 54), false},
		{"too long", "G" + strings.Repeat("A", 56), false},
	}

	for _, tt := range tests {
		if got := ValidAccountId(tt.input); got != tt.want {
			t.Errorf("%s: ValidAccountId(%q) = %v, want %v", tt.name, tt.input, got, tt.want)
		}
	}
}

func TestTruncateAddress(t *testing.T) {
	if got := TruncateAddress("GA7IOL2PQSSQ2UH3HTFFD4COT2D53LPXJ4CHQQB7TY4ZHM27QWWA6BEI"); got != "GA7IOL2P..." {
		t.Errorf("TruncateAddress() = %q, want %q", got, "GA7IOL2P...")
	}
	if got := TruncateAddress("short"); got != "short" {
		t.Errorf("TruncateAddress(short) = %q, want unchanged", got)
	}
}
