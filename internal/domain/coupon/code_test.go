package coupon

import (
	"strings"
	"testing"
)

func TestGenerateCode(t *testing.T) {
	code, err := GenerateCode("chicken-burger")
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}

	parts := strings.Split(code, "-")
	if len(parts) != 3 {
		t.Fatalf("expected 3 segments, got %q", code)
	}
	if parts[0] != "CHICKENBURGE" {
		t.Errorf("expected truncated uppercase prefix, got %q", parts[0])
	}
	if len(parts[1]) != codeRandomLength {
		t.Errorf("expected random block of %d chars, got %q", codeRandomLength, parts[1])
	}
	for _, r := range parts[1] {
		if !strings.ContainsRune(codeAlphabet, r) {
			t.Errorf("random block contains %q, outside the code alphabet", r)
		}
	}
}

func TestGenerateCodeEmptySlug(t *testing.T) {
	code, err := GenerateCode("")
	if err != nil {
		t.Fatalf("GenerateCode: %v", err)
	}
	if !strings.HasPrefix(code, "REWARD-") {
		t.Errorf("expected REWARD fallback prefix, got %q", code)
	}
}

func TestGenerateCodeUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := GenerateCode("latte")
		if err != nil {
			t.Fatalf("GenerateCode: %v", err)
		}
		if seen[code] {
			t.Fatalf("duplicate code %q after %d generations", code, i)
		}
		seen[code] = true
	}
}
