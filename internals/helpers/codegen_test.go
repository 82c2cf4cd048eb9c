// file: internals/helpers/codegen_test.go
package helper_test

import (
	"strings"
	"testing"

	helper "formationhub_backend/internals/helpers"
)

func TestNumericCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code, err := helper.NumericCode(6)
		if err != nil {
			t.Fatalf("NumericCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q: want 6 digits", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("code %q contains %q", code, r)
			}
		}
		seen[code] = true
	}
	// 100 draws from a 10^6 space colliding down to a handful would mean a
	// broken generator.
	if len(seen) < 95 {
		t.Errorf("only %d distinct codes out of 100 draws", len(seen))
	}
}

func TestAlphaCode(t *testing.T) {
	const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	for i := 0; i < 50; i++ {
		code, err := helper.AlphaCode(8)
		if err != nil {
			t.Fatalf("AlphaCode: %v", err)
		}
		if len(code) != 8 {
			t.Fatalf("code %q: want 8 chars", code)
		}
		for _, r := range code {
			if !strings.ContainsRune(alphabet, r) {
				t.Fatalf("code %q contains %q, outside the ambiguity-free alphabet", code, r)
			}
		}
	}
}
