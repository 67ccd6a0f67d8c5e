package utils

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDecimal(t *testing.T) {
	got, err := ParseDecimal("1,250.75")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(decimal.NewFromFloat(1250.75)) {
		t.Fatalf("expected 1250.75, got %s", got)
	}

	got, err = ParseDecimal("  ")
	if err != nil {
		t.Fatalf("unexpected error for blank input: %v", err)
	}
	if !got.IsZero() {
		t.Fatalf("expected zero for blank input, got %s", got)
	}

	if _, err := ParseDecimal("abc"); err == nil {
		t.Fatal("expected an error for a non-numeric value")
	}
}
