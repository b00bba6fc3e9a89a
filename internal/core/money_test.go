package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0.01", "0.01", true},
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"0", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestParseNumberTreatsGarbageAsZero(t *testing.T) {
	for _, in := range []string{"", "abc", "1.2.3", "--5"} {
		if got := ParseNumber(in); !got.IsZero() {
			t.Fatalf("%q expected 0, got %s", in, got)
		}
	}
	if got := ParseNumber("-5"); !got.Equal(decimal.NewFromInt(-5)) {
		t.Fatalf("expected -5, got %s", got)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(decimal.NewFromInt(85), decimal.NewFromInt(100)); got != 85 {
		t.Fatalf("expected 85, got %v", got)
	}
	if got := Percent(decimal.NewFromInt(85), decimal.Zero); got != 0 {
		t.Fatalf("expected 0 for zero whole, got %v", got)
	}
}
