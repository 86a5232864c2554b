package engine

import "testing"

func TestSimplify(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{1_500_000_000, "1.5b"},
		{2_300_000, "2.3m"},
		{4_500, "4.5k"},
		{999, "999"},
		{1_000, "1.0k"},
		{999_999, "1000.0k"},
		{1_000_000_000, "1.0b"},
		{0, "0"},
		{-12_345, "-12,345"},
		{-5, "-5"},
		{1_250, "1.3k"},
		{1_249, "1.2k"},
		{2_250_000, "2.3m"},
		{1_950, "2.0k"},
	}
	for _, tt := range tests {
		if got := Simplify(tt.in); got != tt.want {
			t.Errorf("Simplify(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatGP(t *testing.T) {
	if got := FormatGP(1234567); got != "1,234,567 gp" {
		t.Errorf("FormatGP = %q", got)
	}
	if got := FormatGP(-10); got != "-10 gp" {
		t.Errorf("FormatGP(-10) = %q", got)
	}
}
