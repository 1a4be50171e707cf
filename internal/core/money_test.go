package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1.00", true},
		{"1.0", "1.00", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{"0", "0.00", true},
		{"0.01", "0.01", true},
		{"156.75", "156.75", true},
		{" 2.50 ", "2.50", true},
		{"1.005", "", false}, // 3 fractional digits
		{"-1", "", false},
		{"+1", "", false},
		{"1e2", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || FormatAmount(got) != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, FormatAmount(got), err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestFormatAmountRoundTrip(t *testing.T) {
	// The amount that checks for binary floating point drift: 156.75 has no
	// exact float64 representation chain through naive parsing.
	d, err := ParseAmount("156.75")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := FormatAmount(d); got != "156.75" {
		t.Fatalf("round trip changed the amount: %q", got)
	}
}
