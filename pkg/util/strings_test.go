package util

import "testing"

func TestNormalizeSymbol(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"aapl", "AAPL"},
		{" msft ", "MSFT"},
		{"BRK.B", "BRK.B"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeSymbol(tc.in); got != tc.want {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseIntDefault(t *testing.T) {
	if got := ParseIntDefault("42", 7); got != 42 {
		t.Errorf("got %d", got)
	}
	if got := ParseIntDefault("", 7); got != 7 {
		t.Errorf("empty: got %d", got)
	}
	if got := ParseIntDefault("nope", 7); got != 7 {
		t.Errorf("invalid: got %d", got)
	}
}

func TestParseBoolDefault(t *testing.T) {
	if !ParseBoolDefault("true", false) {
		t.Errorf("true not parsed")
	}
	if ParseBoolDefault("", true) != true {
		t.Errorf("default not applied")
	}
	if ParseBoolDefault("junk", false) {
		t.Errorf("invalid must fall back")
	}
}
