package domain

import "testing"

func TestNormalizeNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "dot and slash", input: "7.675/11", want: "767511"},
		{name: "dashes", input: "10-23-45", want: "102345"},
		{name: "already normalized", input: "767511", want: "767511"},
		{name: "mixed separators", input: "1.2-3/4", want: "1234"},
		{name: "empty", input: "", want: ""},
		{name: "no number sentinel untouched", input: "S/N", want: "SN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeNumber(tt.input)
			if got != tt.want {
				t.Errorf("NormalizeNumber(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeNumberIdempotent(t *testing.T) {
	inputs := []string{"7.675/11", "102345", "1.2-3/4", ""}
	for _, in := range inputs {
		once := NormalizeNumber(in)
		twice := NormalizeNumber(once)
		if once != twice {
			t.Errorf("NormalizeNumber not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
