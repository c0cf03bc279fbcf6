package money

import (
	"errors"
	"testing"
)

func TestParseCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr error
	}{
		{name: "whole amount", input: "120", want: 12000},
		{name: "two fraction digits", input: "120.50", want: 12050},
		{name: "one fraction digit", input: "120.5", want: 12050},
		{name: "comma separator", input: "120,50", want: 12050},
		{name: "smallest amount", input: "0.01", want: 1},
		{name: "surrounding whitespace", input: "  42.00  ", want: 4200},
		{name: "letters", input: "abc", wantErr: ErrInvalidFormat},
		{name: "negative", input: "-5", wantErr: ErrInvalidFormat},
		{name: "three fraction digits", input: "5.123", wantErr: ErrInvalidFormat},
		{name: "empty", input: "", wantErr: ErrInvalidFormat},
		{name: "thousands separator", input: "1,000.00", wantErr: ErrInvalidFormat},
		{name: "scientific notation", input: "1e2", wantErr: ErrInvalidFormat},
		{name: "bare separator", input: "120.", wantErr: ErrInvalidFormat},
		{name: "largest representable amount", input: "92233720368547758.07", want: 9223372036854775807},
		{name: "cent value overflows int64", input: "92233720368547758.08", wantErr: ErrInvalidFormat},
		{name: "cent value far beyond int64", input: "184467440737095517.16", wantErr: ErrInvalidFormat},
		{name: "zero", input: "0", wantErr: ErrNotPositive},
		{name: "zero with fraction", input: "0.00", wantErr: ErrNotPositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCents(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseCents(%q) error = %v, want %v", tt.input, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCents(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{12000, "120.00"},
		{12050, "120.50"},
		{1, "0.01"},
		{333, "3.33"},
		{100000, "1000.00"},
	}

	for _, tt := range tests {
		if got := FormatCents(tt.cents); got != tt.want {
			t.Errorf("FormatCents(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

// Round-trip law: for valid inputs, format(parse(s)) reproduces s up to
// canonical zero-padding.
func TestParseFormatRoundTrip(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"120", "120.00"},
		{"120.5", "120.50"},
		{"120.50", "120.50"},
		{"0.01", "0.01"},
		{"999,99", "999.99"},
	}

	for _, tt := range tests {
		cents, err := ParseCents(tt.input)
		if err != nil {
			t.Fatalf("ParseCents(%q) failed: %v", tt.input, err)
		}
		if got := FormatCents(cents); got != tt.want {
			t.Errorf("FormatCents(ParseCents(%q)) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
