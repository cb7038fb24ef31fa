package core

import (
	"math"
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantOK    bool
		wantValue float64
	}{
		{name: "integer", input: "123", wantOK: true, wantValue: 123},
		{name: "zero", input: "0", wantOK: true, wantValue: 0},
		{name: "negative", input: "-456", wantOK: true, wantValue: -456},
		{name: "decimal", input: "123.45", wantOK: true, wantValue: 123.45},
		{name: "leading decimal point", input: ".99", wantOK: true, wantValue: 0.99},
		{name: "trailing decimal point", input: "99.", wantOK: true, wantValue: 99},
		{name: "scientific", input: "1.5e3", wantOK: true, wantValue: 1500},
		{name: "dollar sign", input: "$1,234.56", wantOK: true, wantValue: 1234.56},
		{name: "euro sign", input: "\u20ac1234.56", wantOK: true, wantValue: 1234.56},
		{name: "pound sign", input: "\u00a31234.56", wantOK: true, wantValue: 1234.56},
		{name: "thousands separators", input: "1,000,000", wantOK: true, wantValue: 1000000},
		{name: "accounting negative", input: "(500.25)", wantOK: true, wantValue: -500.25},
		{name: "accounting negative with currency", input: "($1,200)", wantOK: true, wantValue: -1200},
		{name: "surrounding spaces", input: "  42  ", wantOK: true, wantValue: 42},

		{name: "empty", input: "", wantOK: false},
		{name: "whitespace", input: "   ", wantOK: false},
		{name: "letters", input: "abc", wantOK: false},
		{name: "trailing letters", input: "12abc", wantOK: false},
		{name: "two decimal points", input: "1.2.3", wantOK: false},
		{name: "NaN", input: "NaN", wantOK: false},
		{name: "infinity", input: "Inf", wantOK: false},
		{name: "hex", input: "0x10", wantOK: false},
		{name: "overflow", input: "1e999", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseAmount(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.wantValue) > 1e-9 {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.input, got, tt.wantValue)
			}
		})
	}
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		input  string
		wantOK bool
		want   float64
	}{
		{"42", true, 42},
		{" 3.5 ", true, 3.5},
		{"-7", true, -7},
		{"2e2", true, 200},
		{"", false, 0},
		{"$5", false, 0},
		{"1,000", false, 0},
		{"NaN", false, 0},
		{"+Inf", false, 0},
		{"Jan", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseNumeric(tt.input)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("parseNumeric(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2024/03/09", time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)},
		{"1/15/2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"Jan 15, 2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"January 15, 2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-06", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"Mar 2023", time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-01-15T10:30:00Z", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"1/15/24", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if !ok {
				t.Fatalf("ParseDate(%q) failed", tt.input)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	for _, input := range []string{"", "Jan", "Q1 2023", "Electronics", "2024", "13/45/2024"} {
		if _, ok := ParseDate(input); ok {
			t.Errorf("ParseDate(%q) succeeded, want failure", input)
		}
	}
}

func TestParseDate_TwoDigitYearPivot(t *testing.T) {
	far := (time.Now().Year() + TwoDigitYearPivot + 5) % 100
	input := "1/1/" + twoDigits(far)

	got, ok := ParseDate(input)
	if !ok {
		t.Fatalf("ParseDate(%q) failed", input)
	}
	if got.Year() > time.Now().Year()+TwoDigitYearPivot {
		t.Errorf("ParseDate(%q) year = %d, want it moved to the previous century", input, got.Year())
	}
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{4200, "4200"},
		{4.5, "4.5"},
		{0, "0"},
		{-12.25, "-12.25"},
		{1e21, "1000000000000000000000"},
		{100.0 / 3, "33.333333333333336"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "Jan", want: "Jan"},
		{name: "surrounding whitespace", input: "  Jan \t", want: "Jan"},
		{name: "BOM", input: "\ufeffcategory", want: "category"},
		{name: "excel formula prefix", input: `="00123"`, want: "00123"},
		{name: "lone equals quote", input: `="`, want: `="`},
		{name: "empty", input: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
