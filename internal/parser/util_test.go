package parser

import (
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"150.00", "150"},
		{"1,234.56", "1234.56"},
		{"9,850.00", "9850"},
		{"AED 5,000.00", "5000"},
		{"£25.99", "25.99"},
		{"", "0"},
		{"-", "0"},
	}

	for _, tc := range cases {
		got, err := parseAmount(tc.input)
		if err != nil {
			t.Errorf("parseAmount(%q): unexpected error: %v", tc.input, err)
			continue
		}
		if got.String() != tc.want {
			t.Errorf("parseAmount(%q): got %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestParseAmountRejectsGarbage(t *testing.T) {
	if _, err := parseAmount("not a number"); err == nil {
		t.Error("expected error for non-numeric input")
	}
}

func TestParseDateFourDigitYear(t *testing.T) {
	got, err := parseDate("01 JAN 2024", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestParseDateTwoDigitYear(t *testing.T) {
	cases := []struct {
		input  string
		prefix int
		year   int
	}{
		{"15 JAN 24", 20, 2024},
		{"15 JAN 24", 19, 1924},
		{"31 DEC 99", 20, 2099},
	}

	for _, tc := range cases {
		got, err := parseDate(tc.input, tc.prefix)
		if err != nil {
			t.Errorf("parseDate(%q, %d): unexpected error: %v", tc.input, tc.prefix, err)
			continue
		}
		if got.Year() != tc.year {
			t.Errorf("parseDate(%q, %d): got year %d, want %d", tc.input, tc.prefix, got.Year(), tc.year)
		}
	}
}

func TestParseDateRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "JAN 2024", "99 JAN 2024", "01 XXX 2024", "01 JAN"} {
		if _, err := parseDate(input, 20); err == nil {
			t.Errorf("parseDate(%q): expected error", input)
		}
	}
}

func TestHasKeyword(t *testing.T) {
	keywords := []string{"deposit", "salary"}

	if !hasKeyword("ATM Cash Deposit AL WAHDA MALL", keywords) {
		t.Error("expected match on 'deposit'")
	}
	if hasKeyword("POS Settlement GROCERY STORE", keywords) {
		t.Error("unexpected match")
	}
}

func TestNameNearLabel(t *testing.T) {
	labels := []string{"ACCOUNT NAME", "CUSTOMER NAME"}

	if got := nameNearLabel("Account Name: MR JOHN SMITH", labels); got != "MR JOHN SMITH" {
		t.Errorf("got %q, want %q", got, "MR JOHN SMITH")
	}
	// Values with digits are account numbers, not names.
	if got := nameNearLabel("ACCOUNT NAME 01-123456-45-6", labels); got != "" {
		t.Errorf("got %q, want empty", got)
	}
	if got := nameNearLabel("no label here", labels); got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
