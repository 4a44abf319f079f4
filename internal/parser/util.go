package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// amountToken matches a monetary amount with thousands separators and two
// decimal places, e.g. "150.00" or "9,850.00".
const amountToken = `\d{1,3}(?:,\d{3})*\.\d{2}`

// dateToken matches statement dates like "01 JAN 2024" or "15 JAN 24".
const dateToken = `\d{1,2} [A-Z]{3} \d{2,4}`

var currencyCleaner = strings.NewReplacer(
	"AED", "", "£", "", "$", "", "€", "",
	",", "", " ", "", " ", "",
)

// parseAmount converts strings like "1,234.56" or "AED 1,234.56" to a
// decimal. Empty and dash cells parse to zero.
func parseAmount(s string) (decimal.Decimal, error) {
	s = currencyCleaner.Replace(strings.TrimSpace(s))
	if s == "" || s == "-" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

var months = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// parseDate reads "DD MON YYYY" or "DD MON YY" into a UTC date. Two-digit
// years are resolved with the configured year prefix, so "24" with prefix 20
// becomes 2024.
func parseDate(s string, yearPrefix int) (time.Time, error) {
	fields := strings.Fields(strings.ToUpper(strings.TrimSpace(s)))
	if len(fields) != 3 {
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}

	day, err := strconv.Atoi(fields[0])
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("unrecognized day in %q", s)
	}

	if len(fields[1]) < 3 {
		return time.Time{}, fmt.Errorf("unrecognized month in %q", s)
	}
	month, ok := months[fields[1][:3]]
	if !ok {
		return time.Time{}, fmt.Errorf("unrecognized month in %q", s)
	}

	year, err := strconv.Atoi(fields[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized year in %q", s)
	}
	if len(fields[2]) == 2 {
		year = yearPrefix*100 + year
	}

	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), nil
}

// hasKeyword reports whether any keyword appears in the text,
// case-insensitively.
func hasKeyword(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// nameNearLabel extracts the value following one of the given labels on a
// line, e.g. "ACCOUNT NAME: MR JOHN SMITH". Values containing digits are
// rejected; labels sit next to account numbers often enough that a naive
// take-the-rest would capture them.
func nameNearLabel(line string, labels []string) string {
	upper := strings.ToUpper(line)
	for _, label := range labels {
		idx := strings.Index(upper, label)
		if idx < 0 {
			continue
		}
		rest := strings.TrimSpace(line[idx+len(label):])
		rest = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
		if rest != "" && !strings.ContainsAny(rest, "0123456789") {
			return rest
		}
	}
	return ""
}

// looksLikeName accepts strings made of letters, spaces, dots and ampersands
// of plausible holder-name length.
func looksLikeName(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 3 || len(s) > 80 {
		return false
	}
	for _, r := range s {
		if !(r == ' ' || r == '.' || r == '&' || r == '\'' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return true
}
