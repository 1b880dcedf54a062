// Package dates normalizes bank export date strings to YYYY-MM-DD.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// CanonicalLayout is the stored transaction date format.
const CanonicalLayout = "2006-01-02"

var (
	canonicalPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	yearPattern      = regexp.MustCompile(`^\d{4}$`)
)

// genericLayouts are tried when the input uses neither '/' nor '-'.
var genericLayouts = []string{
	"2006.01.02",
	"02.01.2006",
	"20060102",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC3339,
}

// Normalize converts raw into YYYY-MM-DD. Ambiguous numeric dates are read
// day-first. Input that cannot be read as a valid calendar date is returned
// unchanged; an empty input returns "".
func Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	datePart := trimmed
	if i := strings.IndexByte(trimmed, ' '); i >= 0 {
		datePart = trimmed[:i]
	}

	if canonicalPattern.MatchString(datePart) {
		return datePart
	}

	switch {
	case strings.Contains(datePart, "/"):
		parts := strings.Split(datePart, "/")
		if len(parts) != 3 {
			return raw
		}
		// DD/MM/YYYY, also when both leading parts are <= 12.
		return assemble(raw, parts[2], parts[1], parts[0])

	case strings.Contains(datePart, "-"):
		parts := strings.Split(datePart, "-")
		if len(parts) != 3 {
			return raw
		}
		if yearPattern.MatchString(parts[0]) {
			return assemble(raw, parts[0], parts[1], parts[2])
		}
		return assemble(raw, parts[2], parts[1], parts[0])
	}

	for _, layout := range genericLayouts {
		for _, candidate := range []string{trimmed, datePart} {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t.Format(CanonicalLayout)
			}
		}
	}
	return raw
}

// assemble builds a canonical date from its components, or returns raw if
// they do not form a real calendar day.
func assemble(raw, yearStr, monthStr, dayStr string) string {
	year, err := strconv.Atoi(strings.TrimSpace(yearStr))
	if err != nil {
		return raw
	}
	month, err := strconv.Atoi(strings.TrimSpace(monthStr))
	if err != nil {
		return raw
	}
	day, err := strconv.Atoi(strings.TrimSpace(dayStr))
	if err != nil {
		return raw
	}
	if len(strings.TrimSpace(yearStr)) == 2 {
		year += 2000
	}
	if year < 1 || month < 1 || month > 12 || day < 1 {
		return raw
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return raw
	}
	return t.Format(CanonicalLayout)
}

// ParseCanonical parses a stored YYYY-MM-DD date.
func ParseCanonical(s string) (time.Time, bool) {
	if !canonicalPattern.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(CanonicalLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsCanonical reports whether s is already in stored form.
func IsCanonical(s string) bool {
	_, ok := ParseCanonical(s)
	return ok
}
