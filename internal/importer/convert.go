package importer

// convert.go provides cell cleanup and type conversion for CSV data.
//
// These functions handle the messy reality of user-provided spreadsheets:
//   - Multiple date formats (US, EU, ISO, with or without a time component)
//   - Excel formula prefixes (="value")
//   - Stray quotes and whitespace around values
//
// Dates are normalized to canonical YYYY-MM-DD form; any time-of-day
// component is discarded.

import (
	"strconv"
	"strings"
	"time"
)

// DateFormat is the canonical form all date fields are rewritten to.
const DateFormat = "2006-01-02"

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would land more than this many years in the future are
// assumed to be in the previous century.
var TwoDigitYearPivot = 20

// Date layouts split by year format for proper 2-digit year handling.
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"1/2/2006 15:04:05", "1/2/2006 15:04",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
)

// ParseDate parses a calendar date in any supported layout.
// Returns the zero time and false if the value is empty or unparseable.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	// 4-digit year layouts first (unambiguous)
	for _, layout := range fourDigitYearLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, true
		}
	}

	// 2-digit year layouts with pivot year adjustment
	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// NormalizeDate rewrites a date value to canonical YYYY-MM-DD form,
// discarding any time component. Normalizing an already-normalized
// value is a no-op. Returns false if the value does not parse.
func NormalizeDate(s string) (string, bool) {
	t, ok := ParseDate(s)
	if !ok {
		return "", false
	}
	return t.Format(DateFormat), true
}

// ParseFloor parses a floor number, accepting only integers in [min, max].
func ParseFloor(s string, min, max int) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < min || n > max {
		return 0, false
	}
	return n, true
}

// HeaderIndex maps cleaned, lowercased column names to their position in
// the CSV header row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Keys are lowercased for case-insensitive matching; on duplicate headers
// the first occurrence wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

// CleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes one layer of surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}
