// Package dates converts date fields between the free-form values clients
// send and the single DD-MM-YYYY display format the API returns.
//
// Inbound, strings become civil.Date (no time component in the text) or
// time.Time (the text contains "T" or ":"). Outbound, time.Time, civil.Date
// and parseable strings render as DD-MM-YYYY. Anything unparseable passes
// through untouched in both directions, and both directions are idempotent.
package dates

import (
	"strings"
	"time"

	"github.com/golang-sql/civil"
)

// DisplayLayout is the outbound date format (DD-MM-YYYY).
const DisplayLayout = "02-01-2006"

// isoLayouts are tried first, after a trailing "Z" is removed.
var isoLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"20060102T150405",
	"20060102",
}

// fallbackLayouts are tried in order on the same Z-stripped text; day-first wins over month-first for
// ambiguous input so formatted output always reparses to itself.
var fallbackLayouts = []string{
	"2006-1-2",
	"2006/1/2",
	"2-1-2006",
	"2/1/2006",
	"1/2/2006",
	"1-2-2006",
}

// baseLayouts parse the date part once the text is split on "T" or space.
var baseLayouts = []string{
	"2006-1-2",
	"2-1-2006",
}

// IsDateField reports whether a column name looks like a date field: it
// contains "date" (any case) or ends in "dt" (which covers "_dt").
func IsDateField(name string) bool {
	lowered := strings.ToLower(name)
	return strings.Contains(lowered, "date") || strings.HasSuffix(lowered, "dt")
}

// parseText parses s with the ISO, fallback and split strategies in turn.
func parseText(s string) (time.Time, bool) {
	text := strings.TrimSpace(s)
	if text == "" {
		return time.Time{}, false
	}

	iso := strings.TrimSuffix(text, "Z")
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, iso); err == nil {
			return t, true
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, iso); err == nil {
			return t, true
		}
	}

	base := text
	if i := strings.IndexAny(base, "T "); i >= 0 {
		base = base[:i]
	}
	for _, layout := range baseLayouts {
		if t, err := time.Parse(layout, base); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

// hasTimeComponent reports whether the input text carries a time: a "T" or
// ":" means the caller sent a timestamp.
func hasTimeComponent(s string) bool {
	return strings.ContainsAny(s, "T:")
}

// ParseValue converts an inbound value. Strings that parse become
// civil.Date or time.Time; every other value is returned unchanged.
func ParseValue(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	t, ok := parseText(s)
	if !ok {
		return v
	}
	if hasTimeComponent(s) {
		return t
	}
	return civil.DateOf(t)
}

// FormatValue converts an outbound value to DD-MM-YYYY. Strings are parsed
// first; nil, empty and unparseable values are returned unchanged.
func FormatValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		if t.IsZero() {
			return v
		}
		return t.Format(DisplayLayout)
	case *time.Time:
		if t == nil || t.IsZero() {
			return v
		}
		return t.Format(DisplayLayout)
	case civil.Date:
		if !t.IsValid() {
			return v
		}
		return t.In(time.UTC).Format(DisplayLayout)
	case civil.DateTime:
		return t.Date.In(time.UTC).Format(DisplayLayout)
	case string:
		parsed, ok := parseText(t)
		if !ok {
			return v
		}
		return parsed.Format(DisplayLayout)
	default:
		return v
	}
}
