package availability

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	"1/2/06",
	"1/2/2006",
	"2006-01-02",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon 1/2/06",
	"Mon, Jan 2, 2006",
	"02-Jan-2006",
}

// parseDate maps a schedule date string onto the calendar so that "01/02/25"
// orders before "01/10/25" whatever the zero padding.
func parseDate(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
		// Some sources upper-case the whole cell ("JAN 5, 2025").
		if t, err := time.Parse(layout, titleCase(value)); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type dateKey struct {
	raw    string
	parsed time.Time
	ok     bool
}

func newDateKey(raw string) dateKey {
	t, ok := parseDate(raw)
	return dateKey{raw: raw, parsed: t, ok: ok}
}

// before orders parseable dates chronologically, ahead of unparseable ones,
// which fall back to string order.
func (k dateKey) before(other dateKey) bool {
	switch {
	case k.ok && other.ok:
		if !k.parsed.Equal(other.parsed) {
			return k.parsed.Before(other.parsed)
		}
		return k.raw < other.raw
	case k.ok != other.ok:
		return k.ok
	default:
		return k.raw < other.raw
	}
}

func titleCase(value string) string {
	words := strings.Fields(strings.ToLower(value))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// CanonicalDate rewrites a schedule date as "2006-01-02" so records from
// differently formatted sources compare equal. Unparseable input is returned
// trimmed.
func CanonicalDate(raw string) string {
	if t, ok := parseDate(raw); ok {
		return t.Format("2006-01-02")
	}
	return strings.TrimSpace(raw)
}
