package availability

import (
	"fmt"
	"strings"
	"time"

	appErrors "github.com/MarkCruse/k3y-open-sessions/pkg/errors"
)

const minutesPerDay = 24 * 60

var (
	utcLayouts   = []string{"15:04", "15:04:05"}
	localLayouts = []string{"15:04", "3:04 PM", "3:04PM"}
)

// ParseClock parses a wall-clock time written as "HH:MM" or "hh:mm AM/PM" and
// returns minutes since midnight.
func ParseClock(raw string) (int, error) {
	return parseWith(raw, localLayouts)
}

// parseUTCClock accepts only the 24-hour forms used in schedule documents.
func parseUTCClock(raw string) (int, error) {
	return parseWith(raw, utcLayouts)
}

func parseWith(raw string, layouts []string) (int, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, appErrors.Clone(appErrors.ErrInvalidClockTime, fmt.Sprintf("invalid clock time '%s'", raw))
}

// IsClock reports whether raw parses as a local wall-clock time.
func IsClock(raw string) bool {
	_, err := ParseClock(raw)
	return err == nil
}

func formatClock(minutes int) string {
	minutes = wrapMinutes(minutes)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func formatClock12(minutes int) string {
	minutes = wrapMinutes(minutes)
	return time.Date(0, time.January, 1, minutes/60, minutes%60, 0, 0, time.UTC).Format("03:04 PM")
}

func wrapMinutes(minutes int) int {
	minutes %= minutesPerDay
	if minutes < 0 {
		minutes += minutesPerDay
	}
	return minutes
}

// CanonicalUTCClock rewrites a schedule time as zero-padded "HH:MM".
// Unparseable input is returned trimmed.
func CanonicalUTCClock(raw string) string {
	minutes, err := parseUTCClock(raw)
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return formatClock(minutes)
}
