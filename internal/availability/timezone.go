package availability

import (
	"fmt"
	"strings"

	appErrors "github.com/MarkCruse/k3y-open-sessions/pkg/errors"
)

// TimeZone is a fixed-offset zone. Offsets never change with daylight saving.
type TimeZone struct {
	Abbr   string `json:"abbr"`
	Name   string `json:"name"`
	Offset int    `json:"offset"`
}

var timeZones = []TimeZone{
	{Abbr: "EST", Name: "Eastern", Offset: -5},
	{Abbr: "CST", Name: "Central", Offset: -6},
	{Abbr: "MST", Name: "Mountain", Offset: -7},
	{Abbr: "PST", Name: "Pacific", Offset: -8},
	{Abbr: "AKST", Name: "Alaska", Offset: -9},
	{Abbr: "HAST", Name: "Hawaii-Aleutian", Offset: -10},
	{Abbr: "SST", Name: "Samoa", Offset: -11},
	{Abbr: "CHST", Name: "Chamorro", Offset: 10},
}

// TimeZones returns the supported zones in table order.
func TimeZones() []TimeZone {
	out := make([]TimeZone, len(timeZones))
	copy(out, timeZones)
	return out
}

// TimeZoneAbbrs returns the supported abbreviations in table order.
func TimeZoneAbbrs() []string {
	out := make([]string, len(timeZones))
	for i, tz := range timeZones {
		out[i] = tz.Abbr
	}
	return out
}

// LookupTimeZone resolves an abbreviation, ignoring case and surrounding space.
func LookupTimeZone(abbr string) (TimeZone, error) {
	key := strings.ToUpper(strings.TrimSpace(abbr))
	for _, tz := range timeZones {
		if tz.Abbr == key {
			return tz, nil
		}
	}
	return TimeZone{}, appErrors.Clone(appErrors.ErrInvalidTimeZone, fmt.Sprintf(
		"invalid time zone '%s'. Must be one of: %s", abbr, strings.Join(TimeZoneAbbrs(), ", ")))
}

// IsTimeZone reports whether abbr is in the table.
func IsTimeZone(abbr string) bool {
	_, err := LookupTimeZone(abbr)
	return err == nil
}
