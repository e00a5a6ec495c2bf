package availability

import (
	"fmt"
	"sort"
	"strings"

	"github.com/MarkCruse/k3y-open-sessions/internal/models"
	appErrors "github.com/MarkCruse/k3y-open-sessions/pkg/errors"
)

// TimeRange is a UTC window given as "HH:MM" strings. End before Start wraps
// into the next day.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// HourSet is a set of "HH:00" labels.
type HourSet map[string]struct{}

// Has reports whether hour is in the set.
func (s HourSet) Has(hour string) bool {
	_, ok := s[hour]
	return ok
}

// Sorted returns the labels in clock order.
func (s HourSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for h := range s {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// Complement returns every hour of the day not in s.
func (s HourSet) Complement() HourSet {
	open := make(HourSet, 24)
	for _, h := range FullDay() {
		if !s.Has(h) {
			open[h] = struct{}{}
		}
	}
	return open
}

// MatchesArea reports whether a record's area label names area exactly.
// Case and surrounding whitespace are ignored; substrings never match, so
// "K3Y/1" does not match "K3Y/10".
func MatchesArea(label, area string) bool {
	return strings.EqualFold(strings.TrimSpace(label), strings.TrimSpace(area))
}

// BookedHours groups the hours booked for area by date. Dates on which area
// has no bookings are absent from the result. Spellings of the same calendar
// day ("1/5/25", "01/05/25") share one set, keyed by the first spelling seen.
func BookedHours(bookings []models.BookingRecord, area string) (map[string]HourSet, error) {
	daily := make(map[string]HourSet)
	spelling := make(map[string]string)
	for _, b := range bookings {
		if !MatchesArea(b.Area, area) {
			continue
		}
		hours, err := GenerateHours(b.Start, b.End)
		if err != nil {
			return nil, appErrors.Wrapf(err, appErrors.ErrScheduleFormat,
				"booking %s %s-%s for %s", b.Date, b.Start, b.End, b.Area)
		}
		raw := strings.TrimSpace(b.Date)
		canonical := CanonicalDate(raw)
		date, ok := spelling[canonical]
		if !ok {
			date = raw
			spelling[canonical] = raw
			daily[date] = make(HourSet)
		}
		set := daily[date]
		for _, h := range hours {
			set[h] = struct{}{}
		}
	}
	return daily, nil
}

// FindGaps returns the open one-hour slots for area that fall inside the
// required UTC ranges, labelled in UTC and in the local zone abbr, ordered by
// date then UTC hour. Only dates that carry at least one booking for area are
// considered.
func FindGaps(bookings []models.BookingRecord, ranges []TimeRange, abbr, area string) ([]models.OpenSlot, error) {
	tz, err := LookupTimeZone(abbr)
	if err != nil {
		return nil, err
	}

	daily, err := BookedHours(bookings, area)
	if err != nil {
		return nil, err
	}

	required := make([][]string, 0, len(ranges))
	for _, r := range ranges {
		hours, err := GenerateHours(r.Start, r.End)
		if err != nil {
			return nil, err
		}
		required = append(required, hours)
	}

	type keyed struct {
		slot models.OpenSlot
		date dateKey
		hour string
	}
	var found []keyed
	for date, booked := range daily {
		open := booked.Complement()
		key := newDateKey(date)
		for _, hours := range required {
			for _, h := range hours {
				if !open.Has(h) {
					continue
				}
				slot, err := newOpenSlot(date, h, tz)
				if err != nil {
					return nil, err
				}
				found = append(found, keyed{slot: slot, date: key, hour: h})
			}
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if a.date.raw != b.date.raw {
			return a.date.before(b.date)
		}
		return a.hour < b.hour
	})

	gaps := make([]models.OpenSlot, len(found))
	for i, k := range found {
		gaps[i] = k.slot
	}
	return gaps, nil
}

func newOpenSlot(date, hour string, tz TimeZone) (models.OpenSlot, error) {
	start, err := parseUTCClock(hour)
	if err != nil {
		return models.OpenSlot{}, err
	}
	startUTC, endUTC := formatClock(start), formatClock(start+60)
	localStart, err := ToLocal(startUTC, tz.Abbr)
	if err != nil {
		return models.OpenSlot{}, err
	}
	localEnd, err := ToLocal(endUTC, tz.Abbr)
	if err != nil {
		return models.OpenSlot{}, err
	}
	return models.OpenSlot{
		Date:       date,
		UTCRange:   fmt.Sprintf("%s - %s UTC", startUTC, endUTC),
		LocalRange: fmt.Sprintf("%s - %s", localStart, localEnd),
		TimeZone:   tz.Abbr,
	}, nil
}
