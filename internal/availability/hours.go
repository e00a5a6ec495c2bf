package availability

import "fmt"

// GenerateHours lists the "HH:00" labels of each hour step from start while
// the step is before end. When end is earlier than start the span runs into
// the next day, so ("22:00", "02:00") yields 22:00, 23:00, 00:00, 01:00.
// Equal inputs yield no hours.
func GenerateHours(start, end string) ([]string, error) {
	from, err := parseUTCClock(start)
	if err != nil {
		return nil, err
	}
	to, err := parseUTCClock(end)
	if err != nil {
		return nil, err
	}
	if to < from {
		to += minutesPerDay
	}

	hours := make([]string, 0, (to-from)/60+1)
	for cur := from; cur < to; cur += 60 {
		hours = append(hours, hourLabel(cur/60))
	}
	return hours, nil
}

// FullDay returns the 24 hour labels 00:00 through 23:00.
func FullDay() []string {
	hours := make([]string, 24)
	for h := range hours {
		hours[h] = hourLabel(h)
	}
	return hours
}

func hourLabel(hour int) string {
	return fmt.Sprintf("%02d:00", ((hour%24)+24)%24)
}
