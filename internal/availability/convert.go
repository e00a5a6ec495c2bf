package availability

// ToUTC converts a local wall-clock time in the named zone to a UTC "HH:MM"
// string. The result wraps around midnight; the calendar date is not tracked.
func ToUTC(local, abbr string) (string, error) {
	tz, err := LookupTimeZone(abbr)
	if err != nil {
		return "", err
	}
	minutes, err := ParseClock(local)
	if err != nil {
		return "", err
	}
	return formatClock(minutes - tz.Offset*60), nil
}

// ToLocal converts a UTC "HH:MM" string to "hh:mm AM/PM" in the named zone.
// An unparseable time yields an empty string and a nil error; only an
// unknown zone is an error.
func ToLocal(utc, abbr string) (string, error) {
	tz, err := LookupTimeZone(abbr)
	if err != nil {
		return "", err
	}
	minutes, err := parseUTCClock(utc)
	if err != nil {
		return "", nil
	}
	return formatClock12(minutes + tz.Offset*60), nil
}
