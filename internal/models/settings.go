package models

// Settings is the operator's persisted preference document. The JSON keys
// match the settings.json files written by earlier releases.
type Settings struct {
	TimeZone      string `json:"TIME_ZONE_ABBR" validate:"required,tz_abbr"`
	Area          string `json:"K3Y_AREA" validate:"required,k3y_area"`
	LocalDayStart string `json:"LOCAL_DAY_START" validate:"required,clock_time"`
	LocalDayEnd   string `json:"LOCAL_DAY_END" validate:"required,clock_time"`
}

// DefaultSettings is used when no settings document exists.
func DefaultSettings() Settings {
	return Settings{
		TimeZone:      "EST",
		Area:          "K3Y/4",
		LocalDayStart: "07:00 AM",
		LocalDayEnd:   "10:00 PM",
	}
}

// Merge returns s with every non-empty field of overrides applied.
func (s Settings) Merge(overrides Settings) Settings {
	if overrides.TimeZone != "" {
		s.TimeZone = overrides.TimeZone
	}
	if overrides.Area != "" {
		s.Area = overrides.Area
	}
	if overrides.LocalDayStart != "" {
		s.LocalDayStart = overrides.LocalDayStart
	}
	if overrides.LocalDayEnd != "" {
		s.LocalDayEnd = overrides.LocalDayEnd
	}
	return s
}
