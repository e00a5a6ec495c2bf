package models

// BookingRecord is one already-scheduled operating block, in UTC, as published
// by the schedule source.
type BookingRecord struct {
	Date  string `json:"session_date"`
	Start string `json:"utc_start"`
	End   string `json:"utc_end"`
	Area  string `json:"k3y_area"`
}

// Schedule is a fetched snapshot of every booking record.
type Schedule struct {
	Records []BookingRecord `json:"records"`
	// UpdatedAt is the upstream freshness marker, passed through unmodified.
	UpdatedAt *string `json:"updated_at,omitempty"`
	Source    string  `json:"source"`
}
