package models

import "fmt"

// Column labels of the stable output record.
const (
	ColumnDate    = "Date"
	ColumnUTCSlot = "Open Slot (UTC)"
)

// OpenSlot is a single unbooked hour inside the requested window.
type OpenSlot struct {
	Date       string `json:"date"`
	UTCRange   string `json:"utcRange"`
	LocalRange string `json:"localRange"`
	TimeZone   string `json:"timeZone"`
}

// LocalColumn returns the zone-specific column label, e.g. "Open Slot (EST)".
func LocalColumn(tz string) string {
	return fmt.Sprintf("Open Slot (%s)", tz)
}

// OpenSlotColumns returns the output column order for the given zone.
func OpenSlotColumns(tz string) []string {
	return []string{ColumnDate, ColumnUTCSlot, LocalColumn(tz)}
}

// Record renders the slot in the output shape shared by every consumer.
func (s OpenSlot) Record() map[string]string {
	return map[string]string{
		ColumnDate:              s.Date,
		ColumnUTCSlot:           s.UTCRange,
		LocalColumn(s.TimeZone): s.LocalRange,
	}
}

// Row returns the slot values in OpenSlotColumns order.
func (s OpenSlot) Row() []string {
	return []string{s.Date, s.UTCRange, s.LocalRange}
}
