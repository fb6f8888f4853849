package attendance

import "time"

// DayOf truncates a timestamp to its UTC calendar date. All per-day
// uniqueness is keyed on this value.
func DayOf(ts time.Time) time.Time {
	utc := ts.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

// ValidateCheckOut enforces that a check-out does not precede its check-in.
func ValidateCheckOut(checkIn, checkOut time.Time) error {
	if checkOut.Before(checkIn) {
		return ErrCheckOutBeforeCheckIn
	}
	return nil
}

// PresenceRatio returns the fraction of records with status present.
// An empty window yields 0.
func PresenceRatio(records []Record) float64 {
	if len(records) == 0 {
		return 0
	}
	present := 0
	for _, rec := range records {
		if rec.Status == StatusPresent {
			present++
		}
	}
	return float64(present) / float64(len(records))
}

// WorkedDuration returns the time between check-in and check-out, or zero
// when either is missing.
func WorkedDuration(rec Record) time.Duration {
	if rec.CheckInAt == nil || rec.CheckOutAt == nil {
		return 0
	}
	d := rec.CheckOutAt.Sub(*rec.CheckInAt)
	if d < 0 {
		return 0
	}
	return d
}
