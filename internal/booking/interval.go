package booking

import "time"

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect.  Adjacent intervals sharing an endpoint do not overlap,
// which is what allows back-to-back rentals of the same car.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && s2.Before(e1)
}

// validateInterval rejects zero or inverted intervals before any
// conflict scan runs.
func validateInterval(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return NewValidation("start and end datetimes are required")
	}
	if !start.Before(end) {
		return NewValidation("start datetime must be before end datetime")
	}
	return nil
}

// RentalDays returns the number of billable days for [start, end): the
// interval length in 24h units, rounded up so any started day counts.
func RentalDays(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}
