package model

import "time"

// Layouts shared by forms, views and the live payload.
const (
	DateFormat      = "2006-01-02"
	ClockFormat     = "15:04"
	EventTimeFormat = "2006-01-02 15:04"
)

// CombineDateAndClock returns the calendar day of date at the clock time of clock.
func CombineDateAndClock(date, clock time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(),
		clock.Hour(), clock.Minute(), clock.Second(), 0, date.Location())
}
