package entity

import "time"

const DateLayout = "2006-01-02"

// DateOf truncates t to midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// NightsBetween counts whole days from checkIn to checkOut; it is negative
// when checkOut precedes checkIn.
func NightsBetween(checkIn, checkOut time.Time) int {
	in := DateOf(checkIn)
	out := DateOf(checkOut)
	return int(out.Sub(in).Hours() / 24)
}
