package analysis

import (
	"time"

	"healthdash/internal/store"
)

// DayKeyLayout is the calendar date format used for day keys
const DayKeyLayout = "2006-01-02"

// Today truncates a reference time to its UTC calendar day
func Today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayKey formats a date as YYYY-MM-DD in UTC
func DayKey(t time.Time) string {
	return t.UTC().Format(DayKeyLayout)
}

// ParseDayKey parses a YYYY-MM-DD key into a UTC midnight time
func ParseDayKey(key string) (time.Time, error) {
	return time.ParseInLocation(DayKeyLayout, key, time.UTC)
}

// AddDays shifts a date by n calendar days
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// StartOfWeek returns the Sunday that starts t's week
func StartOfWeek(t time.Time) time.Time {
	day := Today(t)
	return AddDays(day, -int(day.Weekday()))
}

// DaysBetween returns the whole number of days from a to b
func DaysBetween(a, b time.Time) int {
	return int(Today(b).Sub(Today(a)).Hours() / 24)
}

// EnumerateDays lists every day from..to inclusive
func EnumerateDays(from, to time.Time) []time.Time {
	start, end := Today(from), Today(to)
	var days []time.Time
	for d := start; !d.After(end); d = AddDays(d, 1) {
		days = append(days, d)
	}
	return days
}

// Window is an inclusive range of calendar days
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// NewWindow returns the window of n days ending on end (inclusive)
func NewWindow(end time.Time, n int) Window {
	end = Today(end)
	return Window{From: AddDays(end, -(n - 1)), To: end}
}

// Contains reports whether t falls on a day inside the window
func (w Window) Contains(t time.Time) bool {
	d := Today(t)
	return !d.Before(w.From) && !d.After(w.To)
}

// Range converts the window to a store query range
func (w Window) Range() store.DateRange {
	return store.DateRange{From: w.From, To: w.To}
}

// Days returns the window length in days
func (w Window) Days() int {
	return DaysBetween(w.From, w.To) + 1
}

// WindowedDelta returns the window of the last n days ending today and the
// n-day block immediately before it.
func WindowedDelta(today time.Time, n int) (current, baseline Window) {
	current = NewWindow(today, n)
	baseline = NewWindow(AddDays(current.From, -1), n)
	return current, baseline
}
