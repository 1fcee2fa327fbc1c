package ledger

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// Month is a calendar month, the key every monthly aggregate is grouped by.
type Month struct {
	Year  int
	Month time.Month
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// First returns midnight UTC of the first day of the month.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the first day of the following month.
func (m Month) Next() time.Time {
	return m.First().AddDate(0, 1, 0)
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Day drops the clock and zone of t, keeping its calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsFirstOfMonth reports whether t falls on day 1 of its month.
func IsFirstOfMonth(t time.Time) bool {
	return t.Day() == 1
}

// DaysBetween counts calendar days from a to b; negative when b is earlier.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}
