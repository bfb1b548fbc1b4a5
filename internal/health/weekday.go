package health

import (
	"fmt"
	"time"
)

const dateKeyLayout = "2006-01-02"

// DayName returns the English weekday name of t. A zero time has no day.
func DayName(t time.Time) (string, bool) {
	if t.IsZero() {
		return "", false
	}
	return t.Weekday().String(), true
}

// WeekBounds returns Monday 00:00:00 and Saturday 23:59:59 of the week
// containing t. Sunday belongs to the week that started six days earlier.
func WeekBounds(t time.Time) (start, end time.Time) {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	start = day.AddDate(0, 0, -offset)
	saturday := start.AddDate(0, 0, 5)
	end = time.Date(saturday.Year(), saturday.Month(), saturday.Day(), 23, 59, 59, 0, t.Location())
	return start, end
}

// WeekDays returns Monday through Saturday of the week containing t.
func WeekDays(t time.Time) []time.Time {
	start, _ := WeekBounds(t)
	days := make([]time.Time, 0, 6)
	for i := 0; i < 6; i++ {
		days = append(days, start.AddDate(0, 0, i))
	}
	return days
}

// PastSixDays returns the six calendar days ending at t, Sundays skipped,
// oldest first.
func PastSixDays(t time.Time) []time.Time {
	days := make([]time.Time, 6)
	cur := startOfDay(t)
	for i := 5; i >= 0; {
		if cur.Weekday() != time.Sunday {
			days[i] = cur
			i--
		}
		cur = cur.AddDate(0, 0, -1)
	}
	return days
}

func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

func ParseDateKey(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dateKeyLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// displayDate formats t the way the dashboards show dates (DD/MM/YYYY).
func displayDate(t time.Time) string {
	return t.Format("02/01/2006")
}
