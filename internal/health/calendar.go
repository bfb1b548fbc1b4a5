package health

import (
	"math"
	"time"
)

type Phase string

const (
	PhaseWeekDisplayed Phase = "week_displayed"
	PhaseDaySelected   Phase = "day_selected"
	PhaseLoading       Phase = "loading"
	PhaseDataLoaded    Phase = "data_loaded"
	PhaseNoData        Phase = "no_data"
)

type CalendarMode string

const (
	ModeWeek    CalendarMode = "week"
	ModeRolling CalendarMode = "rolling"
)

// DayCell is one rendered calendar day.
type DayCell struct {
	Date     time.Time `json:"-"`
	Key      string    `json:"date"`
	Name     string    `json:"name"`
	Number   int       `json:"number"`
	Enabled  bool      `json:"enabled"`
	Selected bool      `json:"selected"`
	Today    bool      `json:"today"`
}

// Calendar tracks the displayed range and the selected day of one dashboard.
// It is not safe for concurrent use; Dashboard guards it.
type Calendar struct {
	mode      CalendarMode
	enabled   map[time.Weekday]bool
	reference time.Time
	days      []time.Time
	selected  time.Time
	phase     Phase
}

// NewCalendar shows the range containing now. enabledDays are weekday names
// that have a data endpoint.
func NewCalendar(mode CalendarMode, enabledDays []string, now time.Time) *Calendar {
	c := &Calendar{
		mode:    mode,
		enabled: make(map[time.Weekday]bool, len(enabledDays)),
	}
	for _, name := range enabledDays {
		for d := time.Sunday; d <= time.Saturday; d++ {
			if d.String() == name {
				c.enabled[d] = true
			}
		}
	}
	c.show(now)
	return c
}

func (c *Calendar) show(ref time.Time) {
	c.reference = startOfDay(ref)
	if c.mode == ModeRolling {
		c.days = PastSixDays(ref)
	} else {
		c.days = WeekDays(ref)
	}
	c.selected = time.Time{}
	c.phase = PhaseWeekDisplayed
}

// IsEnabled reports whether t's weekday has an endpoint.
func (c *Calendar) IsEnabled(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return c.enabled[t.Weekday()]
}

func (c *Calendar) inRange(t time.Time) bool {
	for _, d := range c.days {
		if sameDay(d, t) {
			return true
		}
	}
	return false
}

// Select moves to DaySelected when t is displayed and enabled. It reports
// whether the state changed.
func (c *Calendar) Select(t time.Time) bool {
	if !c.IsEnabled(t) || !c.inRange(t) {
		return false
	}
	c.selected = startOfDay(t)
	c.phase = PhaseDaySelected
	return true
}

// Shift moves the displayed range by weeks and selects the enabled day
// closest to the shifted reference.
func (c *Calendar) Shift(weeks int) (time.Time, bool) {
	ref := c.reference.AddDate(0, 0, 7*weeks)
	c.show(ref)
	return c.selectClosest(ref)
}

// Today shows the range containing now and selects today, or the closest
// enabled day when today has no endpoint.
func (c *Calendar) Today(now time.Time) (time.Time, bool) {
	c.show(now)
	return c.selectClosest(now)
}

// selectClosest prefers ref, then earlier days before later ones at equal
// distance.
func (c *Calendar) selectClosest(ref time.Time) (time.Time, bool) {
	ref = startOfDay(ref)
	best := -1
	bestDist := 0
	for i, d := range c.days {
		if !c.IsEnabled(d) {
			continue
		}
		dist := int(math.Round(d.Sub(ref).Hours() / 24))
		abs := dist
		if abs < 0 {
			abs = -abs
		}
		if best == -1 || abs < bestDist || (abs == bestDist && dist < 0) {
			best = i
			bestDist = abs
		}
	}
	if best == -1 {
		return time.Time{}, false
	}
	c.selected = c.days[best]
	c.phase = PhaseDaySelected
	return c.selected, true
}

func (c *Calendar) Selected() (time.Time, bool) {
	return c.selected, !c.selected.IsZero()
}

func (c *Calendar) Phase() Phase {
	return c.phase
}

func (c *Calendar) setPhase(p Phase) {
	c.phase = p
}

func (c *Calendar) Mode() CalendarMode {
	return c.mode
}

// Range returns the first and last displayed day.
func (c *Calendar) Range() (time.Time, time.Time) {
	return c.days[0], c.days[len(c.days)-1]
}

// ContainsToday reports whether now falls inside the displayed range.
func (c *Calendar) ContainsToday(now time.Time) bool {
	return c.inRange(now)
}

func (c *Calendar) Days(now time.Time) []DayCell {
	cells := make([]DayCell, 0, len(c.days))
	for _, d := range c.days {
		cells = append(cells, DayCell{
			Date:     d,
			Key:      DateKey(d),
			Name:     d.Weekday().String(),
			Number:   d.Day(),
			Enabled:  c.IsEnabled(d),
			Selected: !c.selected.IsZero() && sameDay(d, c.selected),
			Today:    sameDay(d, now),
		})
	}
	return cells
}

// Title labels the displayed range.
func (c *Calendar) Title() string {
	first, last := c.Range()
	prefix := "Week"
	if c.mode == ModeRolling {
		prefix = "Past 6 Days"
	}
	return prefix + ": " + displayDate(first) + " - " + displayDate(last)
}
