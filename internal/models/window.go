package models

import (
	"fmt"
	"strings"
	"time"
)

// DisplayMode selects which time window the status line reflects.
type DisplayMode int

const (
	// ModeMonth covers the first of the current month up to tomorrow's midnight.
	ModeMonth DisplayMode = iota
	// ModeToday covers today's midnight up to tomorrow's midnight.
	ModeToday
)

// String returns the display name of the mode.
func (m DisplayMode) String() string {
	switch m {
	case ModeToday:
		return "Today"
	case ModeMonth:
		return "Month"
	default:
		return "Unknown"
	}
}

// ParseDisplayMode parses "today" or "month", case-insensitively.
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today", "day":
		return ModeToday, nil
	case "month", "":
		return ModeMonth, nil
	default:
		return ModeMonth, fmt.Errorf("unknown display mode %q (want today or month)", s)
	}
}

// TimeWindow is a half-open [Start, End) interval in Unix seconds.
type TimeWindow struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// WindowFor computes the window for mode relative to now, in now's location.
func WindowFor(mode DisplayMode, now time.Time) TimeWindow {
	y, mo, d := now.Date()
	loc := now.Location()

	end := time.Date(y, mo, d+1, 0, 0, 0, 0, loc)

	var start time.Time
	switch mode {
	case ModeToday:
		start = time.Date(y, mo, d, 0, 0, 0, 0, loc)
	default:
		start = time.Date(y, mo, 1, 0, 0, 0, 0, loc)
	}

	return TimeWindow{Start: start.Unix(), End: end.Unix()}
}

// StartTime returns Start as a time.Time in the local zone.
func (w TimeWindow) StartTime() time.Time {
	return time.Unix(w.Start, 0)
}

// EndTime returns End as a time.Time in the local zone.
func (w TimeWindow) EndTime() time.Time {
	return time.Unix(w.End, 0)
}

// Key identifies the window for request deduplication.
func (w TimeWindow) Key() string {
	return fmt.Sprintf("%d-%d", w.Start, w.End)
}

// String renders the window as a short date range.
func (w TimeWindow) String() string {
	return fmt.Sprintf("%s → %s",
		w.StartTime().Format("Jan 2"),
		w.EndTime().Format("Jan 2"))
}
