package availability

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNoDays indicates the window selects no weekday.
	ErrNoDays = errors.New("availability: at least one day is required")
	// ErrInvalidClock indicates a start or end value is not a HH:MM clock time.
	ErrInvalidClock = errors.New("availability: invalid clock time")
	// ErrInvalidDuration indicates the window does not end after it starts.
	ErrInvalidDuration = errors.New("availability: end must be after start")
	// ErrUnknownDay indicates a day name outside Monday through Sunday.
	ErrUnknownDay = errors.New("availability: unknown day")
)

// Window is a weekly availability: the same clock interval on each selected day.
type Window struct {
	Days  []time.Weekday
	Start string
	End   string
}

// Slot is one concrete occurrence of a Window.
type Slot struct {
	Day   time.Weekday `json:"day" yaml:"day"`
	Start time.Time    `json:"start" yaml:"start"`
	End   time.Time    `json:"end" yaml:"end"`
}

// Engine expands weekly windows into concrete slots.
type Engine struct {
	location *time.Location
}

// NewEngine constructs an Engine that produces slots in loc. If loc is nil,
// the local time zone is used.
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{location: loc}
}

// Upcoming returns the next n slots of w that start at or after from, in
// chronological order.
func (e *Engine) Upcoming(w Window, from time.Time, n int) ([]Slot, error) {
	if n <= 0 {
		return nil, nil
	}
	loc := time.Local
	if e != nil && e.location != nil {
		loc = e.location
	}

	if len(w.Days) == 0 {
		return nil, ErrNoDays
	}
	startH, startM, err := ParseClock(w.Start)
	if err != nil {
		return nil, err
	}
	endH, endM, err := ParseClock(w.End)
	if err != nil {
		return nil, err
	}
	startOffset := time.Duration(startH)*time.Hour + time.Duration(startM)*time.Minute
	endOffset := time.Duration(endH)*time.Hour + time.Duration(endM)*time.Minute
	if endOffset <= startOffset {
		return nil, ErrInvalidDuration
	}

	selected := make(map[time.Weekday]struct{}, len(w.Days))
	for _, day := range w.Days {
		selected[day] = struct{}{}
	}

	from = from.In(loc)
	y, m, d := from.Date()
	slots := make([]Slot, 0, n)

	// Every selected weekday recurs within seven days, so n+1 weeks always
	// yields n slots even when today's slot has already started.
	for offset := 0; len(slots) < n && offset <= 7*(n+1); offset++ {
		day := time.Date(y, m, d+offset, 0, 0, 0, 0, loc)
		if _, ok := selected[day.Weekday()]; !ok {
			continue
		}
		start := time.Date(day.Year(), day.Month(), day.Day(), startH, startM, 0, 0, loc)
		if start.Before(from) {
			continue
		}
		end := time.Date(day.Year(), day.Month(), day.Day(), endH, endM, 0, 0, loc)
		slots = append(slots, Slot{Day: day.Weekday(), Start: start, End: end})
	}

	return slots, nil
}

// ParseClock accepts HH:MM and HH:MM:SS. Seconds are ignored.
func ParseClock(value string) (hour, minute int, err error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	if len(parts) == 3 {
		if sec, serr := strconv.Atoi(parts[2]); serr != nil || sec < 0 || sec > 59 {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
		}
	}
	return hour, minute, nil
}

// ParseWeekday maps a day name such as "Monday" or "mon" to a time.Weekday.
func ParseWeekday(name string) (time.Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for day := time.Sunday; day <= time.Saturday; day++ {
		full := strings.ToLower(day.String())
		if key == full || (len(key) == 3 && strings.HasPrefix(full, key)) {
			return day, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDay, name)
}

// WindowFromNames builds a Window from day names as stored by the backend.
func WindowFromNames(days []string, start, end string) (Window, error) {
	w := Window{Start: start, End: end}
	seen := make(map[time.Weekday]struct{}, len(days))
	for _, name := range days {
		if strings.TrimSpace(name) == "" {
			continue
		}
		day, err := ParseWeekday(name)
		if err != nil {
			return Window{}, err
		}
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		w.Days = append(w.Days, day)
	}
	return w, nil
}
