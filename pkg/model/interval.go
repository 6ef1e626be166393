package model

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const LocalLayout = "2006-01-02 15:04"

var (
	ErrInvalidInterval  = errors.New("start must be before end")
	ErrInvalidClockTime = errors.New("clock time must be in HH:MM format (00:00-23:59)")

	clockTimeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)
)

// Interval is the half-open range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, ErrInvalidInterval
	}
	return Interval{Start: start, End: end}, nil
}

// MustInterval panics on a malformed range. Use only where the bounds are
// already known to be ordered.
func MustInterval(start, end time.Time) Interval {
	iv, err := NewInterval(start, end)
	if err != nil {
		panic(fmt.Sprintf("model: malformed interval [%s, %s)", start.Format(time.RFC3339), end.Format(time.RFC3339)))
	}
	return iv
}

func (iv Interval) Valid() bool {
	return iv.Start.Before(iv.End)
}

func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s)", iv.Start.Format(LocalLayout), iv.End.Format(LocalLayout))
}

// ClockTime is a time of day, stored as the offset from midnight.
type ClockTime time.Duration

func ParseClockTime(s string) (ClockTime, error) {
	m := clockTimeRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w, got: %q", ErrInvalidClockTime, s)
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	return ClockTime(time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute), nil
}

func MustClockTime(s string) ClockTime {
	ct, err := ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return ct
}

func ClockTimeOf(t time.Time) ClockTime {
	h, m, s := t.Clock()
	return ClockTime(time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(t.Nanosecond()))
}

func (c ClockTime) String() string {
	d := time.Duration(c)
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// BusinessHours is a daily window; a booking must start and end inside it on
// the same calendar day.
type BusinessHours struct {
	Start ClockTime
	End   ClockTime
}

func NewBusinessHours(start, end string) (BusinessHours, error) {
	s, err := ParseClockTime(start)
	if err != nil {
		return BusinessHours{}, fmt.Errorf("work start: %w", err)
	}
	e, err := ParseClockTime(end)
	if err != nil {
		return BusinessHours{}, fmt.Errorf("work end: %w", err)
	}
	if e <= s {
		return BusinessHours{}, fmt.Errorf("work end (%s) must be after work start (%s)", e, s)
	}
	return BusinessHours{Start: s, End: e}, nil
}

func DefaultBusinessHours() BusinessHours {
	return BusinessHours{Start: MustClockTime("08:00"), End: MustClockTime("18:00")}
}

// Both ends are read on the local clock whatever offset they carry.
func (bh BusinessHours) Contains(iv Interval) bool {
	start, end := iv.Start.Local(), iv.End.Local()
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy != ey || sm != em || sd != ed {
		return false
	}
	return ClockTimeOf(start) >= bh.Start && ClockTimeOf(end) <= bh.End
}

func (bh BusinessHours) String() string {
	return bh.Start.String() + " - " + bh.End.String()
}

// ParseLocalTime accepts "YYYY-MM-DD HH:MM" on the local clock, or RFC3339.
func ParseLocalTime(s string) (time.Time, error) {
	if t, err := time.ParseInLocation(LocalLayout, s, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q must be %q or RFC3339", s, LocalLayout)
	}
	return t.Local(), nil
}
