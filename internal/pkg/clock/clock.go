package clock

import (
	"fmt"
	"time"
)

// Clock is a time of day expressed as minutes since midnight. Weekly
// templates carry clocks instead of timestamps; a clock only becomes a
// concrete time once combined with a calendar date and location.
type Clock int

// Parse parses a zero-padded "HH:MM" string into a Clock. Clocks are
// stored and compared as text, so the padding is load-bearing: "9:15"
// would sort after "10:00".
func Parse(s string) (Clock, error) {
	if len(s) != 5 {
		return 0, fmt.Errorf("invalid clock %q: want HH:MM", s)
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	return Clock(t.Hour()*60 + t.Minute()), nil
}

// MustParse is Parse for trusted literals; it panics on bad input.
func MustParse(s string) Clock {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// FromTime extracts the wall clock of t in its own location.
func FromTime(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// At anchors the clock on a calendar date in the given location.
func (c Clock) At(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), int(c)/60, int(c)%60, 0, 0, loc)
}

// Overlaps reports whether the half-open range [c, end) overlaps
// [otherStart, otherEnd).
func Overlaps(start, end, otherStart, otherEnd Clock) bool {
	return start < otherEnd && end > otherStart
}
