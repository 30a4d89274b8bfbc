package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// EndOfDay is 24:00, accepted only as the end of a range.
const EndOfDay ClockTime = 24 * 60

// ClockTime is a naive wall-clock time expressed as minutes since midnight.
// It carries no date and no time zone.
type ClockTime int

// ParseClock parses an "HH:MM" string. "24:00" is accepted so that an
// activity can run until midnight.
func ParseClock(s string) (ClockTime, error) {
	if len(s) != 5 || s[2] != ':' || !isDigits(s[:2]) || !isDigits(s[3:]) {
		return 0, fmt.Errorf("%w: time %q must be HH:MM", ErrValidation, s)
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	c := ClockTime(h*60 + m)
	if m > 59 || c > EndOfDay {
		return 0, fmt.Errorf("%w: time %q is out of range", ErrValidation, s)
	}
	return c, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// String formats the time as "HH:MM".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// Duration converts c to the offset from midnight.
func (c ClockTime) Duration() time.Duration {
	return time.Duration(c) * time.Minute
}

// ClockFromDuration converts an offset from midnight back into a ClockTime.
// Sub-minute precision is truncated.
func ClockFromDuration(d time.Duration) ClockTime {
	return ClockTime(d / time.Minute)
}

// TimeRange is a half-open interval [Start, End) within a single day.
type TimeRange struct {
	Start ClockTime
	End   ClockTime
}

// Valid reports whether the range starts strictly before it ends.
func (r TimeRange) Valid() bool {
	return r.Start < r.End
}

// Overlaps reports whether r and o intersect. Ranges that only touch
// (one ends at 10:00, the other starts at 10:00) do not overlap.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start < o.End && o.Start < r.End
}

func (r TimeRange) String() string {
	return r.Start.String() + " - " + r.End.String()
}

// ParseDate parses a "2006-01-02" calendar date into a UTC-midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrValidation, s)
	}
	return t, nil
}

// SameDate reports whether a and b fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
