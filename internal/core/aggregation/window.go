package aggregation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// WindowSpec represents a parsed and validated window size.
type WindowSpec struct {
	Size  time.Duration
	Label string // the string it was parsed from
}

var windowPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)?\s*([A-Za-z]+)$`)

// windowUnits maps lower-cased unit spellings to durations. Covers Go
// duration units, offset aliases ("15Min", "15T") and spelled-out units.
var windowUnits = map[string]time.Duration{
	"ns": time.Nanosecond, "us": time.Microsecond, "ms": time.Millisecond, "l": time.Millisecond,
	"s": time.Second, "sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "t": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
}

// ParseWindowSize parses a bucket or rolling width such as "15min", "15Min",
// "15T", "15m", "15 minutes", "1H" or "900s". Compound Go durations
// ("1h30m") are accepted as well.
func ParseWindowSize(s string) (WindowSpec, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return WindowSpec{}, fmt.Errorf("%w: window must not be empty", ErrInvalidWindow)
	}

	var size time.Duration
	if m := windowPattern.FindStringSubmatch(trimmed); m != nil {
		unit, ok := windowUnits[strings.ToLower(m[2])]
		if !ok {
			return WindowSpec{}, fmt.Errorf("%w: unknown unit in %q", ErrInvalidWindow, s)
		}
		n := 1.0
		if m[1] != "" {
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil {
				return WindowSpec{}, fmt.Errorf("%w: %q: %v", ErrInvalidWindow, s, err)
			}
			n = v
		}
		// float64(math.MaxInt64) rounds up to 2^63
		if n*float64(unit) >= math.MaxInt64 {
			return WindowSpec{}, fmt.Errorf("%w: %q out of range", ErrInvalidWindow, s)
		}
		size = time.Duration(n * float64(unit))
	} else {
		d, err := time.ParseDuration(trimmed)
		if err != nil {
			return WindowSpec{}, fmt.Errorf("%w: %q: %v", ErrInvalidWindow, s, err)
		}
		size = d
	}

	if size <= 0 {
		return WindowSpec{}, fmt.Errorf("%w: window must be positive, got %q", ErrInvalidWindow, s)
	}
	return WindowSpec{Size: size, Label: trimmed}, nil
}

// Seconds returns the window width in whole seconds.
func (w WindowSpec) Seconds() int {
	return int(w.Size / time.Second)
}

// DayStart returns midnight of t's day in t's location.
func DayStart(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// BucketIndex returns which bucket of width size, counted from origin, t
// falls into. Buckets are left-closed.
func BucketIndex(t, origin time.Time, size time.Duration) int64 {
	d := t.Sub(origin)
	idx := int64(d / size)
	if d < 0 && d%size != 0 {
		idx--
	}
	return idx
}

// BucketFor returns the start of the calendar-aligned bucket containing t.
// Buckets are anchored at midnight of t's day, so 15-minute buckets start at
// :00, :15, :30 and :45.
// Example: BucketFor(10:35:42, 15*time.Minute) → 10:30:00
func BucketFor(t time.Time, size time.Duration) time.Time {
	origin := DayStart(t)
	return origin.Add(time.Duration(BucketIndex(t, origin, size)) * size)
}
