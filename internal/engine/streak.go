package engine

import (
	"math"
	"time"
)

// Clock supplies the engine's notion of now. Injected so tests can pin dates
// without wall-clock flakiness.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the number of calendar days from a to b (negative when
// b is before a). Rounding absorbs DST-shortened or -lengthened days.
func DaysBetween(a, b time.Time) int {
	d0 := StartOfDay(a)
	d1 := StartOfDay(b)
	return int(math.Round(d1.Sub(d0).Hours() / 24))
}

type StreakResult struct {
	Current int
	Longest int
	// Maintained reports whether this call credited a new day. False when the
	// streak was already credited today.
	Maintained bool
}

// NextStreak applies the calendar-day streak rules:
// first-ever completion starts at 1, a completion on the day after the last
// activity increments, a same-day completion changes nothing, and any larger
// gap resets to 1.
func NextStreak(lastActivity *time.Time, today time.Time, current, longest int) StreakResult {
	res := StreakResult{Current: current, Longest: longest}

	switch {
	case lastActivity == nil:
		res.Current = 1
		res.Maintained = true
	default:
		switch days := DaysBetween(*lastActivity, today); {
		case days == 0:
			// Already credited today.
		case days == 1:
			res.Current = current + 1
			res.Maintained = true
		default:
			res.Current = 1
			res.Maintained = true
		}
	}

	if res.Current > res.Longest {
		res.Longest = res.Current
	}
	return res
}
