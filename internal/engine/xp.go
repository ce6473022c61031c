package engine

import "math"

const (
	// Base awards by category.
	QuickWinBaseXP = 10
	DeepWorkBaseXP = 25

	// High-priority tasks (priority <= PriorityBoostMax) earn a multiplier,
	// rounded down to the nearest integer.
	PriorityMultiplier = 1.5
	PriorityBoostMax   = 2

	// LevelCoef is the constant in the curve: threshold(L) = floor(100 * L^1.5).
	LevelCoef = 100.0
)

// AwardXP computes the XP value for a task. Deterministic and pure; the result
// is frozen on the task at creation time and never recomputed afterwards, so a
// later policy change cannot drift past awards.
func AwardXP(category Category, priority *int) (int, error) {
	var base int
	switch category {
	case CategoryQuickWin:
		base = QuickWinBaseXP
	case CategoryDeepWork:
		base = DeepWorkBaseXP
	default:
		return 0, InvalidCategoryError{Category: string(category)}
	}

	if priority != nil && *priority <= PriorityBoostMax {
		return int(math.Floor(float64(base) * PriorityMultiplier)), nil
	}
	return base, nil
}

// XPThreshold returns the cumulative XP required to reach level L+1 from
// level 1. Level 1 starts at 0 XP, so XPThreshold(0) == 0.
func XPThreshold(level int) int {
	if level <= 0 {
		return 0
	}
	return int(math.Floor(LevelCoef * math.Pow(float64(level), 1.5)))
}

// LevelForXP returns the greatest level L such that XPThreshold(L-1) <= totalXP.
func LevelForXP(totalXP int) int {
	if totalXP <= 0 {
		return 1
	}

	// Exponential search for an upper bound, then binary search.
	low := 1
	high := 2
	for XPThreshold(high-1) <= totalXP {
		low = high
		high *= 2
		if high > 1_000_000 {
			break
		}
	}

	for low+1 < high {
		mid := low + (high-low)/2
		if XPThreshold(mid-1) <= totalXP {
			low = mid
		} else {
			high = mid
		}
	}
	return low
}

// XPInLevel returns progress within the current level.
func XPInLevel(totalXP, level int) int {
	v := totalXP - XPThreshold(level-1)
	if v < 0 {
		return 0
	}
	return v
}

// XPToNextLevel returns the XP still needed to reach the next level. With a
// ratcheted cached level this can be computed for any level at or above the
// curve's answer, hence the clamp at zero.
func XPToNextLevel(totalXP, level int) int {
	v := XPThreshold(level) - totalXP
	if v < 0 {
		return 0
	}
	return v
}
