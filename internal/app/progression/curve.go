// Package progression implements the Grit progression engine: the XP/level
// curve, multi-stream streaks, the power-up boost system, energy
// regeneration, and the idempotent daily reset. Every transition is a pure
// function over a State snapshot — storage, timers, and HTTP live elsewhere.
package progression

import "math"

// floorXP floors a float XP product. A small epsilon absorbs binary
// representation error so decimal-exact products (100 * 1.15 * 2.0)
// do not land one unit short.
func floorXP(x float64) int64 {
	return int64(math.Floor(x + 1e-9))
}

// roundXP rounds a float XP amount to the nearest unit, with the same
// epsilon as floorXP.
func roundXP(x float64) int64 {
	return int64(math.Round(x + 1e-9))
}

// XPRequiredForLevel returns the XP delta needed to go from `level` to
// `level+1` (not cumulative): floor(1000 * 1.1^(level-1)).
func XPRequiredForLevel(level int) int64 {
	if level < 1 {
		level = 1
	}
	return floorXP(1000 * math.Pow(1.1, float64(level-1)))
}

// LevelFromTotalXP returns the level reached with the given cumulative XP.
// Starting at level 1 with 0 XP, each level's delta requirement is
// subtracted while it fits. Monotonic non-decreasing in totalXP; the loop
// terminates because the requirement grows geometrically while the
// remainder shrinks.
func LevelFromTotalXP(totalXP int64) int {
	level := 1
	remaining := totalXP
	for {
		need := XPRequiredForLevel(level)
		if remaining < need {
			return level
		}
		remaining -= need
		level++
	}
}

// XPIntoLevel returns how much XP has been earned inside the current level,
// for progress display.
func XPIntoLevel(totalXP int64) int64 {
	level := 1
	remaining := totalXP
	for {
		need := XPRequiredForLevel(level)
		if remaining < need {
			return remaining
		}
		remaining -= need
		level++
	}
}

// XPToNextLevel returns the XP remaining until the next level threshold.
func XPToNextLevel(totalXP int64) int64 {
	level := LevelFromTotalXP(totalXP)
	return XPRequiredForLevel(level) - XPIntoLevel(totalXP)
}
