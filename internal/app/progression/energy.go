package progression

import (
	"time"

	"github.com/gritforge/grit/internal/domain"
)

// RegenConfig tunes passive energy regeneration. All values in seconds.
type RegenConfig struct {
	BaseIntervalSec int64
	MinIntervalSec  int64
	MaxIntervalSec  int64
}

// DefaultRegenConfig returns the production regeneration curve: one unit
// every 3 minutes at baseline, never faster than 45s or slower than 10m.
func DefaultRegenConfig() RegenConfig {
	return RegenConfig{
		BaseIntervalSec: 180,
		MinIntervalSec:  45,
		MaxIntervalSec:  600,
	}
}

// energyStreakMultiplier is a monotonic step function of the global streak:
// longer streaks shorten the regeneration interval.
func energyStreakMultiplier(streak int) float64 {
	switch {
	case streak >= 30:
		return 2.0
	case streak >= 14:
		return 1.5
	case streak >= 7:
		return 1.25
	case streak >= 3:
		return 1.1
	default:
		return 1.0
	}
}

// energyMoodMultiplier nudges the interval by the current mood label.
func energyMoodMultiplier(mood domain.Mood) float64 {
	switch mood {
	case domain.MoodEnergized:
		return 1.2
	case domain.MoodFocused:
		return 1.0
	case domain.MoodTired:
		return 0.9
	default: // exhausted
		return 0.8
	}
}

// EffectiveIntervalSeconds returns the seconds per regenerated unit for the
// given global streak and mood, clamped to the config bounds.
func EffectiveIntervalSeconds(cfg RegenConfig, streak int, mood domain.Mood) int64 {
	divisor := energyStreakMultiplier(streak) * energyMoodMultiplier(mood)
	interval := int64(float64(cfg.BaseIntervalSec) / divisor)
	if interval < cfg.MinIntervalSec {
		interval = cfg.MinIntervalSec
	}
	if interval > cfg.MaxIntervalSec {
		interval = cfg.MaxIntervalSec
	}
	return interval
}

// Regenerate applies catch-up energy restoration for the wall-clock gap
// since LastUpdated. The result is identical whether called once after a
// long absence or every tick while the process stays up: LastUpdated
// advances by whole intervals actually credited, so fractional intervals
// carry over instead of being dropped. At full energy LastUpdated snaps to
// now — time cannot be banked while capped. A LastUpdated in the future
// reads as zero elapsed.
func Regenerate(e domain.EnergyState, cfg RegenConfig, streak int, now time.Time) (domain.EnergyState, int) {
	if e.LastUpdated.IsZero() {
		e.LastUpdated = now
		return e, 0
	}
	if e.Current >= e.Max {
		e.Current = e.Max
		e.LastUpdated = now
		return e, 0
	}

	// Credit unit by unit, recomputing the interval as the mood label moves
	// with rising energy. This makes one catch-up call after an N-second gap
	// bit-identical to N seconds of incremental ticks.
	restored := 0
	budget := domain.ElapsedSeconds(e.LastUpdated, now)
	for e.Current < e.Max {
		interval := EffectiveIntervalSeconds(cfg, streak, e.Mood())
		if budget < interval {
			break
		}
		budget -= interval
		e.Current++
		restored++
		e.LastUpdated = e.LastUpdated.Add(time.Duration(interval) * time.Second)
	}
	if e.Current >= e.Max {
		e.Current = e.Max
		e.LastUpdated = now
	}
	return e, restored
}

// clampEnergy bounds a proposed energy value to [0, max].
func clampEnergy(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
