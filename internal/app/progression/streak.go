package progression

import (
	"github.com/gritforge/grit/internal/domain"
)

// StreakResult is the outcome of feeding one day of activity into a streak.
type StreakResult struct {
	Value     int
	Broken    bool
	Continued bool
}

// NextStreak computes the next streak value from the last-activity date and
// today, both date-only strings. A one-day gap is the grace window; anything
// wider breaks the streak and starts a new one at 1. A negative gap (clock
// adjusted backward) is clamped to 0 and treated as same-day re-entry.
func NextStreak(current int, lastActivityDate, today string) StreakResult {
	if lastActivityDate == "" {
		return StreakResult{Value: 1}
	}

	gap, err := domain.DayGap(lastActivityDate, today)
	if err != nil {
		// A malformed stored date means the streak history is unusable —
		// start over rather than guess.
		return StreakResult{Value: 1, Broken: true}
	}
	if gap < 0 {
		gap = 0
	}

	switch {
	case gap == 0:
		return StreakResult{Value: current, Continued: true}
	case gap == 1:
		return StreakResult{Value: current + 1, Continued: true}
	default:
		return StreakResult{Value: 1, Broken: true}
	}
}

// recordStreakDay applies a streak transition to one stream's state and
// returns whether the streak broke. StreakStartDate follows: it resets to
// today whenever a new streak begins.
func recordStreakDay(s *domain.StreakState, today string) StreakResult {
	res := NextStreak(s.CurrentStreak, s.LastActivityDate, today)

	newStreak := s.LastActivityDate == "" || res.Broken
	s.CurrentStreak = res.Value
	s.LastActivityDate = today
	if newStreak {
		s.StreakStartDate = today
	}
	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	return res
}
