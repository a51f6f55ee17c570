package progression

import (
	"fmt"
	"time"

	"github.com/gritforge/grit/internal/domain"
)

// applyReset runs the day-boundary transition. Exactly one reset applies
// per calendar date: the LastResetDate guard is checked first and written
// last, so re-entrant calls on the same date are rejected no-ops and
// penalties can never double-apply.
func (e *Engine) applyReset(s State, in PerformDailyReset, now time.Time) Result {
	today := domain.DateOnly(now)
	if s.Reset.LastResetDate == today {
		return rejected(s, "already reset today")
	}

	var events []domain.Event
	var entries []domain.XPEntry

	// Captured before step 1 may consume the shield instance: a perfect
	// shield covers the whole reset cycle, both sub-penalties.
	perfectActive := ShieldActive(s.Active, now, true)

	// 1. Streak continuity, judged from the real last-activity date, not
	// the stored streak value. A shield suppresses the whole penalty.
	lapsed := e.lapsedStreams(s, today)
	if len(lapsed) > 0 {
		if ShieldActive(s.Active, now, false) {
			s.Active = consumeShield(s.Active, now)
			events = append(events, domain.Event{
				Type:      domain.EventShieldProtected,
				Title:     "Shield protected your streak",
				Body:      "Your streak survived a missed day",
				CreatedAt: now,
			})
		} else {
			for _, stream := range lapsed {
				st := s.Streaks[stream]
				st.CurrentStreak = 0
				s.Streaks[stream] = st
				events = append(events, streakBrokenEvent(stream, now))
			}

			if debit := roundXP(float64(s.Ledger.CurrentXP) * e.Penalty.InactivityXPFraction); debit > 0 {
				entries = append(entries, debitLedger(&s, debit, "missed streak", true, now))
				events = append(events, domain.Event{
					Type:      domain.EventPenaltyApplied,
					Title:     "Streak penalty",
					Body:      fmt.Sprintf("-%d XP for missing your streak", debit),
					CreatedAt: now,
				})
			}
			s.Energy.Current = clampEnergy(s.Energy.Current-e.Penalty.EnergyPenalty, s.Energy.Max)
		}
	}

	// 2. Overdue tasks, each capped, suppressed wholesale by a perfect
	// shield.
	if !perfectActive {
		if debit := e.overduePenalty(in.Tasks, now); debit > 0 {
			entries = append(entries, debitLedger(&s, debit, "overdue tasks", true, now))
			events = append(events, domain.Event{
				Type:      domain.EventPenaltyApplied,
				Title:     "Overdue tasks",
				Body:      fmt.Sprintf("-%d XP for overdue tasks", debit),
				CreatedAt: now,
			})
		}
	}

	// 3. Weekly-scoped counters roll over only when the ISO week advanced.
	if week := domain.ISOWeek(now); week != s.Reset.LastWeeklyReset {
		s.Weekly = domain.WeeklyStats{WeekISO: week}
		s.Reset.LastWeeklyReset = week
	}

	// 4. Bookkeeping written last.
	s.Reset.LastResetDate = today
	s.Reset.NextResetTime = domain.NextMidnight(now)
	s.Reset.ResetCountdown = domain.ElapsedSeconds(now, s.Reset.NextResetTime)
	s.Reset.HasResetToday = true

	events = append(events, domain.Event{
		Type:      domain.EventDailyReset,
		Title:     "New day",
		Body:      "Daily counters reset",
		CreatedAt: now,
	})

	return Result{State: s, Applied: true, Events: events, Entries: entries}
}

// lapsedStreams returns the streams whose last activity is more than one
// day behind today. A negative gap (clock moved backward) never lapses.
func (e *Engine) lapsedStreams(s State, today string) []domain.Stream {
	var lapsed []domain.Stream
	for _, stream := range domain.Streams() {
		st := s.Streaks[stream]
		if st.LastActivityDate == "" || st.CurrentStreak == 0 {
			continue
		}
		gap, err := domain.DayGap(st.LastActivityDate, today)
		if err != nil {
			continue
		}
		if gap > 1 {
			lapsed = append(lapsed, stream)
		}
	}
	return lapsed
}

// overduePenalty sums min(cap, round(xp * fraction)) across overdue tasks.
func (e *Engine) overduePenalty(tasks []domain.TaskDue, now time.Time) int64 {
	var total int64
	for _, t := range tasks {
		if !t.Overdue(now) {
			continue
		}
		p := roundXP(float64(t.XPReward) * e.Penalty.OverdueXPFraction)
		if p > e.Penalty.OverdueXPCap {
			p = e.Penalty.OverdueXPCap
		}
		total += p
	}
	return total
}

// consumeShield removes the earliest-expiring live shield instance. Shield
// instances are destroyed exactly once: here when they absorb a penalty, or
// by the expiry sweep.
func consumeShield(active []domain.ActivePowerUp, now time.Time) []domain.ActivePowerUp {
	idx := -1
	var earliest time.Time
	for i, a := range active {
		if a.Expired(now) {
			continue
		}
		if a.Type != domain.ShieldStreak && a.Type != domain.ShieldPerfect {
			continue
		}
		if idx == -1 || a.ExpiresAt.Before(earliest) {
			idx = i
			earliest = a.ExpiresAt
		}
	}
	if idx == -1 {
		return active
	}
	return append(active[:idx], active[idx+1:]...)
}
