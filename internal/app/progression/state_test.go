package progression_test

import (
	"testing"
	"time"

	"github.com/gritforge/grit/internal/app/progression"
	"github.com/gritforge/grit/internal/domain"
)

var day0 = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func hasEvent(events []domain.Event, typ domain.EventType) bool {
	for _, ev := range events {
		if ev.Type == typ {
			return true
		}
	}
	return false
}

// ═══ Credits & Debits ═══════════════════════════════════════════════════════

func TestApplyCreditXP(t *testing.T) {
	eng := progression.New()
	s := progression.NewState(day0)

	res := eng.Apply(s, progression.CreditXP{Amount: 100, Multiplier: 1, Reason: "test"}, day0)
	if !res.Applied {
		t.Fatalf("credit rejected: %s", res.Reason)
	}
	if res.State.Ledger.CurrentXP != 100 || res.State.Ledger.TotalXPEarned != 100 {
		t.Errorf("balance %d total %d, want 100 100",
			res.State.Ledger.CurrentXP, res.State.Ledger.TotalXPEarned)
	}
	if len(res.Entries) != 1 || res.Entries[0].Kind != domain.XPCredit || res.Entries[0].Balance != 100 {
		t.Errorf("unexpected ledger entries %+v", res.Entries)
	}

	// Crossing the level threshold fires exactly one level-up.
	res = eng.Apply(res.State, progression.CreditXP{Amount: 900, Multiplier: 1, Reason: "test"}, day0)
	if res.State.Ledger.CurrentLevel != 2 {
		t.Errorf("level = %d, want 2", res.State.Ledger.CurrentLevel)
	}
	if res.State.Ledger.XPToNextLevel != 1100 {
		t.Errorf("XPToNextLevel = %d, want 1100", res.State.Ledger.XPToNextLevel)
	}
	if !hasEvent(res.Events, domain.EventLevelUp) {
		t.Error("no level_up event on threshold crossing")
	}

	if res := eng.Apply(s, progression.CreditXP{Amount: 0}, day0); res.Applied {
		t.Error("zero-amount credit accepted")
	}
}

func TestApplyCreditStacksMultiplierAndBoost(t *testing.T) {
	eng := progression.New()
	s := progression.NewState(day0)
	s.Ledger.XPMultiplier = 2.0 // active boost

	res := eng.Apply(s, progression.CreditXP{Amount: 100, Multiplier: 1.15, Reason: "test"}, day0)
	// floor(100 * 1.15 * 2.0)
	if res.State.Ledger.CurrentXP != 230 {
		t.Errorf("balance = %d, want 230", res.State.Ledger.CurrentXP)
	}
}

func TestApplyCreditDecimalExactProducts(t *testing.T) {
	// 1.15 has no exact binary representation; the credit math must not
	// let 100 * 1.15 floor to 114.
	tests := []struct {
		amount     int64
		multiplier float64
		boost      float64
		want       int64
	}{
		{100, 1.15, 1.0, 115},
		{100, 1.25, 1.0, 125},
		{100, 1.5, 2.0, 300},
		{1000, 1.15, 1.0, 1150},
		{7, 1.15, 1.0, 8}, // floor(8.05)
	}
	eng := progression.New()
	for _, tt := range tests {
		s := progression.NewState(day0)
		s.Ledger.XPMultiplier = tt.boost
		res := eng.Apply(s, progression.CreditXP{Amount: tt.amount, Multiplier: tt.multiplier, Reason: "test"}, day0)
		if res.State.Ledger.CurrentXP != tt.want {
			t.Errorf("credit(%d, x%.2f, boost %.1f) = %d, want %d",
				tt.amount, tt.multiplier, tt.boost, res.State.Ledger.CurrentXP, tt.want)
		}
	}
}

func TestApplyDebitFloorsAtZero(t *testing.T) {
	eng := progression.New()
	s := progression.NewState(day0)
	s.Ledger.CurrentXP = 1500
	s.Ledger.TotalXPEarned = 1500
	s.Ledger.CurrentLevel = 2

	res := eng.Apply(s, progression.DebitXP{Amount: 9999, Reason: "test", Penalty: true}, day0)
	if res.State.Ledger.CurrentXP != 0 {
		t.Errorf("balance = %d, want 0", res.State.Ledger.CurrentXP)
	}
	if res.State.Ledger.CurrentLevel != 1 {
		t.Errorf("level = %d, want 1 after drain", res.State.Ledger.CurrentLevel)
	}
	// Lifetime earnings are append-only.
	if res.State.Ledger.TotalXPEarned != 1500 {
		t.Errorf("TotalXPEarned = %d, want 1500", res.State.Ledger.TotalXPEarned)
	}
	if res.Entries[0].Kind != domain.XPPenalty {
		t.Errorf("entry kind = %s, want penalty", res.Entries[0].Kind)
	}
}

// ═══ Activity & Streaks ═════════════════════════════════════════════════════

func TestRecordActivityMirrorsGlobal(t *testing.T) {
	eng := progression.New()
	s := progression.NewState(day0)

	res := eng.Apply(s, progression.RecordActivity{
		Stream: domain.StreamCoding,
		Kind:   domain.ActivityProblemSolved,
		XP:     120,
	}, day0)
	if !res.Applied {
		t.Fatalf("activity rejected: %s", res.Reason)
	}
	st := res.State

	today := domain.DateOnly(day0)
	for _, stream := range []domain.Stream{domain.StreamCoding, domain.StreamGlobal} {
		if got := st.Streaks[stream].CurrentStreak; got != 1 {
			t.Errorf("%s streak = %d, want 1", stream, got)
		}
		day := st.Streaks[stream].DailyActivity[today]
		if day.ProblemsSolved != 1 || day.XPEarned != 120 {
			t.Errorf("%s daily log = %+v, want 1 problem / 120 XP", stream, day)
		}
	}
	if st.Weekly.ProblemsSolved != 1 {
		t.Errorf("weekly problems = %d, want 1", st.Weekly.ProblemsSolved)
	}
	if st.Ledger.CurrentXP != 120 {
		t.Errorf("balance = %d, want 120", st.Ledger.CurrentXP)
	}

	// Next calendar day advances both streaks.
	day1 := day0.AddDate(0, 0, 1)
	res = eng.Apply(st, progression.RecordActivity{
		Stream: domain.StreamCoding,
		Kind:   domain.ActivityProblemSolved,
		XP:     120,
	}, day1)
	if got := res.State.Streaks[domain.StreamCoding].CurrentStreak; got != 2 {
		t.Errorf("coding streak = %d, want 2", got)
	}
	if got := res.State.Streaks[domain.StreamGlobal].CurrentStreak; got != 2 {
		t.Errorf("global streak = %d, want 2", got)
	}

	if res := eng.Apply(s, progression.RecordActivity{Stream: "gardening"}, day0); res.Applied {
		t.Error("unknown stream accepted")
	}
}

func TestRecordActivityAfterIdleGap(t *testing.T) {
	eng := progression.New()
	s := progression.NewState(day0)
	st := s.Streaks[domain.StreamCoding]
	st.CurrentStreak = 3
	st.LongestStreak = 3
	st.LastActivityDate = domain.DateOnly(day0.AddDate(0, 0, -3))
	s.Streaks[domain.StreamCoding] = st

	res := eng.Apply(s, progression.RecordActivity{
		Stream: domain.StreamCoding,
		Kind:   domain.ActivityProblemSolved,
		XP:     50,
	}, day0)

	coding := res.State.Streaks[domain.StreamCoding]
	if coding.CurrentStreak != 1 {
		t.Errorf("streak = %d, want 1 after a 3-day gap", coding.CurrentStreak)
	}
	if coding.LongestStreak != 3 {
		t.Errorf("longest = %d, want 3 preserved", coding.LongestStreak)
	}
	if coding.StreakStartDate != domain.DateOnly(day0) {
		t.Errorf("StreakStartDate = %s, want today", coding.StreakStartDate)
	}
	if !hasEvent(res.Events, domain.EventStreakBroken) {
		t.Error("no streak_broken event after the gap")
	}
	// A day-1 streak earns no bonus.
	if res.State.Ledger.CurrentXP != 50 {
		t.Errorf("balance = %d, want 50", res.State.Ledger.CurrentXP)
	}
}

// ═══ Power-Ups ══════════════════════════════════════════════════════════════

func TestBuyPowerUp(t *testing.T) {
	eng := progression.New()
	s := progression.NewState(day0)

	res := eng.Apply(s, progression.BuyPowerUp{ID: "double_xp"}, day0)
	if res.Applied {
		t.Error("purchase accepted with zero XP")
	}

	s.Ledger.CurrentXP = 1000
	res = eng.Apply(s, progression.BuyPowerUp{ID: "double_xp"}, day0)
	if !res.Applied {
		t.Fatalf("purchase rejected: %s", res.Reason)
	}
	if res.State.Ledger.CurrentXP != 500 {
		t.Errorf("balance = %d, want 500 after 500 XP purchase", res.State.Ledger.CurrentXP)
	}
	if res.State.Owned["double_xp"] != 1 {
		t.Errorf("owned = %d, want 1", res.State.Owned["double_xp"])
	}
	if !hasEvent(res.Events, domain.EventPowerUpPurchased) {
		t.Error("no purchase event")
	}

	if res := eng.Apply(s, progression.BuyPowerUp{ID: "nope"}, day0); res.Applied {
		t.Error("unknown power-up accepted")
	}
}

func TestActivateBoost(t *testing.T) {
	eng := progression.New()
	s := progression.NewState(day0)

	if res := eng.Apply(s, progression.ActivatePowerUp{ID: "double_xp"}, day0); res.Applied {
		t.Error("activation accepted without owning a unit")
	}

	s.Owned["double_xp"] = 1
	s.Owned["focus_mode"] = 1

	res := eng.Apply(s, progression.ActivatePowerUp{ID: "double_xp"}, day0)
	if !res.Applied {
		t.Fatalf("activation rejected: %s", res.Reason)
	}
	st := res.State
	if st.Owned["double_xp"] != 0 {
		t.Errorf("owned = %d, want 0 after consuming the unit", st.Owned["double_xp"])
	}
	if len(st.Active) != 1 || st.Active[0].InstanceID == "" {
		t.Fatalf("active set = %+v, want one instance with an id", st.Active)
	}
	if st.Ledger.XPMultiplier != 2.0 || !st.Ledger.BonusActive {
		t.Errorf("multiplier %v active %v, want 2.0 true", st.Ledger.XPMultiplier, st.Ledger.BonusActive)
	}
	if want := day0.Add(30 * time.Minute); !st.Ledger.BonusExpiry.Equal(want) {
		t.Errorf("BonusExpiry = %v, want %v", st.Ledger.BonusExpiry, want)
	}

	// A weaker boost on top does not dilute the stronger one.
	res = eng.Apply(st, progression.ActivatePowerUp{ID: "focus_mode"}, day0)
	if res.State.Ledger.XPMultiplier != 2.0 {
		t.Errorf("multiplier = %v after stacking 1.5x on 2.0x, want 2.0", res.State.Ledger.XPMultiplier)
	}
	if len(res.State.Active) != 2 {
		t.Errorf("active instances = %d, want 2", len(res.State.Active))
	}
}

func TestActivateInstantReward(t *testing.T) {
	eng := progression.New()
	s := progression.NewState(day0)
	s.Owned["xp_cache"] = 1
	s.Ledger.XPMultiplier = 3.0 // must not amplify the fixed payout

	res := eng.Apply(s, progression.ActivatePowerUp{ID: "xp_cache"}, day0)
	if !res.Applied {
		t.Fatalf("activation rejected: %s", res.Reason)
	}
	if res.State.Ledger.CurrentXP != 150 {
		t.Errorf("balance = %d, want the fixed 150 payout", res.State.Ledger.CurrentXP)
	}
	if len(res.State.Active) != 0 {
		t.Error("instant reward ended up in the active set")
	}
	if !hasEvent(res.Events, domain.EventInstantReward) {
		t.Error("no instant_reward event")
	}
}

func TestActivateTimeFreeze(t *testing.T) {
	eng := progression.New()
	s := progression.NewState(day0)
	s.Owned["time_freeze"] = 1
	before := s.Reset.NextResetTime

	res := eng.Apply(s, progression.ActivatePowerUp{ID: "time_freeze"}, day0)
	if want := before.Add(60 * time.Minute); !res.State.Reset.NextResetTime.Equal(want) {
		t.Errorf("NextResetTime = %v, want %v", res.State.Reset.NextResetTime, want)
	}
	if len(res.State.Active) != 0 {
		t.Error("time freeze ended up in the active set")
	}
}

func TestExpirePowerUps(t *testing.T) {
	eng := progression.New()
	s := progression.NewState(day0)
	s.Owned["double_xp"] = 1
	s = eng.Apply(s, progression.ActivatePowerUp{ID: "double_xp"}, day0).State

	later := day0.Add(31 * time.Minute)
	res := eng.Apply(s, progression.ExpirePowerUps{}, later)
	if len(res.State.Active) != 0 {
		t.Errorf("active instances = %d, want 0 after expiry", len(res.State.Active))
	}
	if res.State.Ledger.XPMultiplier != 1.0 || res.State.Ledger.BonusActive {
		t.Errorf("multiplier %v active %v after expiry, want 1.0 false",
			res.State.Ledger.XPMultiplier, res.State.Ledger.BonusActive)
	}
	if !hasEvent(res.Events, domain.EventPowerUpExpired) {
		t.Error("no power_up_expired event")
	}

	// Sweeping again emits nothing.
	res = eng.Apply(res.State, progression.ExpirePowerUps{}, later)
	if len(res.Events) != 0 {
		t.Errorf("second sweep emitted %d events, want 0", len(res.Events))
	}
}

// ═══ Energy ═════════════════════════════════════════════════════════════════

func TestSpendAndRestoreEnergy(t *testing.T) {
	eng := progression.New()
	s := progression.NewState(day0)

	res := eng.Apply(s, progression.SpendEnergy{Amount: 30}, day0)
	if res.State.Energy.Current != 70 {
		t.Errorf("energy = %d, want 70", res.State.Energy.Current)
	}

	res = eng.Apply(res.State, progression.SpendEnergy{Amount: 1000}, day0)
	if res.Applied {
		t.Error("overdraw accepted")
	}
	if res.State.Energy.Current != 70 {
		t.Errorf("energy = %d after rejected spend, want 70", res.State.Energy.Current)
	}

	res = eng.Apply(res.State, progression.RestoreEnergy{Amount: 1000}, day0)
	if res.State.Energy.Current != 100 {
		t.Errorf("energy = %d after restore, want clamped 100", res.State.Energy.Current)
	}
}

// ═══ Tick & Purity ══════════════════════════════════════════════════════════

func TestTick(t *testing.T) {
	eng := progression.New()
	s := progression.NewState(day0)
	s.Energy = domain.EnergyState{Current: 50, Max: 100, LastUpdated: day0}

	later := day0.Add(6 * time.Minute) // two focused 180s intervals
	res := eng.Apply(s, progression.Tick{}, later)
	if res.State.Energy.Current != 52 {
		t.Errorf("energy = %d after tick, want 52", res.State.Energy.Current)
	}
	if res.EnergyRestored != 2 {
		t.Errorf("EnergyRestored = %d, want 2", res.EnergyRestored)
	}
	if res.State.Reset.ResetCountdown <= 0 {
		t.Error("countdown not refreshed")
	}
	if !res.State.Reset.HasResetToday {
		t.Error("HasResetToday flipped on the same date")
	}

	// Past midnight the flag clears until the reset runs.
	res = eng.Apply(s, progression.Tick{}, day0.AddDate(0, 0, 1))
	if res.State.Reset.HasResetToday {
		t.Error("HasResetToday still set on a new date")
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	eng := progression.New()
	s := progression.NewState(day0)
	s.Ledger.CurrentXP = 1000
	s.Owned["double_xp"] = 1

	_ = eng.Apply(s, progression.RecordActivity{
		Stream: domain.StreamTask, Kind: domain.ActivityTaskCompleted, XP: 80,
	}, day0)
	_ = eng.Apply(s, progression.ActivatePowerUp{ID: "double_xp"}, day0)

	if s.Ledger.CurrentXP != 1000 || s.Owned["double_xp"] != 1 || len(s.Active) != 0 {
		t.Error("input snapshot mutated by Apply")
	}
	if s.Streaks[domain.StreamTask].CurrentStreak != 0 {
		t.Error("input streaks mutated by Apply")
	}
}
