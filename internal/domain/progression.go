package domain

import "time"

// ─── Activity Streams ───────────────────────────────────────────────────────

// Stream is an independently tracked activity category. Each stream carries
// its own streak, so a broken coding streak never touches the task streak.
type Stream string

const (
	StreamGlobal Stream = "global"
	StreamCoding Stream = "coding"
	StreamTask   Stream = "task"
)

// Streams lists all tracked streams.
func Streams() []Stream {
	return []Stream{StreamGlobal, StreamCoding, StreamTask}
}

// ActivityKind categorizes what the user did.
type ActivityKind string

const (
	ActivityProblemSolved ActivityKind = "problem_solved"
	ActivityTaskCompleted ActivityKind = "task_completed"
	ActivityFocusMinutes  ActivityKind = "focus_minutes"
)

// ─── XP Ledger ──────────────────────────────────────────────────────────────

// XPLedger is the single progression currency account.
// Invariants: CurrentLevel == LevelFromTotalXP(CurrentXP), CurrentXP never
// observably negative, TotalXPEarned only moves on credits.
type XPLedger struct {
	CurrentXP     int64     `json:"current_xp"`
	CurrentLevel  int       `json:"current_level"`
	XPToNextLevel int64     `json:"xp_to_next_level"`
	TotalXPEarned int64     `json:"total_xp_earned"`
	XPMultiplier  float64   `json:"xp_multiplier"`
	BonusActive   bool      `json:"bonus_active"`
	BonusExpiry   time.Time `json:"bonus_expiry,omitempty"`
}

// XPKind categorizes ledger journal entries.
type XPKind string

const (
	XPCredit  XPKind = "CREDIT"
	XPDebit   XPKind = "DEBIT"
	XPPenalty XPKind = "PENALTY"
)

// XPEntry is one row of the append-only XP journal.
type XPEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Kind      XPKind    `json:"kind"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	Balance   int64     `json:"balance"`
}

// ─── Streaks ────────────────────────────────────────────────────────────────

// DailyActivity aggregates one calendar day of a stream's activity.
type DailyActivity struct {
	ProblemsSolved   int       `json:"problems_solved"`
	TasksCompleted   int       `json:"tasks_completed"`
	XPEarned         int64     `json:"xp_earned"`
	ActiveMinutes    int       `json:"active_minutes"`
	LastActivityTime time.Time `json:"last_activity_time"`
}

// StreakState tracks consecutive active days for one stream.
// LastActivityDate is a date-only string; empty means no activity ever.
// Invariant: LongestStreak >= CurrentStreak.
type StreakState struct {
	CurrentStreak    int                      `json:"current_streak"`
	LongestStreak    int                      `json:"longest_streak"`
	LastActivityDate string                   `json:"last_activity_date"`
	StreakStartDate  string                   `json:"streak_start_date"`
	DailyActivity    map[string]DailyActivity `json:"daily_activity"`
}

// Clone returns a deep copy (the daily log map must not be shared between
// snapshots).
func (s StreakState) Clone() StreakState {
	cp := s
	cp.DailyActivity = make(map[string]DailyActivity, len(s.DailyActivity))
	for k, v := range s.DailyActivity {
		cp.DailyActivity[k] = v
	}
	return cp
}

// ─── Power-Ups ──────────────────────────────────────────────────────────────

// PowerUpType classifies the effect a power-up has when active.
type PowerUpType string

const (
	BoostXP       PowerUpType = "xp_boost"
	BoostFocus    PowerUpType = "focus_mode"
	BoostCombo    PowerUpType = "combo_multiplier"
	BoostTask     PowerUpType = "task_boost"
	BoostCoding   PowerUpType = "coding_boost"
	ShieldStreak  PowerUpType = "streak_shield"
	ShieldPerfect PowerUpType = "perfect_streak"
	TimeFreeze    PowerUpType = "time_freeze"
	InstantReward PowerUpType = "instant_reward"
)

// PowerUpDef is an immutable catalog entry. Multiplier is meaningful only
// for multiplicative types; Reward only for instant_reward.
type PowerUpDef struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Type       PowerUpType `json:"type"`
	Multiplier float64     `json:"multiplier,omitempty"`
	Duration   int         `json:"duration_minutes"`
	Cost       int64       `json:"cost_xp"`
	RewardXP   int64       `json:"reward_xp,omitempty"`
	Icon       string      `json:"icon"`
}

// Multiplicative reports whether this power-up contributes to the effective
// XP multiplier while active.
func (d PowerUpDef) Multiplicative() bool {
	switch d.Type {
	case BoostXP, BoostFocus, BoostCombo, BoostTask, BoostCoding:
		return true
	}
	return false
}

// Shield reports whether this power-up suppresses reset penalties.
func (d PowerUpDef) Shield() bool {
	return d.Type == ShieldStreak || d.Type == ShieldPerfect
}

// ActivePowerUp is one live instance of an activated power-up. The same
// catalog id may have several concurrent instances; composition is per
// instance.
type ActivePowerUp struct {
	InstanceID string      `json:"instance_id"`
	ID         string      `json:"id"`
	Type       PowerUpType `json:"type"`
	Multiplier float64     `json:"multiplier,omitempty"`
	ExpiresAt  time.Time   `json:"expires_at"`
}

// Expired reports whether the instance should be swept at the given time.
func (a ActivePowerUp) Expired(now time.Time) bool {
	return !a.ExpiresAt.After(now)
}

// ─── Energy & Mood ──────────────────────────────────────────────────────────

// EnergyState is the passive-regeneration resource pool.
// Invariant: 0 <= Current <= Max.
type EnergyState struct {
	Current     int       `json:"current"`
	Max         int       `json:"max"`
	LastUpdated time.Time `json:"last_updated"`
}

// Mood is derived from the energy ratio. It is never persisted on its own.
type Mood string

const (
	MoodEnergized Mood = "energized"
	MoodFocused   Mood = "focused"
	MoodTired     Mood = "tired"
	MoodExhausted Mood = "exhausted"
)

// Mood returns the label for the current energy ratio.
func (e EnergyState) Mood() Mood {
	if e.Max <= 0 {
		return MoodExhausted
	}
	ratio := float64(e.Current) / float64(e.Max)
	switch {
	case ratio >= 0.75:
		return MoodEnergized
	case ratio >= 0.45:
		return MoodFocused
	case ratio >= 0.20:
		return MoodTired
	default:
		return MoodExhausted
	}
}

// ─── Weekly Stats ───────────────────────────────────────────────────────────

// WeeklyStats accumulates the counters that are weekly-scoped. They reset
// only when the ISO week advances past WeekISO, independent of the daily
// reset.
type WeeklyStats struct {
	WeekISO        string `json:"week_iso"`
	XPEarned       int64  `json:"xp_earned"`
	ProblemsSolved int    `json:"problems_solved"`
	TasksCompleted int    `json:"tasks_completed"`
}

// ─── Daily Reset ────────────────────────────────────────────────────────────

// DailyResetState is the bookkeeping that makes the day-boundary transition
// one-shot. Exactly one reset may apply per calendar date.
type DailyResetState struct {
	LastResetDate   string    `json:"last_reset_date"`
	LastWeeklyReset string    `json:"last_weekly_reset"`
	NextResetTime   time.Time `json:"next_reset_time"`
	ResetCountdown  int64     `json:"reset_countdown"`
	HasResetToday   bool      `json:"has_reset_today"`
}

// ─── Events ─────────────────────────────────────────────────────────────────

// EventType categorizes engine events consumed by the notification/UI
// collaborator.
type EventType string

const (
	EventLevelUp           EventType = "level_up"
	EventStreakBroken      EventType = "streak_broken"
	EventPenaltyApplied    EventType = "penalty_applied"
	EventShieldProtected   EventType = "shield_protected"
	EventPowerUpPurchased  EventType = "power_up_purchased"
	EventPowerUpActivated  EventType = "power_up_activated"
	EventPowerUpExpired    EventType = "power_up_expired"
	EventInstantReward     EventType = "instant_reward"
	EventDailyReset        EventType = "daily_reset"
)

// Event is a user-facing message emitted by a state transition. The engine
// emits; presentation is entirely the collaborator's concern.
type Event struct {
	ID        int64     `json:"id"`
	Type      EventType `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	Shown     bool      `json:"shown"`
}
