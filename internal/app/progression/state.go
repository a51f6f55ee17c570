package progression

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gritforge/grit/internal/domain"
)

// ─── State ──────────────────────────────────────────────────────────────────

// State is the full progression snapshot. Transitions never mutate the
// input: Apply clones, mutates the clone, and returns it. Callers hold and
// thread snapshots explicitly — there are no package-level singletons.
type State struct {
	Ledger  domain.XPLedger                      `json:"ledger"`
	Streaks map[domain.Stream]domain.StreakState `json:"streaks"`
	Reset   domain.DailyResetState               `json:"reset"`
	Energy  domain.EnergyState                   `json:"energy"`
	Weekly  domain.WeeklyStats                   `json:"weekly"`
	Owned   map[string]int                       `json:"owned_powerups"`
	Active  []domain.ActivePowerUp               `json:"active_powerups"`
}

// NewState returns a zeroed snapshot for a fresh account. Today counts as
// already reset, so a brand-new user is never penalized at first tick.
func NewState(now time.Time) State {
	streaks := make(map[domain.Stream]domain.StreakState, 3)
	for _, st := range domain.Streams() {
		streaks[st] = domain.StreakState{DailyActivity: map[string]domain.DailyActivity{}}
	}
	return State{
		Ledger: domain.XPLedger{
			CurrentLevel:  1,
			XPToNextLevel: XPRequiredForLevel(1),
			XPMultiplier:  1.0,
		},
		Streaks: streaks,
		Reset: domain.DailyResetState{
			LastResetDate:   domain.DateOnly(now),
			LastWeeklyReset: domain.ISOWeek(now),
			NextResetTime:   domain.NextMidnight(now),
			HasResetToday:   true,
		},
		Energy: domain.EnergyState{Current: 100, Max: 100, LastUpdated: now},
		Weekly: domain.WeeklyStats{WeekISO: domain.ISOWeek(now)},
		Owned:  map[string]int{},
	}
}

// Clone returns a deep copy of the snapshot.
func (s State) Clone() State {
	cp := s
	cp.Streaks = make(map[domain.Stream]domain.StreakState, len(s.Streaks))
	for k, v := range s.Streaks {
		cp.Streaks[k] = v.Clone()
	}
	cp.Owned = make(map[string]int, len(s.Owned))
	for k, v := range s.Owned {
		cp.Owned[k] = v
	}
	cp.Active = make([]domain.ActivePowerUp, len(s.Active))
	copy(cp.Active, s.Active)
	return cp
}

// ─── Intents ────────────────────────────────────────────────────────────────

// Intent is a request to transition the progression state.
type Intent interface{ isIntent() }

// CreditXP adds experience. Multiplier is the caller's situational bonus
// (streak bonus etc.); the ledger's boost multiplier is applied on top.
type CreditXP struct {
	Amount     int64
	Multiplier float64
	Reason     string
}

// DebitXP removes experience, flooring at zero. No multiplier ever applies
// to debits. Redemptions and penalties are the only legitimate sources.
type DebitXP struct {
	Amount  int64
	Reason  string
	Penalty bool
}

// RecordActivity logs one unit of activity into a stream, advances that
// stream's streak and the global streak atomically, and credits XP with a
// streak bonus applied.
type RecordActivity struct {
	Stream  domain.Stream
	Kind    domain.ActivityKind
	XP      int64
	Minutes int
}

// BuyPowerUp spends XP on one unit of a catalog power-up.
type BuyPowerUp struct{ ID string }

// ActivatePowerUp consumes one owned unit and applies its effect.
type ActivatePowerUp struct{ ID string }

// ExpirePowerUps sweeps active instances whose expiry has passed.
type ExpirePowerUps struct{}

// RestoreEnergy adds energy, clamped at max.
type RestoreEnergy struct{ Amount int }

// SpendEnergy removes energy; rejected if the pool is short.
type SpendEnergy struct{ Amount int }

// Tick is the recurring housekeeping intent: expiry sweep, passive energy
// regeneration, and countdown refresh. Everything derives from now vs the
// stored timestamps, never from tick cadence.
type Tick struct{}

// PerformDailyReset runs the one-per-calendar-date day-boundary transition,
// judging the supplied tasks for overdue penalties.
type PerformDailyReset struct{ Tasks []domain.TaskDue }

func (CreditXP) isIntent()          {}
func (DebitXP) isIntent()           {}
func (RecordActivity) isIntent()    {}
func (BuyPowerUp) isIntent()        {}
func (ActivatePowerUp) isIntent()   {}
func (ExpirePowerUps) isIntent()    {}
func (RestoreEnergy) isIntent()     {}
func (SpendEnergy) isIntent()       {}
func (Tick) isIntent()              {}
func (PerformDailyReset) isIntent() {}

// ─── Result ─────────────────────────────────────────────────────────────────

// Result carries the next snapshot plus everything the caller needs to act
// on the transition. A rejected intent returns the input state unchanged
// with Applied=false and a Reason — never an error, never a panic.
type Result struct {
	State   State
	Events  []domain.Event
	Entries []domain.XPEntry
	Applied bool
	Reason  string

	// EnergyRestored is the number of units passive regeneration credited
	// during this transition. Zero for non-Tick intents.
	EnergyRestored int
}

func rejected(s State, reason string) Result {
	return Result{State: s, Applied: false, Reason: reason}
}

// ─── Engine ─────────────────────────────────────────────────────────────────

// Engine bundles the pure transition logic with its tunables. It holds no
// mutable state of its own and is safe to share.
type Engine struct {
	Catalog Catalog
	Regen   RegenConfig
	Penalty PenaltyConfig
}

// PenaltyConfig tunes the day-boundary penalty policy.
type PenaltyConfig struct {
	InactivityXPFraction float64 // share of current XP debited on a lapsed streak
	EnergyPenalty        int     // flat energy hit on a lapsed streak
	OverdueXPFraction    float64 // share of a task's XP debited when overdue
	OverdueXPCap         int64   // per-task cap on the overdue debit
}

// DefaultPenaltyConfig returns the production penalty policy.
func DefaultPenaltyConfig() PenaltyConfig {
	return PenaltyConfig{
		InactivityXPFraction: 0.20,
		EnergyPenalty:        10,
		OverdueXPFraction:    0.10,
		OverdueXPCap:         50,
	}
}

// New creates an engine with the default catalog and tunables.
func New() *Engine {
	return &Engine{
		Catalog: NewCatalog(DefaultCatalog()),
		Regen:   DefaultRegenConfig(),
		Penalty: DefaultPenaltyConfig(),
	}
}

// Apply is the single entry point for all state transitions.
func (e *Engine) Apply(s State, in Intent, now time.Time) Result {
	next := s.Clone()
	switch v := in.(type) {
	case CreditXP:
		return e.applyCredit(next, v, now)
	case DebitXP:
		return e.applyDebit(next, v, now)
	case RecordActivity:
		return e.applyActivity(next, v, now)
	case BuyPowerUp:
		return e.applyBuy(next, v, now)
	case ActivatePowerUp:
		return e.applyActivate(next, v, now)
	case ExpirePowerUps:
		return e.applyExpire(next, now)
	case RestoreEnergy:
		next.Energy.Current = clampEnergy(next.Energy.Current+v.Amount, next.Energy.Max)
		return Result{State: next, Applied: true}
	case SpendEnergy:
		if v.Amount > next.Energy.Current {
			return rejected(s, "insufficient energy")
		}
		next.Energy.Current = clampEnergy(next.Energy.Current-v.Amount, next.Energy.Max)
		return Result{State: next, Applied: true}
	case Tick:
		return e.applyTick(next, now)
	case PerformDailyReset:
		return e.applyReset(next, v, now)
	default:
		return rejected(s, "unknown intent")
	}
}

// ─── Credits & Debits ───────────────────────────────────────────────────────

func (e *Engine) applyCredit(s State, in CreditXP, now time.Time) Result {
	if in.Amount <= 0 {
		return rejected(s, "credit amount must be positive")
	}
	entry, events := creditLedger(&s, in.Amount, in.Multiplier, in.Reason, now)
	return Result{State: s, Applied: true, Events: events, Entries: []domain.XPEntry{entry}}
}

func (e *Engine) applyDebit(s State, in DebitXP, now time.Time) Result {
	if in.Amount <= 0 {
		return rejected(s, "debit amount must be positive")
	}
	entry := debitLedger(&s, in.Amount, in.Reason, in.Penalty, now)
	return Result{State: s, Applied: true, Entries: []domain.XPEntry{entry}}
}

// creditLedger applies finalAmount = floor(amount * multiplier * boost) to
// the ledger and recomputes the level. TotalXPEarned moves only here.
func creditLedger(s *State, amount int64, multiplier float64, reason string, now time.Time) (domain.XPEntry, []domain.Event) {
	if multiplier < 1 {
		multiplier = 1
	}
	boost := s.Ledger.XPMultiplier
	if boost < 1 {
		boost = 1
	}
	final := floorXP(float64(amount) * multiplier * boost)

	oldLevel := s.Ledger.CurrentLevel
	s.Ledger.CurrentXP += final
	s.Ledger.TotalXPEarned += final
	s.Weekly.XPEarned += final
	reLevel(&s.Ledger)

	var events []domain.Event
	if s.Ledger.CurrentLevel > oldLevel {
		events = append(events, domain.Event{
			Type:      domain.EventLevelUp,
			Title:     "Level up!",
			Body:      fmt.Sprintf("You reached level %d", s.Ledger.CurrentLevel),
			CreatedAt: now,
		})
	}

	return domain.XPEntry{
		ID:        uuid.NewString(),
		Timestamp: now,
		Kind:      domain.XPCredit,
		Amount:    final,
		Reason:    reason,
		Balance:   s.Ledger.CurrentXP,
	}, events
}

// debitLedger floors the balance at zero. Level may go down; that is the
// one sanctioned level-down path.
func debitLedger(s *State, amount int64, reason string, penalty bool, now time.Time) domain.XPEntry {
	s.Ledger.CurrentXP -= amount
	if s.Ledger.CurrentXP < 0 {
		s.Ledger.CurrentXP = 0
	}
	reLevel(&s.Ledger)

	kind := domain.XPDebit
	if penalty {
		kind = domain.XPPenalty
	}
	return domain.XPEntry{
		ID:        uuid.NewString(),
		Timestamp: now,
		Kind:      kind,
		Amount:    amount,
		Reason:    reason,
		Balance:   s.Ledger.CurrentXP,
	}
}

func reLevel(l *domain.XPLedger) {
	l.CurrentLevel = LevelFromTotalXP(l.CurrentXP)
	l.XPToNextLevel = XPToNextLevel(l.CurrentXP)
}

// ─── Activity ───────────────────────────────────────────────────────────────

// StreakXPMultiplier is the situational bonus applied to activity credits,
// a monotonic step function of the stream's current streak.
func StreakXPMultiplier(streak int) float64 {
	switch {
	case streak >= 30:
		return 2.0
	case streak >= 14:
		return 1.5
	case streak >= 7:
		return 1.25
	case streak >= 3:
		return 1.15
	default:
		return 1.0
	}
}

func (e *Engine) applyActivity(s State, in RecordActivity, now time.Time) Result {
	stream, ok := s.Streaks[in.Stream]
	if !ok {
		return rejected(s, "unknown stream")
	}
	today := domain.DateOnly(now)

	var events []domain.Event
	var entries []domain.XPEntry

	// The stream's own daily log and the global mirror move together, in
	// this one transition, so they cannot drift apart.
	bumpDailyLog(&stream, today, in, now)
	res := recordStreakDay(&stream, today)
	s.Streaks[in.Stream] = stream

	if in.Stream != domain.StreamGlobal {
		global := s.Streaks[domain.StreamGlobal]
		bumpDailyLog(&global, today, in, now)
		gres := recordStreakDay(&global, today)
		s.Streaks[domain.StreamGlobal] = global
		if gres.Broken {
			events = append(events, streakBrokenEvent(domain.StreamGlobal, now))
		}
	}
	if res.Broken {
		events = append(events, streakBrokenEvent(in.Stream, now))
	}

	switch in.Kind {
	case domain.ActivityProblemSolved:
		s.Weekly.ProblemsSolved++
	case domain.ActivityTaskCompleted:
		s.Weekly.TasksCompleted++
	}

	if in.XP > 0 {
		entry, creditEvents := creditLedger(&s, in.XP,
			StreakXPMultiplier(s.Streaks[in.Stream].CurrentStreak), string(in.Kind), now)
		events = append(events, creditEvents...)
		entries = append(entries, entry)

		// Earned XP shows up in both daily logs too.
		addDailyXP(&s, in.Stream, today, entry.Amount)
	}

	return Result{State: s, Applied: true, Events: events, Entries: entries}
}

func bumpDailyLog(st *domain.StreakState, today string, in RecordActivity, now time.Time) {
	if st.DailyActivity == nil {
		st.DailyActivity = map[string]domain.DailyActivity{}
	}
	day := st.DailyActivity[today]
	switch in.Kind {
	case domain.ActivityProblemSolved:
		day.ProblemsSolved++
	case domain.ActivityTaskCompleted:
		day.TasksCompleted++
	}
	day.ActiveMinutes += in.Minutes
	day.LastActivityTime = now
	st.DailyActivity[today] = day
}

func addDailyXP(s *State, stream domain.Stream, today string, amount int64) {
	for _, target := range []domain.Stream{stream, domain.StreamGlobal} {
		st := s.Streaks[target]
		day := st.DailyActivity[today]
		day.XPEarned += amount
		st.DailyActivity[today] = day
		s.Streaks[target] = st
		if stream == domain.StreamGlobal {
			break // avoid double-counting when the stream is global itself
		}
	}
}

func streakBrokenEvent(stream domain.Stream, now time.Time) domain.Event {
	return domain.Event{
		Type:      domain.EventStreakBroken,
		Title:     "Streak broken",
		Body:      fmt.Sprintf("Your %s streak reset to day 1", stream),
		CreatedAt: now,
	}
}

// ─── Power-Ups ──────────────────────────────────────────────────────────────

func (e *Engine) applyBuy(s State, in BuyPowerUp, now time.Time) Result {
	def, ok := e.Catalog.Lookup(in.ID)
	if !ok {
		return rejected(s, "unknown power-up")
	}
	if s.Ledger.CurrentXP < def.Cost {
		return rejected(s, "insufficient XP")
	}

	entry := debitLedger(&s, def.Cost, "purchase: "+def.ID, false, now)
	s.Owned[def.ID]++

	return Result{
		State:   s,
		Applied: true,
		Entries: []domain.XPEntry{entry},
		Events: []domain.Event{{
			Type:      domain.EventPowerUpPurchased,
			Title:     "Power-up purchased",
			Body:      def.Name,
			CreatedAt: now,
		}},
	}
}

func (e *Engine) applyActivate(s State, in ActivatePowerUp, now time.Time) Result {
	def, ok := e.Catalog.Lookup(in.ID)
	if !ok {
		return rejected(s, "unknown power-up")
	}
	if s.Owned[def.ID] <= 0 {
		return rejected(s, "power-up not owned")
	}
	s.Owned[def.ID]--

	var events []domain.Event
	var entries []domain.XPEntry

	switch {
	case def.Type == domain.InstantReward:
		// Fixed reward, no multipliers, not added to the active set.
		s.Ledger.CurrentXP += def.RewardXP
		s.Ledger.TotalXPEarned += def.RewardXP
		s.Weekly.XPEarned += def.RewardXP
		oldLevel := s.Ledger.CurrentLevel
		reLevel(&s.Ledger)
		entries = append(entries, domain.XPEntry{
			ID:        uuid.NewString(),
			Timestamp: now,
			Kind:      domain.XPCredit,
			Amount:    def.RewardXP,
			Reason:    "instant reward: " + def.ID,
			Balance:   s.Ledger.CurrentXP,
		})
		events = append(events, domain.Event{
			Type:      domain.EventInstantReward,
			Title:     def.Name,
			Body:      fmt.Sprintf("+%d XP", def.RewardXP),
			CreatedAt: now,
		})
		if s.Ledger.CurrentLevel > oldLevel {
			events = append(events, domain.Event{
				Type:      domain.EventLevelUp,
				Title:     "Level up!",
				Body:      fmt.Sprintf("You reached level %d", s.Ledger.CurrentLevel),
				CreatedAt: now,
			})
		}

	case def.Type == domain.TimeFreeze:
		s.Reset.NextResetTime = s.Reset.NextResetTime.Add(time.Duration(def.Duration) * time.Minute)
		events = append(events, activatedEvent(def, now))

	default:
		s.Active = append(s.Active, domain.ActivePowerUp{
			InstanceID: uuid.NewString(),
			ID:         def.ID,
			Type:       def.Type,
			Multiplier: def.Multiplier,
			ExpiresAt:  now.Add(time.Duration(def.Duration) * time.Minute),
		})
		recomputeBoost(&s)
		events = append(events, activatedEvent(def, now))
	}

	return Result{State: s, Applied: true, Events: events, Entries: entries}
}

func activatedEvent(def domain.PowerUpDef, now time.Time) domain.Event {
	return domain.Event{
		Type:      domain.EventPowerUpActivated,
		Title:     "Power-up activated",
		Body:      def.Name,
		CreatedAt: now,
	}
}

func (e *Engine) applyExpire(s State, now time.Time) Result {
	kept, removed := sweepExpired(s.Active, now)
	if len(removed) == 0 {
		return Result{State: s, Applied: true}
	}
	s.Active = kept
	recomputeBoost(&s)

	events := make([]domain.Event, 0, len(removed))
	for _, r := range removed {
		name := r.ID
		if def, ok := e.Catalog.Lookup(r.ID); ok {
			name = def.Name
		}
		events = append(events, domain.Event{
			Type:      domain.EventPowerUpExpired,
			Title:     "Power-up expired",
			Body:      name,
			CreatedAt: now,
		})
	}
	return Result{State: s, Applied: true, Events: events}
}

// recomputeBoost refreshes the ledger's multiplier fields from the active
// set. Called after every change to Active.
func recomputeBoost(s *State) {
	s.Ledger.XPMultiplier = EffectiveMultiplier(s.Active)
	expiry, active := BonusExpiry(s.Active)
	s.Ledger.BonusActive = active
	if active {
		s.Ledger.BonusExpiry = expiry
	} else {
		s.Ledger.BonusExpiry = time.Time{}
	}
}

// ─── Tick ───────────────────────────────────────────────────────────────────

func (e *Engine) applyTick(s State, now time.Time) Result {
	res := e.applyExpire(s, now)
	s = res.State
	events := res.Events

	regenerated, restored := Regenerate(s.Energy, e.Regen, s.Streaks[domain.StreamGlobal].CurrentStreak, now)
	s.Energy = regenerated

	s.Reset.ResetCountdown = domain.ElapsedSeconds(now, s.Reset.NextResetTime)
	s.Reset.HasResetToday = s.Reset.LastResetDate == domain.DateOnly(now)

	return Result{State: s, Applied: true, Events: events, EnergyRestored: restored}
}

// ─── Selectors ──────────────────────────────────────────────────────────────

// EffectiveMultiplierOf returns the XP multiplier currently in force.
func EffectiveMultiplierOf(s State) float64 {
	return EffectiveMultiplier(s.Active)
}

// SecondsUntilReset returns the countdown to the next day boundary,
// floored at zero.
func SecondsUntilReset(s State, now time.Time) int64 {
	return domain.ElapsedSeconds(now, s.Reset.NextResetTime)
}

// CurrentStreakOf returns a stream's current streak value.
func CurrentStreakOf(s State, stream domain.Stream) int {
	return s.Streaks[stream].CurrentStreak
}
