package progression

import (
	"time"

	"github.com/gritforge/grit/internal/domain"
)

// ─── Catalog ────────────────────────────────────────────────────────────────

// DefaultCatalog returns the built-in power-up catalog. Amounts, costs, and
// icons are configuration, not engine logic — the daemon may override this
// set from its config file.
func DefaultCatalog() []domain.PowerUpDef {
	return []domain.PowerUpDef{
		{ID: "double_xp", Name: "Double XP", Type: domain.BoostXP,
			Multiplier: 2.0, Duration: 30, Cost: 500, Icon: "⚡"},
		{ID: "focus_mode", Name: "Focus Mode", Type: domain.BoostFocus,
			Multiplier: 1.5, Duration: 60, Cost: 300, Icon: "🎯"},
		{ID: "combo_x3", Name: "Combo Rush", Type: domain.BoostCombo,
			Multiplier: 3.0, Duration: 15, Cost: 800, Icon: "🔥"},
		{ID: "task_surge", Name: "Task Surge", Type: domain.BoostTask,
			Multiplier: 1.5, Duration: 45, Cost: 250, Icon: "📋"},
		{ID: "code_sprint", Name: "Code Sprint", Type: domain.BoostCoding,
			Multiplier: 1.8, Duration: 45, Cost: 350, Icon: "💻"},
		{ID: "streak_shield", Name: "Streak Shield", Type: domain.ShieldStreak,
			Duration: 24 * 60, Cost: 600, Icon: "🛡️"},
		{ID: "perfect_week", Name: "Perfect Week", Type: domain.ShieldPerfect,
			Duration: 24 * 60, Cost: 900, Icon: "✨"},
		{ID: "time_freeze", Name: "Time Freeze", Type: domain.TimeFreeze,
			Duration: 60, Cost: 700, Icon: "🧊"},
		{ID: "xp_cache", Name: "XP Cache", Type: domain.InstantReward,
			Cost: 200, RewardXP: 150, Icon: "🎁"},
	}
}

// Catalog indexes power-up definitions by id.
type Catalog map[string]domain.PowerUpDef

// NewCatalog builds an indexed catalog from a definition list.
func NewCatalog(defs []domain.PowerUpDef) Catalog {
	c := make(Catalog, len(defs))
	for _, d := range defs {
		c[d.ID] = d
	}
	return c
}

// Lookup returns the definition for an id.
func (c Catalog) Lookup(id string) (domain.PowerUpDef, bool) {
	d, ok := c[id]
	return d, ok
}

// Defs returns the catalog's definitions. Order is not guaranteed; callers
// sort for display.
func (c Catalog) Defs() []domain.PowerUpDef {
	out := make([]domain.PowerUpDef, 0, len(c))
	for _, d := range c {
		out = append(out, d)
	}
	return out
}

// ─── Composition ────────────────────────────────────────────────────────────

// EffectiveMultiplier composes the single XP multiplier in force from the
// active instances: the MAXIMUM across multiplicative instances, floored at
// 1. Max, never sum or product — stacking two boosts gives you the better
// one, not both.
func EffectiveMultiplier(active []domain.ActivePowerUp) float64 {
	mult := 1.0
	for _, a := range active {
		if isMultiplicative(a.Type) && a.Multiplier > mult {
			mult = a.Multiplier
		}
	}
	return mult
}

// BonusExpiry returns the latest expiry across active multiplicative
// instances, and whether any are active. This is the ledger's BonusExpiry.
func BonusExpiry(active []domain.ActivePowerUp) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, a := range active {
		if !isMultiplicative(a.Type) {
			continue
		}
		if !found || a.ExpiresAt.After(latest) {
			latest = a.ExpiresAt
			found = true
		}
	}
	return latest, found
}

// ShieldActive reports whether any penalty-immunity instance is live.
// perfectOnly narrows the check to perfect_streak shields, which also
// suppress the overdue-task sub-penalty.
func ShieldActive(active []domain.ActivePowerUp, now time.Time, perfectOnly bool) bool {
	for _, a := range active {
		if a.Expired(now) {
			continue
		}
		if a.Type == domain.ShieldPerfect {
			return true
		}
		if !perfectOnly && a.Type == domain.ShieldStreak {
			return true
		}
	}
	return false
}

// sweepExpired removes instances whose expiry has passed, returning the
// survivors and the removed instances. Sweeping twice is a no-op.
func sweepExpired(active []domain.ActivePowerUp, now time.Time) (kept, removed []domain.ActivePowerUp) {
	for _, a := range active {
		if a.Expired(now) {
			removed = append(removed, a)
		} else {
			kept = append(kept, a)
		}
	}
	return kept, removed
}

func isMultiplicative(t domain.PowerUpType) bool {
	switch t {
	case domain.BoostXP, domain.BoostFocus, domain.BoostCombo,
		domain.BoostTask, domain.BoostCoding:
		return true
	}
	return false
}
