// Package metrics provides Prometheus metrics for Grit — counters and gauges
// for XP flow, levels, streaks, energy, power-ups, and the daily reset.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── XP ─────────────────────────────────────────────────────────────────────

// XPEarned tracks total XP credited, by reason.
var XPEarned = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "grit",
	Name:      "xp_earned_total",
	Help:      "Total XP credited.",
}, []string{"reason"})

// XPSpent tracks total XP debited, by kind (DEBIT or PENALTY).
var XPSpent = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "grit",
	Name:      "xp_spent_total",
	Help:      "Total XP debited.",
}, []string{"kind"})

// XPBalance tracks the current spendable XP balance.
var XPBalance = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "grit",
	Name:      "xp_balance_current",
	Help:      "Current spendable XP balance.",
})

// Level tracks the current level.
var Level = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "grit",
	Name:      "level_current",
	Help:      "Current level.",
})

// ─── Streaks ────────────────────────────────────────────────────────────────

// Streak tracks the current streak per stream.
var Streak = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "grit",
	Name:      "streak_days",
	Help:      "Current streak in days.",
}, []string{"stream"})

// StreaksBroken tracks streak breaks per stream.
var StreaksBroken = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "grit",
	Name:      "streaks_broken_total",
	Help:      "Total streak breaks.",
}, []string{"stream"})

// ─── Energy ─────────────────────────────────────────────────────────────────

// Energy tracks the current energy pool.
var Energy = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "grit",
	Name:      "energy_current",
	Help:      "Current energy.",
})

// EnergyRestored tracks total energy units restored by regeneration.
var EnergyRestored = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "grit",
	Name:      "energy_restored_total",
	Help:      "Total energy units restored by regeneration.",
})

// ─── Power-Ups ──────────────────────────────────────────────────────────────

// PowerUpsActive tracks currently active power-up instances.
var PowerUpsActive = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "grit",
	Name:      "powerups_active",
	Help:      "Number of currently active power-up instances.",
})

// PowerUpsPurchased tracks purchases by power-up id.
var PowerUpsPurchased = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "grit",
	Name:      "powerups_purchased_total",
	Help:      "Total power-up purchases.",
}, []string{"id"})

// XPMultiplier tracks the effective XP multiplier in force.
var XPMultiplier = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "grit",
	Name:      "xp_multiplier_effective",
	Help:      "Effective XP multiplier currently in force.",
})

// ─── Daily Reset ────────────────────────────────────────────────────────────

// ResetsPerformed tracks completed daily resets.
var ResetsPerformed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "grit",
	Name:      "daily_resets_total",
	Help:      "Total daily resets performed.",
})

// PenaltiesApplied tracks penalties by source (missed streak, overdue tasks).
var PenaltiesApplied = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "grit",
	Name:      "penalties_applied_total",
	Help:      "Total penalties applied at daily reset.",
}, []string{"source"})

// ─── Intents ────────────────────────────────────────────────────────────────

// IntentsApplied tracks accepted state transitions by intent name.
var IntentsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "grit",
	Name:      "intents_applied_total",
	Help:      "Total accepted state transitions.",
}, []string{"intent"})

// IntentsRejected tracks rejected state transitions by intent name.
var IntentsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "grit",
	Name:      "intents_rejected_total",
	Help:      "Total rejected state transitions.",
}, []string{"intent"})
