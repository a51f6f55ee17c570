// Package store owns the live progression snapshot. All mutation funnels
// through Dispatch, which serializes intents, runs the pure engine, and
// persists accepted transitions before exposing them to readers.
package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gritforge/grit/internal/app/progression"
	"github.com/gritforge/grit/internal/domain"
	"github.com/gritforge/grit/internal/infra/metrics"
	"github.com/gritforge/grit/internal/infra/sqlite"
)

// Store is the single writer over the progression state.
type Store struct {
	mu     sync.Mutex
	state  progression.State
	engine *progression.Engine
	db     *sqlite.DB
	log    *logrus.Entry
}

// Open loads the persisted snapshot, or seeds a fresh one on first run.
func Open(db *sqlite.DB, eng *progression.Engine, logger *logrus.Logger, now time.Time) (*Store, error) {
	state, found, err := db.LoadSnapshot(now)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	log := logger.WithField("component", "store")
	if !found {
		state = progression.NewState(now)
		if err := db.SaveSnapshot(state); err != nil {
			return nil, fmt.Errorf("seed snapshot: %w", err)
		}
		log.Info("seeded fresh progression state")
	}

	s := &Store{state: state, engine: eng, db: db, log: log}
	s.publishGauges(state)
	return s, nil
}

// Dispatch applies one intent. Rejections come back in the Result with
// Applied=false; the error return is for persistence failures only, and a
// persistence failure leaves the in-memory state at the pre-intent snapshot.
func (s *Store) Dispatch(in progression.Intent, now time.Time) (progression.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := intentName(in)
	res := s.engine.Apply(s.state, in, now)
	if !res.Applied {
		metrics.IntentsRejected.WithLabelValues(name).Inc()
		s.log.WithFields(logrus.Fields{"intent": name, "reason": res.Reason}).Debug("intent rejected")
		return res, nil
	}

	if err := s.persist(res); err != nil {
		return progression.Result{State: s.state}, fmt.Errorf("persist %s: %w", name, err)
	}
	s.state = res.State

	metrics.IntentsApplied.WithLabelValues(name).Inc()
	if res.EnergyRestored > 0 {
		metrics.EnergyRestored.Add(float64(res.EnergyRestored))
	}
	s.recordEntries(res.Entries)
	s.recordEvents(res.Events)
	s.publishGauges(res.State)

	if len(res.Events) > 0 || len(res.Entries) > 0 {
		s.log.WithFields(logrus.Fields{
			"intent":  name,
			"events":  len(res.Events),
			"entries": len(res.Entries),
			"xp":      res.State.Ledger.CurrentXP,
			"level":   res.State.Ledger.CurrentLevel,
		}).Info("intent applied")
	}
	return res, nil
}

// Snapshot returns a deep copy of the current state for readers.
func (s *Store) Snapshot() progression.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Engine exposes the engine's tunables (catalog, penalty policy) to the API
// layer. The engine itself is immutable.
func (s *Store) Engine() *progression.Engine {
	return s.engine
}

func (s *Store) persist(res progression.Result) error {
	if err := s.db.SaveSnapshot(res.State); err != nil {
		return err
	}
	if err := s.db.AppendXPEntries(res.Entries); err != nil {
		return err
	}
	return s.db.AppendEvents(res.Events)
}

func (s *Store) recordEntries(entries []domain.XPEntry) {
	for _, e := range entries {
		switch e.Kind {
		case domain.XPCredit:
			metrics.XPEarned.WithLabelValues(e.Reason).Add(float64(e.Amount))
		default:
			metrics.XPSpent.WithLabelValues(string(e.Kind)).Add(float64(e.Amount))
		}
	}
}

func (s *Store) recordEvents(events []domain.Event) {
	for _, ev := range events {
		switch ev.Type {
		case domain.EventStreakBroken:
			metrics.StreaksBroken.WithLabelValues("any").Inc()
		case domain.EventPenaltyApplied:
			metrics.PenaltiesApplied.WithLabelValues(ev.Title).Inc()
		case domain.EventPowerUpPurchased:
			metrics.PowerUpsPurchased.WithLabelValues(ev.Body).Inc()
		case domain.EventDailyReset:
			metrics.ResetsPerformed.Inc()
		}
	}
}

func (s *Store) publishGauges(st progression.State) {
	metrics.XPBalance.Set(float64(st.Ledger.CurrentXP))
	metrics.Level.Set(float64(st.Ledger.CurrentLevel))
	metrics.Energy.Set(float64(st.Energy.Current))
	metrics.PowerUpsActive.Set(float64(len(st.Active)))
	metrics.XPMultiplier.Set(st.Ledger.XPMultiplier)
	for stream, streak := range st.Streaks {
		metrics.Streak.WithLabelValues(string(stream)).Set(float64(streak.CurrentStreak))
	}
}

func intentName(in progression.Intent) string {
	switch in.(type) {
	case progression.CreditXP:
		return "credit_xp"
	case progression.DebitXP:
		return "debit_xp"
	case progression.RecordActivity:
		return "record_activity"
	case progression.BuyPowerUp:
		return "buy_powerup"
	case progression.ActivatePowerUp:
		return "activate_powerup"
	case progression.ExpirePowerUps:
		return "expire_powerups"
	case progression.RestoreEnergy:
		return "restore_energy"
	case progression.SpendEnergy:
		return "spend_energy"
	case progression.Tick:
		return "tick"
	case progression.PerformDailyReset:
		return "daily_reset"
	default:
		return "unknown"
	}
}
