package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gritforge/grit/internal/app/progression"
	"github.com/gritforge/grit/internal/domain"
)

// Progression snapshot components are stored as one JSON blob per key, so a
// corrupted component is diagnosable on its own and partial schema evolution
// never rewrites unrelated state.
const (
	keyLedger  = "ledger"
	keyStreaks = "streaks"
	keyReset   = "reset"
	keyEnergy  = "energy"
	keyWeekly  = "weekly"
	keyOwned   = "owned_powerups"
	keyActive  = "active_powerups"
)

// SaveSnapshot persists all progression state components in one transaction.
func (d *DB) SaveSnapshot(s progression.State) error {
	components := []struct {
		key string
		val any
	}{
		{keyLedger, s.Ledger},
		{keyStreaks, s.Streaks},
		{keyReset, s.Reset},
		{keyEnergy, s.Energy},
		{keyWeekly, s.Weekly},
		{keyOwned, s.Owned},
		{keyActive, s.Active},
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	for _, c := range components {
		data, err := json.Marshal(c.val)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", c.key, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO progression (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value=excluded.value`,
			c.key, string(data),
		); err != nil {
			return fmt.Errorf("save %s: %w", c.key, err)
		}
	}
	return tx.Commit()
}

// LoadSnapshot restores the progression state. Returns found=false for a
// fresh database; callers seed a new state then. A present-but-unparsable
// component reports domain.ErrSnapshotCorrupt.
func (d *DB) LoadSnapshot(now time.Time) (progression.State, bool, error) {
	raw, err := d.GetProgression(keyLedger)
	if err != nil {
		return progression.State{}, false, err
	}
	if raw == "" {
		return progression.State{}, false, nil
	}

	s := progression.NewState(now)
	components := []struct {
		key string
		val any
	}{
		{keyLedger, &s.Ledger},
		{keyStreaks, &s.Streaks},
		{keyReset, &s.Reset},
		{keyEnergy, &s.Energy},
		{keyWeekly, &s.Weekly},
		{keyOwned, &s.Owned},
		{keyActive, &s.Active},
	}
	for _, c := range components {
		data, err := d.GetProgression(c.key)
		if err != nil {
			return progression.State{}, false, err
		}
		if data == "" {
			continue // component added after this database was created
		}
		if err := json.Unmarshal([]byte(data), c.val); err != nil {
			return progression.State{}, false,
				fmt.Errorf("%w: %s: %v", domain.ErrSnapshotCorrupt, c.key, err)
		}
	}

	// JSON null collapses maps to nil; the engine expects them allocated.
	if s.Owned == nil {
		s.Owned = map[string]int{}
	}
	if s.Streaks == nil {
		s.Streaks = map[domain.Stream]domain.StreakState{}
	}
	for _, stream := range domain.Streams() {
		st := s.Streaks[stream]
		if st.DailyActivity == nil {
			st.DailyActivity = map[string]domain.DailyActivity{}
		}
		s.Streaks[stream] = st
	}
	return s, true, nil
}
