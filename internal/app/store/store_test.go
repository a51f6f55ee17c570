package store_test

import (
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"

	"github.com/gritforge/grit/internal/app/progression"
	"github.com/gritforge/grit/internal/app/store"
	"github.com/gritforge/grit/internal/domain"
	"github.com/gritforge/grit/internal/infra/metrics"
	"github.com/gritforge/grit/internal/infra/sqlite"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testStore(t *testing.T) (*store.Store, *sqlite.DB, time.Time) {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	st, err := store.Open(db, progression.New(), quietLogger(), now)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st, db, now
}

func TestDispatchPersists(t *testing.T) {
	st, db, now := testStore(t)

	res, err := st.Dispatch(progression.RecordActivity{
		Stream: domain.StreamCoding,
		Kind:   domain.ActivityProblemSolved,
		XP:     120,
	}, now)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !res.Applied {
		t.Fatalf("rejected: %s", res.Reason)
	}

	if got := st.Snapshot().Ledger.CurrentXP; got != 120 {
		t.Errorf("in-memory balance = %d, want 120", got)
	}

	// The accepted transition is durable: the snapshot, the ledger entry,
	// and nothing else.
	loaded, found, err := db.LoadSnapshot(now)
	if err != nil || !found {
		t.Fatalf("reload: found=%v err=%v", found, err)
	}
	if loaded.Ledger.CurrentXP != 120 {
		t.Errorf("persisted balance = %d, want 120", loaded.Ledger.CurrentXP)
	}
	entries, err := db.ListXPEntries(10)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Amount != 120 {
		t.Errorf("journal = %+v, want one 120 XP credit", entries)
	}
}

func TestDispatchRejectionPersistsNothing(t *testing.T) {
	st, db, now := testStore(t)

	res, err := st.Dispatch(progression.BuyPowerUp{ID: "double_xp"}, now)
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if res.Applied {
		t.Fatal("zero-XP purchase applied")
	}
	if res.Reason == "" {
		t.Error("rejection carries no reason")
	}

	entries, _ := db.ListXPEntries(10)
	if len(entries) != 0 {
		t.Errorf("journal = %+v after rejection, want empty", entries)
	}
}

func TestStoreSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	st, err := store.Open(db, progression.New(), quietLogger(), now)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if _, err := st.Dispatch(progression.CreditXP{Amount: 2100, Multiplier: 1, Reason: "import"}, now); err != nil {
		t.Fatalf("credit: %v", err)
	}
	db.Close()

	db, err = sqlite.Open(dir)
	if err != nil {
		t.Fatalf("reopen db: %v", err)
	}
	defer db.Close()
	st, err = store.Open(db, progression.New(), quietLogger(), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}

	snap := st.Snapshot()
	if snap.Ledger.CurrentXP != 2100 || snap.Ledger.CurrentLevel != 3 {
		t.Errorf("restored ledger = %+v, want 2100 XP at level 3", snap.Ledger)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	st, _, _ := testStore(t)

	snap := st.Snapshot()
	snap.Ledger.CurrentXP = 999999
	snap.Owned["double_xp"] = 99

	if got := st.Snapshot(); got.Ledger.CurrentXP != 0 || got.Owned["double_xp"] != 0 {
		t.Error("mutating a snapshot leaked into the store")
	}
}

func TestDispatchCountsRestoredEnergy(t *testing.T) {
	st, _, now := testStore(t)

	if _, err := st.Dispatch(progression.SpendEnergy{Amount: 50}, now); err != nil {
		t.Fatalf("spend: %v", err)
	}

	before := testutil.ToFloat64(metrics.EnergyRestored)
	res, err := st.Dispatch(progression.Tick{}, now.Add(6*time.Minute))
	if err != nil {
		t.Fatalf("tick: %v", err)
	}
	if res.EnergyRestored != 2 {
		t.Fatalf("EnergyRestored = %d, want 2", res.EnergyRestored)
	}
	if got := testutil.ToFloat64(metrics.EnergyRestored) - before; got != 2 {
		t.Errorf("energy_restored_total advanced by %v, want 2", got)
	}
}
