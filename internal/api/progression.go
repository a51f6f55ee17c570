package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gritforge/grit/internal/app/progression"
	"github.com/gritforge/grit/internal/domain"
)

// ─── Payloads ───────────────────────────────────────────────────────────────

// summaryPayload is the full progression view frontends poll.
type summaryPayload struct {
	Ledger  domain.XPLedger                      `json:"ledger"`
	Streaks map[domain.Stream]domain.StreakState `json:"streaks"`
	Energy  energyPayload                        `json:"energy"`
	Reset   domain.DailyResetState               `json:"reset"`
	Weekly  domain.WeeklyStats                   `json:"weekly"`
	Owned   map[string]int                       `json:"owned_powerups"`
	Active  []domain.ActivePowerUp               `json:"active_powerups"`
}

type energyPayload struct {
	Current int         `json:"current"`
	Max     int         `json:"max"`
	Mood    domain.Mood `json:"mood"`
}

// intentResponse reports an intent's outcome. Rejections are ordinary
// responses with applied=false, not HTTP errors.
type intentResponse struct {
	Applied bool             `json:"applied"`
	Reason  string           `json:"reason,omitempty"`
	Events  []domain.Event   `json:"events,omitempty"`
	Entries []domain.XPEntry `json:"entries,omitempty"`
	State   summaryPayload   `json:"state"`
}

func summarize(s progression.State) summaryPayload {
	return summaryPayload{
		Ledger:  s.Ledger,
		Streaks: s.Streaks,
		Energy:  energyPayload{Current: s.Energy.Current, Max: s.Energy.Max, Mood: s.Energy.Mood()},
		Reset:   s.Reset,
		Weekly:  s.Weekly,
		Owned:   s.Owned,
		Active:  s.Active,
	}
}

// fresh returns the current snapshot advanced to now. The advance is a pure
// computation for read freshness; the durable tick stays with the poller.
func (s *Server) fresh(now time.Time) progression.State {
	return s.store.Engine().Apply(s.store.Snapshot(), progression.Tick{}, now).State
}

func (s *Server) dispatch(w http.ResponseWriter, in progression.Intent) {
	res, err := s.store.Dispatch(in, time.Now())
	if err != nil {
		s.log.WithError(err).Error("dispatch failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, intentResponse{
		Applied: res.Applied,
		Reason:  res.Reason,
		Events:  res.Events,
		Entries: res.Entries,
		State:   summarize(res.State),
	})
}

// ─── Reads ──────────────────────────────────────────────────────────────────

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, summarize(s.fresh(time.Now())))
}

func (s *Server) handleStreaks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.fresh(time.Now()).Streaks)
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	stream := domain.Stream(chi.URLParam(r, "stream"))
	snap := s.fresh(time.Now())
	st, ok := snap.Streaks[stream]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown stream: "+string(stream))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleEnergy(w http.ResponseWriter, r *http.Request) {
	snap := s.fresh(time.Now())
	writeJSON(w, http.StatusOK, energyPayload{
		Current: snap.Energy.Current,
		Max:     snap.Energy.Max,
		Mood:    snap.Energy.Mood(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.db.ListXPEntries(queryLimit(r, 50))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []domain.XPEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 50)
	var (
		events []domain.Event
		err    error
	)
	if r.URL.Query().Get("pending") == "true" {
		events, err = s.db.ListPendingEvents(limit)
	} else {
		events, err = s.db.ListEvents(limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if events == nil {
		events = []domain.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleEventShown(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}
	if err := s.db.MarkEventShown(id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// ─── Intents ────────────────────────────────────────────────────────────────

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Stream  string `json:"stream"`
		Kind    string `json:"kind"`
		XP      int64  `json:"xp"`
		Minutes int    `json:"minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Stream == "" {
		req.Stream = string(domain.StreamGlobal)
	}
	s.dispatch(w, progression.RecordActivity{
		Stream:  domain.Stream(req.Stream),
		Kind:    domain.ActivityKind(req.Kind),
		XP:      req.XP,
		Minutes: req.Minutes,
	})
}

func (s *Server) handleCreditXP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int64  `json:"amount"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.dispatch(w, progression.CreditXP{Amount: req.Amount, Multiplier: 1, Reason: req.Reason})
}

func (s *Server) handleDebitXP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int64  `json:"amount"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.dispatch(w, progression.DebitXP{Amount: req.Amount, Reason: req.Reason})
}

func (s *Server) handleSpendEnergy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.dispatch(w, progression.SpendEnergy{Amount: req.Amount})
}

func (s *Server) handleRestoreEnergy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.dispatch(w, progression.RestoreEnergy{Amount: req.Amount})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	tasks, err := s.db.DueTasks(now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.dispatch(w, progression.PerformDailyReset{Tasks: tasks})
}

// ─── Shop ───────────────────────────────────────────────────────────────────

type shopItem struct {
	domain.PowerUpDef
	OwnedCount int `json:"owned_count"`
}

func (s *Server) handleShop(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	defs := s.store.Engine().Catalog.Defs()
	sort.Slice(defs, func(i, j int) bool { return defs[i].Cost < defs[j].Cost })

	items := make([]shopItem, 0, len(defs))
	for _, d := range defs {
		items = append(items, shopItem{PowerUpDef: d, OwnedCount: snap.Owned[d.ID]})
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, progression.BuyPowerUp{ID: chi.URLParam(r, "id")})
}

func (s *Server) handleUse(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, progression.ActivatePowerUp{ID: chi.URLParam(r, "id")})
}

// ─── Tasks ──────────────────────────────────────────────────────────────────

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.db.ListTasks()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tasks == nil {
		tasks = []domain.TaskDue{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleUpsertTask(w http.ResponseWriter, r *http.Request) {
	var t domain.TaskDue
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t.ID = chi.URLParam(r, "id")
	if err := s.db.UpsertTask(t); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	err := s.db.DeleteTask(chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrTaskNotFound) {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func queryLimit(r *http.Request, def int) int {
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 500 {
			return n
		}
	}
	return def
}
