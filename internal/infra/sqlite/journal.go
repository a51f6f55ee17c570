package sqlite

import (
	"database/sql"
	"time"

	"github.com/gritforge/grit/internal/domain"
)

// ─── XP Ledger ──────────────────────────────────────────────────────────────

// AppendXPEntries records ledger entries in one transaction. Entries are
// append-only; there is no update or delete path.
func (d *DB) AppendXPEntries(entries []domain.XPEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range entries {
		if _, err := tx.Exec(
			`INSERT INTO xp_ledger (id, timestamp, kind, amount, reason, balance)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			e.ID, e.Timestamp.Unix(), string(e.Kind), e.Amount, e.Reason, e.Balance,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListXPEntries returns the most recent ledger entries, newest first.
func (d *DB) ListXPEntries(limit int) ([]domain.XPEntry, error) {
	rows, err := d.db.Query(
		`SELECT id, timestamp, kind, amount, reason, balance
		 FROM xp_ledger ORDER BY timestamp DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.XPEntry
	for rows.Next() {
		var e domain.XPEntry
		var ts int64
		if err := rows.Scan(&e.ID, &ts, &e.Kind, &e.Amount, &e.Reason, &e.Balance); err != nil {
			return nil, err
		}
		e.Timestamp = time.Unix(ts, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ─── Events ─────────────────────────────────────────────────────────────────

// AppendEvents records progression events in one transaction.
func (d *DB) AppendEvents(events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, ev := range events {
		if _, err := tx.Exec(
			`INSERT INTO events (type, title, body, created_at, shown)
			 VALUES (?, ?, ?, ?, ?)`,
			string(ev.Type), ev.Title, ev.Body, ev.CreatedAt.Unix(), ev.Shown,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListPendingEvents returns unshown events, newest first.
func (d *DB) ListPendingEvents(limit int) ([]domain.Event, error) {
	return d.listEvents(`SELECT id, type, title, body, created_at, shown
		 FROM events WHERE shown = 0 ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
}

// ListEvents returns the most recent events regardless of shown state.
func (d *DB) ListEvents(limit int) ([]domain.Event, error) {
	return d.listEvents(`SELECT id, type, title, body, created_at, shown
		 FROM events ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
}

// MarkEventShown marks one event as delivered to a frontend.
func (d *DB) MarkEventShown(id int64) error {
	_, err := d.db.Exec(`UPDATE events SET shown = 1 WHERE id = ?`, id)
	return err
}

func (d *DB) listEvents(query string, limit int) ([]domain.Event, error) {
	rows, err := d.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *ev)
	}
	return events, rows.Err()
}

func scanEvent(s scanner) (*domain.Event, error) {
	var ev domain.Event
	var createdAt int64
	err := s.Scan(&ev.ID, &ev.Type, &ev.Title, &ev.Body, &createdAt, &ev.Shown)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ev.CreatedAt = time.Unix(createdAt, 0)
	return &ev, nil
}
