package sqlite

import (
	"database/sql"
	"time"

	"github.com/gritforge/grit/internal/domain"
)

// The tasks table is the default domain.TaskSource: external trackers sync
// their tasks in through the API, and the daily reset judges them from here.

// UpsertTask inserts or updates a task record.
func (d *DB) UpsertTask(t domain.TaskDue) error {
	_, err := d.db.Exec(
		`INSERT INTO tasks (id, title, completed, due_date, xp_reward, priority)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			completed=excluded.completed,
			due_date=excluded.due_date,
			xp_reward=excluded.xp_reward,
			priority=excluded.priority`,
		t.ID, t.Title, t.Completed, nullableUnix(t.DueDate), t.XPReward, t.Priority,
	)
	return err
}

// GetTask retrieves a task by id.
func (d *DB) GetTask(id string) (*domain.TaskDue, error) {
	row := d.db.QueryRow(
		`SELECT id, title, completed, due_date, xp_reward, priority
		 FROM tasks WHERE id = ?`, id,
	)
	t, err := scanTask(row)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrTaskNotFound
	}
	return t, nil
}

// DeleteTask removes a task record.
func (d *DB) DeleteTask(id string) error {
	result, err := d.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// ListTasks returns all tasks ordered by due date, undated last.
func (d *DB) ListTasks() ([]domain.TaskDue, error) {
	rows, err := d.db.Query(
		`SELECT id, title, completed, due_date, xp_reward, priority
		 FROM tasks ORDER BY due_date IS NULL, due_date ASC, priority DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.TaskDue
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// DueTasks implements domain.TaskSource: incomplete tasks with a due date
// at or before now.
func (d *DB) DueTasks(now time.Time) ([]domain.TaskDue, error) {
	rows, err := d.db.Query(
		`SELECT id, title, completed, due_date, xp_reward, priority
		 FROM tasks WHERE completed = 0 AND due_date IS NOT NULL AND due_date <= ?
		 ORDER BY due_date ASC`, now.Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.TaskDue
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func scanTask(s scanner) (*domain.TaskDue, error) {
	var t domain.TaskDue
	var due sql.NullInt64
	err := s.Scan(&t.ID, &t.Title, &t.Completed, &due, &t.XPReward, &t.Priority)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if due.Valid {
		t.DueDate = time.Unix(due.Int64, 0)
	}
	return &t, nil
}

func nullableUnix(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}
