package domain

import "time"

// TaskDue is the slice of the task collaborator's model the engine needs:
// enough to compute overdue penalties and completion credits. The engine
// never owns tasks; it only reads them at reset time.
type TaskDue struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	DueDate   time.Time `json:"due_date"`
	XPReward  int64     `json:"xp_reward"`
	Priority  int       `json:"priority"`
}

// Overdue reports whether the task is incomplete past its due date.
// Tasks without a due date are never overdue.
func (t TaskDue) Overdue(now time.Time) bool {
	return !t.Completed && !t.DueDate.IsZero() && t.DueDate.Before(now)
}

// TaskSource supplies the engine with the tasks it should judge at a day
// boundary. Implemented by the sqlite task feed; any external task system
// can stand in.
type TaskSource interface {
	DueTasks(now time.Time) ([]TaskDue, error)
}
