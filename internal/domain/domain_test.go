package domain_test

import (
	"testing"
	"time"

	"github.com/gritforge/grit/internal/domain"
)

func TestDayGap(t *testing.T) {
	tests := []struct {
		last, today string
		want        int
	}{
		{"2025-07-01", "2025-07-01", 0},
		{"2025-07-01", "2025-07-02", 1},
		{"2025-07-01", "2025-07-04", 3},
		{"2025-06-30", "2025-07-01", 1}, // month boundary
		{"2024-12-31", "2025-01-01", 1}, // year boundary
		{"2025-07-02", "2025-07-01", -1}, // clock moved backward
	}
	for _, tt := range tests {
		got, err := domain.DayGap(tt.last, tt.today)
		if err != nil {
			t.Fatalf("DayGap(%s, %s): %v", tt.last, tt.today, err)
		}
		if got != tt.want {
			t.Errorf("DayGap(%s, %s) = %d, want %d", tt.last, tt.today, got, tt.want)
		}
	}
}

func TestNextMidnight(t *testing.T) {
	at := time.Date(2025, 7, 1, 18, 30, 0, 0, time.UTC)
	next := domain.NextMidnight(at)
	want := time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("NextMidnight = %v, want %v", next, want)
	}

	// Already at midnight — next midnight is tomorrow, not now.
	mid := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	if got := domain.NextMidnight(mid); !got.Equal(want) {
		t.Errorf("NextMidnight at midnight = %v, want %v", got, want)
	}
}

func TestElapsedSeconds_ClampsFuture(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(1 * time.Hour)
	if got := domain.ElapsedSeconds(future, now); got != 0 {
		t.Errorf("future timestamp should read as 0 elapsed, got %d", got)
	}
	if got := domain.ElapsedSeconds(now.Add(-90*time.Second), now); got != 90 {
		t.Errorf("expected 90s elapsed, got %d", got)
	}
}

func TestISOWeek(t *testing.T) {
	// 2025-06-30 is a Monday — start of ISO week 27.
	mon := time.Date(2025, 6, 30, 9, 0, 0, 0, time.UTC)
	sun := time.Date(2025, 7, 6, 23, 0, 0, 0, time.UTC)
	if domain.ISOWeek(mon) != domain.ISOWeek(sun) {
		t.Errorf("Mon and Sun of same ISO week differ: %s vs %s",
			domain.ISOWeek(mon), domain.ISOWeek(sun))
	}
	nextMon := time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC)
	if domain.ISOWeek(mon) == domain.ISOWeek(nextMon) {
		t.Error("consecutive ISO weeks should differ")
	}
}

func TestEnergyMood(t *testing.T) {
	tests := []struct {
		current int
		want    domain.Mood
	}{
		{100, domain.MoodEnergized},
		{75, domain.MoodEnergized},
		{60, domain.MoodFocused},
		{45, domain.MoodFocused},
		{30, domain.MoodTired},
		{10, domain.MoodExhausted},
		{0, domain.MoodExhausted},
	}
	for _, tt := range tests {
		e := domain.EnergyState{Current: tt.current, Max: 100}
		if got := e.Mood(); got != tt.want {
			t.Errorf("Mood at %d/100 = %s, want %s", tt.current, got, tt.want)
		}
	}
}

func TestStreakStateClone(t *testing.T) {
	orig := domain.StreakState{
		CurrentStreak: 3,
		LongestStreak: 5,
		DailyActivity: map[string]domain.DailyActivity{
			"2025-07-01": {TasksCompleted: 2},
		},
	}
	cp := orig.Clone()
	cp.DailyActivity["2025-07-02"] = domain.DailyActivity{ProblemsSolved: 1}

	if _, ok := orig.DailyActivity["2025-07-02"]; ok {
		t.Error("clone shares the daily activity map with the original")
	}
}

func TestTaskOverdue(t *testing.T) {
	now := time.Date(2025, 7, 2, 12, 0, 0, 0, time.UTC)

	overdue := domain.TaskDue{DueDate: now.Add(-time.Hour)}
	if !overdue.Overdue(now) {
		t.Error("incomplete task past due should be overdue")
	}

	done := domain.TaskDue{Completed: true, DueDate: now.Add(-time.Hour)}
	if done.Overdue(now) {
		t.Error("completed task should never be overdue")
	}

	undated := domain.TaskDue{}
	if undated.Overdue(now) {
		t.Error("task without a due date should never be overdue")
	}
}
