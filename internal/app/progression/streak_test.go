package progression_test

import (
	"testing"

	"github.com/gritforge/grit/internal/app/progression"
)

func TestNextStreak(t *testing.T) {
	tests := []struct {
		name    string
		current int
		last    string
		today   string
		want    progression.StreakResult
	}{
		{
			name:    "first ever activity",
			current: 0,
			last:    "",
			today:   "2026-03-10",
			want:    progression.StreakResult{Value: 1, Continued: false, Broken: false},
		},
		{
			name:    "same day repeat",
			current: 5,
			last:    "2026-03-10",
			today:   "2026-03-10",
			want:    progression.StreakResult{Value: 5, Continued: true},
		},
		{
			name:    "consecutive day",
			current: 5,
			last:    "2026-03-10",
			today:   "2026-03-11",
			want:    progression.StreakResult{Value: 6, Continued: true},
		},
		{
			name:    "one missed day",
			current: 5,
			last:    "2026-03-10",
			today:   "2026-03-12",
			want:    progression.StreakResult{Value: 1, Broken: true},
		},
		{
			name:    "long idle",
			current: 42,
			last:    "2026-01-01",
			today:   "2026-03-12",
			want:    progression.StreakResult{Value: 1, Broken: true},
		},
		{
			name:    "month boundary is consecutive",
			current: 3,
			last:    "2026-02-28",
			today:   "2026-03-01",
			want:    progression.StreakResult{Value: 4, Continued: true},
		},
		{
			name:    "clock moved backwards",
			current: 5,
			last:    "2026-03-12",
			today:   "2026-03-11",
			want:    progression.StreakResult{Value: 5, Continued: true},
		},
		{
			name:    "malformed stored date restarts",
			current: 5,
			last:    "not-a-date",
			today:   "2026-03-11",
			want:    progression.StreakResult{Value: 1, Broken: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := progression.NextStreak(tt.current, tt.last, tt.today)
			if got != tt.want {
				t.Errorf("NextStreak(%d, %q, %q) = %+v, want %+v",
					tt.current, tt.last, tt.today, got, tt.want)
			}
		})
	}
}

func TestStreakXPMultiplier(t *testing.T) {
	tests := []struct {
		streak int
		want   float64
	}{
		{0, 1.0},
		{2, 1.0},
		{3, 1.15},
		{6, 1.15},
		{7, 1.25},
		{13, 1.25},
		{14, 1.5},
		{29, 1.5},
		{30, 2.0},
		{365, 2.0},
	}
	for _, tt := range tests {
		if got := progression.StreakXPMultiplier(tt.streak); got != tt.want {
			t.Errorf("StreakXPMultiplier(%d) = %v, want %v", tt.streak, got, tt.want)
		}
	}
}
