package models

// HabitSummary is one habit's total over the recent window
type HabitSummary struct {
	Habit      Habit      `json:"habit"`
	Logs       []HabitLog `json:"logs"`
	TotalHours float64    `json:"total_hours"`
}

// ProgressSeries is the per-day chart data for a single habit.
// Labels and Hours always have the same length.
type ProgressSeries struct {
	Labels []string  `json:"labels"`
	Hours  []float64 `json:"hours"`
	Target float64   `json:"target"`
}

// DashboardStats aggregates a user's activity for the dashboard
type DashboardStats struct {
	TotalHabits    int     `json:"total_habits"`
	TodayHours     float64 `json:"today_hours"`
	WeekHours      float64 `json:"week_hours"`
	CompletedToday int     `json:"completed_today"`
	TotalTarget    float64 `json:"total_target"`
}
