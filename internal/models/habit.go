package models

import "time"

// Habit represents a user-defined activity with a weekly hour target
type Habit struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	TargetHours float64   `json:"target_hours"`
	Category    string    `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

// HabitLog represents a single day's recorded hours against a habit
type HabitLog struct {
	ID        int64     `json:"id"`
	HabitID   int64     `json:"habit_id"`
	Date      string    `json:"date"` // YYYY-MM-DD format
	Hours     float64   `json:"hours"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
