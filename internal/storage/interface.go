package storage

import (
	"context"
	"time"

	"github.com/julianstephens/habitlog/internal/migration"
	"github.com/julianstephens/habitlog/internal/models"
)

// Provider is the typed repository over users, habits, habit logs and
// sessions. Lookups that find nothing return errors.ErrNotFound.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error

	// Schema
	Migrate(ctx context.Context, logFn func(string)) (int, error)
	SchemaStatus(ctx context.Context) (migration.Status, error)

	// Users
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	GetUser(ctx context.Context, id int64) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Habits
	CreateHabit(ctx context.Context, habit models.Habit) (models.Habit, error)
	GetHabit(ctx context.Context, id int64) (models.Habit, error)
	ListHabits(ctx context.Context, userID int64) ([]models.Habit, error)

	// Habit Logs
	// UpsertHabitLog inserts a log or overwrites hours and notes of the
	// existing log for the same (habit_id, date).
	UpsertHabitLog(ctx context.Context, log models.HabitLog) (models.HabitLog, error)
	GetHabitLog(ctx context.Context, habitID int64, day string) (models.HabitLog, error)
	// ListHabitLogs returns logs for one habit with startDay <= date <= endDay, oldest first.
	ListHabitLogs(ctx context.Context, habitID int64, startDay, endDay string) ([]models.HabitLog, error)
	// ListUserLogs returns logs across all of a user's habits in the range, oldest first.
	ListUserLogs(ctx context.Context, userID int64, startDay, endDay string) ([]models.HabitLog, error)

	// Sessions
	CreateSession(ctx context.Context, session models.Session) error
	GetSession(ctx context.Context, id string) (models.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	// Utils
	GetConfigPath() string
}
