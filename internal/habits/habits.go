// Package habits manages habits and their daily logs for a signed-in user.
package habits

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/julianstephens/habitlog/internal/errors"
	"github.com/julianstephens/habitlog/internal/logger"
	"github.com/julianstephens/habitlog/internal/models"
	"github.com/julianstephens/habitlog/internal/storage"
	"github.com/julianstephens/habitlog/internal/utils"
	"github.com/julianstephens/habitlog/internal/validation"
)

// HabitInput carries the raw form values for a new habit
type HabitInput struct {
	Name        string
	Description string
	TargetHours string
	Category    string
}

// LogInput carries the raw form values for a day's log. A blank Date means today.
type LogInput struct {
	Date  string
	Hours string
	Notes string
}

type Service struct {
	store storage.Provider
	loc   *time.Location
	now   func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewService(store storage.Provider, opts ...Option) *Service {
	s := &Service{
		store: store,
		loc:   time.Local,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current day in the service's timezone
func (s *Service) Today() string {
	return utils.FormatDay(s.now().In(s.loc))
}

func (s *Service) CreateHabit(ctx context.Context, userID int64, in HabitInput) (models.Habit, error) {
	name := strings.TrimSpace(in.Name)
	if err := validation.HabitName(name); err != nil {
		return models.Habit{}, err
	}
	description := strings.TrimSpace(in.Description)
	if err := validation.Description(description); err != nil {
		return models.Habit{}, err
	}
	target, err := validation.TargetHours(in.TargetHours)
	if err != nil {
		return models.Habit{}, err
	}

	habit, err := s.store.CreateHabit(ctx, models.Habit{
		UserID:      userID,
		Name:        name,
		Description: description,
		TargetHours: target,
		Category:    validation.Category(in.Category),
		CreatedAt:   s.now(),
	})
	if err != nil {
		return models.Habit{}, err
	}

	logger.Info("Habit created", "user_id", userID, "habit_id", habit.ID)
	return habit, nil
}

func (s *Service) ListHabits(ctx context.Context, userID int64) ([]models.Habit, error) {
	return s.store.ListHabits(ctx, userID)
}

// GetHabit returns the habit when userID owns it. Missing habits and habits
// owned by someone else both yield ErrAccessDenied.
func (s *Service) GetHabit(ctx context.Context, userID, habitID int64) (models.Habit, error) {
	habit, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return models.Habit{}, apperrors.ErrAccessDenied
		}
		return models.Habit{}, err
	}
	if habit.UserID != userID {
		logger.Warn("Habit access denied", "user_id", userID, "habit_id", habitID)
		return models.Habit{}, apperrors.ErrAccessDenied
	}
	return habit, nil
}

// LogHabit records hours for one day, replacing any earlier entry for that day
func (s *Service) LogHabit(ctx context.Context, userID, habitID int64, in LogInput) (models.HabitLog, error) {
	if _, err := s.GetHabit(ctx, userID, habitID); err != nil {
		return models.HabitLog{}, err
	}

	day := s.Today()
	if strings.TrimSpace(in.Date) != "" {
		parsed, err := validation.LogDate(in.Date, s.loc)
		if err != nil {
			return models.HabitLog{}, err
		}
		day = parsed
	}

	hours, err := validation.LogHours(in.Hours)
	if err != nil {
		return models.HabitLog{}, err
	}

	now := s.now()
	entry, err := s.store.UpsertHabitLog(ctx, models.HabitLog{
		HabitID:   habitID,
		Date:      day,
		Hours:     hours,
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return models.HabitLog{}, err
	}

	logger.Debug("Habit logged", "habit_id", habitID, "date", day, "hours", hours)
	return entry, nil
}

// ListLogs returns the habit's logs with from <= date <= to, oldest first
func (s *Service) ListLogs(ctx context.Context, userID, habitID int64, from, to string) ([]models.HabitLog, error) {
	if _, err := s.GetHabit(ctx, userID, habitID); err != nil {
		return nil, err
	}

	start, err := validation.LogDate(from, s.loc)
	if err != nil {
		return nil, err
	}
	end, err := validation.LogDate(to, s.loc)
	if err != nil {
		return nil, err
	}
	if start > end {
		return nil, apperrors.Validation("date", "range start %s is after end %s", start, end)
	}

	logs, err := s.store.ListHabitLogs(ctx, habitID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	return logs, nil
}
