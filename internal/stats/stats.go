// Package stats aggregates habit logs into summaries and chart series.
package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitlog/internal/constants"
	apperrors "github.com/julianstephens/habitlog/internal/errors"
	"github.com/julianstephens/habitlog/internal/models"
	"github.com/julianstephens/habitlog/internal/storage"
	"github.com/julianstephens/habitlog/internal/utils"
)

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

func (s *Service) today() time.Time {
	return utils.StartOfDay(s.now().In(s.loc))
}

// RecentSummary totals each of the user's habits over the last seven days,
// today included. Habits without logs report zero hours.
func (s *Service) RecentSummary(ctx context.Context, userID int64) ([]models.HabitSummary, error) {
	habits, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}

	start, end := utils.TrailingWindow(s.today(), constants.RecentWindowDays)
	logs, err := s.store.ListUserLogs(ctx, userID, utils.FormatDay(start), utils.FormatDay(end))
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	byHabit := make(map[int64][]models.HabitLog, len(habits))
	for _, l := range logs {
		byHabit[l.HabitID] = append(byHabit[l.HabitID], l)
	}

	summaries := make([]models.HabitSummary, 0, len(habits))
	for _, h := range habits {
		habitLogs := byHabit[h.ID]
		if habitLogs == nil {
			habitLogs = []models.HabitLog{}
		}
		summaries = append(summaries, models.HabitSummary{
			Habit:      h,
			Logs:       habitLogs,
			TotalHours: sumHours(habitLogs),
		})
	}
	return summaries, nil
}

// ProgressSeries returns one point per day for the last thirty days, oldest
// first, with zero for days that have no log.
func (s *Service) ProgressSeries(ctx context.Context, userID, habitID int64) (models.ProgressSeries, error) {
	habit, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return models.ProgressSeries{}, apperrors.ErrAccessDenied
		}
		return models.ProgressSeries{}, err
	}
	if habit.UserID != userID {
		return models.ProgressSeries{}, apperrors.ErrAccessDenied
	}

	start, end := utils.TrailingWindow(s.today(), constants.ProgressWindowDays)
	logs, err := s.store.ListHabitLogs(ctx, habitID, utils.FormatDay(start), utils.FormatDay(end))
	if err != nil {
		return models.ProgressSeries{}, fmt.Errorf("failed to list logs: %w", err)
	}

	hoursByDay := make(map[string]float64, len(logs))
	for _, l := range logs {
		hoursByDay[l.Date] = l.Hours
	}

	days := utils.DaysInRange(start, end)
	series := models.ProgressSeries{
		Labels: make([]string, 0, len(days)),
		Hours:  make([]float64, 0, len(days)),
		Target: habit.TargetHours,
	}
	for _, d := range days {
		series.Labels = append(series.Labels, d.Format(constants.ChartLabelFormat))
		series.Hours = append(series.Hours, hoursByDay[utils.FormatDay(d)])
	}
	return series, nil
}

// DashboardStats summarizes today and the current Monday-based week
func (s *Service) DashboardStats(ctx context.Context, userID int64) (models.DashboardStats, error) {
	habits, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		return models.DashboardStats{}, fmt.Errorf("failed to list habits: %w", err)
	}

	today := s.today()
	todayKey := utils.FormatDay(today)
	weekLogs, err := s.store.ListUserLogs(ctx, userID, utils.FormatDay(utils.WeekStart(today)), todayKey)
	if err != nil {
		return models.DashboardStats{}, fmt.Errorf("failed to list logs: %w", err)
	}

	stats := models.DashboardStats{TotalHabits: len(habits)}
	for _, h := range habits {
		stats.TotalTarget += h.TargetHours
	}
	for _, l := range weekLogs {
		stats.WeekHours += l.Hours
		if l.Date == todayKey {
			stats.TodayHours += l.Hours
			if l.Hours > 0 {
				stats.CompletedToday++
			}
		}
	}
	return stats, nil
}

func sumHours(logs []models.HabitLog) float64 {
	var total float64
	for _, l := range logs {
		total += l.Hours
	}
	return total
}
