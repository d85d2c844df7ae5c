package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/habitlog/internal/errors"
	"github.com/julianstephens/habitlog/internal/models"
)

func (s *Store) CreateHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO habits (name, description, target_hours, category, created_at, user_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		habit.Name, habit.Description, habit.TargetHours, habit.Category,
		formatTime(habit.CreatedAt), habit.UserID,
	)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to insert habit: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to read habit id: %w", err)
	}
	habit.ID = id
	habit.CreatedAt = storedTime(habit.CreatedAt)
	return habit, nil
}

func (s *Store) GetHabit(ctx context.Context, id int64) (models.Habit, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, description, target_hours, category, created_at
		FROM habits WHERE id = ?`, id)

	h, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Habit{}, apperrors.ErrNotFound
		}
		return models.Habit{}, err
	}
	return h, nil
}

func (s *Store) ListHabits(ctx context.Context, userID int64) ([]models.Habit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, description, target_hours, category, created_at
		FROM habits WHERE user_id = ?
		ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	var createdAt string

	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Description, &h.TargetHours, &h.Category, &createdAt)
	if err != nil {
		return models.Habit{}, err
	}

	h.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %d: %w", h.ID, err)
	}
	return h, nil
}
