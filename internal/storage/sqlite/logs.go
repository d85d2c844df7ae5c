package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/julianstephens/habitlog/internal/errors"
	"github.com/julianstephens/habitlog/internal/models"
)

const logColumns = "hl.id, hl.habit_id, hl.date, hl.hours, hl.notes, hl.created_at, hl.updated_at"

func (s *Store) UpsertHabitLog(ctx context.Context, log models.HabitLog) (models.HabitLog, error) {
	now := log.UpdatedAt
	if now.IsZero() {
		now = time.Now()
	}
	createdAt := log.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO habit_logs (date, hours, notes, created_at, updated_at, habit_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(habit_id, date) DO UPDATE SET
			hours = excluded.hours,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		log.Date, log.Hours, log.Notes, formatTime(createdAt), formatTime(now), log.HabitID,
	)
	if err != nil {
		return models.HabitLog{}, fmt.Errorf("failed to upsert habit log: %w", err)
	}

	return s.GetHabitLog(ctx, log.HabitID, log.Date)
}

func (s *Store) GetHabitLog(ctx context.Context, habitID int64, day string) (models.HabitLog, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+logColumns+`
		FROM habit_logs hl WHERE hl.habit_id = ? AND hl.date = ?`, habitID, day)

	l, err := scanLog(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.HabitLog{}, apperrors.ErrNotFound
		}
		return models.HabitLog{}, err
	}
	return l, nil
}

func (s *Store) ListHabitLogs(ctx context.Context, habitID int64, startDay, endDay string) ([]models.HabitLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+logColumns+`
		FROM habit_logs hl
		WHERE hl.habit_id = ? AND hl.date >= ? AND hl.date <= ?
		ORDER BY hl.date`, habitID, startDay, endDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLogs(rows)
}

func (s *Store) ListUserLogs(ctx context.Context, userID int64, startDay, endDay string) ([]models.HabitLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+logColumns+`
		FROM habit_logs hl
		JOIN habits h ON h.id = hl.habit_id
		WHERE h.user_id = ? AND hl.date >= ? AND hl.date <= ?
		ORDER BY hl.date, hl.habit_id`, userID, startDay, endDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLogs(rows)
}

func collectLogs(rows *sql.Rows) ([]models.HabitLog, error) {
	logs := []models.HabitLog{}
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func scanLog(row scanner) (models.HabitLog, error) {
	var l models.HabitLog
	var createdAt, updatedAt string

	err := row.Scan(&l.ID, &l.HabitID, &l.Date, &l.Hours, &l.Notes, &createdAt, &updatedAt)
	if err != nil {
		return models.HabitLog{}, err
	}

	l.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return models.HabitLog{}, fmt.Errorf("failed to parse created_at for log %d: %w", l.ID, err)
	}
	l.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return models.HabitLog{}, fmt.Errorf("failed to parse updated_at for log %d: %w", l.ID, err)
	}
	return l, nil
}
