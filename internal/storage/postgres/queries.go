package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitlog/internal/constants"
	apperrors "github.com/julianstephens/habitlog/internal/errors"
	"github.com/julianstephens/habitlog/internal/models"
)

type scanner interface {
	Scan(dest ...any) error
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	return err
}

// Users

const userColumns = "id, username, email, password_hash, created_at"

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userColumns,
		user.Username, user.Email, user.PasswordHash, user.CreatedAt.UTC(),
	)
	created, err := scanUser(row)
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok {
			switch {
			case strings.Contains(constraint, "username"):
				return models.User{}, apperrors.ErrDuplicateUsername
			case strings.Contains(constraint, "email"):
				return models.User{}, apperrors.ErrDuplicateEmail
			}
		}
		return models.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return created, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	u, err := scanUser(row)
	return u, notFound(err)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE username = $1", username)
	u, err := scanUser(row)
	return u, notFound(err)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
	u, err := scanUser(row)
	return u, notFound(err)
}

func scanUser(row scanner) (models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return models.User{}, err
	}
	return u, nil
}

// Habits

const habitColumns = "id, user_id, name, description, target_hours, category, created_at"

func (s *Store) CreateHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO habits (name, description, target_hours, category, created_at, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+habitColumns,
		habit.Name, habit.Description, habit.TargetHours, habit.Category, habit.CreatedAt.UTC(), habit.UserID,
	)
	created, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to insert habit: %w", err)
	}
	return created, nil
}

func (s *Store) GetHabit(ctx context.Context, id int64) (models.Habit, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+habitColumns+" FROM habits WHERE id = $1", id)
	h, err := scanHabit(row)
	return h, notFound(err)
}

func (s *Store) ListHabits(ctx context.Context, userID int64) ([]models.Habit, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+habitColumns+" FROM habits WHERE user_id = $1 ORDER BY id", userID)
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

func scanHabit(row scanner) (models.Habit, error) {
	var h models.Habit
	if err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Description, &h.TargetHours, &h.Category, &h.CreatedAt); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

// Habit logs

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

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO habit_logs AS hl (date, hours, notes, created_at, updated_at, habit_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (habit_id, date) DO UPDATE SET
			hours = EXCLUDED.hours,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
		RETURNING `+logColumns,
		log.Date, log.Hours, log.Notes, createdAt.UTC(), now.UTC(), log.HabitID,
	)
	stored, err := scanLog(row)
	if err != nil {
		return models.HabitLog{}, fmt.Errorf("failed to upsert habit log: %w", err)
	}
	return stored, nil
}

func (s *Store) GetHabitLog(ctx context.Context, habitID int64, day string) (models.HabitLog, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+logColumns+" FROM habit_logs hl WHERE hl.habit_id = $1 AND hl.date = $2",
		habitID, day)
	l, err := scanLog(row)
	return l, notFound(err)
}

func (s *Store) ListHabitLogs(ctx context.Context, habitID int64, startDay, endDay string) ([]models.HabitLog, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+logColumns+`
		FROM habit_logs hl
		WHERE hl.habit_id = $1 AND hl.date >= $2 AND hl.date <= $3
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
		WHERE h.user_id = $1 AND hl.date >= $2 AND hl.date <= $3
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
	var day time.Time
	if err := row.Scan(&l.ID, &l.HabitID, &day, &l.Hours, &l.Notes, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return models.HabitLog{}, err
	}
	l.Date = day.Format(constants.DateFormat)
	return l, nil
}

// Sessions

func (s *Store) CreateSession(ctx context.Context, session models.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, username, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)`,
		session.ID, session.UserID, session.Username, session.CreatedAt.UTC(), session.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (models.Session, error) {
	var sess models.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, username, created_at, expires_at
		FROM sessions WHERE id = $1`, id,
	).Scan(&sess.ID, &sess.UserID, &sess.Username, &sess.CreatedAt, &sess.ExpiresAt)
	if err != nil {
		return models.Session{}, notFound(err)
	}
	return sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= $1", now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
