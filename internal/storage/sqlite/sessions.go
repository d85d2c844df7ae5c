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

func (s *Store) CreateSession(ctx context.Context, session models.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, username, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)`,
		session.ID, session.UserID, session.Username,
		formatTime(session.CreatedAt), formatTime(session.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (models.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, username, created_at, expires_at
		FROM sessions WHERE id = ?`, id)

	var sess models.Session
	var createdAt, expiresAt string
	err := row.Scan(&sess.ID, &sess.UserID, &sess.Username, &createdAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Session{}, apperrors.ErrNotFound
		}
		return models.Session{}, err
	}

	sess.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	sess.ExpiresAt, err = parseTime(expiresAt)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to parse expires_at: %w", err)
	}
	return sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", formatTime(now))
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}
