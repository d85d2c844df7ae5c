// Package auth registers users and manages their login sessions.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitlog/internal/constants"
	apperrors "github.com/julianstephens/habitlog/internal/errors"
	"github.com/julianstephens/habitlog/internal/logger"
	"github.com/julianstephens/habitlog/internal/models"
	"github.com/julianstephens/habitlog/internal/session"
	"github.com/julianstephens/habitlog/internal/storage"
	"github.com/julianstephens/habitlog/internal/validation"
)

type Service struct {
	store    storage.Provider
	sessions session.Store
	ttl      time.Duration
	now      func() time.Time
	newID    func() string
}

type Option func(*Service)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSessionTTL sets how long a login stays valid
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func NewService(store storage.Provider, sessions session.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		sessions: sessions,
		ttl:      constants.DefaultSessionTTL,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user. A taken username is reported before a taken email.
func (s *Service) Register(ctx context.Context, username, email, password string) (models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if err := validation.Registration(username, email, password); err != nil {
		return models.User{}, err
	}

	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return models.User{}, apperrors.ErrDuplicateUsername
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return models.User{}, fmt.Errorf("failed to look up username: %w", err)
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return models.User{}, apperrors.ErrDuplicateEmail
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return models.User{}, fmt.Errorf("failed to look up email: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return models.User{}, err
	}

	logger.Info("User registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login checks credentials and starts a session bound to the user
func (s *Service) Login(ctx context.Context, username, password string) (models.Session, error) {
	username = strings.TrimSpace(username)

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return models.Session{}, apperrors.ErrInvalidCredentials
		}
		return models.Session{}, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := CheckPassword(user.PasswordHash, password); err != nil {
		logger.Debug("Login rejected", "username", username)
		return models.Session{}, apperrors.ErrInvalidCredentials
	}

	now := s.now()
	sess := models.Session{
		ID:        s.newID(),
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return models.Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	if removed, err := s.store.DeleteExpiredSessions(ctx, now); err != nil {
		logger.Warn("Failed to purge expired sessions", "error", err)
	} else if removed > 0 {
		logger.Debug("Purged expired sessions", "count", removed)
	}

	logger.Info("User logged in", "user_id", user.ID)
	return sess, nil
}

// Logout ends the session. Unknown or empty ids are ignored.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Authenticate resolves a session id to the signed-in identity
func (s *Service) Authenticate(ctx context.Context, sessionID string) (models.Session, error) {
	if sessionID == "" {
		return models.Session{}, apperrors.ErrUnauthenticated
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return models.Session{}, apperrors.ErrUnauthenticated
		}
		return models.Session{}, fmt.Errorf("failed to load session: %w", err)
	}

	if sess.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			logger.Warn("Failed to delete expired session", "error", err)
		}
		return models.Session{}, apperrors.ErrUnauthenticated
	}

	return sess, nil
}
