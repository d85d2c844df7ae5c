// Package session persists server-side login sessions.
package session

import (
	"context"

	"github.com/julianstephens/habitlog/internal/models"
	"github.com/julianstephens/habitlog/internal/storage"
)

// Store saves sessions by id. Get returns errors.ErrNotFound for unknown ids.
type Store interface {
	Create(ctx context.Context, s models.Session) error
	Get(ctx context.Context, id string) (models.Session, error)
	Delete(ctx context.Context, id string) error
}

// SQLStore keeps sessions in the sessions table of the application database
type SQLStore struct {
	provider storage.Provider
}

func NewSQLStore(provider storage.Provider) *SQLStore {
	return &SQLStore{provider: provider}
}

func (s *SQLStore) Create(ctx context.Context, sess models.Session) error {
	return s.provider.CreateSession(ctx, sess)
}

func (s *SQLStore) Get(ctx context.Context, id string) (models.Session, error) {
	return s.provider.GetSession(ctx, id)
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	return s.provider.DeleteSession(ctx, id)
}
