// Package directory exposes the roster of psychologists students can book
// with.
package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/psyconnect/psyconnect_backend/internal/model"
)

var ErrNotFound = errors.New("no psychologists registered")

// Store is the slice of user persistence this service needs.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	ListByRole(ctx context.Context, role model.Role) ([]*model.User, error)
}

type Service interface {
	ListPsychologists(ctx context.Context) ([]*model.User, error)
}

type service struct {
	store Store
}

func New(st Store) Service {
	return &service{store: st}
}

// ListPsychologists returns every registered psychologist, newest first.
// An empty roster is reported as ErrNotFound rather than an empty list.
func (s *service) ListPsychologists(ctx context.Context) ([]*model.User, error) {
	users, err := s.store.ListByRole(ctx, model.RolePsychologist)
	if err != nil {
		return nil, fmt.Errorf("listing psychologists: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	return users, nil
}
