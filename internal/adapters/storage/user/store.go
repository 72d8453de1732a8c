package user

import (
	"context"
	"errors"

	domain "weekendlog/internal/domain/user"
)

// ErrNotFound is returned when no user matches the given PS ID.
var ErrNotFound = errors.New("user not found")

// Store persists the users collection. The collection is one JSON document;
// every mutation loads it whole, modifies it in memory, and writes it back.
type Store interface {
	All(ctx context.Context) ([]domain.User, error)
	ReplaceAll(ctx context.Context, users []domain.User) error
	GetByPSID(ctx context.Context, psID string) (domain.User, error)
	Save(ctx context.Context, value domain.User) error
	Delete(ctx context.Context, psID string) error
	Count(ctx context.Context) (int, error)
}
