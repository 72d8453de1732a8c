package weekend

import (
	"context"
	"errors"

	domain "weekendlog/internal/domain/weekend"
)

// ErrNotFound is returned when no entry matches the given (user, date) key.
var ErrNotFound = errors.New("weekend entry not found")

// Store persists the weekendEntries collection as one JSON document with
// whole-document replace-on-write semantics.
type Store interface {
	All(ctx context.Context) ([]domain.Entry, error)
	ReplaceAll(ctx context.Context, entries []domain.Entry) error
	ListByUser(ctx context.Context, userID string) ([]domain.Entry, error)
	GetByUserAndDate(ctx context.Context, userID, weekendDate string) (domain.Entry, error)
	Save(ctx context.Context, value domain.Entry) error
	Delete(ctx context.Context, userID, weekendDate string) error
}
