package session

import (
	"context"
	"time"

	domain "weekendlog/internal/domain/user"
)

// Store persists the session snapshot: the "userData" slot (a password-free
// copy of the logged-in user) and the "sessionExpiry" slot (epoch ms).
// The snapshot is valid only while the expiry lies in the future.
type Store interface {
	Save(ctx context.Context, snapshot domain.Snapshot, expiresAt time.Time) error
	Current(ctx context.Context, now time.Time) (domain.Snapshot, bool, error)
	Clear(ctx context.Context) error
}
