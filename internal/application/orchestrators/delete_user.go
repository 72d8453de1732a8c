package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	userStore "weekendlog/internal/adapters/storage/user"
	"weekendlog/internal/application/prompt"
)

// UserStoreForDelete defines the store interface needed by DeleteUser.
type UserStoreForDelete interface {
	Delete(ctx context.Context, psID string) error
}

// DeleteUserInput carries input for the delete orchestrator.
type DeleteUserInput struct {
	PSID string
}

// DeleteUserDeps holds dependencies for DeleteUser.
type DeleteUserDeps struct {
	UserStore UserStoreForDelete
	Prompter  prompt.Asker
}

// ExecuteDeleteUser removes a user after an explicit confirmation.
// PRE: PSID is non-empty
// POST: Returns true and removes exactly one record when confirmed;
// returns false and leaves the collection unchanged when cancelled
func ExecuteDeleteUser(ctx context.Context, input DeleteUserInput, deps DeleteUserDeps) (bool, error) {
	confirmed, err := deps.Prompter.Ask(ctx, prompt.KindWarning,
		"Delete User",
		"Are you sure you want to delete this user? This action cannot be undone.",
		true,
	)
	if err != nil {
		return false, err
	}
	if !confirmed {
		slog.Info("admin_event", "event", "user_delete_cancelled", "ps_id", input.PSID)
		return false, nil
	}

	if err := deps.UserStore.Delete(ctx, input.PSID); err != nil {
		if errors.Is(err, userStore.ErrNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}

	slog.Info("admin_event", "event", "user_deleted", "ps_id", input.PSID)
	return true, nil
}
