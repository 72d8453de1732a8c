package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	weekendStore "weekendlog/internal/adapters/storage/weekend"
	"weekendlog/internal/application/prompt"
)

// EntryStoreForDelete defines the store interface needed by DeleteEntry.
type EntryStoreForDelete interface {
	Delete(ctx context.Context, userID, weekendDate string) error
}

// DeleteEntryInput carries input for the delete-entry orchestrator.
type DeleteEntryInput struct {
	UserID      string
	WeekendDate string
}

// DeleteEntryDeps holds dependencies for DeleteEntry.
type DeleteEntryDeps struct {
	EntryStore EntryStoreForDelete
	Prompter   prompt.Asker
}

// ExecuteDeleteEntry removes a weekend entry after an explicit confirmation.
// PRE: UserID and WeekendDate are non-empty
// POST: Returns true and removes exactly one record when confirmed;
// returns false and leaves the collection unchanged when cancelled
func ExecuteDeleteEntry(ctx context.Context, input DeleteEntryInput, deps DeleteEntryDeps) (bool, error) {
	confirmed, err := deps.Prompter.Ask(ctx, prompt.KindWarning,
		"Delete Entry",
		"Are you sure you want to delete this weekend entry? This action cannot be undone.",
		true,
	)
	if err != nil {
		return false, err
	}
	if !confirmed {
		slog.Info("weekend_event", "event", "entry_delete_cancelled", "user_id", input.UserID, "weekend_date", input.WeekendDate)
		return false, nil
	}

	if err := deps.EntryStore.Delete(ctx, input.UserID, input.WeekendDate); err != nil {
		if errors.Is(err, weekendStore.ErrNotFound) {
			return false, ErrEntryNotFound
		}
		return false, err
	}

	slog.Info("weekend_event", "event", "entry_deleted", "user_id", input.UserID, "weekend_date", input.WeekendDate)
	return true, nil
}
