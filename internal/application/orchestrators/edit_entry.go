package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	weekendStore "weekendlog/internal/adapters/storage/weekend"
	"weekendlog/internal/domain/weekend"
)

// EditEntryInput carries input for the edit-entry orchestrator. The entry is
// identified by (UserID, OriginalDate); WeekendDate may move it to a new date.
type EditEntryInput struct {
	UserID         string
	OriginalDate   string
	WeekendDate    string
	CompOffEarned  string
	CompOffDate    string
	ExpenseClaimed string
}

// EditEntryDeps holds dependencies for EditEntry.
type EditEntryDeps struct {
	EntryStore EntryStoreForWrite
	Now        func() time.Time
}

// ErrEntryNotFound is returned when no entry matches (user, original date).
var ErrEntryNotFound = errors.New("weekend entry not found")

// ExecuteEditEntry replaces an entry's fields in place.
// PRE: (UserID, OriginalDate) identifies an existing entry
// POST: Fields replaced, updatedAt refreshed, createdAt and ID preserved
// INVARIANT: At most one entry per (user, weekend date)
func ExecuteEditEntry(ctx context.Context, input EditEntryInput, deps EditEntryDeps) (weekend.Entry, error) {
	existing, err := deps.EntryStore.GetByUserAndDate(ctx, input.UserID, input.OriginalDate)
	if err != nil {
		if errors.Is(err, weekendStore.ErrNotFound) {
			return weekend.Entry{}, ErrEntryNotFound
		}
		return weekend.Entry{}, err
	}

	// Moving to a new date must not collide with another entry.
	if input.WeekendDate != input.OriginalDate {
		if _, err := deps.EntryStore.GetByUserAndDate(ctx, input.UserID, input.WeekendDate); err == nil {
			return weekend.Entry{}, ErrDuplicateEntry
		} else if !errors.Is(err, weekendStore.ErrNotFound) {
			return weekend.Entry{}, err
		}
	}

	now := deps.Now()
	updated := existing
	updated.WeekendDate = input.WeekendDate
	updated.CompOffEarned = input.CompOffEarned
	updated.CompOffDate = input.CompOffDate
	updated.ExpenseClaimed = input.ExpenseClaimed
	updated.UpdatedAt = now
	if !updated.EarnedCompOff() {
		updated.CompOffDate = ""
	}
	if err := updated.Validate(now); err != nil {
		return weekend.Entry{}, err
	}

	if err := deps.EntryStore.Save(ctx, updated); err != nil {
		return weekend.Entry{}, err
	}

	slog.Info("weekend_event", "event", "entry_edited", "user_id", input.UserID, "weekend_date", input.WeekendDate)
	return updated, nil
}
