package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	weekendStore "weekendlog/internal/adapters/storage/weekend"
	"weekendlog/internal/domain/weekend"
)

// EntryStoreForWrite defines the store interface needed by the weekend
// write orchestrators.
type EntryStoreForWrite interface {
	GetByUserAndDate(ctx context.Context, userID, weekendDate string) (weekend.Entry, error)
	Save(ctx context.Context, e weekend.Entry) error
}

// AddEntryInput carries input for the add-entry orchestrator.
type AddEntryInput struct {
	UserID         string
	WeekendDate    string
	CompOffEarned  string
	CompOffDate    string
	ExpenseClaimed string
}

// AddEntryDeps holds dependencies for AddEntry.
type AddEntryDeps struct {
	EntryStore EntryStoreForWrite
	GenerateID func() string
	Now        func() time.Time
}

// ErrDuplicateEntry is returned when the (user, weekend date) pair already
// has an entry.
var ErrDuplicateEntry = errors.New("an entry for this weekend date already exists")

// ExecuteAddEntry validates and appends a weekend-work entry.
// PRE: Valid input, date not in the future
// POST: Entry persisted with createdAt = now
// INVARIANT: At most one entry per (user, weekend date)
func ExecuteAddEntry(ctx context.Context, input AddEntryInput, deps AddEntryDeps) (weekend.Entry, error) {
	now := deps.Now()

	entry := weekend.Entry{
		ID:             deps.GenerateID(),
		WeekendDate:    input.WeekendDate,
		CompOffEarned:  input.CompOffEarned,
		CompOffDate:    input.CompOffDate,
		ExpenseClaimed: input.ExpenseClaimed,
		UserID:         input.UserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if !entry.EarnedCompOff() {
		entry.CompOffDate = ""
	}
	if err := entry.Validate(now); err != nil {
		return weekend.Entry{}, err
	}

	if _, err := deps.EntryStore.GetByUserAndDate(ctx, input.UserID, input.WeekendDate); err == nil {
		return weekend.Entry{}, ErrDuplicateEntry
	} else if !errors.Is(err, weekendStore.ErrNotFound) {
		return weekend.Entry{}, err
	}

	if err := deps.EntryStore.Save(ctx, entry); err != nil {
		return weekend.Entry{}, err
	}

	slog.Info("weekend_event", "event", "entry_added", "user_id", input.UserID, "weekend_date", input.WeekendDate)
	return entry, nil
}
