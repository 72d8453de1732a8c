package projections

import (
	"context"
	"sort"

	"weekendlog/internal/domain/weekend"
)

// GetWeekendLogQuery carries query parameters.
type GetWeekendLogQuery struct {
	UserID string
}

// GetWeekendLogDeps holds dependencies for the weekend log projection.
type GetWeekendLogDeps struct {
	EntryStore interface {
		ListByUser(ctx context.Context, userID string) ([]weekend.Entry, error)
	}
}

// QueryGetWeekendLog returns the user's weekend entries sorted ascending by
// weekend date. Dates are YYYY-MM-DD, so lexicographic order is date order.
// PRE: UserID is non-empty
// POST: Returns only the user's entries, oldest weekend first
func QueryGetWeekendLog(ctx context.Context, query GetWeekendLogQuery, deps GetWeekendLogDeps) ([]weekend.Entry, error) {
	entries, err := deps.EntryStore.ListByUser(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].WeekendDate < entries[j].WeekendDate
	})
	return entries, nil
}
