package weekend

import (
	"errors"
	"time"
)

// DateLayout is the wire format for weekend and comp-off dates.
const DateLayout = "2006-01-02"

// Flag values for CompOffEarned and ExpenseClaimed.
const (
	FlagYes = "yes"
	FlagNo  = "no"
)

// Domain errors
var (
	ErrMissingUser    = errors.New("entry must be associated with a user")
	ErrMissingDate    = errors.New("weekend date must be set")
	ErrBadDate        = errors.New("weekend date must be in YYYY-MM-DD format")
	ErrFutureDate     = errors.New("weekend date cannot be in the future")
	ErrBadCompOffDate = errors.New("comp off date must be in YYYY-MM-DD format")
	ErrBadFlag        = errors.New("value must be 'yes' or 'no'")
)

// Entry holds one weekend-work record. Identity is (UserID, WeekendDate);
// at most one entry may exist per pair. ID is a stable handle for edit links.
type Entry struct {
	ID             string    `json:"id"`
	WeekendDate    string    `json:"weekendDate"`
	CompOffEarned  string    `json:"compOffEarned"`
	CompOffDate    string    `json:"compOffDate,omitempty"`
	ExpenseClaimed string    `json:"expenseClaimed"`
	UserID         string    `json:"userId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Validate checks the entry's invariants against the given clock.
// PRE: now is a valid time
// POST: Returns nil if valid, error describing the first violation otherwise
func (e *Entry) Validate(now time.Time) error {
	if e.UserID == "" {
		return ErrMissingUser
	}
	if e.WeekendDate == "" {
		return ErrMissingDate
	}
	day, err := time.Parse(DateLayout, e.WeekendDate)
	if err != nil {
		return ErrBadDate
	}
	if day.After(now) {
		return ErrFutureDate
	}
	if !validFlag(e.CompOffEarned) || !validFlag(e.ExpenseClaimed) {
		return ErrBadFlag
	}
	if e.CompOffDate != "" {
		if _, err := time.Parse(DateLayout, e.CompOffDate); err != nil {
			return ErrBadCompOffDate
		}
	}
	return nil
}

// EarnedCompOff returns true if the entry earned compensatory time off.
// INVARIANT: Entry fields are not mutated
func (e *Entry) EarnedCompOff() bool {
	return e.CompOffEarned == FlagYes
}

// SameKey reports whether the entry is identified by the given user and date.
func (e *Entry) SameKey(userID, weekendDate string) bool {
	return e.UserID == userID && e.WeekendDate == weekendDate
}

func validFlag(v string) bool {
	return v == FlagYes || v == FlagNo
}
