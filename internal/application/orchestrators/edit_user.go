package orchestrators

import (
	"context"
	"log/slog"

	"weekendlog/internal/domain/user"
)

// EditUserInput carries input for the admin-edit orchestrator. NewPassword
// is optional: when empty, the stored credential is preserved.
type EditUserInput struct {
	PSID        string
	Name        string
	Email       string
	IsAdmin     bool
	NewPassword string
}

// EditUserDeps holds dependencies for EditUser.
type EditUserDeps struct {
	UserStore UserStoreForRegister
}

// ExecuteEditUser replaces an existing user's editable fields.
// PRE: PSID identifies an existing user
// POST: Name/email/admin flag replaced; password, last login, and theme
// preserved unless explicitly changed
// INVARIANT: Email remains unique across the collection (excluding self)
func ExecuteEditUser(ctx context.Context, input EditUserInput, deps EditUserDeps) error {
	users, err := deps.UserStore.All(ctx)
	if err != nil {
		return err
	}

	var existing *user.User
	for i := range users {
		if user.SamePSID(users[i].PSID, input.PSID) {
			existing = &users[i]
			break
		}
	}
	if existing == nil {
		return ErrUserNotFound
	}
	for i := range users {
		if user.SamePSID(users[i].PSID, input.PSID) {
			continue
		}
		if user.SameEmail(users[i].Email, input.Email) {
			return ErrEmailExists
		}
	}

	updated := *existing
	updated.Name = input.Name
	updated.Email = input.Email
	updated.IsAdmin = input.IsAdmin
	if input.NewPassword != "" {
		if err := updated.SetPassword(input.NewPassword); err != nil {
			return err
		}
	}
	if err := updated.Validate(); err != nil {
		return err
	}

	if err := deps.UserStore.Save(ctx, updated); err != nil {
		return err
	}

	slog.Info("admin_event", "event", "user_edited", "ps_id", input.PSID)
	return nil
}
