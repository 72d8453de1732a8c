package orchestrators

import (
	"context"
	"log/slog"

	"weekendlog/internal/domain/user"
)

// CreateUserInput carries input for the admin-create orchestrator.
type CreateUserInput struct {
	PSID     string
	Name     string
	Email    string
	Password string
	IsAdmin  bool
}

// CreateUserDeps holds dependencies for CreateUser.
type CreateUserDeps struct {
	UserStore UserStoreForRegister
}

// ExecuteCreateUser coordinates admin user creation. Unlike self-signup,
// the admin panel requires only a non-empty password.
// PRE: Unique PS ID and email, non-empty password
// POST: User created with no last login and default theme
// INVARIANT: PS ID and email remain unique across the collection
func ExecuteCreateUser(ctx context.Context, input CreateUserInput, deps CreateUserDeps) error {
	users, err := deps.UserStore.All(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if user.SamePSID(u.PSID, input.PSID) {
			return ErrPSIDExists
		}
		if user.SameEmail(u.Email, input.Email) {
			return ErrEmailExists
		}
	}

	newUser := user.User{
		PSID:    input.PSID,
		Name:    input.Name,
		Email:   input.Email,
		IsAdmin: input.IsAdmin,
		Theme:   user.ThemeLight,
	}
	if err := newUser.Validate(); err != nil {
		return err
	}
	if err := newUser.SetPassword(input.Password); err != nil {
		return err
	}

	if err := deps.UserStore.Save(ctx, newUser); err != nil {
		return err
	}

	slog.Info("admin_event", "event", "user_created", "ps_id", input.PSID, "admin", input.IsAdmin)
	return nil
}
