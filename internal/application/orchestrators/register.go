package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"weekendlog/internal/domain/user"
)

// UserStoreForRegister defines the store interface needed by Register.
type UserStoreForRegister interface {
	All(ctx context.Context) ([]user.User, error)
	Save(ctx context.Context, u user.User) error
	Count(ctx context.Context) (int, error)
}

// RegisterInput carries input for the registration orchestrator.
type RegisterInput struct {
	PSID            string
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// RegisterDeps holds dependencies for Register.
type RegisterDeps struct {
	UserStore UserStoreForRegister
}

var (
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrPSIDExists       = errors.New("PS ID already exists")
	ErrEmailExists      = errors.New("email already exists")
)

// ExecuteRegister validates a signup and appends the new user.
// PRE: All fields provided
// POST: Collection grows by exactly one; new user is a non-admin with no last login
// INVARIANT: PS ID and email remain unique across the collection
func ExecuteRegister(ctx context.Context, input RegisterInput, deps RegisterDeps) error {
	if input.Password != input.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if err := user.CheckPasswordStrength(input.Password); err != nil {
		return err
	}

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
		IsAdmin: false,
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

	slog.Info("auth_event", "event", "user_registered", "ps_id", input.PSID)
	return nil
}

// SeedAdminInput carries the default administrator record.
type SeedAdminInput struct {
	PSID     string
	Name     string
	Email    string
	Password string
}

// ExecuteSeedAdmin creates the default administrator if no users exist.
// The seeded password bypasses the strength policy so the historical
// default ("admin123") still loads; it is hashed like any other.
// PRE: Storage is initialized
// POST: Admin record created if the collection was empty
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, deps RegisterDeps) error {
	count, err := deps.UserStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin := user.User{
		PSID:    input.PSID,
		Name:    input.Name,
		Email:   input.Email,
		IsAdmin: true,
		Theme:   user.ThemeLight,
	}
	if err := admin.Validate(); err != nil {
		return err
	}
	if err := admin.SetPassword(input.Password); err != nil {
		return err
	}
	if err := deps.UserStore.Save(ctx, admin); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "admin_seeded", "ps_id", input.PSID)
	return nil
}
