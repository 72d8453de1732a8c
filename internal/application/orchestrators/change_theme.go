package orchestrators

import (
	"context"
	"log/slog"

	"weekendlog/internal/domain/user"
)

// ThemeStoreForChangeTheme persists the global theme slot.
type ThemeStoreForChangeTheme interface {
	Set(ctx context.Context, theme string) error
}

// ChangeThemeInput carries input for the theme toggle.
type ChangeThemeInput struct {
	PSID  string
	Theme string
}

// ChangeThemeDeps holds dependencies for ChangeTheme.
type ChangeThemeDeps struct {
	UserStore  UserStoreForChangePassword
	ThemeStore ThemeStoreForChangeTheme
}

// ExecuteChangeTheme persists the theme both globally and onto the current
// user's record.
// PRE: Theme is "light" or "dark"
// POST: theme slot and the user's theme field hold the new value
func ExecuteChangeTheme(ctx context.Context, input ChangeThemeInput, deps ChangeThemeDeps) error {
	if input.Theme != user.ThemeLight && input.Theme != user.ThemeDark {
		return user.ErrInvalidTheme
	}

	if err := deps.ThemeStore.Set(ctx, input.Theme); err != nil {
		return err
	}

	u, err := deps.UserStore.GetByPSID(ctx, input.PSID)
	if err != nil {
		return ErrUserNotFound
	}
	u.Theme = input.Theme
	if err := deps.UserStore.Save(ctx, u); err != nil {
		return err
	}

	slog.Info("settings_event", "event", "theme_changed", "ps_id", input.PSID, "theme", input.Theme)
	return nil
}
