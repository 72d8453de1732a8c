package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"

	"weekendlog/internal/adapters/email"
	"weekendlog/internal/domain/user"
)

// UserStoreForChangePassword defines the store interface needed by ChangePassword.
type UserStoreForChangePassword interface {
	GetByPSID(ctx context.Context, psID string) (user.User, error)
	Save(ctx context.Context, u user.User) error
}

// ChangePasswordInput carries input for the change-password orchestrator.
type ChangePasswordInput struct {
	PSID            string
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

// ChangePasswordDeps holds dependencies for ChangePassword.
// EmailSender is optional; when set, a security notification is sent.
type ChangePasswordDeps struct {
	UserStore    UserStoreForChangePassword
	SessionStore SessionStoreForLogin
	EmailSender  email.Sender
	From         string
}

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrCurrentPasswordWrong = errors.New("current password is incorrect")
	ErrNewPasswordSame      = errors.New("new password cannot be the same as current password")
)

// ExecuteChangePassword verifies the current password, applies the policy
// to the new one, persists it, and forces logout for security reasons.
// PRE: PSID identifies an existing user, all passwords non-empty
// POST: Password updated, session destroyed, notification sent best-effort
func ExecuteChangePassword(ctx context.Context, input ChangePasswordInput, deps ChangePasswordDeps) error {
	if input.PSID == "" || input.CurrentPassword == "" || input.NewPassword == "" {
		return errors.New("all fields are required")
	}

	u, err := deps.UserStore.GetByPSID(ctx, input.PSID)
	if err != nil {
		return ErrUserNotFound
	}

	if err := u.CheckPassword(input.CurrentPassword); err != nil {
		return ErrCurrentPasswordWrong
	}
	if input.NewPassword != input.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if input.NewPassword == input.CurrentPassword {
		return ErrNewPasswordSame
	}
	if err := user.CheckPasswordStrength(input.NewPassword); err != nil {
		return err
	}

	if err := u.SetPassword(input.NewPassword); err != nil {
		return err
	}
	if err := deps.UserStore.Save(ctx, u); err != nil {
		return err
	}

	// The old session was created with the old credential; destroy it.
	if err := deps.SessionStore.Clear(ctx); err != nil {
		return err
	}

	if deps.EmailSender != nil {
		notifyPasswordChanged(ctx, deps, u)
	}

	slog.Info("auth_event", "event", "password_changed", "ps_id", u.PSID)
	return nil
}

// notifyPasswordChanged sends the security notification. Failures are
// logged, never surfaced: the password change already succeeded.
func notifyPasswordChanged(ctx context.Context, deps ChangePasswordDeps, u user.User) {
	_, err := deps.EmailSender.Send(ctx, email.SendRequest{
		To:      []string{u.Email},
		From:    deps.From,
		Subject: "Your password was changed",
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>The password for PS ID <strong>%s</strong> was just changed and you have been logged out for security reasons. If this wasn't you, contact your administrator.</p>",
			html.EscapeString(u.Name), html.EscapeString(u.PSID),
		),
	})
	if err != nil {
		slog.Error("password_change_notify_failed", "ps_id", u.PSID, "error", err.Error())
	}
}
