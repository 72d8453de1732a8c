package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"weekendlog/internal/domain/user"
)

// SessionTTL is how long a login remains valid.
const SessionTTL = time.Hour

// UserStoreForLogin defines the store interface needed by Login.
type UserStoreForLogin interface {
	GetByPSID(ctx context.Context, psID string) (user.User, error)
	Save(ctx context.Context, u user.User) error
}

// SessionStoreForLogin persists the session snapshot.
type SessionStoreForLogin interface {
	Save(ctx context.Context, snapshot user.Snapshot, expiresAt time.Time) error
	Clear(ctx context.Context) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	PSID     string
	Password string
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	Snapshot  user.Snapshot
	ExpiresAt time.Time
	Theme     string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	UserStore    UserStoreForLogin
	SessionStore SessionStoreForLogin
	ThemeStore   ThemeStoreForChangeTheme
	Now          func() time.Time
}

// ErrInvalidCredentials is the uniform login failure: unknown PS ID and
// wrong password are indistinguishable, to avoid account enumeration.
var ErrInvalidCredentials = errors.New("invalid PS ID or password")

// ExecuteLogin validates credentials and establishes the session.
// PS ID matches case-insensitively; the password must verify exactly.
// PRE: Valid PS ID and password provided
// POST: lastLogin stamped, password-free snapshot stored with expiry now+1h,
// the user's saved theme written to the theme slot
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	if input.PSID == "" || input.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	u, err := deps.UserStore.GetByPSID(ctx, input.PSID)
	if err != nil {
		slog.Info("auth_event", "event", "login_failed", "ps_id", input.PSID, "reason", "not_found")
		return LoginResult{}, ErrInvalidCredentials
	}

	if err := u.CheckPassword(input.Password); err != nil {
		slog.Info("auth_event", "event", "login_failed", "ps_id", input.PSID, "reason", "wrong_password")
		return LoginResult{}, ErrInvalidCredentials
	}

	now := deps.Now()
	u.LastLogin = &now
	if err := deps.UserStore.Save(ctx, u); err != nil {
		return LoginResult{}, err
	}

	snapshot := u.Sanitized()
	expiresAt := now.Add(SessionTTL)
	if err := deps.SessionStore.Save(ctx, snapshot, expiresAt); err != nil {
		return LoginResult{}, err
	}

	// Apply the user's saved theme: the shared slot follows whoever logs in.
	theme := u.Theme
	if theme == "" {
		theme = user.ThemeLight
	}
	if err := deps.ThemeStore.Set(ctx, theme); err != nil {
		return LoginResult{}, err
	}

	slog.Info("auth_event", "event", "login_success", "ps_id", u.PSID, "admin", u.IsAdmin)

	return LoginResult{
		Snapshot:  snapshot,
		ExpiresAt: expiresAt,
		Theme:     theme,
	}, nil
}

// LogoutDeps holds dependencies for Logout.
type LogoutDeps struct {
	SessionStore SessionStoreForLogin
}

// ExecuteLogout destroys the current session.
// PRE: none
// POST: Session slots are cleared
func ExecuteLogout(ctx context.Context, deps LogoutDeps) error {
	if err := deps.SessionStore.Clear(ctx); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "logout")
	return nil
}
