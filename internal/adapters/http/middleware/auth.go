package middleware

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	sessionStore "weekendlog/internal/adapters/storage/session"
	domain "weekendlog/internal/domain/user"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

const sessionContextKey contextKey = "session"

// SessionStore maps opaque cookie tokens onto the persisted session
// snapshot. The snapshot and its expiry live in the storage slots
// (userData / sessionExpiry); tokens only prove the browser holds the
// session that wrote them. A newer login overwrites the slots and thereby
// invalidates older tokens.
type SessionStore struct {
	mu      sync.RWMutex
	tokens  map[string]string // token -> PS ID
	persist sessionStore.Store
	now     func() time.Time
}

// NewSessionStore creates a session store over the persisted snapshot.
func NewSessionStore(persist sessionStore.Store) *SessionStore {
	return &SessionStore{
		tokens:  make(map[string]string),
		persist: persist,
		now:     time.Now,
	}
}

// Create issues a token for the snapshot the login just persisted.
// PRE: the login orchestrator has saved the snapshot and expiry
// POST: Returns a token that resolves to that snapshot
func (ss *SessionStore) Create(psID string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	ss.mu.Lock()
	ss.tokens[token] = psID
	ss.mu.Unlock()
	return token, nil
}

// Get resolves a token against the persisted snapshot.
// PRE: token is non-empty
// POST: Returns the snapshot only while sessionExpiry > now and the
// snapshot still belongs to the token's user
func (ss *SessionStore) Get(ctx context.Context, token string) (domain.Snapshot, bool) {
	ss.mu.RLock()
	psID, ok := ss.tokens[token]
	ss.mu.RUnlock()
	if !ok {
		return domain.Snapshot{}, false
	}

	snapshot, ok, err := ss.persist.Current(ctx, ss.now())
	if err != nil || !ok || !domain.SamePSID(snapshot.PSID, psID) {
		ss.mu.Lock()
		delete(ss.tokens, token)
		ss.mu.Unlock()
		return domain.Snapshot{}, false
	}
	return snapshot, true
}

// Delete removes a token.
// PRE: token is non-empty
// POST: The token no longer resolves
func (ss *SessionStore) Delete(token string) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	delete(ss.tokens, token)
}

const sessionCookieName = "weekendlog_session"

// SecureCookies controls the Secure flag on session cookies.
// Set to true in production.
var SecureCookies = false

// Auth returns middleware that extracts the session from the cookie and sets
// the snapshot in context. It does NOT block unauthenticated requests — use
// RequireAuth or RequireAdmin for that.
func Auth(sessions *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(sessionCookieName)
			if err == nil && cookie.Value != "" {
				if snapshot, ok := sessions.Get(r.Context(), cookie.Value); ok {
					ctx := context.WithValue(r.Context(), sessionContextKey, snapshot)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth returns middleware that redirects unauthenticated requests to
// the authentication view.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin returns middleware that blocks requests from non-admins.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snapshot, ok := GetSessionFromContext(r.Context())
		if !ok {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if !snapshot.IsAdmin {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSessionFromContext extracts the session snapshot from the request context.
func GetSessionFromContext(ctx context.Context) (domain.Snapshot, bool) {
	snapshot, ok := ctx.Value(sessionContextKey).(domain.Snapshot)
	return snapshot, ok
}

// SetSessionCookie sets the session cookie on the response.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   3600, // matches the 1 hour session expiry
	})
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
		MaxAge:   -1,
	})
}

// SessionToken returns the raw session token from the request cookie.
func SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// IsAdmin checks if the current session belongs to an administrator.
func IsAdmin(ctx context.Context) bool {
	snapshot, ok := GetSessionFromContext(ctx)
	return ok && snapshot.IsAdmin
}

// ContextWithSession returns a context with the given snapshot set.
// Intended for use in tests.
func ContextWithSession(ctx context.Context, snapshot domain.Snapshot) context.Context {
	return context.WithValue(ctx, sessionContextKey, snapshot)
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
