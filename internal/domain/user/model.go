package user

import (
	"errors"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Theme constants
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Password policy bounds
const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
)

// specialChars is the set of characters that count as "special" for the
// password policy. Matches the set the signup form documents.
const specialChars = `!@#$%^&*(),.?":{}|<>`

// Domain errors
var (
	ErrEmptyPSID     = errors.New("PS ID cannot be empty")
	ErrEmptyName     = errors.New("name cannot be empty")
	ErrEmptyEmail    = errors.New("email cannot be empty")
	ErrInvalidEmail  = errors.New("email must contain '@'")
	ErrInvalidTheme  = errors.New("theme must be 'light' or 'dark'")
	ErrEmptyPassword = errors.New("password cannot be empty")
	ErrWrongPassword = errors.New("incorrect password")
	ErrWeakPassword  = errors.New("password must be 8-128 characters and contain at least one uppercase letter, one lowercase letter, one number, and one special character")
)

// User holds state for the User concept. PS ID is the primary key and is
// unique case-insensitively; email is unique across the collection.
type User struct {
	PSID         string     `json:"psId"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"passwordHash"`
	IsAdmin      bool       `json:"isAdmin"`
	LastLogin    *time.Time `json:"lastLogin"`
	Theme        string     `json:"theme,omitempty"`
}

// Snapshot is a copy of a User with the credential stripped, suitable for
// storing as the session's userData slot.
type Snapshot struct {
	PSID      string     `json:"psId"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	IsAdmin   bool       `json:"isAdmin"`
	LastLogin *time.Time `json:"lastLogin"`
	Theme     string     `json:"theme,omitempty"`
}

// Validate checks if the User has valid data.
// PRE: User struct is populated
// POST: Returns nil if valid, error otherwise
func (u *User) Validate() error {
	if strings.TrimSpace(u.PSID) == "" {
		return ErrEmptyPSID
	}
	if strings.TrimSpace(u.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(u.Email) == "" {
		return ErrEmptyEmail
	}
	if !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	if u.Theme != "" && u.Theme != ThemeLight && u.Theme != ThemeDark {
		return ErrInvalidTheme
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt with cost 12.
// Strength policy is enforced by the callers that accept user-chosen
// passwords, not here, so seeded accounts can carry legacy passwords.
// PRE: plaintext is non-empty
// POST: PasswordHash is set to bcrypt hash
func (u *User) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// PRE: PasswordHash is set
// INVARIANT: User fields are not mutated
func (u *User) CheckPassword(plaintext string) error {
	if u.PasswordHash == "" {
		return ErrWrongPassword
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plaintext)) != nil {
		return ErrWrongPassword
	}
	return nil
}

// Sanitized returns a copy of the user without the password hash.
// INVARIANT: User fields are not mutated
func (u *User) Sanitized() Snapshot {
	return Snapshot{
		PSID:      u.PSID,
		Name:      u.Name,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		LastLogin: u.LastLogin,
		Theme:     u.Theme,
	}
}

// SamePSID reports whether two PS IDs identify the same user.
// PS IDs compare case-insensitively.
func SamePSID(a, b string) bool {
	return strings.EqualFold(a, b)
}

// SameEmail reports whether two emails identify the same mailbox.
func SameEmail(a, b string) bool {
	return strings.EqualFold(a, b)
}

// CheckPasswordStrength validates a candidate password against the policy:
// 8-128 characters with at least one uppercase letter, one lowercase letter,
// one digit, and one special character.
// PRE: none
// POST: Returns nil if the password satisfies the policy, ErrWeakPassword otherwise
func CheckPasswordStrength(plaintext string) error {
	if len(plaintext) < MinPasswordLength || len(plaintext) > MaxPasswordLength {
		return ErrWeakPassword
	}
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range plaintext {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(specialChars, r):
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return ErrWeakPassword
	}
	return nil
}
