package account

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength = 254
)

// Role constants. A user holds a set of roles; membership is additive and
// revocable through admin actions (stable approval, manager reassignment).
const (
	RoleAdmin         = "admin"
	RoleTrainer       = "trainer"
	RoleRider         = "rider"
	RoleStableManager = "stable_manager"
)

// ValidRoles contains all valid role values.
var ValidRoles = []string{RoleAdmin, RoleTrainer, RoleRider, RoleStableManager}

// Domain errors
var (
	ErrInvalidEmail     = errors.New("email must contain '@'")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrInvalidRole      = errors.New("role must be one of: admin, trainer, rider, stable_manager")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 12 characters")
	ErrWrongPassword    = errors.New("incorrect password")
	ErrNoPassword       = errors.New("account has no local password (Google sign-in only)")
)

// User holds state for a user account.
// Email is unique and lowercased; ID is the surrogate key used by the
// persistence layer, with an indexed lookup by email.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Roles        []string
	FirstName    string
	LastName     string
	GoogleID     string
	CreatedAt    time.Time
	FailedLogins int
	LockedUntil  time.Time
}

// FullName returns the display name composed from first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Validate checks if the User has valid data.
// PRE: User struct is populated
// POST: Returns nil if valid, error otherwise
func (u *User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return ErrEmptyEmail
	}
	if len(u.Email) > MaxEmailLength {
		return errors.New("email cannot exceed 254 characters")
	}
	if !strings.Contains(u.Email, "@") {
		return ErrInvalidEmail
	}
	for _, r := range u.Roles {
		if !IsValidRole(r) {
			return ErrInvalidRole
		}
	}
	return nil
}

// HasRole reports whether the user holds the given role.
// INVARIANT: User fields are not mutated
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// GrantRole adds a role to the user's role set.
// POST: Role is present exactly once; granting an already-held role is a no-op
func (u *User) GrantRole(role string) error {
	if !IsValidRole(role) {
		return ErrInvalidRole
	}
	if u.HasRole(role) {
		return nil
	}
	u.Roles = append(u.Roles, role)
	return nil
}

// RevokeRole removes a role from the user's role set.
// POST: Role is absent; revoking a role the user does not hold is a no-op
func (u *User) RevokeRole(role string) {
	out := u.Roles[:0]
	for _, r := range u.Roles {
		if r != role {
			out = append(out, r)
		}
	}
	u.Roles = out
}

// SetPassword hashes and stores a password using bcrypt with cost 12.
// PRE: plaintext is non-empty and >= 12 characters
// POST: PasswordHash is set to bcrypt hash
func (u *User) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}
	if len(plaintext) < 12 {
		return ErrPasswordTooShort
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
		return ErrNoPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plaintext)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// IsLocked returns true while the account is locked out after repeated
// failed logins.
func (u *User) IsLocked() bool {
	return !u.LockedUntil.IsZero() && time.Now().Before(u.LockedUntil)
}

// RecordFailedLogin increments the failure counter and locks the account
// for 15 minutes after 5 consecutive failures.
func (u *User) RecordFailedLogin() {
	u.FailedLogins++
	if u.FailedLogins >= 5 {
		u.LockedUntil = time.Now().Add(15 * time.Minute)
	}
}

// ResetFailedLogins clears the failure counter and any lockout.
func (u *User) ResetFailedLogins() {
	u.FailedLogins = 0
	u.LockedUntil = time.Time{}
}

// NormalizeEmail lowercases and trims an email address for use as a lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidRole reports whether role is one of the known role values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
