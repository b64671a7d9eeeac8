package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"paddock/internal/domain/account"
	"paddock/internal/metrics"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (account.User, error)
	Save(ctx context.Context, u account.User) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	UserID    string
	Email     string
	Roles     []string
	FirstName string
	LastName  string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
}

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked due to too many failed attempts")
)

// ExecuteLogin validates credentials and returns user info for token issuance.
// PRE: Valid email and password provided
// POST: Returns user info on success, records failed login on failure
// INVARIANT: Account must not be locked
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	if input.Email == "" || input.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	email := account.NormalizeEmail(input.Email)
	u, err := deps.AccountStore.GetByEmail(ctx, email)
	if err != nil {
		metrics.LoginFailures.Inc()
		slog.Info("auth_event", "event", "login_failed", "email", email, "reason", "not_found")
		return LoginResult{}, ErrInvalidCredentials
	}

	if u.IsLocked() {
		slog.Info("auth_event", "event", "login_blocked", "email", email, "reason", "locked")
		return LoginResult{}, ErrAccountLocked
	}

	if err := u.CheckPassword(input.Password); err != nil {
		u.RecordFailedLogin()
		_ = deps.AccountStore.Save(ctx, u)
		metrics.LoginFailures.Inc()
		slog.Info("auth_event", "event", "login_failed", "email", email,
			"reason", "wrong_password", "failed_logins", u.FailedLogins)
		return LoginResult{}, ErrInvalidCredentials
	}

	u.ResetFailedLogins()
	_ = deps.AccountStore.Save(ctx, u)

	slog.Info("auth_event", "event", "login_success", "email", email, "roles", u.Roles)

	return LoginResult{
		UserID:    u.ID,
		Email:     u.Email,
		Roles:     u.Roles,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}, nil
}
