package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"paddock/internal/domain/account"

	"github.com/google/uuid"
)

// AccountStoreForRegister defines the store interface needed by Register.
type AccountStoreForRegister interface {
	GetByEmail(ctx context.Context, email string) (account.User, error)
	Save(ctx context.Context, u account.User) error
	Count(ctx context.Context) (int, error)
}

// RegisterInput carries input for the registration orchestrator.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string // rider or trainer; other roles are admin-granted
}

// RegisterDeps holds dependencies for Register.
type RegisterDeps struct {
	AccountStore AccountStoreForRegister
}

var (
	ErrEmailAlreadyExists = errors.New("an account with this email already exists")
	ErrRestrictedRole     = errors.New("this role cannot be self-assigned")
)

// ExecuteRegister coordinates new account creation.
// PRE: Valid email, password >= 12 chars, role is rider or trainer
// POST: User created with hashed password and the chosen role
// INVARIANT: Email must be unique
func ExecuteRegister(ctx context.Context, input RegisterInput, deps RegisterDeps) (string, error) {
	email := account.NormalizeEmail(input.Email)
	if email == "" {
		return "", account.ErrEmptyEmail
	}
	if input.Role != account.RoleRider && input.Role != account.RoleTrainer {
		return "", ErrRestrictedRole
	}

	if _, err := deps.AccountStore.GetByEmail(ctx, email); err == nil {
		return "", ErrEmailAlreadyExists
	}

	u := account.User{
		ID:        uuid.New().String(),
		Email:     email,
		Roles:     []string{input.Role},
		FirstName: input.FirstName,
		LastName:  input.LastName,
		CreatedAt: time.Now(),
	}
	if err := u.Validate(); err != nil {
		return "", err
	}
	if err := u.SetPassword(input.Password); err != nil {
		return "", err
	}

	if err := deps.AccountStore.Save(ctx, u); err != nil {
		return "", err
	}

	slog.Info("auth_event", "event", "account_created", "email", email, "role", input.Role)
	return u.ID, nil
}

// ExecuteSeedAdmin creates a default admin account if no accounts exist.
// PRE: Database is initialized
// POST: Admin account created if count == 0
func ExecuteSeedAdmin(ctx context.Context, deps RegisterDeps, email, password string) error {
	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // Accounts already exist, skip seeding
	}
	if email == "" || password == "" {
		return nil
	}

	u := account.User{
		ID:        uuid.New().String(),
		Email:     account.NormalizeEmail(email),
		Roles:     []string{account.RoleAdmin},
		CreatedAt: time.Now(),
	}
	if err := u.Validate(); err != nil {
		return err
	}
	if err := u.SetPassword(password); err != nil {
		return err
	}
	if err := deps.AccountStore.Save(ctx, u); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "admin_seeded", "email", u.Email)
	return nil
}
