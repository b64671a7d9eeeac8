package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"paddock/internal/domain/account"

	"github.com/google/uuid"
	"google.golang.org/api/idtoken"
)

// GoogleLoginInput carries the ID token obtained by the client from Google.
type GoogleLoginInput struct {
	IDToken string
}

// GoogleLoginDeps holds dependencies for GoogleLogin.
type GoogleLoginDeps struct {
	AccountStore AccountStoreForRegister
	ClientID     string // OAuth client id the token audience must match
	// Verify validates the raw ID token. Defaults to idtoken.Validate;
	// tests substitute a stub.
	Verify func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

var ErrGoogleTokenInvalid = errors.New("google token could not be verified")

// ExecuteGoogleLogin verifies a Google ID token and signs the user in,
// creating a rider account on first sign-in.
// PRE: IDToken is the raw JWT from Google Identity Services
// POST: Returns user info; a new rider account exists for unseen emails
func ExecuteGoogleLogin(ctx context.Context, input GoogleLoginInput, deps GoogleLoginDeps) (LoginResult, error) {
	if input.IDToken == "" {
		return LoginResult{}, ErrGoogleTokenInvalid
	}

	verify := deps.Verify
	if verify == nil {
		verify = idtoken.Validate
	}

	payload, err := verify(ctx, input.IDToken, deps.ClientID)
	if err != nil {
		slog.Info("auth_event", "event", "google_login_failed", "reason", "verify_failed")
		return LoginResult{}, ErrGoogleTokenInvalid
	}

	email, _ := payload.Claims["email"].(string)
	email = account.NormalizeEmail(email)
	if email == "" {
		return LoginResult{}, ErrGoogleTokenInvalid
	}
	givenName, _ := payload.Claims["given_name"].(string)
	familyName, _ := payload.Claims["family_name"].(string)

	u, err := deps.AccountStore.GetByEmail(ctx, email)
	if err != nil {
		// First Google sign-in creates a rider account without a local password.
		u = account.User{
			ID:        uuid.New().String(),
			Email:     email,
			Roles:     []string{account.RoleRider},
			FirstName: givenName,
			LastName:  familyName,
			GoogleID:  payload.Subject,
			CreatedAt: time.Now(),
		}
		if err := u.Validate(); err != nil {
			return LoginResult{}, err
		}
		if err := deps.AccountStore.Save(ctx, u); err != nil {
			return LoginResult{}, err
		}
		slog.Info("auth_event", "event", "google_account_created", "email", email)
	} else if u.GoogleID == "" {
		// Link the Google subject to an existing local account.
		u.GoogleID = payload.Subject
		_ = deps.AccountStore.Save(ctx, u)
	}

	slog.Info("auth_event", "event", "google_login_success", "email", email)

	return LoginResult{
		UserID:    u.ID,
		Email:     u.Email,
		Roles:     u.Roles,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}, nil
}
