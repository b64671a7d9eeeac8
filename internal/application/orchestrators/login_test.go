package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	"paddock/internal/domain/account"

	"google.golang.org/api/idtoken"
)

// mockAccountStore implements the account store interfaces used by the auth
// orchestrators.
type mockAccountStore struct {
	byEmail map[string]account.User
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{byEmail: make(map[string]account.User)}
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (account.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return account.User{}, errors.New("not found")
	}
	return u, nil
}

func (m *mockAccountStore) Save(_ context.Context, u account.User) error {
	m.byEmail[u.Email] = u
	return nil
}

func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.byEmail), nil
}

func seedUser(t *testing.T, store *mockAccountStore, email, password string) {
	t.Helper()
	u := account.User{ID: "u1", Email: email, Roles: []string{account.RoleRider}, CreatedAt: time.Now()}
	if err := u.SetPassword(password); err != nil {
		t.Fatal(err)
	}
	store.byEmail[email] = u
}

func TestExecuteLogin_Success(t *testing.T) {
	store := newMockAccountStore()
	seedUser(t, store, "rider@example.com", "correct-horse-battery")

	result, err := ExecuteLogin(context.Background(),
		LoginInput{Email: "Rider@Example.com", Password: "correct-horse-battery"},
		LoginDeps{AccountStore: store})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Email != "rider@example.com" {
		t.Errorf("email = %s", result.Email)
	}
}

func TestExecuteLogin_WrongPassword(t *testing.T) {
	store := newMockAccountStore()
	seedUser(t, store, "rider@example.com", "correct-horse-battery")

	_, err := ExecuteLogin(context.Background(),
		LoginInput{Email: "rider@example.com", Password: "wrong-password-here"},
		LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if store.byEmail["rider@example.com"].FailedLogins != 1 {
		t.Error("failed login should be recorded")
	}
}

func TestExecuteLogin_LockoutAfterFiveFailures(t *testing.T) {
	store := newMockAccountStore()
	seedUser(t, store, "rider@example.com", "correct-horse-battery")

	for i := 0; i < 5; i++ {
		_, _ = ExecuteLogin(context.Background(),
			LoginInput{Email: "rider@example.com", Password: "wrong-password-here"},
			LoginDeps{AccountStore: store})
	}

	// Even the correct password is rejected while locked.
	_, err := ExecuteLogin(context.Background(),
		LoginInput{Email: "rider@example.com", Password: "correct-horse-battery"},
		LoginDeps{AccountStore: store})
	if !errors.Is(err, ErrAccountLocked) {
		t.Errorf("expected ErrAccountLocked, got %v", err)
	}
}

func TestExecuteRegister_DuplicateEmail(t *testing.T) {
	store := newMockAccountStore()
	seedUser(t, store, "rider@example.com", "correct-horse-battery")

	_, err := ExecuteRegister(context.Background(), RegisterInput{
		Email:    "rider@example.com",
		Password: "another-long-password",
		Role:     account.RoleRider,
	}, RegisterDeps{AccountStore: store})
	if !errors.Is(err, ErrEmailAlreadyExists) {
		t.Errorf("expected ErrEmailAlreadyExists, got %v", err)
	}
}

func TestExecuteRegister_RestrictedRole(t *testing.T) {
	_, err := ExecuteRegister(context.Background(), RegisterInput{
		Email:    "new@example.com",
		Password: "another-long-password",
		Role:     account.RoleAdmin,
	}, RegisterDeps{AccountStore: newMockAccountStore()})
	if !errors.Is(err, ErrRestrictedRole) {
		t.Errorf("expected ErrRestrictedRole, got %v", err)
	}
}

func TestExecuteGoogleLogin_CreatesRiderOnFirstSignIn(t *testing.T) {
	store := newMockAccountStore()

	result, err := ExecuteGoogleLogin(context.Background(),
		GoogleLoginInput{IDToken: "raw-token"},
		GoogleLoginDeps{
			AccountStore: store,
			ClientID:     "client-id",
			Verify: func(_ context.Context, _, _ string) (*idtoken.Payload, error) {
				return &idtoken.Payload{
					Subject: "google-sub-1",
					Claims: map[string]interface{}{
						"email":       "Rider@Example.com",
						"given_name":  "Jane",
						"family_name": "Rider",
					},
				}, nil
			},
		})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Email != "rider@example.com" {
		t.Errorf("email = %s", result.Email)
	}

	u := store.byEmail["rider@example.com"]
	if !u.HasRole(account.RoleRider) {
		t.Error("first sign-in should create a rider account")
	}
	if u.GoogleID != "google-sub-1" {
		t.Errorf("google id = %s", u.GoogleID)
	}
}

func TestExecuteSeedAdmin_SkipsWhenAccountsExist(t *testing.T) {
	store := newMockAccountStore()
	seedUser(t, store, "rider@example.com", "correct-horse-battery")

	if err := ExecuteSeedAdmin(context.Background(), RegisterDeps{AccountStore: store},
		"admin@example.com", "admin-password-long"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.byEmail["admin@example.com"]; ok {
		t.Error("seeding should be skipped when accounts exist")
	}
}
