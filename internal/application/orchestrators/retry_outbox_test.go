package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "paddock/internal/domain/outbox"
)

// mockOutboxStore implements the outbox Store interface in memory.
type mockOutboxStore struct {
	entries map[string]domain.Entry
}

func newMockOutboxStore() *mockOutboxStore {
	return &mockOutboxStore{entries: make(map[string]domain.Entry)}
}

func (m *mockOutboxStore) GetByID(_ context.Context, id string) (domain.Entry, error) {
	e, ok := m.entries[id]
	if !ok {
		return domain.Entry{}, errors.New("not found")
	}
	return e, nil
}

func (m *mockOutboxStore) Save(_ context.Context, e domain.Entry) error {
	m.entries[e.ID] = e
	return nil
}

func (m *mockOutboxStore) ListPending(_ context.Context, limit int) ([]domain.Entry, error) {
	var out []domain.Entry
	for _, e := range m.entries {
		if e.Status == domain.StatusPending || e.Status == domain.StatusRetrying {
			out = append(out, e)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *mockOutboxStore) ListFailed(_ context.Context, _ int) ([]domain.Entry, error) {
	return nil, nil
}

func (m *mockOutboxStore) Delete(_ context.Context, id string) error {
	delete(m.entries, id)
	return nil
}

// stubExecutor returns a fixed result or error.
type stubExecutor struct {
	externalID string
	err        error
	calls      int
}

func (s *stubExecutor) Execute(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.externalID, s.err
}

func pendingEntry(id string) domain.Entry {
	return domain.Entry{
		ID:          id,
		ActionType:  domain.ActionTypeNotificationEmail,
		Payload:     `{"to":"rider@example.com","subject":"hi","markdown":"x"}`,
		Status:      domain.StatusPending,
		MaxAttempts: 3,
		CreatedAt:   time.Now(),
	}
}

func TestOutboxProcessor_Success(t *testing.T) {
	store := newMockOutboxStore()
	store.entries["e1"] = pendingEntry("e1")
	exec := &stubExecutor{externalID: "msg-123"}

	p := NewOutboxProcessor(store, map[string]ActionExecutor{
		domain.ActionTypeNotificationEmail: exec,
	}, ProcessorOptions{})

	if err := p.ProcessPending(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := store.entries["e1"]
	if e.Status != domain.StatusDone {
		t.Errorf("status = %s, want done", e.Status)
	}
	if e.ExternalID != "msg-123" {
		t.Errorf("external id = %s", e.ExternalID)
	}
	if exec.calls != 1 {
		t.Errorf("executor calls = %d", exec.calls)
	}
}

func TestOutboxProcessor_FailureRecordsAttempt(t *testing.T) {
	store := newMockOutboxStore()
	store.entries["e1"] = pendingEntry("e1")
	exec := &stubExecutor{err: errors.New("provider down")}

	p := NewOutboxProcessor(store, map[string]ActionExecutor{
		domain.ActionTypeNotificationEmail: exec,
	}, ProcessorOptions{})

	if err := p.ProcessPending(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := store.entries["e1"]
	if e.Attempts != 1 {
		t.Errorf("attempts = %d, want 1", e.Attempts)
	}
	if e.Status != domain.StatusRetrying {
		t.Errorf("status = %s, want retrying", e.Status)
	}
	if e.ErrorMessage == "" {
		t.Error("error message should be recorded")
	}
}

func TestOutboxProcessor_BackoffSkipsRecentAttempt(t *testing.T) {
	store := newMockOutboxStore()
	e := pendingEntry("e1")
	e.Status = domain.StatusRetrying
	e.Attempts = 1
	e.LastAttemptedAt = time.Now()
	store.entries["e1"] = e
	exec := &stubExecutor{externalID: "msg-123"}

	p := NewOutboxProcessor(store, map[string]ActionExecutor{
		domain.ActionTypeNotificationEmail: exec,
	}, ProcessorOptions{BaseDelay: time.Hour})

	if err := p.ProcessPending(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.calls != 0 {
		t.Errorf("executor should not run inside backoff window, calls = %d", exec.calls)
	}
}

func TestOutboxProcessor_UnknownActionType(t *testing.T) {
	store := newMockOutboxStore()
	e := pendingEntry("e1")
	e.ActionType = "mystery"
	store.entries["e1"] = e

	p := NewOutboxProcessor(store, map[string]ActionExecutor{}, ProcessorOptions{})
	if err := p.ProcessPending(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.entries["e1"].ErrorMessage; got == "" {
		t.Error("unknown action type should record an error")
	}
}

func TestOutboxProcessor_AbandonEntry(t *testing.T) {
	store := newMockOutboxStore()
	store.entries["e1"] = pendingEntry("e1")

	p := NewOutboxProcessor(store, nil, ProcessorOptions{})
	if err := p.AbandonEntry(context.Background(), "e1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.entries["e1"].Status != domain.StatusAbandoned {
		t.Errorf("status = %s, want abandoned", store.entries["e1"].Status)
	}
}
