package outbox_test

import (
	"errors"
	"testing"
	"time"

	"paddock/internal/domain/outbox"
)

func entry() outbox.Entry {
	return outbox.Entry{
		ID:          "o1",
		ActionType:  outbox.ActionTypeNotificationEmail,
		Payload:     `{"to":"rider@example.com"}`,
		Status:      outbox.StatusPending,
		MaxAttempts: 3,
		CreatedAt:   time.Now(),
	}
}

// TestEntry_Validate tests validation and the attempt-budget default.
func TestEntry_Validate(t *testing.T) {
	e := entry()
	if err := e.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	e = entry()
	e.ActionType = ""
	if err := e.Validate(); err != outbox.ErrEmptyActionType {
		t.Errorf("error = %v, want ErrEmptyActionType", err)
	}

	e = entry()
	e.MaxAttempts = 0
	if err := e.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if e.MaxAttempts != 5 {
		t.Errorf("MaxAttempts default = %d, want 5", e.MaxAttempts)
	}
}

// TestEntry_Lifecycle walks attempt/fail/success transitions.
func TestEntry_Lifecycle(t *testing.T) {
	e := entry()

	if !e.CanRetry() {
		t.Fatal("fresh entry should be retryable")
	}

	e.MarkAttempt()
	e.MarkFailed(errors.New("provider timeout"))
	if e.IsTerminal() {
		t.Error("entry with attempts remaining should not be terminal")
	}
	if !e.CanRetry() {
		t.Error("failed entry with attempts remaining should be retryable")
	}

	e.MarkAttempt()
	e.MarkAttempt()
	e.MarkFailed(errors.New("provider timeout"))
	if !e.IsTerminal() {
		t.Error("entry at attempt budget should be terminal")
	}
	if e.CanRetry() {
		t.Error("exhausted entry should not be retryable")
	}

	e2 := entry()
	e2.MarkAttempt()
	e2.MarkSuccess("msg-123")
	if e2.Status != outbox.StatusDone || e2.ExternalID != "msg-123" || e2.ErrorMessage != "" {
		t.Errorf("after success: %+v", e2)
	}
	if !e2.IsTerminal() {
		t.Error("done entry should be terminal")
	}
}

// TestEntry_NextRetryDelay backs off exponentially with a cap.
func TestEntry_NextRetryDelay(t *testing.T) {
	e := entry()
	base, max := 30*time.Second, time.Hour

	if d := e.NextRetryDelay(base, max); d != 30*time.Second {
		t.Errorf("delay at 0 attempts = %v", d)
	}
	e.Attempts = 2
	if d := e.NextRetryDelay(base, max); d != 2*time.Minute {
		t.Errorf("delay at 2 attempts = %v", d)
	}
	e.Attempts = 10
	if d := e.NextRetryDelay(base, max); d != max {
		t.Errorf("delay should cap at %v, got %v", max, d)
	}
}
