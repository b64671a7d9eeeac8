package orchestrators

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"paddock/internal/domain/notification"
	"paddock/internal/domain/outbox"
	"paddock/internal/domain/session"
)

// mockSessionStore implements SessionStoreForSchedule for testing.
type mockSessionStore struct {
	mu     sync.Mutex
	saved  []session.Session
	failOn map[string]error // keyed by date "2006-01-02"
}

func (m *mockSessionStore) Save(_ context.Context, s session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failOn[s.SessionDate.Format("2006-01-02")]; ok {
		return err
	}
	m.saved = append(m.saved, s)
	return nil
}

// mockNotifyStores captures notifications and outbox entries.
type mockNotifyStores struct {
	mu            sync.Mutex
	notifications []notification.Notification
	prefs         []notification.Preference
	entries       []outbox.Entry
}

func (m *mockNotifyStores) Save(_ context.Context, n notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, n)
	return nil
}

func (m *mockNotifyStores) ListPreferences(_ context.Context, _ string) ([]notification.Preference, error) {
	return m.prefs, nil
}

func (m *mockNotifyStores) SaveEntry(_ context.Context, e outbox.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

type mockOutboxSaver struct{ stores *mockNotifyStores }

func (m *mockOutboxSaver) Save(ctx context.Context, e outbox.Entry) error {
	return m.stores.SaveEntry(ctx, e)
}

func notifyDepsFor(stores *mockNotifyStores) NotifyDeps {
	return NotifyDeps{
		NotificationStore: stores,
		OutboxStore:       &mockOutboxSaver{stores: stores},
	}
}

func baseInput() ScheduleSessionsInput {
	return ScheduleSessionsInput{
		TrainerEmail:    "trainer@example.com",
		RiderEmail:      "rider@example.com",
		RiderName:       "Jane Rider",
		HorseName:       "Copper",
		SessionDate:     time.Date(2026, 1, 10, 14, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		SessionType:     session.TypeLesson,
	}
}

func TestExecuteScheduleSessions_Single(t *testing.T) {
	store := &mockSessionStore{}
	notify := &mockNotifyStores{}

	result, err := ExecuteScheduleSessions(context.Background(), baseInput(), ScheduleSessionsDeps{
		SessionStore: store,
		Notify:       notifyDepsFor(notify),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Created) != 1 || len(result.Failed) != 0 {
		t.Fatalf("got %d created, %d failed", len(result.Created), len(result.Failed))
	}
	if result.Created[0].IsRecurring {
		t.Error("single session should not be marked recurring")
	}
	if len(notify.notifications) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notify.notifications))
	}
	if notify.notifications[0].Type != notification.TypeSessionCreated {
		t.Errorf("notification type = %s", notify.notifications[0].Type)
	}
}

func TestExecuteScheduleSessions_WeeklyRecurrence(t *testing.T) {
	store := &mockSessionStore{}
	notify := &mockNotifyStores{}

	input := baseInput()
	input.RecurWeeks = 3

	result, err := ExecuteScheduleSessions(context.Background(), input, ScheduleSessionsDeps{
		SessionStore: store,
		Notify:       notifyDepsFor(notify),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Created) != 3 {
		t.Fatalf("expected 3 sessions, got %d", len(result.Created))
	}

	wantDates := []time.Time{
		time.Date(2026, 1, 10, 14, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 17, 14, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 24, 14, 0, 0, 0, time.UTC),
	}
	groupID := result.Created[0].RecurringGroupID
	if groupID == "" {
		t.Fatal("recurring group id should be set")
	}
	for i, s := range result.Created {
		if !s.SessionDate.Equal(wantDates[i]) {
			t.Errorf("occurrence %d: date = %v, want %v", i, s.SessionDate, wantDates[i])
		}
		if !s.IsRecurring {
			t.Errorf("occurrence %d: not marked recurring", i)
		}
		if s.RecurringGroupID != groupID {
			t.Errorf("occurrence %d: group id %s != %s", i, s.RecurringGroupID, groupID)
		}
	}

	// One notification for the whole batch, not one per occurrence.
	if len(notify.notifications) != 1 {
		t.Errorf("expected 1 notification, got %d", len(notify.notifications))
	}
}

func TestExecuteScheduleSessions_PartialFailure(t *testing.T) {
	store := &mockSessionStore{
		failOn: map[string]error{"2026-01-17": errors.New("disk full")},
	}
	notify := &mockNotifyStores{}

	input := baseInput()
	input.RecurWeeks = 3

	result, err := ExecuteScheduleSessions(context.Background(), input, ScheduleSessionsDeps{
		SessionStore: store,
		Notify:       notifyDepsFor(notify),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Created) != 2 {
		t.Errorf("expected 2 created, got %d", len(result.Created))
	}
	if len(result.Failed) != 1 {
		t.Fatalf("expected 1 failure, got %d", len(result.Failed))
	}
	if got := result.Failed[0].Date.Format("2006-01-02"); got != "2026-01-17" {
		t.Errorf("failed date = %s", got)
	}
}

func TestExecuteScheduleSessions_TooManyWeeks(t *testing.T) {
	input := baseInput()
	input.RecurWeeks = 53

	_, err := ExecuteScheduleSessions(context.Background(), input, ScheduleSessionsDeps{
		SessionStore: &mockSessionStore{},
		Notify:       notifyDepsFor(&mockNotifyStores{}),
	})
	if !errors.Is(err, session.ErrInvalidWeeks) {
		t.Errorf("expected ErrInvalidWeeks, got %v", err)
	}
}

func TestExecuteNotify_RespectsPreferences(t *testing.T) {
	notify := &mockNotifyStores{
		prefs: []notification.Preference{
			{UserEmail: "rider@example.com", NotificationType: notification.TypeSessionCreated, Enabled: false},
		},
	}

	ExecuteNotify(context.Background(), NotifyInput{
		UserEmail: "rider@example.com",
		Type:      notification.TypeSessionCreated,
		Title:     "New lesson scheduled",
	}, notifyDepsFor(notify))

	if len(notify.notifications) != 1 {
		t.Fatalf("in-app notification should still be written, got %d", len(notify.notifications))
	}
	if len(notify.entries) != 0 {
		t.Errorf("email should be suppressed by preference, got %d outbox entries", len(notify.entries))
	}
}
