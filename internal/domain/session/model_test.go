package session_test

import (
	"testing"
	"time"

	"paddock/internal/domain/session"
)

func baseSession() session.Session {
	return session.Session{
		TrainerEmail:    "trainer@example.com",
		RiderEmail:      "rider@example.com",
		RiderName:       "Sam Rider",
		HorseName:       "Comet",
		SessionDate:     time.Date(2026, 1, 10, 14, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
		SessionType:     session.TypeLesson,
		Status:          session.StatusScheduled,
	}
}

// TestSession_Validate tests validation of Session.
func TestSession_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*session.Session)
		wantErr error
	}{
		{name: "valid", mutate: func(s *session.Session) {}, wantErr: nil},
		{name: "empty trainer", mutate: func(s *session.Session) { s.TrainerEmail = "" }, wantErr: session.ErrEmptyTrainerEmail},
		{name: "empty rider", mutate: func(s *session.Session) { s.RiderEmail = " " }, wantErr: session.ErrEmptyRiderEmail},
		{name: "zero date", mutate: func(s *session.Session) { s.SessionDate = time.Time{} }, wantErr: session.ErrZeroDate},
		{name: "zero duration", mutate: func(s *session.Session) { s.DurationMinutes = 0 }, wantErr: session.ErrInvalidDuration},
		{name: "unknown type", mutate: func(s *session.Session) { s.SessionType = "dressage" }, wantErr: session.ErrInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := baseSession()
			tt.mutate(&s)
			if err := s.Validate(); err != tt.wantErr {
				t.Errorf("Session.Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestExpandWeekly_Example checks the canonical three-week expansion.
func TestExpandWeekly_Example(t *testing.T) {
	base := baseSession()
	got, err := session.ExpandWeekly(base, 3)
	if err != nil {
		t.Fatalf("ExpandWeekly() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ExpandWeekly() returned %d sessions, want 3", len(got))
	}

	want := []time.Time{
		time.Date(2026, 1, 10, 14, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 17, 14, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 24, 14, 0, 0, 0, time.UTC),
	}
	for i, s := range got {
		if !s.SessionDate.Equal(want[i]) {
			t.Errorf("occurrence %d date = %v, want %v", i, s.SessionDate, want[i])
		}
		if !s.IsRecurring {
			t.Errorf("occurrence %d IsRecurring = false, want true", i)
		}
		if s.RecurringGroupID == "" {
			t.Errorf("occurrence %d has empty group id", i)
		}
		if s.RecurringGroupID != got[0].RecurringGroupID {
			t.Errorf("occurrence %d group id differs from batch", i)
		}
		if s.ID == "" || (i > 0 && s.ID == got[0].ID) {
			t.Errorf("occurrence %d does not have its own id", i)
		}
	}
}

// TestExpandWeekly_Spacing verifies 7-day spacing with time-of-day preserved
// across a month boundary.
func TestExpandWeekly_Spacing(t *testing.T) {
	base := baseSession()
	base.SessionDate = time.Date(2026, 1, 28, 9, 30, 0, 0, time.UTC)

	got, err := session.ExpandWeekly(base, 5)
	if err != nil {
		t.Fatalf("ExpandWeekly() error = %v", err)
	}
	for k, s := range got {
		want := base.SessionDate.AddDate(0, 0, 7*k)
		if !s.SessionDate.Equal(want) {
			t.Errorf("occurrence %d date = %v, want %v", k, s.SessionDate, want)
		}
		if s.SessionDate.Hour() != 9 || s.SessionDate.Minute() != 30 {
			t.Errorf("occurrence %d lost time-of-day: %v", k, s.SessionDate)
		}
	}
}

// TestExpandWeekly_GroupIDsDistinct verifies two expansions never share a group id.
func TestExpandWeekly_GroupIDsDistinct(t *testing.T) {
	a, err := session.ExpandWeekly(baseSession(), 2)
	if err != nil {
		t.Fatalf("ExpandWeekly() error = %v", err)
	}
	b, err := session.ExpandWeekly(baseSession(), 2)
	if err != nil {
		t.Fatalf("ExpandWeekly() error = %v", err)
	}
	if a[0].RecurringGroupID == b[0].RecurringGroupID {
		t.Error("two recurrence batches share a group id")
	}
}

// TestExpandWeekly_Bounds rejects week counts outside [1, 52].
func TestExpandWeekly_Bounds(t *testing.T) {
	for _, weeks := range []int{0, -1, 53} {
		if _, err := session.ExpandWeekly(baseSession(), weeks); err != session.ErrInvalidWeeks {
			t.Errorf("ExpandWeekly(weeks=%d) error = %v, want ErrInvalidWeeks", weeks, err)
		}
	}
	if got, err := session.ExpandWeekly(baseSession(), 52); err != nil || len(got) != 52 {
		t.Errorf("ExpandWeekly(52) = %d sessions, err %v; want 52, nil", len(got), err)
	}
}

// TestSession_Cancel is idempotent.
func TestSession_Cancel(t *testing.T) {
	s := baseSession()
	s.Cancel()
	if !s.IsCancelled() {
		t.Error("expected cancelled")
	}
	s.Cancel()
	if s.Status != session.StatusCancelled {
		t.Errorf("Status = %q after double cancel", s.Status)
	}
}
