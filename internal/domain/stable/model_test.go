package stable_test

import (
	"testing"

	"paddock/internal/domain/stable"
)

func pendingStable() stable.Stable {
	return stable.Stable{
		ID:             "s1",
		Name:           "Willow Creek Stables",
		ManagerEmail:   "manager@example.com",
		ApprovalStatus: stable.StatusPending,
	}
}

// TestStable_Validate tests validation of Stable.
func TestStable_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*stable.Stable)
		wantErr error
	}{
		{name: "valid pending", mutate: func(s *stable.Stable) {}, wantErr: nil},
		{name: "empty name", mutate: func(s *stable.Stable) { s.Name = "" }, wantErr: stable.ErrEmptyName},
		{name: "empty manager", mutate: func(s *stable.Stable) { s.ManagerEmail = "" }, wantErr: stable.ErrEmptyManagerEmail},
		{name: "bad status", mutate: func(s *stable.Stable) { s.ApprovalStatus = "maybe" }, wantErr: stable.ErrInvalidStatus},
		{name: "too many images", mutate: func(s *stable.Stable) {
			s.Images = []string{"a", "b", "c", "d", "e"}
		}, wantErr: stable.ErrTooManyImages},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := pendingStable()
			tt.mutate(&s)
			if err := s.Validate(); err != tt.wantErr {
				t.Errorf("Stable.Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestStable_Transitions covers the approval state machine.
func TestStable_Transitions(t *testing.T) {
	// pending -> approved
	s := pendingStable()
	if err := s.Approve(); err != nil {
		t.Fatalf("Approve(pending) error = %v", err)
	}
	if !s.IsApproved() {
		t.Error("expected approved")
	}

	// approved -> approved is rejected
	if err := s.Approve(); err != stable.ErrAlreadyApproved {
		t.Errorf("Approve(approved) error = %v, want ErrAlreadyApproved", err)
	}

	// pending -> rejected
	s = pendingStable()
	if err := s.Reject(); err != nil {
		t.Fatalf("Reject(pending) error = %v", err)
	}
	if s.ApprovalStatus != stable.StatusRejected {
		t.Errorf("status = %q, want rejected", s.ApprovalStatus)
	}

	// rejected -> approved (re-approval allowed)
	if err := s.Approve(); err != nil {
		t.Errorf("Approve(rejected) error = %v, want nil", err)
	}

	// approved -> rejected is not allowed
	if err := s.Reject(); err != stable.ErrNotPending {
		t.Errorf("Reject(approved) error = %v, want ErrNotPending", err)
	}
}

// TestStable_Trainers verifies trainer list membership handling.
func TestStable_Trainers(t *testing.T) {
	s := pendingStable()
	s.AddTrainer("trainer@example.com")
	s.AddTrainer("Trainer@Example.com") // duplicate, case-insensitive
	if len(s.TrainerEmails) != 1 {
		t.Errorf("trainer list = %v, want 1 entry", s.TrainerEmails)
	}
	if !s.HasTrainer("TRAINER@example.com") {
		t.Error("HasTrainer() should match case-insensitively")
	}
	s.RemoveTrainer("trainer@EXAMPLE.com")
	if len(s.TrainerEmails) != 0 {
		t.Errorf("trainer list after remove = %v", s.TrainerEmails)
	}
}

// TestStable_AddImage enforces the gallery cap.
func TestStable_AddImage(t *testing.T) {
	s := pendingStable()
	for i := 0; i < stable.MaxImages; i++ {
		if err := s.AddImage("/uploads/img.jpg"); err != nil {
			t.Fatalf("AddImage(%d) error = %v", i, err)
		}
	}
	if err := s.AddImage("/uploads/extra.jpg"); err != stable.ErrTooManyImages {
		t.Errorf("AddImage(5th) error = %v, want ErrTooManyImages", err)
	}
}

// TestManagesAnother checks the other-stables scan used by manager reassignment.
func TestManagesAnother(t *testing.T) {
	stables := []stable.Stable{
		{ID: "s1", ManagerEmail: "alice@example.com", ApprovalStatus: stable.StatusApproved},
		{ID: "s2", ManagerEmail: "alice@example.com", ApprovalStatus: stable.StatusPending},
		{ID: "s3", ManagerEmail: "bob@example.com", ApprovalStatus: stable.StatusApproved},
	}

	// Alice manages s2 besides s1; any approval status counts.
	if !stable.ManagesAnother(stables, "Alice@Example.com", "s1") {
		t.Error("expected alice to manage another stable")
	}
	// Bob only manages s3.
	if stable.ManagesAnother(stables, "bob@example.com", "s3") {
		t.Error("expected bob to manage no other stable")
	}
}
