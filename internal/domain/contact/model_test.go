package contact_test

import (
	"testing"

	"paddock/internal/domain/contact"
)

// TestMessage_Validate tests validation of Message.
func TestMessage_Validate(t *testing.T) {
	valid := contact.Message{ID: "1", Subject: "Stall availability", Message: "Do you have space?", SenderName: "Kim", SenderEmail: "kim@example.com", Status: contact.StatusNew}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	m := valid
	m.Subject = ""
	if err := m.Validate(); err != contact.ErrEmptySubject {
		t.Errorf("error = %v, want ErrEmptySubject", err)
	}
	m = valid
	m.Message = " "
	if err := m.Validate(); err != contact.ErrEmptyMessage {
		t.Errorf("error = %v, want ErrEmptyMessage", err)
	}
	m = valid
	m.SenderEmail = ""
	if err := m.Validate(); err != contact.ErrEmptySenderEmail {
		t.Errorf("error = %v, want ErrEmptySenderEmail", err)
	}
}

// TestMessage_SetStatus allows any-direction transitions between known states.
func TestMessage_SetStatus(t *testing.T) {
	m := contact.Message{Status: contact.StatusNew}

	for _, status := range []string{contact.StatusRead, contact.StatusResolved, contact.StatusNew, contact.StatusResolved} {
		if err := m.SetStatus(status); err != nil {
			t.Fatalf("SetStatus(%s) error = %v", status, err)
		}
		if m.Status != status {
			t.Errorf("Status = %q, want %q", m.Status, status)
		}
	}

	if err := m.SetStatus("archived"); err != contact.ErrInvalidStatus {
		t.Errorf("SetStatus(unknown) error = %v, want ErrInvalidStatus", err)
	}
}
