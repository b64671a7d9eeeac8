package contact

import (
	"errors"
	"strings"
	"time"
)

// Status constants. Transitions may move in any direction; the admin inbox
// freely toggles between read and resolved.
const (
	StatusNew      = "new"
	StatusRead     = "read"
	StatusResolved = "resolved"
)

// Domain errors
var (
	ErrEmptySubject     = errors.New("subject cannot be empty")
	ErrEmptyMessage     = errors.New("message cannot be empty")
	ErrEmptySenderEmail = errors.New("sender email cannot be empty")
	ErrInvalidStatus    = errors.New("status must be new, read, or resolved")
)

// Message is an inbound contact/admin-inbox message.
type Message struct {
	ID          string
	Subject     string
	Message     string
	SenderName  string
	SenderEmail string
	Type        string
	Status      string
	CreatedAt   time.Time
}

// Validate checks if the Message has valid data.
func (m *Message) Validate() error {
	if strings.TrimSpace(m.Subject) == "" {
		return ErrEmptySubject
	}
	if strings.TrimSpace(m.Message) == "" {
		return ErrEmptyMessage
	}
	if strings.TrimSpace(m.SenderEmail) == "" {
		return ErrEmptySenderEmail
	}
	return nil
}

// SetStatus moves the message to any known status.
// POST: Status is updated, or ErrInvalidStatus for unknown values
func (m *Message) SetStatus(status string) error {
	switch status {
	case StatusNew, StatusRead, StatusResolved:
		m.Status = status
		return nil
	default:
		return ErrInvalidStatus
	}
}
