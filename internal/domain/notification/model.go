package notification

import (
	"errors"
	"strings"
	"time"
)

// Notification type constants mirror the session lifecycle events that
// trigger them, plus admin workflow events.
const (
	TypeSessionCreated   = "session_created"
	TypeSessionUpdated   = "session_updated"
	TypeSessionCancelled = "session_cancelled"
	TypeSessionDeleted   = "session_deleted"
	TypeStableApproved   = "stable_approved"
	TypeStableRejected   = "stable_rejected"
	TypeConnectionReq    = "connection_request"
)

// Domain errors
var (
	ErrEmptyUserEmail = errors.New("user email cannot be empty")
	ErrEmptyType      = errors.New("notification type cannot be empty")
	ErrEmptyTitle     = errors.New("notification title cannot be empty")
)

// Notification is an in-app notification for a user. Delivery to email is
// handled separately through the outbox; failure to deliver never affects
// the primary mutation that produced the notification.
type Notification struct {
	ID                string
	UserEmail         string
	Type              string
	Title             string
	Message           string
	RelatedEntityType string
	RelatedEntityID   string
	Link              string
	ReadAt            time.Time
	CreatedAt         time.Time
}

// Validate checks if the Notification has valid data.
func (n *Notification) Validate() error {
	if strings.TrimSpace(n.UserEmail) == "" {
		return ErrEmptyUserEmail
	}
	if strings.TrimSpace(n.Type) == "" {
		return ErrEmptyType
	}
	if strings.TrimSpace(n.Title) == "" {
		return ErrEmptyTitle
	}
	return nil
}

// IsRead reports whether the notification has been read.
func (n *Notification) IsRead() bool {
	return !n.ReadAt.IsZero()
}

// MarkRead records the read time. Re-reading keeps the original timestamp.
func (n *Notification) MarkRead() {
	if n.ReadAt.IsZero() {
		n.ReadAt = time.Now()
	}
}

// Preference controls whether a user receives a given notification type.
// Rows are unique per (UserEmail, NotificationType); absence means enabled.
type Preference struct {
	ID               string
	UserEmail        string
	NotificationType string
	Enabled          bool
}

// Allows reports whether prefs permit sending the given type to the user.
// A missing preference row defaults to enabled.
func Allows(prefs []Preference, notificationType string) bool {
	for _, p := range prefs {
		if p.NotificationType == notificationType {
			return p.Enabled
		}
	}
	return true
}
