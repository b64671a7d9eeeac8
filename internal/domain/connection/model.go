package connection

import (
	"errors"
	"strings"
	"time"
)

// Connection type constants.
const (
	TypeTrainerRider = "trainer_rider"
	TypeAdminTrainer = "admin_trainer"
)

// Status constants.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

// Domain errors
var (
	ErrEmptyFromEmail = errors.New("from email cannot be empty")
	ErrEmptyToEmail   = errors.New("to email cannot be empty")
	ErrSelfConnection = errors.New("cannot connect a user to themselves")
	ErrInvalidType    = errors.New("unknown connection type")
)

// Connection is a relationship request between two users, unique per
// (FromEmail, ToEmail, Type).
type Connection struct {
	ID        string
	FromEmail string
	ToEmail   string
	Type      string
	Status    string
	CreatedAt time.Time
}

// Validate checks if the Connection has valid data.
func (c *Connection) Validate() error {
	if strings.TrimSpace(c.FromEmail) == "" {
		return ErrEmptyFromEmail
	}
	if strings.TrimSpace(c.ToEmail) == "" {
		return ErrEmptyToEmail
	}
	if strings.EqualFold(c.FromEmail, c.ToEmail) {
		return ErrSelfConnection
	}
	if c.Type != TypeTrainerRider && c.Type != TypeAdminTrainer {
		return ErrInvalidType
	}
	return nil
}

// IsApproved reports whether the connection has been accepted.
func (c *Connection) IsApproved() bool {
	return c.Status == StatusApproved
}

// Approve marks the connection approved. Approving twice is a no-op.
func (c *Connection) Approve() {
	c.Status = StatusApproved
}
