package stable

import (
	"errors"
	"strings"
	"time"
)

// Event domain errors
var (
	ErrEmptyStableID   = errors.New("stable id cannot be empty")
	ErrEmptyEventTitle = errors.New("event title cannot be empty")
	ErrZeroEventStart  = errors.New("event start must be set")
	ErrEventEndsBefore = errors.New("event cannot end before it starts")
)

// Event is an event hosted at a stable, shown on the stable detail page.
type Event struct {
	ID          string
	StableID    string
	Title       string
	Description string
	StartsAt    time.Time
	EndsAt      time.Time
	CreatedAt   time.Time
}

// Validate checks if the Event has valid data.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.StableID) == "" {
		return ErrEmptyStableID
	}
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyEventTitle
	}
	if e.StartsAt.IsZero() {
		return ErrZeroEventStart
	}
	if !e.EndsAt.IsZero() && e.EndsAt.Before(e.StartsAt) {
		return ErrEventEndsBefore
	}
	return nil
}
