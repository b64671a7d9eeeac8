package competition

import (
	"errors"
	"strings"
	"time"
)

// Status constants.
const (
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
)

// Payment status constants for a rider entry.
const (
	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
)

// Domain errors
var (
	ErrEmptyTrainerEmail = errors.New("trainer email cannot be empty")
	ErrEmptyName         = errors.New("competition name cannot be empty")
	ErrZeroDate          = errors.New("competition date must be set")
	ErrEmptyRiderEmail   = errors.New("rider email cannot be empty")
	ErrRiderExists       = errors.New("rider is already entered")
	ErrRiderIndex        = errors.New("rider index out of range")
)

// RiderEntry is one rider's entry on a competition: selected horses,
// selected services (billed via the trainer's rate sheet), and payment state.
type RiderEntry struct {
	RiderEmail    string   `json:"riderEmail"`
	RiderName     string   `json:"riderName"`
	Horses        []string `json:"horses"`
	Services      []string `json:"services"`
	PaymentStatus string   `json:"paymentStatus"`
}

// Competition represents a competition organized by a trainer. The rider
// list is an ordered sub-list mutated in place; rider mutations are keyed by
// index within the list.
type Competition struct {
	ID              string
	TrainerEmail    string
	Name            string
	CompetitionDate time.Time
	Location        string
	StableID        string
	Notes           string
	Status          string
	Riders          []RiderEntry
	CreatedAt       time.Time
}

// Validate checks if the Competition has valid data.
// PRE: Competition struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Competition) Validate() error {
	if strings.TrimSpace(c.TrainerEmail) == "" {
		return ErrEmptyTrainerEmail
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if c.CompetitionDate.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// CalendarDate implements calendar.Entry.
func (c Competition) CalendarDate() time.Time { return c.CompetitionDate }

// IsCancelled implements calendar.Entry.
func (c Competition) IsCancelled() bool { return c.Status == StatusCancelled }

// AddRider appends a rider entry. A rider may appear at most once per
// competition, matched case-insensitively by email.
// POST: Entry appended with payment status unpaid when unset
func (c *Competition) AddRider(entry RiderEntry) error {
	if strings.TrimSpace(entry.RiderEmail) == "" {
		return ErrEmptyRiderEmail
	}
	for _, r := range c.Riders {
		if strings.EqualFold(r.RiderEmail, entry.RiderEmail) {
			return ErrRiderExists
		}
	}
	if entry.PaymentStatus == "" {
		entry.PaymentStatus = PaymentUnpaid
	}
	c.Riders = append(c.Riders, entry)
	return nil
}

// HasRider reports whether a rider with the given email is entered,
// matched case-insensitively.
func (c Competition) HasRider(email string) bool {
	for _, r := range c.Riders {
		if strings.EqualFold(r.RiderEmail, email) {
			return true
		}
	}
	return false
}

// RemoveRider deletes the rider entry at index, preserving list order.
func (c *Competition) RemoveRider(index int) error {
	if index < 0 || index >= len(c.Riders) {
		return ErrRiderIndex
	}
	c.Riders = append(c.Riders[:index], c.Riders[index+1:]...)
	return nil
}

// ToggleHorse adds the horse to the rider's selection if absent, removes it
// if present.
func (c *Competition) ToggleHorse(index int, horseName string) error {
	if index < 0 || index >= len(c.Riders) {
		return ErrRiderIndex
	}
	c.Riders[index].Horses = toggle(c.Riders[index].Horses, horseName)
	return nil
}

// ToggleService adds the service to the rider's selection if absent, removes
// it if present.
func (c *Competition) ToggleService(index int, serviceName string) error {
	if index < 0 || index >= len(c.Riders) {
		return ErrRiderIndex
	}
	c.Riders[index].Services = toggle(c.Riders[index].Services, serviceName)
	return nil
}

// SetPaymentStatus sets the rider's payment status.
func (c *Competition) SetPaymentStatus(index int, status string) error {
	if index < 0 || index >= len(c.Riders) {
		return ErrRiderIndex
	}
	c.Riders[index].PaymentStatus = status
	return nil
}

func toggle(list []string, value string) []string {
	for i, v := range list {
		if v == value {
			return append(list[:i], list[i+1:]...)
		}
	}
	return append(list, value)
}
