package horse

import (
	"errors"
	"strings"
	"time"
)

// Domain errors
var (
	ErrEmptyName       = errors.New("horse name cannot be empty")
	ErrEmptyOwnerEmail = errors.New("owner email cannot be empty")
)

// Horse is a rider-owned horse referenced by name on sessions and
// competition entries.
type Horse struct {
	ID         string
	OwnerEmail string
	Name       string
	Breed      string
	Notes      string
	CreatedAt  time.Time
}

// Validate checks if the Horse has valid data.
func (h *Horse) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(h.OwnerEmail) == "" {
		return ErrEmptyOwnerEmail
	}
	return nil
}
