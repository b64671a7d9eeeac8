package stable

import (
	"errors"
	"strings"
	"time"
)

// Approval status constants. Admin-controlled transitions:
// pending -> approved, pending -> rejected, rejected -> approved.
// Deletion is allowed from any state and is terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// MaxImages caps the stable image gallery.
const MaxImages = 4

// Domain errors
var (
	ErrEmptyName         = errors.New("stable name cannot be empty")
	ErrEmptyManagerEmail = errors.New("manager email cannot be empty")
	ErrInvalidStatus     = errors.New("invalid approval status")
	ErrAlreadyApproved   = errors.New("stable is already approved")
	ErrNotPending        = errors.New("only pending stables can be rejected")
	ErrTooManyImages     = errors.New("a stable can have at most 4 images")
)

// Stable represents a registered stable awaiting or holding admin approval.
// Trainer membership in TrainerEmails implies a trainer role grant on the
// referenced user; the manager of an approved stable holds stable_manager.
type Stable struct {
	ID             string
	Name           string
	ManagerEmail   string
	TrainerEmails  []string
	ApprovalStatus string
	Address        string
	City           string
	State          string
	Country        string
	Phone          string
	Email          string
	Description    string
	Images         []string
	Latitude       float64
	Longitude      float64
	CreatedAt      time.Time
}

// Validate checks if the Stable has valid data.
// PRE: Stable struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Stable) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(s.ManagerEmail) == "" {
		return ErrEmptyManagerEmail
	}
	switch s.ApprovalStatus {
	case StatusPending, StatusApproved, StatusRejected:
	default:
		return ErrInvalidStatus
	}
	if len(s.Images) > MaxImages {
		return ErrTooManyImages
	}
	return nil
}

// Approve transitions pending or rejected stables to approved.
// PRE: ApprovalStatus is pending or rejected
// POST: ApprovalStatus is approved
func (s *Stable) Approve() error {
	if s.ApprovalStatus == StatusApproved {
		return ErrAlreadyApproved
	}
	s.ApprovalStatus = StatusApproved
	return nil
}

// Reject transitions pending stables to rejected. A rejected stable may be
// re-approved later; an approved stable cannot be rejected, only deleted.
// PRE: ApprovalStatus is pending
// POST: ApprovalStatus is rejected
func (s *Stable) Reject() error {
	if s.ApprovalStatus != StatusPending {
		return ErrNotPending
	}
	s.ApprovalStatus = StatusRejected
	return nil
}

// IsApproved reports whether the stable has been approved.
func (s *Stable) IsApproved() bool {
	return s.ApprovalStatus == StatusApproved
}

// HasTrainer reports whether the email is in the stable's trainer list,
// matched case-insensitively.
func (s *Stable) HasTrainer(email string) bool {
	for _, t := range s.TrainerEmails {
		if strings.EqualFold(t, email) {
			return true
		}
	}
	return false
}

// AddTrainer appends a trainer email if not already present.
func (s *Stable) AddTrainer(email string) {
	if email == "" || s.HasTrainer(email) {
		return
	}
	s.TrainerEmails = append(s.TrainerEmails, email)
}

// RemoveTrainer removes a trainer email, matched case-insensitively.
func (s *Stable) RemoveTrainer(email string) {
	out := s.TrainerEmails[:0]
	for _, t := range s.TrainerEmails {
		if !strings.EqualFold(t, email) {
			out = append(out, t)
		}
	}
	s.TrainerEmails = out
}

// AddImage appends an image URL, enforcing the gallery cap.
func (s *Stable) AddImage(url string) error {
	if len(s.Images) >= MaxImages {
		return ErrTooManyImages
	}
	s.Images = append(s.Images, url)
	return nil
}

// ManagesAnother reports whether managerEmail manages any stable in stables
// other than excludeID. Used when reassigning a manager to decide whether
// the old manager keeps the stable_manager role. Any approval status counts.
func ManagesAnother(stables []Stable, managerEmail, excludeID string) bool {
	for _, st := range stables {
		if st.ID == excludeID {
			continue
		}
		if strings.EqualFold(st.ManagerEmail, managerEmail) {
			return true
		}
	}
	return false
}
