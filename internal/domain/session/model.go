package session

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Session type constants.
const (
	TypeLesson          = "lesson"
	TypeTraining        = "training"
	TypeHorseTraining   = "horse_training"
	TypeHorseTransport  = "horse_transport"
	TypeCompetitionPrep = "competition_prep"
	TypeEvaluation      = "evaluation"
	TypeOther           = "other"
)

// Status constants.
const (
	StatusScheduled = "scheduled"
	StatusCancelled = "cancelled"
)

// Recurrence bounds: a recurrence request produces between 1 and 52 weekly
// occurrences.
const (
	MinRecurrenceWeeks = 1
	MaxRecurrenceWeeks = 52
)

// ValidTypes contains all valid session type values.
var ValidTypes = []string{
	TypeLesson, TypeTraining, TypeHorseTraining, TypeHorseTransport,
	TypeCompetitionPrep, TypeEvaluation, TypeOther,
}

// Domain errors
var (
	ErrEmptyTrainerEmail = errors.New("trainer email cannot be empty")
	ErrEmptyRiderEmail   = errors.New("rider email cannot be empty")
	ErrZeroDate          = errors.New("session date must be set")
	ErrInvalidDuration   = errors.New("duration must be positive")
	ErrInvalidType       = errors.New("unknown session type")
	ErrInvalidWeeks      = errors.New("recurrence weeks must be between 1 and 52")
)

// Session represents a single training session between a trainer and a rider.
// A session created through a recurrence request carries the shared
// RecurringGroupID of its batch; the group id is descriptive only, and
// editing or deleting one occurrence never touches the rest of the group.
type Session struct {
	ID               string
	TrainerEmail     string
	RiderEmail       string
	RiderName        string
	HorseName        string
	SessionDate      time.Time
	DurationMinutes  int
	SessionType      string
	Notes            string
	Status           string
	IsRecurring      bool
	RecurringGroupID string
	CreatedAt        time.Time
}

// Validate checks if the Session has valid data.
// PRE: Session struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Session) Validate() error {
	if strings.TrimSpace(s.TrainerEmail) == "" {
		return ErrEmptyTrainerEmail
	}
	if strings.TrimSpace(s.RiderEmail) == "" {
		return ErrEmptyRiderEmail
	}
	if s.SessionDate.IsZero() {
		return ErrZeroDate
	}
	if s.DurationMinutes <= 0 {
		return ErrInvalidDuration
	}
	if !IsValidType(s.SessionType) {
		return ErrInvalidType
	}
	return nil
}

// CalendarDate implements calendar.Entry.
func (s Session) CalendarDate() time.Time { return s.SessionDate }

// IsCancelled implements calendar.Entry.
func (s Session) IsCancelled() bool {
	return s.Status == StatusCancelled
}

// Cancel marks the session cancelled. Cancelling an already-cancelled
// session is a no-op.
func (s *Session) Cancel() {
	s.Status = StatusCancelled
}

// ExpandWeekly produces the creation records for a weekly recurrence request.
//
// Occurrence k (0-indexed) is a copy of base with SessionDate advanced by
// 7*k calendar days, time-of-day preserved. All occurrences share one newly
// generated RecurringGroupID and have IsRecurring set. Each occurrence gets
// its own fresh ID.
//
// PRE: base validates; weeks in [1, 52]
// POST: Returns exactly `weeks` sessions ordered by date
func ExpandWeekly(base Session, weeks int) ([]Session, error) {
	if weeks < MinRecurrenceWeeks || weeks > MaxRecurrenceWeeks {
		return nil, ErrInvalidWeeks
	}
	if err := base.Validate(); err != nil {
		return nil, err
	}

	groupID := uuid.New().String()
	out := make([]Session, 0, weeks)
	for k := 0; k < weeks; k++ {
		occ := base
		occ.ID = uuid.New().String()
		occ.SessionDate = base.SessionDate.AddDate(0, 0, 7*k)
		occ.Status = StatusScheduled
		occ.IsRecurring = true
		occ.RecurringGroupID = groupID
		out = append(out, occ)
	}
	return out, nil
}

// IsValidType reports whether t is a known session type.
func IsValidType(t string) bool {
	for _, v := range ValidTypes {
		if v == t {
			return true
		}
	}
	return false
}
