package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"paddock/internal/domain/notification"
	"paddock/internal/domain/session"
	"paddock/internal/metrics"

	"github.com/google/uuid"
)

// SessionStoreForSchedule defines the store interface needed by ScheduleSessions.
type SessionStoreForSchedule interface {
	Save(ctx context.Context, s session.Session) error
}

// ScheduleSessionsInput carries input for session scheduling. RecurWeeks of
// 0 or 1 creates a single session; higher values create one session per week.
type ScheduleSessionsInput struct {
	TrainerEmail    string
	RiderEmail      string
	RiderName       string
	HorseName       string
	SessionDate     time.Time
	DurationMinutes int
	SessionType     string
	Notes           string
	RecurWeeks      int
}

// ScheduleFailure reports one occurrence that could not be persisted.
type ScheduleFailure struct {
	Date  time.Time `json:"date"`
	Error string    `json:"error"`
}

// ScheduleSessionsResult reports what was created. A batch can partially
// succeed; callers surface Failed to the trainer rather than rolling back
// the occurrences that did persist.
type ScheduleSessionsResult struct {
	Created []session.Session `json:"created"`
	Failed  []ScheduleFailure `json:"failed,omitempty"`
}

// ScheduleSessionsDeps holds dependencies for ScheduleSessions.
type ScheduleSessionsDeps struct {
	SessionStore SessionStoreForSchedule
	Notify       NotifyDeps
}

// ExecuteScheduleSessions creates one session or a weekly recurring batch.
// Occurrence writes fan out concurrently; each failure is reported per date.
// PRE: Input validates as a session; RecurWeeks <= 52
// POST: Created holds persisted sessions sorted by date; rider notified once
func ExecuteScheduleSessions(ctx context.Context, input ScheduleSessionsInput, deps ScheduleSessionsDeps) (ScheduleSessionsResult, error) {
	base := session.Session{
		ID:              uuid.New().String(),
		TrainerEmail:    input.TrainerEmail,
		RiderEmail:      input.RiderEmail,
		RiderName:       input.RiderName,
		HorseName:       input.HorseName,
		SessionDate:     input.SessionDate,
		DurationMinutes: input.DurationMinutes,
		SessionType:     input.SessionType,
		Notes:           input.Notes,
		Status:          session.StatusScheduled,
		CreatedAt:       time.Now(),
	}

	weeks := input.RecurWeeks
	if weeks < 1 {
		weeks = 1
	}

	var batch []session.Session
	if weeks == 1 {
		if err := base.Validate(); err != nil {
			return ScheduleSessionsResult{}, err
		}
		batch = []session.Session{base}
	} else {
		expanded, err := session.ExpandWeekly(base, weeks)
		if err != nil {
			return ScheduleSessionsResult{}, err
		}
		batch = expanded
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result ScheduleSessionsResult
	)
	for _, occ := range batch {
		wg.Add(1)
		go func(occ session.Session) {
			defer wg.Done()
			if err := deps.SessionStore.Save(ctx, occ); err != nil {
				mu.Lock()
				result.Failed = append(result.Failed, ScheduleFailure{
					Date:  occ.SessionDate,
					Error: err.Error(),
				})
				mu.Unlock()
				return
			}
			mu.Lock()
			result.Created = append(result.Created, occ)
			mu.Unlock()
		}(occ)
	}
	wg.Wait()

	// Fan-out completes out of order.
	sort.Slice(result.Created, func(i, j int) bool {
		return result.Created[i].SessionDate.Before(result.Created[j].SessionDate)
	})

	metrics.SessionsCreated.Add(float64(len(result.Created)))
	slog.Info("sessions_scheduled", "trainer", input.TrainerEmail, "rider", input.RiderEmail,
		"created", len(result.Created), "failed", len(result.Failed))

	if len(result.Created) > 0 {
		title := fmt.Sprintf("New %s scheduled", input.SessionType)
		msg := fmt.Sprintf("%s scheduled a **%s** with you on %s.",
			input.TrainerEmail, input.SessionType, base.SessionDate.Format("Mon 2 Jan 2006 15:04"))
		if len(result.Created) > 1 {
			msg = fmt.Sprintf("%s scheduled **%d weekly %s sessions** starting %s.",
				input.TrainerEmail, len(result.Created), input.SessionType,
				base.SessionDate.Format("Mon 2 Jan 2006 15:04"))
		}
		ExecuteNotify(ctx, NotifyInput{
			UserEmail:         input.RiderEmail,
			Type:              notification.TypeSessionCreated,
			Title:             title,
			Message:           msg,
			RelatedEntityType: "training_session",
			RelatedEntityID:   result.Created[0].ID,
		}, deps.Notify)
	}

	return result, nil
}
