package web

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"paddock/internal/adapters/http/middleware"
	"paddock/internal/application/orchestrators"
	"paddock/internal/domain/account"
	"paddock/internal/domain/notification"
	"paddock/internal/domain/session"
)

// sessionRequest is the JSON shape for creating or updating a session.
type sessionRequest struct {
	RiderEmail      string    `json:"riderEmail"`
	RiderName       string    `json:"riderName"`
	HorseName       string    `json:"horseName"`
	SessionDate     time.Time `json:"sessionDate"`
	DurationMinutes int       `json:"durationMinutes"`
	SessionType     string    `json:"sessionType"`
	Notes           string    `json:"notes"`
	RecurWeeks      int       `json:"recurWeeks"`
}

// handleCreateSessions handles POST /api/sessions. RecurWeeks above 1
// creates a weekly batch; partial failures are reported per date.
func handleCreateSessions(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	var req sessionRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := orchestrators.ExecuteScheduleSessions(r.Context(),
		orchestrators.ScheduleSessionsInput{
			TrainerEmail:    claims.Email,
			RiderEmail:      account.NormalizeEmail(req.RiderEmail),
			RiderName:       req.RiderName,
			HorseName:       req.HorseName,
			SessionDate:     req.SessionDate,
			DurationMinutes: req.DurationMinutes,
			SessionType:     req.SessionType,
			Notes:           req.Notes,
			RecurWeeks:      req.RecurWeeks,
		},
		orchestrators.ScheduleSessionsDeps{
			SessionStore: stores.SessionStore,
			Notify:       notifyDeps(),
		})
	if err != nil {
		domainError(w, err)
		return
	}

	status := http.StatusCreated
	if len(result.Failed) > 0 {
		// Partial success still returns the created occurrences.
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, result)
}

// handleListSessions handles GET /api/sessions. Trainers see sessions they
// teach; riders see sessions they attend.
func handleListSessions(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	var (
		sessions []session.Session
		err      error
	)
	if claims.HasRole(account.RoleTrainer) || claims.HasRole(account.RoleAdmin) {
		sessions, err = stores.SessionStore.ListByTrainer(r.Context(), claims.Email)
	} else {
		sessions, err = stores.SessionStore.ListByRider(r.Context(), claims.Email)
	}
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

// loadOwnSession fetches a session and checks the caller may see it.
func loadOwnSession(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())
	s, err := stores.SessionStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "session not found")
		} else {
			internalError(w, err)
		}
		return session.Session{}, false
	}
	if s.TrainerEmail != claims.Email && s.RiderEmail != claims.Email && !claims.HasRole(account.RoleAdmin) {
		writeError(w, http.StatusForbidden, "forbidden")
		return session.Session{}, false
	}
	return s, true
}

// handleGetSession handles GET /api/sessions/{id}.
func handleGetSession(w http.ResponseWriter, r *http.Request) {
	s, ok := loadOwnSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// handleUpdateSession handles PUT /api/sessions/{id}. Editing one occurrence
// of a recurring group never touches its siblings.
func handleUpdateSession(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())
	s, ok := loadOwnSession(w, r)
	if !ok {
		return
	}
	if s.TrainerEmail != claims.Email && !claims.HasRole(account.RoleAdmin) {
		writeError(w, http.StatusForbidden, "only the trainer can edit a session")
		return
	}

	var req sessionRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.RiderEmail = account.NormalizeEmail(req.RiderEmail)
	s.RiderName = req.RiderName
	s.HorseName = req.HorseName
	s.SessionDate = req.SessionDate
	s.DurationMinutes = req.DurationMinutes
	s.SessionType = req.SessionType
	s.Notes = req.Notes
	if err := s.Validate(); err != nil {
		domainError(w, err)
		return
	}
	if err := stores.SessionStore.Save(r.Context(), s); err != nil {
		internalError(w, err)
		return
	}

	orchestrators.ExecuteNotify(r.Context(), orchestrators.NotifyInput{
		UserEmail:         s.RiderEmail,
		Type:              notification.TypeSessionUpdated,
		Title:             "Session updated",
		Message:           "Your session on " + s.SessionDate.Format("Mon 2 Jan 2006 15:04") + " was updated.",
		RelatedEntityType: "training_session",
		RelatedEntityID:   s.ID,
	}, notifyDeps())

	writeJSON(w, http.StatusOK, s)
}

// handleCancelSession handles POST /api/sessions/{id}/cancel.
func handleCancelSession(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())
	s, ok := loadOwnSession(w, r)
	if !ok {
		return
	}
	if s.TrainerEmail != claims.Email && !claims.HasRole(account.RoleAdmin) {
		writeError(w, http.StatusForbidden, "only the trainer can cancel a session")
		return
	}

	s.Cancel()
	if err := stores.SessionStore.Save(r.Context(), s); err != nil {
		internalError(w, err)
		return
	}

	orchestrators.ExecuteNotify(r.Context(), orchestrators.NotifyInput{
		UserEmail:         s.RiderEmail,
		Type:              notification.TypeSessionCancelled,
		Title:             "Session cancelled",
		Message:           "Your session on " + s.SessionDate.Format("Mon 2 Jan 2006 15:04") + " was cancelled.",
		RelatedEntityType: "training_session",
		RelatedEntityID:   s.ID,
	}, notifyDeps())

	writeJSON(w, http.StatusOK, s)
}

// handleDeleteSession handles DELETE /api/sessions/{id}. Deleting one
// occurrence never cascades to its recurring group.
func handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())
	s, ok := loadOwnSession(w, r)
	if !ok {
		return
	}
	if s.TrainerEmail != claims.Email && !claims.HasRole(account.RoleAdmin) {
		writeError(w, http.StatusForbidden, "only the trainer can delete a session")
		return
	}

	if err := stores.SessionStore.Delete(r.Context(), s.ID); err != nil {
		internalError(w, err)
		return
	}

	orchestrators.ExecuteNotify(r.Context(), orchestrators.NotifyInput{
		UserEmail:         s.RiderEmail,
		Type:              notification.TypeSessionDeleted,
		Title:             "Session removed",
		Message:           "Your session on " + s.SessionDate.Format("Mon 2 Jan 2006 15:04") + " was removed from the schedule.",
		RelatedEntityType: "training_session",
		RelatedEntityID:   s.ID,
	}, notifyDeps())

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
