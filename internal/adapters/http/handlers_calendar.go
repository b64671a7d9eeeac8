package web

import (
	"net/http"
	"time"

	"paddock/internal/adapters/auth"
	"paddock/internal/adapters/http/middleware"
	"paddock/internal/domain/account"
	"paddock/internal/domain/calendar"
	"paddock/internal/domain/competition"
	"paddock/internal/domain/session"
)

// calendarResponse bundles everything visible in one calendar view.
type calendarResponse struct {
	Mode         string                    `json:"mode"`
	Start        time.Time                 `json:"start"`
	End          time.Time                 `json:"end"`
	Sessions     []session.Session         `json:"sessions"`
	Competitions []competition.Competition `json:"competitions"`
}

// handleCalendar handles GET /api/calendar?mode=week&anchor=2026-03-18.
// Mode defaults to week and anchor to today; direction=next or prev shifts
// the anchor one view unit before the range is computed. Cancelled entries
// are omitted.
func handleCalendar(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = calendar.ModeWeek
	}

	anchor := timeNow()
	if raw := r.URL.Query().Get("anchor"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid anchor date")
			return
		}
		anchor = parsed
	}

	switch r.URL.Query().Get("direction") {
	case "":
	case "next":
		next, err := calendar.Advance(mode, anchor)
		if err != nil {
			domainError(w, err)
			return
		}
		anchor = next
	case "prev":
		prev, err := calendar.Retreat(mode, anchor)
		if err != nil {
			domainError(w, err)
			return
		}
		anchor = prev
	default:
		writeError(w, http.StatusBadRequest, "direction must be next or prev")
		return
	}

	rng, err := calendar.RangeFor(mode, anchor)
	if err != nil {
		domainError(w, err)
		return
	}
	writeCalendarView(w, r, mode, rng)
}

// handleCalendarToday handles GET /api/calendar/today. The today view always
// follows the wall clock, never a previously selected anchor.
func handleCalendarToday(w http.ResponseWriter, r *http.Request) {
	rng := calendar.TodayRange(timeNow())
	writeCalendarView(w, r, calendar.ModeDay, rng)
}

func writeCalendarView(w http.ResponseWriter, r *http.Request, mode string, rng calendar.Range) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	sessions, err := visibleSessions(r, claims)
	if err != nil {
		internalError(w, err)
		return
	}
	competitions, err := visibleCompetitions(r, claims)
	if err != nil {
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, calendarResponse{
		Mode:         mode,
		Start:        rng.Start,
		End:          rng.End,
		Sessions:     calendar.Filter(sessions, rng),
		Competitions: calendar.Filter(competitions, rng),
	})
}

func visibleSessions(r *http.Request, claims *auth.Claims) ([]session.Session, error) {
	if claims.HasRole(account.RoleTrainer) || claims.HasRole(account.RoleAdmin) {
		return stores.SessionStore.ListByTrainer(r.Context(), claims.Email)
	}
	return stores.SessionStore.ListByRider(r.Context(), claims.Email)
}

// visibleCompetitions returns the competitions a user may see on their
// calendar: trainers see their own, riders see those they are entered in.
func visibleCompetitions(r *http.Request, claims *auth.Claims) ([]competition.Competition, error) {
	if claims.HasRole(account.RoleTrainer) || claims.HasRole(account.RoleAdmin) {
		return stores.CompetitionStore.ListByTrainer(r.Context(), claims.Email)
	}

	all, err := stores.CompetitionStore.List(r.Context())
	if err != nil {
		return nil, err
	}
	var out []competition.Competition
	for _, c := range all {
		if c.HasRider(claims.Email) {
			out = append(out, c)
		}
	}
	return out, nil
}
