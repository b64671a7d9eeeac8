package web

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"paddock/internal/adapters/http/middleware"
	"paddock/internal/adapters/upload"
	"paddock/internal/domain/account"
	"paddock/internal/domain/stable"
)

type stableRequest struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	Country     string  `json:"country"`
	Phone       string  `json:"phone"`
	Email       string  `json:"email"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// handleListStables handles GET /api/stables. The public directory lists
// approved stables only; admins see every stable.
func handleListStables(w http.ResponseWriter, r *http.Request) {
	var (
		stables []stable.Stable
		err     error
	)
	if middleware.IsAdmin(r.Context()) {
		stables, err = stores.StableStore.List(r.Context())
	} else {
		stables, err = stores.StableStore.ListByStatus(r.Context(), stable.StatusApproved)
	}
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stables)
}

// handleGetStable handles GET /api/stables/{id}. Unapproved stables are
// visible only to their manager and admins.
func handleGetStable(w http.ResponseWriter, r *http.Request) {
	st, err := stores.StableStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "stable not found")
		} else {
			internalError(w, err)
		}
		return
	}
	if !st.IsApproved() && !canManageStable(r, st) {
		writeError(w, http.StatusNotFound, "stable not found")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// canManageStable reports whether the caller is the stable's manager or an
// admin.
func canManageStable(r *http.Request, st stable.Stable) bool {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok {
		return false
	}
	return claims.Email == st.ManagerEmail || claims.HasRole(account.RoleAdmin)
}

// handleRegisterStable handles POST /api/stables. New stables always start
// pending; approval is an admin workflow.
func handleRegisterStable(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	var req stableRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st := stable.Stable{
		ID:             generateID(),
		Name:           req.Name,
		ManagerEmail:   claims.Email,
		ApprovalStatus: stable.StatusPending,
		Address:        req.Address,
		City:           req.City,
		State:          req.State,
		Country:        req.Country,
		Phone:          req.Phone,
		Email:          req.Email,
		Description:    req.Description,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		CreatedAt:      timeNow(),
	}
	if err := st.Validate(); err != nil {
		domainError(w, err)
		return
	}
	if err := stores.StableStore.Save(r.Context(), st); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

// loadManagedStable fetches a stable and checks the caller may manage it.
func loadManagedStable(w http.ResponseWriter, r *http.Request) (stable.Stable, bool) {
	st, err := stores.StableStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "stable not found")
		} else {
			internalError(w, err)
		}
		return stable.Stable{}, false
	}
	if !canManageStable(r, st) {
		writeError(w, http.StatusForbidden, "forbidden")
		return stable.Stable{}, false
	}
	return st, true
}

// handleUpdateStable handles PUT /api/stables/{id}. Approval status and the
// manager are never editable here; those go through the admin workflow.
func handleUpdateStable(w http.ResponseWriter, r *http.Request) {
	st, ok := loadManagedStable(w, r)
	if !ok {
		return
	}

	var req stableRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st.Name = req.Name
	st.Address = req.Address
	st.City = req.City
	st.State = req.State
	st.Country = req.Country
	st.Phone = req.Phone
	st.Email = req.Email
	st.Description = req.Description
	st.Latitude = req.Latitude
	st.Longitude = req.Longitude
	if err := st.Validate(); err != nil {
		domainError(w, err)
		return
	}
	if err := stores.StableStore.Save(r.Context(), st); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleUploadStableImage handles POST /api/stables/{id}/images as a
// multipart form with an "image" file field.
func handleUploadStableImage(w http.ResponseWriter, r *http.Request) {
	st, ok := loadManagedStable(w, r)
	if !ok {
		return
	}
	if len(st.Images) >= stable.MaxImages {
		domainError(w, stable.ErrTooManyImages)
		return
	}

	if err := r.ParseMultipartForm(upload.MaxImageSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image file")
		return
	}
	defer file.Close()

	urlPath, err := uploads.SaveImage(file, header.Header.Get("Content-Type"), header.Size)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrTooLarge), errors.Is(err, upload.ErrUnsupportedType):
			domainError(w, err)
		default:
			internalError(w, err)
		}
		return
	}

	if err := st.AddImage(urlPath); err != nil {
		uploads.Remove(urlPath)
		domainError(w, err)
		return
	}
	if err := stores.StableStore.Save(r.Context(), st); err != nil {
		uploads.Remove(urlPath)
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}

// handleAddStableTrainer handles POST /api/stables/{id}/trainers.
func handleAddStableTrainer(w http.ResponseWriter, r *http.Request) {
	st, ok := loadManagedStable(w, r)
	if !ok {
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st.AddTrainer(account.NormalizeEmail(req.Email))
	if err := stores.StableStore.Save(r.Context(), st); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleRemoveStableTrainer handles DELETE /api/stables/{id}/trainers.
func handleRemoveStableTrainer(w http.ResponseWriter, r *http.Request) {
	st, ok := loadManagedStable(w, r)
	if !ok {
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	st.RemoveTrainer(req.Email)
	if err := stores.StableStore.Save(r.Context(), st); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleListStableEvents handles GET /api/stables/{id}/events. Events are
// public, like the stable detail page they appear on.
func handleListStableEvents(w http.ResponseWriter, r *http.Request) {
	events, err := stores.StableEventStore.ListEventsByStable(r.Context(), r.PathValue("id"))
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// handleCreateStableEvent handles POST /api/stables/{id}/events.
func handleCreateStableEvent(w http.ResponseWriter, r *http.Request) {
	st, ok := loadManagedStable(w, r)
	if !ok {
		return
	}

	var req struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		StartsAt    time.Time `json:"startsAt"`
		EndsAt      time.Time `json:"endsAt"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ev := stable.Event{
		ID:          generateID(),
		StableID:    st.ID,
		Title:       req.Title,
		Description: req.Description,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedAt:   timeNow(),
	}
	if err := ev.Validate(); err != nil {
		domainError(w, err)
		return
	}
	if err := stores.StableEventStore.SaveEvent(r.Context(), ev); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ev)
}

// handleDeleteStableEvent handles DELETE /api/stables/{id}/events/{eventID}.
func handleDeleteStableEvent(w http.ResponseWriter, r *http.Request) {
	st, ok := loadManagedStable(w, r)
	if !ok {
		return
	}

	ev, err := stores.StableEventStore.GetEventByID(r.Context(), r.PathValue("eventID"))
	if err != nil || ev.StableID != st.ID {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if err := stores.StableEventStore.DeleteEvent(r.Context(), ev.ID); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
