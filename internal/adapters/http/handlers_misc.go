package web

import (
	"database/sql"
	"errors"
	"net/http"

	"paddock/internal/adapters/http/middleware"
	horseStore "paddock/internal/adapters/storage/horse"
	"paddock/internal/application/listutil"
	"paddock/internal/application/orchestrators"
	"paddock/internal/domain/account"
	"paddock/internal/domain/connection"
	"paddock/internal/domain/contact"
	"paddock/internal/domain/horse"
	"paddock/internal/domain/notification"
)

// --- Horses ---

type horseRequest struct {
	Name  string `json:"name"`
	Breed string `json:"breed"`
	Notes string `json:"notes"`
}

// handleListHorses handles GET /api/horses. Users only see their own horses.
func handleListHorses(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())
	horses, err := stores.HorseStore.ListByOwner(r.Context(), claims.Email)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, horses)
}

// handleCreateHorse handles POST /api/horses.
func handleCreateHorse(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	var req horseRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h := horse.Horse{
		ID:         generateID(),
		OwnerEmail: claims.Email,
		Name:       req.Name,
		Breed:      req.Breed,
		Notes:      req.Notes,
		CreatedAt:  timeNow(),
	}
	if err := h.Validate(); err != nil {
		domainError(w, err)
		return
	}
	if err := stores.HorseStore.Save(r.Context(), h); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h)
}

// loadOwnHorse fetches a horse owned by the caller.
func loadOwnHorse(w http.ResponseWriter, r *http.Request) (horse.Horse, bool) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())
	h, err := stores.HorseStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, horseStore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "horse not found")
		} else {
			internalError(w, err)
		}
		return horse.Horse{}, false
	}
	if h.OwnerEmail != claims.Email && !claims.HasRole(account.RoleAdmin) {
		writeError(w, http.StatusForbidden, "forbidden")
		return horse.Horse{}, false
	}
	return h, true
}

// handleUpdateHorse handles PUT /api/horses/{id}.
func handleUpdateHorse(w http.ResponseWriter, r *http.Request) {
	h, ok := loadOwnHorse(w, r)
	if !ok {
		return
	}

	var req horseRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.Name = req.Name
	h.Breed = req.Breed
	h.Notes = req.Notes
	if err := h.Validate(); err != nil {
		domainError(w, err)
		return
	}
	if err := stores.HorseStore.Save(r.Context(), h); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

// handleDeleteHorse handles DELETE /api/horses/{id}.
func handleDeleteHorse(w http.ResponseWriter, r *http.Request) {
	h, ok := loadOwnHorse(w, r)
	if !ok {
		return
	}
	if err := stores.HorseStore.Delete(r.Context(), h.ID); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Connections ---

// handleListConnections handles GET /api/connections. Both directions are
// returned: requests the user sent and requests addressed to them.
func handleListConnections(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	sent, err := stores.ConnectionStore.ListByFrom(r.Context(), claims.Email)
	if err != nil {
		internalError(w, err)
		return
	}
	received, err := stores.ConnectionStore.ListByTo(r.Context(), claims.Email)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]connection.Connection{
		"sent":     sent,
		"received": received,
	})
}

// handleCreateConnection handles POST /api/connections. The request starts
// pending; the recipient must approve it. Re-requesting an existing pair
// returns the existing connection unchanged.
func handleCreateConnection(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	var req struct {
		ToEmail string `json:"toEmail"`
		Type    string `json:"type"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Type == "" {
		req.Type = connection.TypeTrainerRider
	}
	toEmail := account.NormalizeEmail(req.ToEmail)

	if existing, err := stores.ConnectionStore.GetByPair(r.Context(), claims.Email, toEmail, req.Type); err == nil {
		writeJSON(w, http.StatusOK, existing)
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		internalError(w, err)
		return
	}

	c := connection.Connection{
		ID:        generateID(),
		FromEmail: claims.Email,
		ToEmail:   toEmail,
		Type:      req.Type,
		Status:    connection.StatusPending,
		CreatedAt: timeNow(),
	}
	if err := c.Validate(); err != nil {
		domainError(w, err)
		return
	}
	if err := stores.ConnectionStore.Save(r.Context(), c); err != nil {
		internalError(w, err)
		return
	}

	orchestrators.ExecuteNotify(r.Context(), orchestrators.NotifyInput{
		UserEmail:         c.ToEmail,
		Type:              notification.TypeConnectionReq,
		Title:             "New connection request",
		Message:           claims.Email + " wants to connect with you.",
		RelatedEntityType: "user_connection",
		RelatedEntityID:   c.ID,
	}, notifyDeps())

	writeJSON(w, http.StatusCreated, c)
}

// handleApproveConnection handles POST /api/connections/{id}/approve. Only
// the recipient can approve.
func handleApproveConnection(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	c, err := stores.ConnectionStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "connection not found")
		} else {
			internalError(w, err)
		}
		return
	}
	if c.ToEmail != claims.Email {
		writeError(w, http.StatusForbidden, "only the recipient can approve a connection")
		return
	}

	c.Approve()
	if err := stores.ConnectionStore.Save(r.Context(), c); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleDeleteConnection handles DELETE /api/connections/{id}. Either party
// can dissolve the connection.
func handleDeleteConnection(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	c, err := stores.ConnectionStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "connection not found")
		} else {
			internalError(w, err)
		}
		return
	}
	if c.FromEmail != claims.Email && c.ToEmail != claims.Email && !claims.HasRole(account.RoleAdmin) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := stores.ConnectionStore.Delete(r.Context(), c.ID); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- Notifications ---

// handleListNotifications handles GET /api/notifications?page=1&per_page=20,
// newest first.
func handleListNotifications(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())
	notifications, err := stores.NotificationStore.ListByUser(r.Context(), claims.Email)
	if err != nil {
		internalError(w, err)
		return
	}
	page, info := listutil.Paginate(notifications, listutil.ParsePageParams(r.URL.Query()))
	writeJSON(w, http.StatusOK, map[string]any{"notifications": page, "pageInfo": info})
}

// handleUnreadCount handles GET /api/notifications/unread-count.
func handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())
	count, err := stores.NotificationStore.CountUnread(r.Context(), claims.Email)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"unread": count})
}

// handleMarkNotificationRead handles POST /api/notifications/{id}/read.
// Marking an already-read notification keeps its original read time.
func handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	n, err := stores.NotificationStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "notification not found")
		} else {
			internalError(w, err)
		}
		return
	}
	if n.UserEmail != claims.Email {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	n.MarkRead()
	if err := stores.NotificationStore.Save(r.Context(), n); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// handleListPreferences handles GET /api/notifications/preferences. Types
// with no stored preference are enabled by default, so the list may be
// shorter than the set of notification types.
func handleListPreferences(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())
	prefs, err := stores.NotificationStore.ListPreferences(r.Context(), claims.Email)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

// handleSavePreference handles PUT /api/notifications/preferences. Saving a
// preference for a type that already has one replaces it.
func handleSavePreference(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	var req struct {
		NotificationType string `json:"notificationType"`
		Enabled          bool   `json:"enabled"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.NotificationType == "" {
		writeError(w, http.StatusBadRequest, "notification type is required")
		return
	}

	p := notification.Preference{
		ID:               generateID(),
		UserEmail:        claims.Email,
		NotificationType: req.NotificationType,
		Enabled:          req.Enabled,
	}
	if err := stores.NotificationStore.SavePreference(r.Context(), p); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// --- Contact ---

// handleSubmitContact handles POST /api/contact. The form is public; no
// authentication is required.
func handleSubmitContact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Subject     string `json:"subject"`
		Message     string `json:"message"`
		SenderName  string `json:"senderName"`
		SenderEmail string `json:"senderEmail"`
		Type        string `json:"type"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg := contact.Message{
		ID:          generateID(),
		Subject:     req.Subject,
		Message:     req.Message,
		SenderName:  req.SenderName,
		SenderEmail: account.NormalizeEmail(req.SenderEmail),
		Type:        req.Type,
		Status:      contact.StatusNew,
		CreatedAt:   timeNow(),
	}
	if err := msg.Validate(); err != nil {
		domainError(w, err)
		return
	}
	if err := stores.ContactStore.Save(r.Context(), msg); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "received", "id": msg.ID})
}
