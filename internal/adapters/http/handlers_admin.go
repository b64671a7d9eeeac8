package web

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"paddock/internal/adapters/http/middleware"
	"paddock/internal/application/listutil"
	"paddock/internal/application/orchestrators"
	"paddock/internal/domain/audit"
	"paddock/internal/domain/outbox"
	"paddock/internal/domain/stable"
)

// handleAdminListUsers handles GET /api/admin/users?page=1&per_page=50.
// Password hashes are stripped before serializing.
func handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := stores.AccountStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}

	page, info := listutil.Paginate(users, listutil.ParsePageParams(r.URL.Query()))
	out := make([]userResponse, 0, len(page))
	for _, u := range page {
		out = append(out, userResponseFrom(u))
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": out, "pageInfo": info})
}

// handleAdminListStables handles GET /api/admin/stables?status=pending.
func handleAdminListStables(w http.ResponseWriter, r *http.Request) {
	var (
		stables []stable.Stable
		err     error
	)
	if status := r.URL.Query().Get("status"); status != "" {
		stables, err = stores.StableStore.ListByStatus(r.Context(), status)
	} else {
		stables, err = stores.StableStore.List(r.Context())
	}
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stables)
}

// stableWorkflowError maps workflow errors to HTTP responses.
func stableWorkflowError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		writeError(w, http.StatusNotFound, "stable not found")
	case errors.Is(err, stable.ErrAlreadyApproved), errors.Is(err, stable.ErrNotPending):
		writeError(w, http.StatusConflict, err.Error())
	default:
		internalError(w, err)
	}
}

// handleApproveStable handles POST /api/admin/stables/{id}/approve.
func handleApproveStable(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())
	if err := orchestrators.ExecuteApproveStable(r.Context(), r.PathValue("id"), claims.Email, workflowDeps()); err != nil {
		stableWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
}

// handleRejectStable handles POST /api/admin/stables/{id}/reject with an
// optional JSON body carrying a reason.
func handleRejectStable(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	var req struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength > 0 {
		if err := strictDecode(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if err := orchestrators.ExecuteRejectStable(r.Context(), r.PathValue("id"), claims.Email, req.Reason, workflowDeps()); err != nil {
		stableWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

// handleChangeStableManager handles POST /api/admin/stables/{id}/manager.
func handleChangeStableManager(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	var req struct {
		ManagerEmail string `json:"managerEmail"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := orchestrators.ExecuteChangeManager(r.Context(), r.PathValue("id"), req.ManagerEmail, claims.Email, workflowDeps()); err != nil {
		stableWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "manager changed"})
}

// handleAdminDeleteStable handles DELETE /api/admin/stables/{id}.
func handleAdminDeleteStable(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())
	if err := orchestrators.ExecuteDeleteStable(r.Context(), r.PathValue("id"), claims.Email, workflowDeps()); err != nil {
		stableWorkflowError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleAdminAudit handles GET /api/admin/audit?category=stable&limit=50.
func handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	category := audit.Category(r.URL.Query().Get("category"))
	events, err := stores.AuditStore.List(r.Context(), category, limit)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// outboxProcessor builds a processor for admin-triggered retry and abandon.
func outboxProcessor() *orchestrators.OutboxProcessor {
	executors := map[string]orchestrators.ActionExecutor{
		outbox.ActionTypeNotificationEmail: &orchestrators.EmailExecutor{Sender: emailSender},
	}
	return orchestrators.NewOutboxProcessor(stores.OutboxStore, executors, orchestrators.ProcessorOptions{})
}

// handleAdminListOutbox handles GET /api/admin/outbox?status=failed.
func handleAdminListOutbox(w http.ResponseWriter, r *http.Request) {
	var (
		entries []outbox.Entry
		err     error
	)
	if r.URL.Query().Get("status") == "failed" {
		entries, err = stores.OutboxStore.ListFailed(r.Context(), 100)
	} else {
		entries, err = stores.OutboxStore.ListPending(r.Context(), 100)
	}
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleAdminRetryOutbox handles POST /api/admin/outbox/{id}/retry. The
// retry runs immediately, ignoring the backoff window.
func handleAdminRetryOutbox(w http.ResponseWriter, r *http.Request) {
	if err := outboxProcessor().ProcessSingle(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "outbox entry not found")
			return
		}
		domainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "processed"})
}

// handleAdminAbandonOutbox handles POST /api/admin/outbox/{id}/abandon.
func handleAdminAbandonOutbox(w http.ResponseWriter, r *http.Request) {
	if err := outboxProcessor().AbandonEntry(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "outbox entry not found")
			return
		}
		domainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "abandoned"})
}

// handleAdminListContact handles GET /api/admin/contact.
func handleAdminListContact(w http.ResponseWriter, r *http.Request) {
	messages, err := stores.ContactStore.List(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// handleAdminContactStatus handles PUT /api/admin/contact/{id}/status.
func handleAdminContactStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := stores.ContactStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "message not found")
		} else {
			internalError(w, err)
		}
		return
	}
	if err := msg.SetStatus(req.Status); err != nil {
		domainError(w, err)
		return
	}
	if err := stores.ContactStore.Save(r.Context(), msg); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}
