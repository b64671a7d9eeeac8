package web

import (
	"database/sql"
	"errors"
	"net/http"

	"paddock/internal/adapters/http/middleware"
	"paddock/internal/domain/billing"
)

// handleListRates handles GET /api/rates. Trainers only ever see their own
// rate sheet.
func handleListRates(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())
	rates, err := stores.BillingStore.ListByTrainer(r.Context(), claims.Email)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rates)
}

// handleSaveRate handles PUT /api/rates. Saving a rate for a session type
// that already has one replaces it.
func handleSaveRate(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	var req struct {
		SessionType string  `json:"sessionType"`
		Currency    string  `json:"currency"`
		Rate        float64 `json:"rate"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rate := billing.Rate{
		TrainerEmail: claims.Email,
		SessionType:  req.SessionType,
		Currency:     req.Currency,
		Rate:         req.Rate,
	}
	if existing, err := stores.BillingStore.GetByTrainerAndType(r.Context(), claims.Email, req.SessionType); err == nil {
		rate.ID = existing.ID
	} else if errors.Is(err, sql.ErrNoRows) {
		rate.ID = generateID()
	} else {
		internalError(w, err)
		return
	}

	if err := rate.Validate(); err != nil {
		domainError(w, err)
		return
	}
	if err := stores.BillingStore.Save(r.Context(), rate); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rate)
}

// handleDeleteRate handles DELETE /api/rates/{id}.
func handleDeleteRate(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())
	id := r.PathValue("id")

	// Confirm ownership before deleting.
	rates, err := stores.BillingStore.ListByTrainer(r.Context(), claims.Email)
	if err != nil {
		internalError(w, err)
		return
	}
	for _, rate := range rates {
		if rate.ID == id {
			if err := stores.BillingStore.Delete(r.Context(), id); err != nil {
				internalError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "rate not found")
}
