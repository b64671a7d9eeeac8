package web

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"paddock/internal/adapters/http/middleware"
	"paddock/internal/domain/account"
	"paddock/internal/domain/billing"
	"paddock/internal/domain/competition"
)

type competitionRequest struct {
	Name            string    `json:"name"`
	CompetitionDate time.Time `json:"competitionDate"`
	Location        string    `json:"location"`
	StableID        string    `json:"stableId"`
	Notes           string    `json:"notes"`
	Status          string    `json:"status"`
}

// handleCreateCompetition handles POST /api/competitions.
func handleCreateCompetition(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())

	var req competitionRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c := competition.Competition{
		ID:              generateID(),
		TrainerEmail:    claims.Email,
		Name:            req.Name,
		CompetitionDate: req.CompetitionDate,
		Location:        req.Location,
		StableID:        req.StableID,
		Notes:           req.Notes,
		Status:          competition.StatusScheduled,
		CreatedAt:       timeNow(),
	}
	if err := c.Validate(); err != nil {
		domainError(w, err)
		return
	}
	if err := stores.CompetitionStore.Save(r.Context(), c); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// handleListCompetitions handles GET /api/competitions. Trainers see their
// own competitions; riders see those they are entered in.
func handleListCompetitions(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())
	competitions, err := visibleCompetitions(r, claims)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, competitions)
}

// loadOwnCompetition fetches a competition and checks the caller may access
// it. Riders are allowed read access when they appear on the rider list.
func loadOwnCompetition(w http.ResponseWriter, r *http.Request, write bool) (competition.Competition, bool) {
	claims, _ := middleware.GetClaimsFromContext(r.Context())
	c, err := stores.CompetitionStore.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "competition not found")
		} else {
			internalError(w, err)
		}
		return competition.Competition{}, false
	}
	if c.TrainerEmail == claims.Email || claims.HasRole(account.RoleAdmin) {
		return c, true
	}
	if !write && c.HasRider(claims.Email) {
		return c, true
	}
	writeError(w, http.StatusForbidden, "forbidden")
	return competition.Competition{}, false
}

// handleGetCompetition handles GET /api/competitions/{id}.
func handleGetCompetition(w http.ResponseWriter, r *http.Request) {
	c, ok := loadOwnCompetition(w, r, false)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleUpdateCompetition handles PUT /api/competitions/{id}. The rider list
// is managed through the rider sub-routes and is never replaced here.
func handleUpdateCompetition(w http.ResponseWriter, r *http.Request) {
	c, ok := loadOwnCompetition(w, r, true)
	if !ok {
		return
	}

	var req competitionRequest
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c.Name = req.Name
	c.CompetitionDate = req.CompetitionDate
	c.Location = req.Location
	c.StableID = req.StableID
	c.Notes = req.Notes
	if req.Status != "" {
		c.Status = req.Status
	}
	if err := c.Validate(); err != nil {
		domainError(w, err)
		return
	}
	if err := stores.CompetitionStore.Save(r.Context(), c); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleDeleteCompetition handles DELETE /api/competitions/{id}.
func handleDeleteCompetition(w http.ResponseWriter, r *http.Request) {
	c, ok := loadOwnCompetition(w, r, true)
	if !ok {
		return
	}
	if err := stores.CompetitionStore.Delete(r.Context(), c.ID); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleAddCompetitionRider handles POST /api/competitions/{id}/riders.
func handleAddCompetitionRider(w http.ResponseWriter, r *http.Request) {
	c, ok := loadOwnCompetition(w, r, true)
	if !ok {
		return
	}

	var entry competition.RiderEntry
	if err := strictDecode(r, &entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	entry.RiderEmail = account.NormalizeEmail(entry.RiderEmail)
	if err := c.AddRider(entry); err != nil {
		domainError(w, err)
		return
	}
	if err := stores.CompetitionStore.Save(r.Context(), c); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// riderIndex parses the {index} path value.
func riderIndex(r *http.Request) (int, error) {
	return strconv.Atoi(r.PathValue("index"))
}

// mutateRider applies fn to the competition's rider list and saves. Index
// errors map to 404: the addressed entry does not exist.
func mutateRider(w http.ResponseWriter, r *http.Request, fn func(c *competition.Competition, index int) error) {
	c, ok := loadOwnCompetition(w, r, true)
	if !ok {
		return
	}
	index, err := riderIndex(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rider index")
		return
	}
	if err := fn(&c, index); err != nil {
		if errors.Is(err, competition.ErrRiderIndex) {
			writeError(w, http.StatusNotFound, "rider entry not found")
			return
		}
		domainError(w, err)
		return
	}
	if err := stores.CompetitionStore.Save(r.Context(), c); err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleRemoveCompetitionRider handles DELETE /api/competitions/{id}/riders/{index}.
func handleRemoveCompetitionRider(w http.ResponseWriter, r *http.Request) {
	mutateRider(w, r, func(c *competition.Competition, index int) error {
		return c.RemoveRider(index)
	})
}

// handleToggleRiderHorse handles POST /api/competitions/{id}/riders/{index}/horses.
func handleToggleRiderHorse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HorseName string `json:"horseName"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	mutateRider(w, r, func(c *competition.Competition, index int) error {
		return c.ToggleHorse(index, req.HorseName)
	})
}

// handleToggleRiderService handles POST /api/competitions/{id}/riders/{index}/services.
func handleToggleRiderService(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ServiceName string `json:"serviceName"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	mutateRider(w, r, func(c *competition.Competition, index int) error {
		return c.ToggleService(index, req.ServiceName)
	})
}

// handleSetRiderPayment handles PUT /api/competitions/{id}/riders/{index}/payment.
func handleSetRiderPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentStatus string `json:"paymentStatus"`
	}
	if err := strictDecode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	mutateRider(w, r, func(c *competition.Competition, index int) error {
		return c.SetPaymentStatus(index, req.PaymentStatus)
	})
}

// handleRiderCost handles GET /api/competitions/{id}/riders/{index}/cost.
// The estimate sums the organizing trainer's rates over the rider's selected
// services; services without a configured rate contribute nothing.
func handleRiderCost(w http.ResponseWriter, r *http.Request) {
	c, ok := loadOwnCompetition(w, r, false)
	if !ok {
		return
	}
	index, err := riderIndex(r)
	if err != nil || index < 0 || index >= len(c.Riders) {
		writeError(w, http.StatusNotFound, "rider entry not found")
		return
	}

	rates, err := stores.BillingStore.ListByTrainer(r.Context(), c.TrainerEmail)
	if err != nil {
		internalError(w, err)
		return
	}
	sheet := billing.RateSheet{TrainerEmail: c.TrainerEmail, Rates: rates}
	total, currency := sheet.CostFor(c.Riders[index].Services)

	writeJSON(w, http.StatusOK, map[string]any{
		"riderEmail": c.Riders[index].RiderEmail,
		"services":   c.Riders[index].Services,
		"total":      total,
		"currency":   currency,
	})
}
