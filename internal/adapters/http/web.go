package web

import (
	"net/http"
	"time"

	"paddock/internal/adapters/auth"
	"paddock/internal/adapters/email"
	"paddock/internal/adapters/http/middleware"
	"paddock/internal/adapters/upload"
	accountStore "paddock/internal/adapters/storage/account"
	auditStore "paddock/internal/adapters/storage/audit"
	billingStore "paddock/internal/adapters/storage/billing"
	competitionStore "paddock/internal/adapters/storage/competition"
	connectionStore "paddock/internal/adapters/storage/connection"
	contactStore "paddock/internal/adapters/storage/contact"
	horseStore "paddock/internal/adapters/storage/horse"
	notificationStore "paddock/internal/adapters/storage/notification"
	outboxStore "paddock/internal/adapters/storage/outbox"
	sessionStore "paddock/internal/adapters/storage/session"
	stableStore "paddock/internal/adapters/storage/stable"
	"paddock/internal/application/orchestrators"
	domainAccount "paddock/internal/domain/account"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore      accountStore.Store
	SessionStore      sessionStore.Store
	CompetitionStore  competitionStore.Store
	BillingStore      billingStore.Store
	StableStore       stableStore.TxStore
	StableEventStore  stableStore.EventStore
	ConnectionStore   connectionStore.Store
	ContactStore      contactStore.Store
	NotificationStore notificationStore.FullStore
	HorseStore        horseStore.Store
	OutboxStore       outboxStore.Store
	AuditStore        auditStore.Store
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global token issuer (set by NewMux)
var tokens *auth.TokenIssuer

// Global upload store (set by NewMux)
var uploads *upload.LocalStore

// Global Google OAuth client id (set by NewMux)
var googleClientID string

// Global email sender, used by the outbox admin retry path.
var emailSender email.Sender

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// SetEmailSender sets the email sender used for admin-triggered retries.
func SetEmailSender(sender email.Sender) {
	emailSender = sender
}

// notifyDeps builds the notification fan-out dependencies from the stores.
func notifyDeps() orchestrators.NotifyDeps {
	return orchestrators.NotifyDeps{
		NotificationStore: stores.NotificationStore,
		OutboxStore:       stores.OutboxStore,
	}
}

// workflowDeps builds the stable admin workflow dependencies.
func workflowDeps() orchestrators.StableWorkflowDeps {
	return orchestrators.StableWorkflowDeps{
		StableStore:  stores.StableStore,
		AccountStore: stores.AccountStore,
		AuditStore:   stores.AuditStore,
		Notify:       notifyDeps(),
	}
}

// NewMux wires HTTP handlers for the app.
func NewMux(s *Stores, issuer *auth.TokenIssuer, uploadStore *upload.LocalStore, googleClient string) http.Handler {
	stores = s
	tokens = issuer
	uploads = uploadStore
	googleClientID = googleClient

	mux := http.NewServeMux()
	registerRoutes(mux)

	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Metrics -> RateLimit -> Auth -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.Auth(issuer),
		middleware.RateLimit(limiter),
		middleware.Metrics,
	)
}

func registerRoutes(mux *http.ServeMux) {
	authed := middleware.RequireAuth
	trainer := middleware.RequireRole(domainAccount.RoleTrainer, domainAccount.RoleAdmin)
	admin := middleware.RequireRole(domainAccount.RoleAdmin)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Auth
	mux.HandleFunc("POST /api/auth/register", handleRegister)
	mux.HandleFunc("POST /api/auth/login", handleLogin)
	mux.HandleFunc("POST /api/auth/google", handleGoogleLogin)
	mux.Handle("GET /api/auth/me", authed(http.HandlerFunc(handleMe)))

	// Training sessions
	mux.Handle("POST /api/sessions", trainer(http.HandlerFunc(handleCreateSessions)))
	mux.Handle("GET /api/sessions", authed(http.HandlerFunc(handleListSessions)))
	mux.Handle("GET /api/sessions/{id}", authed(http.HandlerFunc(handleGetSession)))
	mux.Handle("PUT /api/sessions/{id}", trainer(http.HandlerFunc(handleUpdateSession)))
	mux.Handle("POST /api/sessions/{id}/cancel", trainer(http.HandlerFunc(handleCancelSession)))
	mux.Handle("DELETE /api/sessions/{id}", trainer(http.HandlerFunc(handleDeleteSession)))

	// Import / export
	mux.Handle("POST /api/sessions/import", trainer(http.HandlerFunc(handleImportSessions)))
	mux.Handle("GET /api/sessions/export", trainer(http.HandlerFunc(handleExportWorkbook)))
	mux.Handle("GET /api/sessions/template", trainer(http.HandlerFunc(handleExportTemplate)))

	// Calendar
	mux.Handle("GET /api/calendar", authed(http.HandlerFunc(handleCalendar)))
	mux.Handle("GET /api/calendar/today", authed(http.HandlerFunc(handleCalendarToday)))

	// Competitions
	mux.Handle("POST /api/competitions", trainer(http.HandlerFunc(handleCreateCompetition)))
	mux.Handle("GET /api/competitions", authed(http.HandlerFunc(handleListCompetitions)))
	mux.Handle("GET /api/competitions/{id}", authed(http.HandlerFunc(handleGetCompetition)))
	mux.Handle("PUT /api/competitions/{id}", trainer(http.HandlerFunc(handleUpdateCompetition)))
	mux.Handle("DELETE /api/competitions/{id}", trainer(http.HandlerFunc(handleDeleteCompetition)))
	mux.Handle("POST /api/competitions/{id}/riders", trainer(http.HandlerFunc(handleAddCompetitionRider)))
	mux.Handle("DELETE /api/competitions/{id}/riders/{index}", trainer(http.HandlerFunc(handleRemoveCompetitionRider)))
	mux.Handle("POST /api/competitions/{id}/riders/{index}/horses", trainer(http.HandlerFunc(handleToggleRiderHorse)))
	mux.Handle("POST /api/competitions/{id}/riders/{index}/services", trainer(http.HandlerFunc(handleToggleRiderService)))
	mux.Handle("PUT /api/competitions/{id}/riders/{index}/payment", trainer(http.HandlerFunc(handleSetRiderPayment)))
	mux.Handle("GET /api/competitions/{id}/riders/{index}/cost", authed(http.HandlerFunc(handleRiderCost)))

	// Billing rates
	mux.Handle("GET /api/rates", trainer(http.HandlerFunc(handleListRates)))
	mux.Handle("PUT /api/rates", trainer(http.HandlerFunc(handleSaveRate)))
	mux.Handle("DELETE /api/rates/{id}", trainer(http.HandlerFunc(handleDeleteRate)))

	// Stables
	mux.HandleFunc("GET /api/stables", handleListStables)
	mux.HandleFunc("GET /api/stables/{id}", handleGetStable)
	mux.Handle("POST /api/stables", authed(http.HandlerFunc(handleRegisterStable)))
	mux.Handle("PUT /api/stables/{id}", authed(http.HandlerFunc(handleUpdateStable)))
	mux.Handle("POST /api/stables/{id}/images", authed(http.HandlerFunc(handleUploadStableImage)))
	mux.Handle("POST /api/stables/{id}/trainers", authed(http.HandlerFunc(handleAddStableTrainer)))
	mux.Handle("DELETE /api/stables/{id}/trainers", authed(http.HandlerFunc(handleRemoveStableTrainer)))
	mux.HandleFunc("GET /api/stables/{id}/events", handleListStableEvents)
	mux.Handle("POST /api/stables/{id}/events", authed(http.HandlerFunc(handleCreateStableEvent)))
	mux.Handle("DELETE /api/stables/{id}/events/{eventID}", authed(http.HandlerFunc(handleDeleteStableEvent)))

	// Horses
	mux.Handle("GET /api/horses", authed(http.HandlerFunc(handleListHorses)))
	mux.Handle("POST /api/horses", authed(http.HandlerFunc(handleCreateHorse)))
	mux.Handle("PUT /api/horses/{id}", authed(http.HandlerFunc(handleUpdateHorse)))
	mux.Handle("DELETE /api/horses/{id}", authed(http.HandlerFunc(handleDeleteHorse)))

	// Connections
	mux.Handle("GET /api/connections", authed(http.HandlerFunc(handleListConnections)))
	mux.Handle("POST /api/connections", authed(http.HandlerFunc(handleCreateConnection)))
	mux.Handle("POST /api/connections/{id}/approve", authed(http.HandlerFunc(handleApproveConnection)))
	mux.Handle("DELETE /api/connections/{id}", authed(http.HandlerFunc(handleDeleteConnection)))

	// Notifications
	mux.Handle("GET /api/notifications", authed(http.HandlerFunc(handleListNotifications)))
	mux.Handle("GET /api/notifications/unread-count", authed(http.HandlerFunc(handleUnreadCount)))
	mux.Handle("POST /api/notifications/{id}/read", authed(http.HandlerFunc(handleMarkNotificationRead)))
	mux.Handle("GET /api/notifications/preferences", authed(http.HandlerFunc(handleListPreferences)))
	mux.Handle("PUT /api/notifications/preferences", authed(http.HandlerFunc(handleSavePreference)))

	// Contact
	mux.HandleFunc("POST /api/contact", handleSubmitContact)

	// Admin
	mux.Handle("GET /api/admin/users", admin(http.HandlerFunc(handleAdminListUsers)))
	mux.Handle("GET /api/admin/stables", admin(http.HandlerFunc(handleAdminListStables)))
	mux.Handle("POST /api/admin/stables/{id}/approve", admin(http.HandlerFunc(handleApproveStable)))
	mux.Handle("POST /api/admin/stables/{id}/reject", admin(http.HandlerFunc(handleRejectStable)))
	mux.Handle("POST /api/admin/stables/{id}/manager", admin(http.HandlerFunc(handleChangeStableManager)))
	mux.Handle("DELETE /api/admin/stables/{id}", admin(http.HandlerFunc(handleAdminDeleteStable)))
	mux.Handle("GET /api/admin/audit", admin(http.HandlerFunc(handleAdminAudit)))
	mux.Handle("GET /api/admin/outbox", admin(http.HandlerFunc(handleAdminListOutbox)))
	mux.Handle("POST /api/admin/outbox/{id}/retry", admin(http.HandlerFunc(handleAdminRetryOutbox)))
	mux.Handle("POST /api/admin/outbox/{id}/abandon", admin(http.HandlerFunc(handleAdminAbandonOutbox)))
	mux.Handle("GET /api/admin/contact", admin(http.HandlerFunc(handleAdminListContact)))
	mux.Handle("PUT /api/admin/contact/{id}/status", admin(http.HandlerFunc(handleAdminContactStatus)))

	// Uploaded images are served statically.
	if uploads != nil {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploads.Dir()))))
	}
}
