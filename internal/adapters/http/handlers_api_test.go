package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"paddock/internal/adapters/auth"
	"paddock/internal/adapters/http/middleware"

	accountDomain "paddock/internal/domain/account"
	auditDomain "paddock/internal/domain/audit"
	billingDomain "paddock/internal/domain/billing"
	competitionDomain "paddock/internal/domain/competition"
	connectionDomain "paddock/internal/domain/connection"
	contactDomain "paddock/internal/domain/contact"
	horseDomain "paddock/internal/domain/horse"
	notificationDomain "paddock/internal/domain/notification"
	outboxDomain "paddock/internal/domain/outbox"
	sessionDomain "paddock/internal/domain/session"
	stableDomain "paddock/internal/domain/stable"
)

// --- Mock stores ---

type mockAccountStore struct {
	users map[string]accountDomain.User
}

func (m *mockAccountStore) GetByID(_ context.Context, id string) (accountDomain.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return accountDomain.User{}, sql.ErrNoRows
}

func (m *mockAccountStore) GetByEmail(_ context.Context, email string) (accountDomain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return accountDomain.User{}, sql.ErrNoRows
}

func (m *mockAccountStore) Save(_ context.Context, u accountDomain.User) error {
	m.users[u.ID] = u
	return nil
}

func (m *mockAccountStore) Delete(_ context.Context, id string) error {
	delete(m.users, id)
	return nil
}

func (m *mockAccountStore) List(_ context.Context) ([]accountDomain.User, error) {
	var list []accountDomain.User
	for _, u := range m.users {
		list = append(list, u)
	}
	return list, nil
}

func (m *mockAccountStore) Count(_ context.Context) (int, error) {
	return len(m.users), nil
}

type mockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]sessionDomain.Session
}

func (m *mockSessionStore) GetByID(_ context.Context, id string) (sessionDomain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return sessionDomain.Session{}, sql.ErrNoRows
}

func (m *mockSessionStore) Save(_ context.Context, s sessionDomain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *mockSessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionStore) ListByTrainer(_ context.Context, trainerEmail string) ([]sessionDomain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []sessionDomain.Session
	for _, s := range m.sessions {
		if s.TrainerEmail == trainerEmail {
			list = append(list, s)
		}
	}
	return list, nil
}

func (m *mockSessionStore) ListByRider(_ context.Context, riderEmail string) ([]sessionDomain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []sessionDomain.Session
	for _, s := range m.sessions {
		if s.RiderEmail == riderEmail {
			list = append(list, s)
		}
	}
	return list, nil
}

type mockCompetitionStore struct {
	competitions map[string]competitionDomain.Competition
}

func (m *mockCompetitionStore) GetByID(_ context.Context, id string) (competitionDomain.Competition, error) {
	if c, ok := m.competitions[id]; ok {
		return c, nil
	}
	return competitionDomain.Competition{}, sql.ErrNoRows
}

func (m *mockCompetitionStore) Save(_ context.Context, c competitionDomain.Competition) error {
	m.competitions[c.ID] = c
	return nil
}

func (m *mockCompetitionStore) Delete(_ context.Context, id string) error {
	delete(m.competitions, id)
	return nil
}

func (m *mockCompetitionStore) ListByTrainer(_ context.Context, trainerEmail string) ([]competitionDomain.Competition, error) {
	var list []competitionDomain.Competition
	for _, c := range m.competitions {
		if c.TrainerEmail == trainerEmail {
			list = append(list, c)
		}
	}
	return list, nil
}

func (m *mockCompetitionStore) List(_ context.Context) ([]competitionDomain.Competition, error) {
	var list []competitionDomain.Competition
	for _, c := range m.competitions {
		list = append(list, c)
	}
	return list, nil
}

type mockBillingStore struct {
	rates map[string]billingDomain.Rate
}

func (m *mockBillingStore) GetByTrainerAndType(_ context.Context, trainerEmail, sessionType string) (billingDomain.Rate, error) {
	for _, r := range m.rates {
		if r.TrainerEmail == trainerEmail && r.SessionType == sessionType {
			return r, nil
		}
	}
	return billingDomain.Rate{}, sql.ErrNoRows
}

func (m *mockBillingStore) Save(_ context.Context, r billingDomain.Rate) error {
	m.rates[r.ID] = r
	return nil
}

func (m *mockBillingStore) Delete(_ context.Context, id string) error {
	delete(m.rates, id)
	return nil
}

func (m *mockBillingStore) ListByTrainer(_ context.Context, trainerEmail string) ([]billingDomain.Rate, error) {
	var list []billingDomain.Rate
	for _, r := range m.rates {
		if r.TrainerEmail == trainerEmail {
			list = append(list, r)
		}
	}
	return list, nil
}

type mockStableStore struct {
	stables map[string]stableDomain.Stable
	events  map[string]stableDomain.Event
	saved   []accountDomain.User
}

func (m *mockStableStore) GetByID(_ context.Context, id string) (stableDomain.Stable, error) {
	if s, ok := m.stables[id]; ok {
		return s, nil
	}
	return stableDomain.Stable{}, sql.ErrNoRows
}

func (m *mockStableStore) Save(_ context.Context, s stableDomain.Stable) error {
	m.stables[s.ID] = s
	return nil
}

func (m *mockStableStore) Delete(_ context.Context, id string) error {
	delete(m.stables, id)
	return nil
}

func (m *mockStableStore) List(_ context.Context) ([]stableDomain.Stable, error) {
	var list []stableDomain.Stable
	for _, s := range m.stables {
		list = append(list, s)
	}
	return list, nil
}

func (m *mockStableStore) ListByStatus(_ context.Context, status string) ([]stableDomain.Stable, error) {
	var list []stableDomain.Stable
	for _, s := range m.stables {
		if s.ApprovalStatus == status {
			list = append(list, s)
		}
	}
	return list, nil
}

func (m *mockStableStore) SaveWithUsers(_ context.Context, s stableDomain.Stable, users ...accountDomain.User) error {
	m.stables[s.ID] = s
	m.saved = append(m.saved, users...)
	return nil
}

func (m *mockStableStore) DeleteWithUsers(_ context.Context, stableID string, users ...accountDomain.User) error {
	delete(m.stables, stableID)
	m.saved = append(m.saved, users...)
	return nil
}

func (m *mockStableStore) GetEventByID(_ context.Context, id string) (stableDomain.Event, error) {
	if e, ok := m.events[id]; ok {
		return e, nil
	}
	return stableDomain.Event{}, sql.ErrNoRows
}

func (m *mockStableStore) SaveEvent(_ context.Context, e stableDomain.Event) error {
	m.events[e.ID] = e
	return nil
}

func (m *mockStableStore) DeleteEvent(_ context.Context, id string) error {
	delete(m.events, id)
	return nil
}

func (m *mockStableStore) ListEventsByStable(_ context.Context, stableID string) ([]stableDomain.Event, error) {
	var list []stableDomain.Event
	for _, e := range m.events {
		if e.StableID == stableID {
			list = append(list, e)
		}
	}
	return list, nil
}

type mockConnectionStore struct {
	connections map[string]connectionDomain.Connection
}

func (m *mockConnectionStore) GetByID(_ context.Context, id string) (connectionDomain.Connection, error) {
	if c, ok := m.connections[id]; ok {
		return c, nil
	}
	return connectionDomain.Connection{}, sql.ErrNoRows
}

func (m *mockConnectionStore) GetByPair(_ context.Context, fromEmail, toEmail, connectionType string) (connectionDomain.Connection, error) {
	for _, c := range m.connections {
		if c.FromEmail == fromEmail && c.ToEmail == toEmail && c.Type == connectionType {
			return c, nil
		}
	}
	return connectionDomain.Connection{}, sql.ErrNoRows
}

func (m *mockConnectionStore) Save(_ context.Context, c connectionDomain.Connection) error {
	m.connections[c.ID] = c
	return nil
}

func (m *mockConnectionStore) Delete(_ context.Context, id string) error {
	delete(m.connections, id)
	return nil
}

func (m *mockConnectionStore) ListByFrom(_ context.Context, fromEmail string) ([]connectionDomain.Connection, error) {
	var list []connectionDomain.Connection
	for _, c := range m.connections {
		if c.FromEmail == fromEmail {
			list = append(list, c)
		}
	}
	return list, nil
}

func (m *mockConnectionStore) ListByTo(_ context.Context, toEmail string) ([]connectionDomain.Connection, error) {
	var list []connectionDomain.Connection
	for _, c := range m.connections {
		if c.ToEmail == toEmail {
			list = append(list, c)
		}
	}
	return list, nil
}

func (m *mockConnectionStore) ListApprovedByFrom(_ context.Context, fromEmail string) ([]connectionDomain.Connection, error) {
	var list []connectionDomain.Connection
	for _, c := range m.connections {
		if c.FromEmail == fromEmail && c.IsApproved() {
			list = append(list, c)
		}
	}
	return list, nil
}

type mockContactStore struct {
	messages map[string]contactDomain.Message
}

func (m *mockContactStore) GetByID(_ context.Context, id string) (contactDomain.Message, error) {
	if msg, ok := m.messages[id]; ok {
		return msg, nil
	}
	return contactDomain.Message{}, sql.ErrNoRows
}

func (m *mockContactStore) Save(_ context.Context, msg contactDomain.Message) error {
	m.messages[msg.ID] = msg
	return nil
}

func (m *mockContactStore) Delete(_ context.Context, id string) error {
	delete(m.messages, id)
	return nil
}

func (m *mockContactStore) List(_ context.Context) ([]contactDomain.Message, error) {
	var list []contactDomain.Message
	for _, msg := range m.messages {
		list = append(list, msg)
	}
	return list, nil
}

func (m *mockContactStore) CountByStatus(_ context.Context, status string) (int, error) {
	n := 0
	for _, msg := range m.messages {
		if msg.Status == status {
			n++
		}
	}
	return n, nil
}

type mockNotificationStore struct {
	mu            sync.Mutex
	notifications map[string]notificationDomain.Notification
	preferences   map[string]notificationDomain.Preference
}

func (m *mockNotificationStore) GetByID(_ context.Context, id string) (notificationDomain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n, ok := m.notifications[id]; ok {
		return n, nil
	}
	return notificationDomain.Notification{}, sql.ErrNoRows
}

func (m *mockNotificationStore) Save(_ context.Context, n notificationDomain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications[n.ID] = n
	return nil
}

func (m *mockNotificationStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.notifications, id)
	return nil
}

func (m *mockNotificationStore) ListByUser(_ context.Context, userEmail string) ([]notificationDomain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []notificationDomain.Notification
	for _, n := range m.notifications {
		if n.UserEmail == userEmail {
			list = append(list, n)
		}
	}
	return list, nil
}

func (m *mockNotificationStore) CountUnread(_ context.Context, userEmail string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, n := range m.notifications {
		if n.UserEmail == userEmail && !n.IsRead() {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationStore) SavePreference(_ context.Context, p notificationDomain.Preference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preferences[p.UserEmail+"|"+p.NotificationType] = p
	return nil
}

func (m *mockNotificationStore) ListPreferences(_ context.Context, userEmail string) ([]notificationDomain.Preference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []notificationDomain.Preference
	for _, p := range m.preferences {
		if p.UserEmail == userEmail {
			list = append(list, p)
		}
	}
	return list, nil
}

type mockHorseStore struct {
	horses map[string]horseDomain.Horse
}

func (m *mockHorseStore) GetByID(_ context.Context, id string) (horseDomain.Horse, error) {
	if h, ok := m.horses[id]; ok {
		return h, nil
	}
	return horseDomain.Horse{}, sql.ErrNoRows
}

func (m *mockHorseStore) Save(_ context.Context, h horseDomain.Horse) error {
	m.horses[h.ID] = h
	return nil
}

func (m *mockHorseStore) Delete(_ context.Context, id string) error {
	delete(m.horses, id)
	return nil
}

func (m *mockHorseStore) ListByOwner(_ context.Context, ownerEmail string) ([]horseDomain.Horse, error) {
	var list []horseDomain.Horse
	for _, h := range m.horses {
		if h.OwnerEmail == ownerEmail {
			list = append(list, h)
		}
	}
	return list, nil
}

type mockOutboxStore struct {
	mu      sync.Mutex
	entries map[string]outboxDomain.Entry
}

func (m *mockOutboxStore) GetByID(_ context.Context, id string) (outboxDomain.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return outboxDomain.Entry{}, sql.ErrNoRows
}

func (m *mockOutboxStore) Save(_ context.Context, e outboxDomain.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[e.ID] = e
	return nil
}

func (m *mockOutboxStore) ListPending(_ context.Context, limit int) ([]outboxDomain.Entry, error) {
	return nil, nil
}

func (m *mockOutboxStore) ListFailed(_ context.Context, limit int) ([]outboxDomain.Entry, error) {
	return nil, nil
}

func (m *mockOutboxStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

type mockAuditStore struct {
	events []auditDomain.Event
}

func (m *mockAuditStore) Append(_ context.Context, e auditDomain.Event) error {
	m.events = append(m.events, e)
	return nil
}

func (m *mockAuditStore) List(_ context.Context, category auditDomain.Category, limit int) ([]auditDomain.Event, error) {
	return m.events, nil
}

func (m *mockAuditStore) ListByResource(_ context.Context, resourceType, resourceID string) ([]auditDomain.Event, error) {
	return m.events, nil
}

// --- Test helpers ---

// newFullStores returns a Stores with all mock stores initialized.
func newFullStores() *Stores {
	return &Stores{
		AccountStore:      &mockAccountStore{users: make(map[string]accountDomain.User)},
		SessionStore:      &mockSessionStore{sessions: make(map[string]sessionDomain.Session)},
		CompetitionStore:  &mockCompetitionStore{competitions: make(map[string]competitionDomain.Competition)},
		BillingStore:      &mockBillingStore{rates: make(map[string]billingDomain.Rate)},
		StableStore:       &mockStableStore{stables: make(map[string]stableDomain.Stable), events: make(map[string]stableDomain.Event)},
		StableEventStore:  &mockStableStore{stables: make(map[string]stableDomain.Stable), events: make(map[string]stableDomain.Event)},
		ConnectionStore:   &mockConnectionStore{connections: make(map[string]connectionDomain.Connection)},
		ContactStore:      &mockContactStore{messages: make(map[string]contactDomain.Message)},
		NotificationStore: &mockNotificationStore{notifications: make(map[string]notificationDomain.Notification), preferences: make(map[string]notificationDomain.Preference)},
		HorseStore:        &mockHorseStore{horses: make(map[string]horseDomain.Horse)},
		OutboxStore:       &mockOutboxStore{entries: make(map[string]outboxDomain.Entry)},
		AuditStore:        &mockAuditStore{},
	}
}

// authRequest returns a request with the given claims injected into context.
func authRequest(method, url, body string, claims *auth.Claims) *http.Request {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	if claims != nil {
		req = req.WithContext(middleware.ContextWithClaims(req.Context(), claims))
	}
	return req
}

var trainerClaims = &auth.Claims{
	UserID: "trainer-001",
	Email:  "trainer@test.com",
	Roles:  []string{accountDomain.RoleTrainer},
}

var riderClaims = &auth.Claims{
	UserID: "rider-001",
	Email:  "rider@test.com",
	Roles:  []string{accountDomain.RoleRider},
}

var adminClaims = &auth.Claims{
	UserID: "admin-001",
	Email:  "admin@test.com",
	Roles:  []string{accountDomain.RoleAdmin},
}

// --- Tests: /api/sessions ---

// TestHandleCreateSessions_Weekly creates a recurring batch.
func TestHandleCreateSessions_Weekly(t *testing.T) {
	stores = newFullStores()

	body := `{"riderEmail":"rider@test.com","riderName":"Ruth","sessionDate":"2026-01-10T10:00:00Z","durationMinutes":60,"sessionType":"lesson","recurWeeks":3}`
	rr := httptest.NewRecorder()
	handleCreateSessions(rr, authRequest("POST", "/api/sessions", body, trainerClaims))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rr.Code, rr.Body.String())
	}
	saved := stores.SessionStore.(*mockSessionStore).sessions
	if len(saved) != 3 {
		t.Fatalf("persisted %d sessions, want 3", len(saved))
	}
	for _, s := range saved {
		if s.TrainerEmail != "trainer@test.com" {
			t.Errorf("trainer = %q, want the caller", s.TrainerEmail)
		}
		if !s.IsRecurring || s.RecurringGroupID == "" {
			t.Errorf("occurrence missing recurrence metadata: %+v", s)
		}
	}
}

// TestHandleListSessions_RiderSeesOwn limits riders to their own sessions.
func TestHandleListSessions_RiderSeesOwn(t *testing.T) {
	stores = newFullStores()
	store := stores.SessionStore.(*mockSessionStore)
	store.sessions["s1"] = sessionDomain.Session{ID: "s1", TrainerEmail: "trainer@test.com", RiderEmail: "rider@test.com"}
	store.sessions["s2"] = sessionDomain.Session{ID: "s2", TrainerEmail: "trainer@test.com", RiderEmail: "other@test.com"}

	rr := httptest.NewRecorder()
	handleListSessions(rr, authRequest("GET", "/api/sessions", "", riderClaims))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var got []sessionDomain.Session
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 || got[0].ID != "s1" {
		t.Errorf("rider sees %v, want only s1", got)
	}
}

// TestHandleCancelSession_NotifiesRider cancels and writes a notification.
func TestHandleCancelSession_NotifiesRider(t *testing.T) {
	stores = newFullStores()
	store := stores.SessionStore.(*mockSessionStore)
	store.sessions["s1"] = sessionDomain.Session{
		ID: "s1", TrainerEmail: "trainer@test.com", RiderEmail: "rider@test.com",
		SessionDate: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC), Status: sessionDomain.StatusScheduled,
	}

	req := authRequest("POST", "/api/sessions/s1/cancel", "", trainerClaims)
	req.SetPathValue("id", "s1")
	rr := httptest.NewRecorder()
	handleCancelSession(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if store.sessions["s1"].Status != sessionDomain.StatusCancelled {
		t.Error("session not cancelled")
	}
	notifs, _ := stores.NotificationStore.ListByUser(context.Background(), "rider@test.com")
	if len(notifs) != 1 || notifs[0].Type != notificationDomain.TypeSessionCancelled {
		t.Errorf("notifications = %v, want one session_cancelled", notifs)
	}
}

// TestHandleCancelSession_RiderForbidden keeps cancellation trainer-only.
func TestHandleCancelSession_RiderForbidden(t *testing.T) {
	stores = newFullStores()
	stores.SessionStore.(*mockSessionStore).sessions["s1"] = sessionDomain.Session{
		ID: "s1", TrainerEmail: "trainer@test.com", RiderEmail: "rider@test.com",
	}

	req := authRequest("POST", "/api/sessions/s1/cancel", "", riderClaims)
	req.SetPathValue("id", "s1")
	rr := httptest.NewRecorder()
	handleCancelSession(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rr.Code)
	}
}

// --- Tests: /api/stables ---

// TestHandleRegisterStable_StartsPending checks new stables await approval.
func TestHandleRegisterStable_StartsPending(t *testing.T) {
	stores = newFullStores()

	body := `{"name":"Willow Farm","city":"Hamilton","country":"NZ"}`
	rr := httptest.NewRecorder()
	handleRegisterStable(rr, authRequest("POST", "/api/stables", body, trainerClaims))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rr.Code, rr.Body.String())
	}
	var st stableDomain.Stable
	if err := json.Unmarshal(rr.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if st.ApprovalStatus != stableDomain.StatusPending {
		t.Errorf("status = %q, want pending", st.ApprovalStatus)
	}
	if st.ManagerEmail != "trainer@test.com" {
		t.Errorf("manager = %q, want the caller", st.ManagerEmail)
	}
}

// TestHandleListStables_PublicSeesApprovedOnly hides pending stables.
func TestHandleListStables_PublicSeesApprovedOnly(t *testing.T) {
	stores = newFullStores()
	store := stores.StableStore.(*mockStableStore)
	store.stables["a"] = stableDomain.Stable{ID: "a", Name: "A", ManagerEmail: "m@test.com", ApprovalStatus: stableDomain.StatusApproved}
	store.stables["p"] = stableDomain.Stable{ID: "p", Name: "P", ManagerEmail: "m@test.com", ApprovalStatus: stableDomain.StatusPending}

	rr := httptest.NewRecorder()
	handleListStables(rr, authRequest("GET", "/api/stables", "", nil))

	var got []stableDomain.Stable
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("public listing = %v, want only the approved stable", got)
	}
}

// TestHandleApproveStable_GrantsManagerRole runs the admin workflow end to end.
func TestHandleApproveStable_GrantsManagerRole(t *testing.T) {
	stores = newFullStores()
	stores.AccountStore.(*mockAccountStore).users["u1"] = accountDomain.User{
		ID: "u1", Email: "manager@test.com", Roles: []string{accountDomain.RoleRider},
	}
	store := stores.StableStore.(*mockStableStore)
	store.stables["st1"] = stableDomain.Stable{
		ID: "st1", Name: "Willow Farm", ManagerEmail: "manager@test.com",
		ApprovalStatus: stableDomain.StatusPending,
	}

	req := authRequest("POST", "/api/admin/stables/st1/approve", "", adminClaims)
	req.SetPathValue("id", "st1")
	rr := httptest.NewRecorder()
	handleApproveStable(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	if store.stables["st1"].ApprovalStatus != stableDomain.StatusApproved {
		t.Error("stable not approved")
	}
	if len(store.saved) == 0 || !store.saved[0].HasRole(accountDomain.RoleStableManager) {
		t.Errorf("manager user not granted stable_manager: %+v", store.saved)
	}
	audit := stores.AuditStore.(*mockAuditStore)
	if len(audit.events) != 1 {
		t.Errorf("audit events = %d, want 1", len(audit.events))
	}
}

// --- Tests: /api/rates ---

// TestHandleSaveRate_Upserts replaces an existing rate for the same type.
func TestHandleSaveRate_Upserts(t *testing.T) {
	stores = newFullStores()

	for _, body := range []string{
		`{"sessionType":"lesson","currency":"NZD","rate":80}`,
		`{"sessionType":"lesson","currency":"NZD","rate":95}`,
	} {
		rr := httptest.NewRecorder()
		handleSaveRate(rr, authRequest("PUT", "/api/rates", body, trainerClaims))
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
		}
	}

	rates := stores.BillingStore.(*mockBillingStore).rates
	if len(rates) != 1 {
		t.Fatalf("rates = %d, want 1 after upsert", len(rates))
	}
	for _, r := range rates {
		if r.Rate != 95 {
			t.Errorf("rate = %v, want the replacement value 95", r.Rate)
		}
	}
}

// --- Tests: competition riders ---

// TestHandleRemoveCompetitionRider_BadIndex maps index errors to 404.
func TestHandleRemoveCompetitionRider_BadIndex(t *testing.T) {
	stores = newFullStores()
	stores.CompetitionStore.(*mockCompetitionStore).competitions["c1"] = competitionDomain.Competition{
		ID: "c1", TrainerEmail: "trainer@test.com", Name: "Spring Show",
		CompetitionDate: time.Now(),
		Riders:          []competitionDomain.RiderEntry{{RiderEmail: "rider@test.com"}},
	}

	req := authRequest("DELETE", "/api/competitions/c1/riders/5", "", trainerClaims)
	req.SetPathValue("id", "c1")
	req.SetPathValue("index", "5")
	rr := httptest.NewRecorder()
	handleRemoveCompetitionRider(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

// TestHandleRiderCost sums configured rates over selected services.
func TestHandleRiderCost(t *testing.T) {
	stores = newFullStores()
	billing := stores.BillingStore.(*mockBillingStore)
	billing.rates["r1"] = billingDomain.Rate{ID: "r1", TrainerEmail: "trainer@test.com", SessionType: "lesson", Currency: "NZD", Rate: 80}
	billing.rates["r2"] = billingDomain.Rate{ID: "r2", TrainerEmail: "trainer@test.com", SessionType: "horse_transport", Currency: "NZD", Rate: 40}
	stores.CompetitionStore.(*mockCompetitionStore).competitions["c1"] = competitionDomain.Competition{
		ID: "c1", TrainerEmail: "trainer@test.com", Name: "Spring Show",
		CompetitionDate: time.Now(),
		Riders: []competitionDomain.RiderEntry{
			{RiderEmail: "rider@test.com", Services: []string{"lesson", "horse_transport", "unpriced"}},
		},
	}

	req := authRequest("GET", "/api/competitions/c1/riders/0/cost", "", trainerClaims)
	req.SetPathValue("id", "c1")
	req.SetPathValue("index", "0")
	rr := httptest.NewRecorder()
	handleRiderCost(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rr.Code, rr.Body.String())
	}
	var got struct {
		Total    float64 `json:"total"`
		Currency string  `json:"currency"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Total != 120 || got.Currency != "NZD" {
		t.Errorf("cost = %v %s, want 120 NZD", got.Total, got.Currency)
	}
}

// --- Tests: notifications ---

// TestHandleMarkNotificationRead_OtherUser refuses cross-user reads.
func TestHandleMarkNotificationRead_OtherUser(t *testing.T) {
	stores = newFullStores()
	stores.NotificationStore.(*mockNotificationStore).notifications["n1"] = notificationDomain.Notification{
		ID: "n1", UserEmail: "rider@test.com", Type: "session_created", Title: "New session",
	}

	req := authRequest("POST", "/api/notifications/n1/read", "", trainerClaims)
	req.SetPathValue("id", "n1")
	rr := httptest.NewRecorder()
	handleMarkNotificationRead(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rr.Code)
	}
}

// --- Tests: /api/contact ---

// TestHandleSubmitContact_Public accepts unauthenticated submissions.
func TestHandleSubmitContact_Public(t *testing.T) {
	stores = newFullStores()

	body := `{"subject":"Stall availability","message":"Do you have space?","senderName":"Kim","senderEmail":"kim@example.com"}`
	rr := httptest.NewRecorder()
	handleSubmitContact(rr, authRequest("POST", "/api/contact", body, nil))

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rr.Code, rr.Body.String())
	}
	messages := stores.ContactStore.(*mockContactStore).messages
	if len(messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(messages))
	}
	for _, msg := range messages {
		if msg.Status != contactDomain.StatusNew {
			t.Errorf("status = %q, want new", msg.Status)
		}
	}
}
