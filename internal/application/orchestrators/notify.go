package orchestrators

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"paddock/internal/domain/notification"
	"paddock/internal/domain/outbox"

	"github.com/google/uuid"
)

// NotificationStoreForNotify defines the store interface needed by Notify.
type NotificationStoreForNotify interface {
	Save(ctx context.Context, n notification.Notification) error
	ListPreferences(ctx context.Context, userEmail string) ([]notification.Preference, error)
}

// OutboxStoreForNotify defines the outbox interface needed by Notify.
type OutboxStoreForNotify interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// NotifyInput describes one notification to deliver.
type NotifyInput struct {
	UserEmail         string
	Type              string
	Title             string
	Message           string // markdown body for the email variant
	RelatedEntityType string
	RelatedEntityID   string
	Link              string
}

// NotifyDeps holds dependencies for Notify.
type NotifyDeps struct {
	NotificationStore NotificationStoreForNotify
	OutboxStore       OutboxStoreForNotify
}

// EmailPayload is the outbox payload replayed by the email executor.
type EmailPayload struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Markdown string `json:"markdown"`
}

// ExecuteNotify writes an in-app notification and, when the user's
// preferences allow the type, enqueues an outbox entry for email delivery.
// Failures here are logged and swallowed; the mutation that triggered the
// notification has already committed and must not be rolled back by a
// delivery problem.
// POST: Notification row saved; outbox entry enqueued if preferences allow
func ExecuteNotify(ctx context.Context, input NotifyInput, deps NotifyDeps) {
	n := notification.Notification{
		ID:                uuid.New().String(),
		UserEmail:         input.UserEmail,
		Type:              input.Type,
		Title:             input.Title,
		Message:           input.Message,
		RelatedEntityType: input.RelatedEntityType,
		RelatedEntityID:   input.RelatedEntityID,
		Link:              input.Link,
		CreatedAt:         time.Now(),
	}
	if err := n.Validate(); err != nil {
		slog.Error("notify_invalid", "error", err, "type", input.Type)
		return
	}
	if err := deps.NotificationStore.Save(ctx, n); err != nil {
		slog.Error("notify_save_failed", "error", err, "user", input.UserEmail)
		return
	}

	prefs, err := deps.NotificationStore.ListPreferences(ctx, input.UserEmail)
	if err != nil {
		slog.Error("notify_prefs_failed", "error", err, "user", input.UserEmail)
		return
	}
	if !notification.Allows(prefs, input.Type) {
		return
	}

	payload, err := json.Marshal(EmailPayload{
		To:       input.UserEmail,
		Subject:  input.Title,
		Markdown: input.Message,
	})
	if err != nil {
		slog.Error("notify_payload_failed", "error", err)
		return
	}

	entry := outbox.Entry{
		ID:          uuid.New().String(),
		ActionType:  outbox.ActionTypeNotificationEmail,
		Payload:     string(payload),
		Status:      outbox.StatusPending,
		MaxAttempts: 5,
		CreatedAt:   time.Now(),
	}
	if err := deps.OutboxStore.Save(ctx, entry); err != nil {
		slog.Error("notify_enqueue_failed", "error", err, "user", input.UserEmail)
	}
}
