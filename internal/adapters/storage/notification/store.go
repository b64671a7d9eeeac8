package notification

import (
	"context"

	domain "paddock/internal/domain/notification"
)

// Store persists Notification state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Notification, error)
	Save(ctx context.Context, value domain.Notification) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userEmail string) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userEmail string) (int, error)
}

// PreferenceStore persists per-user notification preferences, unique per
// (userEmail, notificationType).
type PreferenceStore interface {
	SavePreference(ctx context.Context, value domain.Preference) error
	ListPreferences(ctx context.Context, userEmail string) ([]domain.Preference, error)
}

// FullStore combines notification and preference persistence; the SQLite
// store implements both on one type.
type FullStore interface {
	Store
	PreferenceStore
}
