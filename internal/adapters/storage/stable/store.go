package stable

import (
	"context"

	accountDomain "paddock/internal/domain/account"
	domain "paddock/internal/domain/stable"
)

// Store persists Stable state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Stable, error)
	Save(ctx context.Context, value domain.Stable) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Stable, error)
	ListByStatus(ctx context.Context, status string) ([]domain.Stable, error)
}

// TxStore extends Store with multi-record writes executed in one database
// transaction. Approval and manager reassignment touch the stable record and
// one or two user records; doing both writes atomically closes the window
// where a failure between them leaves roles out of sync with stables.
type TxStore interface {
	Store
	// SaveWithUsers persists the stable and the given users in one transaction.
	SaveWithUsers(ctx context.Context, st domain.Stable, users ...accountDomain.User) error
	// DeleteWithUsers removes the stable and persists role changes on the
	// given users in one transaction.
	DeleteWithUsers(ctx context.Context, stableID string, users ...accountDomain.User) error
}

// EventStore persists stable events.
type EventStore interface {
	GetEventByID(ctx context.Context, id string) (domain.Event, error)
	SaveEvent(ctx context.Context, value domain.Event) error
	DeleteEvent(ctx context.Context, id string) error
	ListEventsByStable(ctx context.Context, stableID string) ([]domain.Event, error)
}
