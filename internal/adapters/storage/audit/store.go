package audit

import (
	"context"

	domain "paddock/internal/domain/audit"
)

// Store defines the interface for audit log persistence. Events are
// append-only; there is no update or delete.
type Store interface {
	// Append persists an audit event.
	Append(ctx context.Context, e domain.Event) error

	// List returns events newest first, optionally filtered by category.
	// An empty category matches everything.
	List(ctx context.Context, category domain.Category, limit int) ([]domain.Event, error)

	// ListByResource returns events for a specific resource, newest first.
	ListByResource(ctx context.Context, resourceType, resourceID string) ([]domain.Event, error)
}
