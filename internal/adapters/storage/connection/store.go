package connection

import (
	"context"

	domain "paddock/internal/domain/connection"
)

// Store persists UserConnection state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Connection, error)
	GetByPair(ctx context.Context, fromEmail, toEmail, connectionType string) (domain.Connection, error)
	Save(ctx context.Context, value domain.Connection) error
	Delete(ctx context.Context, id string) error
	ListByFrom(ctx context.Context, fromEmail string) ([]domain.Connection, error)
	ListByTo(ctx context.Context, toEmail string) ([]domain.Connection, error)
	// ListApprovedByFrom returns approved connections initiated by fromEmail,
	// used to resolve the importing trainer's connected-rider set.
	ListApprovedByFrom(ctx context.Context, fromEmail string) ([]domain.Connection, error)
}
