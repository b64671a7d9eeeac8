package horse

import (
	"context"
	"errors"

	domain "paddock/internal/domain/horse"
)

// ErrNotFound is returned when a horse is not found.
var ErrNotFound = errors.New("horse not found")

// Store defines the interface for horse storage operations.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Horse, error)
	Save(ctx context.Context, value domain.Horse) error
	Delete(ctx context.Context, id string) error
	ListByOwner(ctx context.Context, ownerEmail string) ([]domain.Horse, error)
}
