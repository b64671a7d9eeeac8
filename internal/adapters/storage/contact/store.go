package contact

import (
	"context"

	domain "paddock/internal/domain/contact"
)

// Store persists ContactMessage state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Message, error)
	Save(ctx context.Context, value domain.Message) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Message, error)
	CountByStatus(ctx context.Context, status string) (int, error)
}
