package competition

import (
	"context"

	domain "paddock/internal/domain/competition"
)

// Store persists Competition state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Competition, error)
	Save(ctx context.Context, value domain.Competition) error
	Delete(ctx context.Context, id string) error
	ListByTrainer(ctx context.Context, trainerEmail string) ([]domain.Competition, error)
	List(ctx context.Context) ([]domain.Competition, error)
}
