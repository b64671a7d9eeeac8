package session

import (
	"context"

	domain "paddock/internal/domain/session"
)

// Store persists TrainingSession state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Session, error)
	Save(ctx context.Context, value domain.Session) error
	Delete(ctx context.Context, id string) error
	ListByTrainer(ctx context.Context, trainerEmail string) ([]domain.Session, error)
	ListByRider(ctx context.Context, riderEmail string) ([]domain.Session, error)
}
