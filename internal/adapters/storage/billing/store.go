package billing

import (
	"context"

	domain "paddock/internal/domain/billing"
)

// Store persists BillingRate state. Rates are unique per
// (trainerEmail, sessionType); Save upserts on that pair.
type Store interface {
	GetByTrainerAndType(ctx context.Context, trainerEmail, sessionType string) (domain.Rate, error)
	Save(ctx context.Context, value domain.Rate) error
	Delete(ctx context.Context, id string) error
	ListByTrainer(ctx context.Context, trainerEmail string) ([]domain.Rate, error)
}
