package billing

import (
	"context"
	"database/sql"

	domain "paddock/internal/domain/billing"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByTrainerAndType retrieves the rate for a (trainer, session type) pair.
func (s *SQLiteStore) GetByTrainerAndType(ctx context.Context, trainerEmail, sessionType string) (domain.Rate, error) {
	var r domain.Rate
	err := s.db.QueryRowContext(ctx,
		`SELECT id, trainer_email, session_type, currency, rate
		 FROM billing_rate WHERE trainer_email = ? AND session_type = ?`,
		trainerEmail, sessionType).
		Scan(&r.ID, &r.TrainerEmail, &r.SessionType, &r.Currency, &r.Rate)
	return r, err
}

// Save persists a Rate, upserting on the (trainer_email, session_type)
// uniqueness constraint.
// PRE: entity has been validated
func (s *SQLiteStore) Save(ctx context.Context, r domain.Rate) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO billing_rate (id, trainer_email, session_type, currency, rate)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(trainer_email, session_type) DO UPDATE SET
		   currency=excluded.currency, rate=excluded.rate`,
		r.ID, r.TrainerEmail, r.SessionType, r.Currency, r.Rate)
	return err
}

// Delete removes a Rate from the database.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM billing_rate WHERE id = ?`, id)
	return err
}

// ListByTrainer retrieves a trainer's full rate sheet.
func (s *SQLiteStore) ListByTrainer(ctx context.Context, trainerEmail string) ([]domain.Rate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, trainer_email, session_type, currency, rate
		 FROM billing_rate WHERE trainer_email = ? ORDER BY session_type`,
		trainerEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []domain.Rate
	for rows.Next() {
		var r domain.Rate
		if err := rows.Scan(&r.ID, &r.TrainerEmail, &r.SessionType, &r.Currency, &r.Rate); err != nil {
			return nil, err
		}
		rates = append(rates, r)
	}
	return rates, rows.Err()
}
