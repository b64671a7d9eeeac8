package horse

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "paddock/internal/domain/horse"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Horse by its ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Horse, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, owner_email, name, breed, notes, created_at FROM horse WHERE id = ?`, id)
	h, err := scanHorse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Horse{}, ErrNotFound
	}
	return h, err
}

// Save persists a Horse to the database.
// PRE: entity has been validated
func (s *SQLiteStore) Save(ctx context.Context, h domain.Horse) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO horse (id, owner_email, name, breed, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, breed=excluded.breed, notes=excluded.notes`,
		h.ID, h.OwnerEmail, h.Name, nullStr(h.Breed), nullStr(h.Notes),
		h.CreatedAt.Format(timeLayout))
	return err
}

// Delete removes a Horse from the database.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM horse WHERE id = ?`, id)
	return err
}

// ListByOwner retrieves all horses owned by the given rider, ordered by name.
func (s *SQLiteStore) ListByOwner(ctx context.Context, ownerEmail string) ([]domain.Horse, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_email, name, breed, notes, created_at
		 FROM horse WHERE owner_email = ? ORDER BY name`, ownerEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var horses []domain.Horse
	for rows.Next() {
		h, err := scanHorse(rows)
		if err != nil {
			return nil, err
		}
		horses = append(horses, h)
	}
	return horses, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHorse(row rowScanner) (domain.Horse, error) {
	var h domain.Horse
	var breed, notes sql.NullString
	var createdAt string
	if err := row.Scan(&h.ID, &h.OwnerEmail, &h.Name, &breed, &notes, &createdAt); err != nil {
		return domain.Horse{}, err
	}
	h.Breed = breed.String
	h.Notes = notes.String
	h.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return h, nil
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
