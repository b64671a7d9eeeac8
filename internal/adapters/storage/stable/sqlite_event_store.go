package stable

import (
	"context"
	"database/sql"
	"time"

	domain "paddock/internal/domain/stable"
)

// GetEventByID retrieves an Event by its ID.
func (s *SQLiteStore) GetEventByID(ctx context.Context, id string) (domain.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, stable_id, title, description, starts_at, ends_at, created_at
		 FROM stable_event WHERE id = ?`, id)
	return scanEvent(row)
}

// SaveEvent persists an Event to the database.
// PRE: entity has been validated
func (s *SQLiteStore) SaveEvent(ctx context.Context, e domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stable_event (id, stable_id, title, description, starts_at, ends_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title, description=excluded.description,
		   starts_at=excluded.starts_at, ends_at=excluded.ends_at`,
		e.ID, e.StableID, e.Title, nullStr(e.Description),
		e.StartsAt.Format(timeLayout), nullEventTime(e.EndsAt), e.CreatedAt.Format(timeLayout))
	return err
}

// DeleteEvent removes an Event from the database.
func (s *SQLiteStore) DeleteEvent(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM stable_event WHERE id = ?`, id)
	return err
}

// ListEventsByStable retrieves Events for a stable, ascending by start.
func (s *SQLiteStore) ListEventsByStable(ctx context.Context, stableID string) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, stable_id, title, description, starts_at, ends_at, created_at
		 FROM stable_event WHERE stable_id = ? ORDER BY starts_at`, stableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanEvent(row rowScanner) (domain.Event, error) {
	var e domain.Event
	var description, endsAt sql.NullString
	var startsAt, createdAt string
	err := row.Scan(&e.ID, &e.StableID, &e.Title, &description, &startsAt, &endsAt, &createdAt)
	if err != nil {
		return domain.Event{}, err
	}
	e.StartsAt, _ = time.Parse(timeLayout, startsAt)
	e.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	if description.Valid {
		e.Description = description.String
	}
	if endsAt.Valid {
		e.EndsAt, _ = time.Parse(timeLayout, endsAt.String)
	}
	return e, nil
}

func nullEventTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Format(timeLayout)
}
