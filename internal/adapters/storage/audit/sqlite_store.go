package audit

import (
	"context"
	"database/sql"
	"time"

	domain "paddock/internal/domain/audit"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

const eventColumns = `id, timestamp, category, action, actor_email, resource_type, resource_id, description`

// SQLiteStore implements the audit Store interface using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new audit store.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Append persists an audit event.
func (s *SQLiteStore) Append(ctx context.Context, e domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_log (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp.Format(timeLayout), string(e.Category), string(e.Action),
		e.ActorEmail, nullStr(e.ResourceType), nullStr(e.ResourceID), nullStr(e.Description))
	return err
}

// List returns events newest first, optionally filtered by category.
func (s *SQLiteStore) List(ctx context.Context, category domain.Category, limit int) ([]domain.Event, error) {
	var rows *sql.Rows
	var err error
	if category != "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+eventColumns+` FROM audit_log
			 WHERE category = ? ORDER BY timestamp DESC LIMIT ?`,
			string(category), limit)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+eventColumns+` FROM audit_log ORDER BY timestamp DESC LIMIT ?`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// ListByResource returns events for a specific resource, newest first.
func (s *SQLiteStore) ListByResource(ctx context.Context, resourceType, resourceID string) ([]domain.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM audit_log
		 WHERE resource_type = ? AND resource_id = ? ORDER BY timestamp DESC`,
		resourceType, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]domain.Event, error) {
	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var ts, category, action string
		var resType, resID, desc sql.NullString
		if err := rows.Scan(&e.ID, &ts, &category, &action, &e.ActorEmail,
			&resType, &resID, &desc); err != nil {
			return nil, err
		}
		e.Timestamp, _ = time.Parse(timeLayout, ts)
		e.Category = domain.Category(category)
		e.Action = domain.Action(action)
		e.ResourceType = resType.String
		e.ResourceID = resID.String
		e.Description = desc.String
		events = append(events, e)
	}
	return events, rows.Err()
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
