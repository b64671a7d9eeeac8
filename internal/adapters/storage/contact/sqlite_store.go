package contact

import (
	"context"
	"database/sql"
	"time"

	domain "paddock/internal/domain/contact"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const messageColumns = `id, subject, message, sender_name, sender_email, type, status, created_at`

// GetByID retrieves a Message by its ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Message, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+messageColumns+` FROM contact_message WHERE id = ?`, id)
	return scanMessage(row)
}

// Save persists a Message to the database.
// PRE: entity has been validated
func (s *SQLiteStore) Save(ctx context.Context, m domain.Message) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contact_message (`+messageColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   subject=excluded.subject, message=excluded.message,
		   sender_name=excluded.sender_name, sender_email=excluded.sender_email,
		   type=excluded.type, status=excluded.status`,
		m.ID, m.Subject, m.Message, nullStr(m.SenderName), m.SenderEmail,
		nullStr(m.Type), m.Status, m.CreatedAt.Format(timeLayout))
	return err
}

// Delete removes a Message from the database.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM contact_message WHERE id = ?`, id)
	return err
}

// List retrieves all Messages, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM contact_message ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// CountByStatus counts messages in the given status.
func (s *SQLiteStore) CountByStatus(ctx context.Context, status string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contact_message WHERE status = ?`, status).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (domain.Message, error) {
	var m domain.Message
	var senderName, msgType sql.NullString
	var createdAt string
	err := row.Scan(&m.ID, &m.Subject, &m.Message, &senderName, &m.SenderEmail,
		&msgType, &m.Status, &createdAt)
	if err != nil {
		return domain.Message{}, err
	}
	m.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	if senderName.Valid {
		m.SenderName = senderName.String
	}
	if msgType.Valid {
		m.Type = msgType.String
	}
	return m, nil
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
