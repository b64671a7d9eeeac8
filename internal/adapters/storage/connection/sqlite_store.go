package connection

import (
	"context"
	"database/sql"
	"time"

	domain "paddock/internal/domain/connection"
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

const connColumns = `id, from_email, to_email, connection_type, status, created_at`

// GetByID retrieves a Connection by its ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Connection, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+connColumns+` FROM user_connection WHERE id = ?`, id)
	return scanConnection(row)
}

// GetByPair retrieves a Connection by its unique (from, to, type) triple.
func (s *SQLiteStore) GetByPair(ctx context.Context, fromEmail, toEmail, connectionType string) (domain.Connection, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+connColumns+` FROM user_connection
		 WHERE from_email = ? AND to_email = ? AND connection_type = ?`,
		fromEmail, toEmail, connectionType)
	return scanConnection(row)
}

// Save persists a Connection, upserting on the (from, to, type) uniqueness
// constraint.
// PRE: entity has been validated
func (s *SQLiteStore) Save(ctx context.Context, c domain.Connection) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_connection (`+connColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(from_email, to_email, connection_type) DO UPDATE SET
		   status=excluded.status`,
		c.ID, c.FromEmail, c.ToEmail, c.Type, c.Status, c.CreatedAt.Format(timeLayout))
	return err
}

// Delete removes a Connection from the database.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM user_connection WHERE id = ?`, id)
	return err
}

// ListByFrom retrieves Connections initiated by a user.
func (s *SQLiteStore) ListByFrom(ctx context.Context, fromEmail string) ([]domain.Connection, error) {
	return s.listQuery(ctx,
		`SELECT `+connColumns+` FROM user_connection WHERE from_email = ? ORDER BY created_at`, fromEmail)
}

// ListByTo retrieves Connections addressed to a user.
func (s *SQLiteStore) ListByTo(ctx context.Context, toEmail string) ([]domain.Connection, error) {
	return s.listQuery(ctx,
		`SELECT `+connColumns+` FROM user_connection WHERE to_email = ? ORDER BY created_at`, toEmail)
}

// ListApprovedByFrom retrieves approved Connections initiated by a user.
func (s *SQLiteStore) ListApprovedByFrom(ctx context.Context, fromEmail string) ([]domain.Connection, error) {
	return s.listQuery(ctx,
		`SELECT `+connColumns+` FROM user_connection
		 WHERE from_email = ? AND status = ? ORDER BY created_at`,
		fromEmail, domain.StatusApproved)
}

func (s *SQLiteStore) listQuery(ctx context.Context, query string, args ...any) ([]domain.Connection, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []domain.Connection
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConnection(row rowScanner) (domain.Connection, error) {
	var c domain.Connection
	var createdAt string
	err := row.Scan(&c.ID, &c.FromEmail, &c.ToEmail, &c.Type, &c.Status, &createdAt)
	if err != nil {
		return domain.Connection{}, err
	}
	c.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return c, nil
}
