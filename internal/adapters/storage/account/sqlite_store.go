package account

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	domain "paddock/internal/domain/account"
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

const userColumns = `id, email, password_hash, roles, first_name, last_name, google_id, created_at, failed_logins, locked_until`

// GetByID retrieves a User by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM user WHERE id = ?`, id)
	return scanUser(row)
}

// GetByEmail retrieves a User by its unique email (indexed lookup).
// PRE: email is lowercased
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM user WHERE email = ?`, domain.NormalizeEmail(email))
	return scanUser(row)
}

// Save persists a User to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, u domain.User) error {
	roles, err := json.Marshal(u.Roles)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO user (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   email=excluded.email, password_hash=excluded.password_hash,
		   roles=excluded.roles, first_name=excluded.first_name,
		   last_name=excluded.last_name, google_id=excluded.google_id,
		   failed_logins=excluded.failed_logins, locked_until=excluded.locked_until`,
		u.ID, domain.NormalizeEmail(u.Email), u.PasswordHash, string(roles),
		u.FirstName, u.LastName, nullStr(u.GoogleID),
		u.CreatedAt.Format(timeLayout), u.FailedLogins, nullTime(u.LockedUntil))
	return err
}

// Delete removes a User from the database.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM user WHERE id = ?`, id)
	return err
}

// List retrieves all Users ordered by email.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM user ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUserRows(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Count returns the number of user records.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user`).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row *sql.Row) (domain.User, error) {
	return scanUserRows(row)
}

func scanUserRows(row rowScanner) (domain.User, error) {
	var u domain.User
	var roles, createdAt string
	var googleID, lockedUntil sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &roles, &u.FirstName,
		&u.LastName, &googleID, &createdAt, &u.FailedLogins, &lockedUntil)
	if err != nil {
		return domain.User{}, err
	}
	if err := json.Unmarshal([]byte(roles), &u.Roles); err != nil {
		return domain.User{}, err
	}
	u.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	if googleID.Valid {
		u.GoogleID = googleID.String
	}
	if lockedUntil.Valid {
		u.LockedUntil, _ = time.Parse(timeLayout, lockedUntil.String)
	}
	return u, nil
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Format(timeLayout)
}
