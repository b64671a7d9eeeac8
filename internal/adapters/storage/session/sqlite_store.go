package session

import (
	"context"
	"database/sql"
	"time"

	domain "paddock/internal/domain/session"
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

const sessionColumns = `id, trainer_email, rider_email, rider_name, horse_name, session_date,
	duration_minutes, session_type, notes, status, is_recurring, recurring_group_id, created_at`

// GetByID retrieves a Session by its ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM training_session WHERE id = ?`, id)
	return scanSession(row)
}

// Save persists a Session to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, m domain.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO training_session (`+sessionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   trainer_email=excluded.trainer_email, rider_email=excluded.rider_email,
		   rider_name=excluded.rider_name, horse_name=excluded.horse_name,
		   session_date=excluded.session_date, duration_minutes=excluded.duration_minutes,
		   session_type=excluded.session_type, notes=excluded.notes,
		   status=excluded.status, is_recurring=excluded.is_recurring,
		   recurring_group_id=excluded.recurring_group_id`,
		m.ID, m.TrainerEmail, m.RiderEmail, nullStr(m.RiderName), nullStr(m.HorseName),
		m.SessionDate.Format(timeLayout), m.DurationMinutes, m.SessionType,
		nullStr(m.Notes), m.Status, boolInt(m.IsRecurring),
		nullStr(m.RecurringGroupID), m.CreatedAt.Format(timeLayout))
	return err
}

// Delete removes a single Session; other occurrences in the same recurring
// group are left untouched.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM training_session WHERE id = ?`, id)
	return err
}

// ListByTrainer retrieves Sessions created by a trainer, ascending by date.
func (s *SQLiteStore) ListByTrainer(ctx context.Context, trainerEmail string) ([]domain.Session, error) {
	return s.list(ctx,
		`SELECT `+sessionColumns+` FROM training_session WHERE trainer_email = ? ORDER BY session_date`,
		trainerEmail)
}

// ListByRider retrieves Sessions for a rider, ascending by date.
func (s *SQLiteStore) ListByRider(ctx context.Context, riderEmail string) ([]domain.Session, error) {
	return s.list(ctx,
		`SELECT `+sessionColumns+` FROM training_session WHERE rider_email = ? ORDER BY session_date`,
		riderEmail)
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		m, err := scanSessionRows(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, m)
	}
	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row *sql.Row) (domain.Session, error) {
	return scanSessionRows(row)
}

func scanSessionRows(row rowScanner) (domain.Session, error) {
	var m domain.Session
	var riderName, horseName, notes, groupID sql.NullString
	var sessionDate, createdAt string
	var isRecurring int
	err := row.Scan(&m.ID, &m.TrainerEmail, &m.RiderEmail, &riderName, &horseName,
		&sessionDate, &m.DurationMinutes, &m.SessionType, &notes, &m.Status,
		&isRecurring, &groupID, &createdAt)
	if err != nil {
		return domain.Session{}, err
	}
	m.SessionDate, _ = time.Parse(timeLayout, sessionDate)
	m.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	m.IsRecurring = isRecurring != 0
	if riderName.Valid {
		m.RiderName = riderName.String
	}
	if horseName.Valid {
		m.HorseName = horseName.String
	}
	if notes.Valid {
		m.Notes = notes.String
	}
	if groupID.Valid {
		m.RecurringGroupID = groupID.String
	}
	return m, nil
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
