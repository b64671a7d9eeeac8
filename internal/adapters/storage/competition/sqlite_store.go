package competition

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	domain "paddock/internal/domain/competition"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// SQLiteStore implements Store using SQLite. The riders sub-list is stored
// as a JSON column and mutated by saving the whole record.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const compColumns = `id, trainer_email, name, competition_date, location, stable_id, notes, status, riders, created_at`

// GetByID retrieves a Competition by its ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Competition, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+compColumns+` FROM competition WHERE id = ?`, id)
	return scanCompetition(row)
}

// Save persists a Competition to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, c domain.Competition) error {
	riders, err := json.Marshal(c.Riders)
	if err != nil {
		return err
	}
	if c.Riders == nil {
		riders = []byte("[]")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO competition (`+compColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   trainer_email=excluded.trainer_email, name=excluded.name,
		   competition_date=excluded.competition_date, location=excluded.location,
		   stable_id=excluded.stable_id, notes=excluded.notes,
		   status=excluded.status, riders=excluded.riders`,
		c.ID, c.TrainerEmail, c.Name, c.CompetitionDate.Format(timeLayout),
		nullStr(c.Location), nullStr(c.StableID), nullStr(c.Notes), c.Status,
		string(riders), c.CreatedAt.Format(timeLayout))
	return err
}

// Delete removes a Competition from the database.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM competition WHERE id = ?`, id)
	return err
}

// ListByTrainer retrieves Competitions organized by a trainer, ascending by date.
func (s *SQLiteStore) ListByTrainer(ctx context.Context, trainerEmail string) ([]domain.Competition, error) {
	return s.listQuery(ctx,
		`SELECT `+compColumns+` FROM competition WHERE trainer_email = ? ORDER BY competition_date`,
		trainerEmail)
}

// List retrieves all Competitions ascending by date.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Competition, error) {
	return s.listQuery(ctx,
		`SELECT `+compColumns+` FROM competition ORDER BY competition_date`)
}

func (s *SQLiteStore) listQuery(ctx context.Context, query string, args ...any) ([]domain.Competition, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comps []domain.Competition
	for rows.Next() {
		c, err := scanCompetitionRows(rows)
		if err != nil {
			return nil, err
		}
		comps = append(comps, c)
	}
	return comps, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompetition(row *sql.Row) (domain.Competition, error) {
	return scanCompetitionRows(row)
}

func scanCompetitionRows(row rowScanner) (domain.Competition, error) {
	var c domain.Competition
	var location, stableID, notes sql.NullString
	var riders, compDate, createdAt string
	err := row.Scan(&c.ID, &c.TrainerEmail, &c.Name, &compDate, &location,
		&stableID, &notes, &c.Status, &riders, &createdAt)
	if err != nil {
		return domain.Competition{}, err
	}
	if err := json.Unmarshal([]byte(riders), &c.Riders); err != nil {
		return domain.Competition{}, err
	}
	c.CompetitionDate, _ = time.Parse(timeLayout, compDate)
	c.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	if location.Valid {
		c.Location = location.String
	}
	if stableID.Valid {
		c.StableID = stableID.String
	}
	if notes.Valid {
		c.Notes = notes.String
	}
	return c, nil
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
