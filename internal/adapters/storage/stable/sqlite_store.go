package stable

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	accountDomain "paddock/internal/domain/account"
	domain "paddock/internal/domain/stable"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// SQLiteStore implements TxStore and EventStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const stableColumns = `id, name, manager_email, trainer_emails, approval_status, address, city,
	state, country, phone, email, description, images, latitude, longitude, created_at`

// GetByID retrieves a Stable by its ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Stable, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+stableColumns+` FROM stable WHERE id = ?`, id)
	return scanStableRows(row)
}

// Save persists a Stable to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, st domain.Stable) error {
	return saveStable(ctx, s.db, st)
}

// Delete removes a Stable and its events.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	return s.DeleteWithUsers(ctx, id)
}

// List retrieves all Stables ordered by name.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Stable, error) {
	return s.listQuery(ctx, `SELECT `+stableColumns+` FROM stable ORDER BY name`)
}

// ListByStatus retrieves Stables with the given approval status.
func (s *SQLiteStore) ListByStatus(ctx context.Context, status string) ([]domain.Stable, error) {
	return s.listQuery(ctx,
		`SELECT `+stableColumns+` FROM stable WHERE approval_status = ? ORDER BY name`, status)
}

// SaveWithUsers persists the stable and the given users in one transaction.
// Used by approval and manager reassignment so the stable record and role
// grants/revocations commit or fail together.
// PRE: stable and users have been validated
// POST: All records persisted, or none
func (s *SQLiteStore) SaveWithUsers(ctx context.Context, st domain.Stable, users ...accountDomain.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveStable(ctx, tx, st); err != nil {
		return fmt.Errorf("save stable: %w", err)
	}
	for _, u := range users {
		roles, err := json.Marshal(u.Roles)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE user SET roles = ? WHERE id = ?`, string(roles), u.ID)
		if err != nil {
			return fmt.Errorf("update roles for %s: %w", u.Email, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("update roles for %s: %w", u.Email, sql.ErrNoRows)
		}
	}
	return tx.Commit()
}

// DeleteWithUsers removes the stable, its events, and persists role changes
// on the given users in one transaction. Deleting a stable revokes the
// manager's role unless they manage another stable; the caller decides and
// passes the updated users.
// POST: All records removed/updated, or none
func (s *SQLiteStore) DeleteWithUsers(ctx context.Context, stableID string, users ...accountDomain.User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM stable_event WHERE stable_id = ?`, stableID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM stable WHERE id = ?`, stableID); err != nil {
		return err
	}
	for _, u := range users {
		roles, err := json.Marshal(u.Roles)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE user SET roles = ? WHERE id = ?`, string(roles), u.ID); err != nil {
			return fmt.Errorf("update roles for %s: %w", u.Email, err)
		}
	}
	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveStable(ctx context.Context, db execer, st domain.Stable) error {
	trainers, err := json.Marshal(st.TrainerEmails)
	if err != nil {
		return err
	}
	if st.TrainerEmails == nil {
		trainers = []byte("[]")
	}
	images, err := json.Marshal(st.Images)
	if err != nil {
		return err
	}
	if st.Images == nil {
		images = []byte("[]")
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO stable (`+stableColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, manager_email=excluded.manager_email,
		   trainer_emails=excluded.trainer_emails, approval_status=excluded.approval_status,
		   address=excluded.address, city=excluded.city, state=excluded.state,
		   country=excluded.country, phone=excluded.phone, email=excluded.email,
		   description=excluded.description, images=excluded.images,
		   latitude=excluded.latitude, longitude=excluded.longitude`,
		st.ID, st.Name, st.ManagerEmail, string(trainers), st.ApprovalStatus,
		nullStr(st.Address), nullStr(st.City), nullStr(st.State), nullStr(st.Country),
		nullStr(st.Phone), nullStr(st.Email), nullStr(st.Description), string(images),
		st.Latitude, st.Longitude, st.CreatedAt.Format(timeLayout))
	return err
}

func (s *SQLiteStore) listQuery(ctx context.Context, query string, args ...any) ([]domain.Stable, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stables []domain.Stable
	for rows.Next() {
		st, err := scanStableRows(rows)
		if err != nil {
			return nil, err
		}
		stables = append(stables, st)
	}
	return stables, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStableRows(row rowScanner) (domain.Stable, error) {
	var st domain.Stable
	var trainers, images, createdAt string
	var address, city, state, country, phone, email, description sql.NullString
	var lat, lng sql.NullFloat64
	err := row.Scan(&st.ID, &st.Name, &st.ManagerEmail, &trainers, &st.ApprovalStatus,
		&address, &city, &state, &country, &phone, &email, &description,
		&images, &lat, &lng, &createdAt)
	if err != nil {
		return domain.Stable{}, err
	}
	if err := json.Unmarshal([]byte(trainers), &st.TrainerEmails); err != nil {
		return domain.Stable{}, err
	}
	if err := json.Unmarshal([]byte(images), &st.Images); err != nil {
		return domain.Stable{}, err
	}
	st.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	st.Address = address.String
	st.City = city.String
	st.State = state.String
	st.Country = country.String
	st.Phone = phone.String
	st.Email = email.String
	st.Description = description.String
	st.Latitude = lat.Float64
	st.Longitude = lng.Float64
	return st, nil
}

func nullStr(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
