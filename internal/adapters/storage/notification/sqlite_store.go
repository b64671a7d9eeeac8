package notification

import (
	"context"
	"database/sql"
	"time"

	domain "paddock/internal/domain/notification"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// SQLiteStore implements Store and PreferenceStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const notifColumns = `id, user_email, type, title, message, related_entity_type, related_entity_id, link, read_at, created_at`

// GetByID retrieves a Notification by its ID.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Notification, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+notifColumns+` FROM notification WHERE id = ?`, id)
	return scanNotification(row)
}

// Save persists a Notification to the database.
// PRE: entity has been validated
func (s *SQLiteStore) Save(ctx context.Context, n domain.Notification) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notification (`+notifColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title, message=excluded.message, read_at=excluded.read_at`,
		n.ID, n.UserEmail, n.Type, n.Title, nullStr(n.Message),
		nullStr(n.RelatedEntityType), nullStr(n.RelatedEntityID), nullStr(n.Link),
		nullTime(n.ReadAt), n.CreatedAt.Format(timeLayout))
	return err
}

// Delete removes a Notification from the database.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM notification WHERE id = ?`, id)
	return err
}

// ListByUser retrieves Notifications for a user, newest first.
func (s *SQLiteStore) ListByUser(ctx context.Context, userEmail string) ([]domain.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+notifColumns+` FROM notification WHERE user_email = ? ORDER BY created_at DESC`,
		userEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifs []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

// CountUnread counts unread notifications for a user.
func (s *SQLiteStore) CountUnread(ctx context.Context, userEmail string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notification WHERE user_email = ? AND read_at IS NULL`,
		userEmail).Scan(&count)
	return count, err
}

// SavePreference upserts a Preference on the (user_email, notification_type)
// uniqueness constraint.
func (s *SQLiteStore) SavePreference(ctx context.Context, p domain.Preference) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notification_preference (id, user_email, notification_type, enabled)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_email, notification_type) DO UPDATE SET
		   enabled=excluded.enabled`,
		p.ID, p.UserEmail, p.NotificationType, boolInt(p.Enabled))
	return err
}

// ListPreferences retrieves a user's notification preferences.
func (s *SQLiteStore) ListPreferences(ctx context.Context, userEmail string) ([]domain.Preference, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_email, notification_type, enabled
		 FROM notification_preference WHERE user_email = ?`, userEmail)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prefs []domain.Preference
	for rows.Next() {
		var p domain.Preference
		var enabled int
		if err := rows.Scan(&p.ID, &p.UserEmail, &p.NotificationType, &enabled); err != nil {
			return nil, err
		}
		p.Enabled = enabled != 0
		prefs = append(prefs, p)
	}
	return prefs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner) (domain.Notification, error) {
	var n domain.Notification
	var message, relType, relID, link, readAt sql.NullString
	var createdAt string
	err := row.Scan(&n.ID, &n.UserEmail, &n.Type, &n.Title, &message,
		&relType, &relID, &link, &readAt, &createdAt)
	if err != nil {
		return domain.Notification{}, err
	}
	n.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	n.Message = message.String
	n.RelatedEntityType = relType.String
	n.RelatedEntityID = relID.String
	n.Link = link.String
	if readAt.Valid {
		n.ReadAt, _ = time.Parse(timeLayout, readAt.String)
	}
	return n, nil
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

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
