package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS user (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		roles TEXT NOT NULL DEFAULT '[]',
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		google_id TEXT,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_user_email ON user(email);

	CREATE TABLE IF NOT EXISTS stable (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		manager_email TEXT NOT NULL,
		trainer_emails TEXT NOT NULL DEFAULT '[]',
		approval_status TEXT NOT NULL DEFAULT 'pending',
		address TEXT,
		city TEXT,
		state TEXT,
		country TEXT,
		phone TEXT,
		email TEXT,
		description TEXT,
		images TEXT NOT NULL DEFAULT '[]',
		latitude REAL,
		longitude REAL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_stable_manager ON stable(manager_email);

	CREATE TABLE IF NOT EXISTS stable_event (
		id TEXT PRIMARY KEY,
		stable_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		starts_at TEXT NOT NULL,
		ends_at TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (stable_id) REFERENCES stable(id)
	);

	CREATE TABLE IF NOT EXISTS horse (
		id TEXT PRIMARY KEY,
		owner_email TEXT NOT NULL,
		name TEXT NOT NULL,
		breed TEXT,
		notes TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS training_session (
		id TEXT PRIMARY KEY,
		trainer_email TEXT NOT NULL,
		rider_email TEXT NOT NULL,
		rider_name TEXT,
		horse_name TEXT,
		session_date TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL DEFAULT 60,
		session_type TEXT NOT NULL,
		notes TEXT,
		status TEXT NOT NULL DEFAULT 'scheduled',
		is_recurring INTEGER NOT NULL DEFAULT 0,
		recurring_group_id TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_session_trainer ON training_session(trainer_email);
	CREATE INDEX IF NOT EXISTS idx_session_rider ON training_session(rider_email);

	CREATE TABLE IF NOT EXISTS competition (
		id TEXT PRIMARY KEY,
		trainer_email TEXT NOT NULL,
		name TEXT NOT NULL,
		competition_date TEXT NOT NULL,
		location TEXT,
		stable_id TEXT,
		notes TEXT,
		status TEXT NOT NULL DEFAULT 'scheduled',
		riders TEXT NOT NULL DEFAULT '[]',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_competition_trainer ON competition(trainer_email);

	CREATE TABLE IF NOT EXISTS billing_rate (
		id TEXT PRIMARY KEY,
		trainer_email TEXT NOT NULL,
		session_type TEXT NOT NULL,
		currency TEXT NOT NULL DEFAULT 'EUR',
		rate REAL NOT NULL DEFAULT 0,
		UNIQUE (trainer_email, session_type)
	);

	CREATE TABLE IF NOT EXISTS user_connection (
		id TEXT PRIMARY KEY,
		from_email TEXT NOT NULL,
		to_email TEXT NOT NULL,
		connection_type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TEXT NOT NULL,
		UNIQUE (from_email, to_email, connection_type)
	);

	CREATE TABLE IF NOT EXISTS notification (
		id TEXT PRIMARY KEY,
		user_email TEXT NOT NULL,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT,
		related_entity_type TEXT,
		related_entity_id TEXT,
		link TEXT,
		read_at TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_notification_user ON notification(user_email);

	CREATE TABLE IF NOT EXISTS notification_preference (
		id TEXT PRIMARY KEY,
		user_email TEXT NOT NULL,
		notification_type TEXT NOT NULL,
		enabled INTEGER NOT NULL DEFAULT 1,
		UNIQUE (user_email, notification_type)
	);

	CREATE TABLE IF NOT EXISTS contact_message (
		id TEXT PRIMARY KEY,
		subject TEXT NOT NULL,
		message TEXT NOT NULL,
		sender_name TEXT,
		sender_email TEXT NOT NULL,
		type TEXT,
		status TEXT NOT NULL DEFAULT 'new',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS outbox (
		id TEXT PRIMARY KEY,
		action_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		attempts INTEGER NOT NULL DEFAULT 0,
		max_attempts INTEGER NOT NULL DEFAULT 5,
		last_attempted_at TEXT,
		created_at TEXT NOT NULL,
		external_id TEXT,
		error_message TEXT
	);

	CREATE TABLE IF NOT EXISTS audit_log (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		category TEXT NOT NULL,
		action TEXT NOT NULL,
		actor_email TEXT NOT NULL,
		resource_type TEXT,
		resource_id TEXT,
		description TEXT
	);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
