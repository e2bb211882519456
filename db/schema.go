// ABOUTME: SQLite schema for the CRM collections
// ABOUTME: One JSON document per record, ordered by position, plus dismissals and settings
package db

import (
	"database/sql"
)

// Records are stored as JSON documents so the schema does not have to track
// every optional field; position keeps the collection's insertion order.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	data TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS contacts (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	data TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS meetings (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	data TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	data TEXT NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_position ON users(position);
CREATE INDEX IF NOT EXISTS idx_contacts_position ON contacts(position);
CREATE INDEX IF NOT EXISTS idx_meetings_position ON meetings(position);
CREATE INDEX IF NOT EXISTS idx_tasks_position ON tasks(position);

CREATE TABLE IF NOT EXISTS dismissals (
	key TEXT PRIMARY KEY,
	dismissed_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

func InitSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
