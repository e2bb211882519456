// ABOUTME: SQLite-backed persistence for the CRM store
// ABOUTME: Saves whole collections transactionally and loads them back in order
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/abbrubin150-ui/crmhtml/models"
	"github.com/abbrubin150-ui/crmhtml/notify"
)

const (
	tableUsers    = "users"
	tableContacts = "contacts"
	tableMeetings = "meetings"
	tableTasks    = "tasks"

	settingCurrentUser = "current_user"
)

// Persister stores each collection in its own table. It satisfies
// store.Persister.
type Persister struct {
	db *sql.DB
}

func NewPersister(db *sql.DB) *Persister {
	return &Persister{db: db}
}

func (p *Persister) LoadUsers(ctx context.Context) ([]models.User, error) {
	return loadCollection[models.User](ctx, p.db, tableUsers)
}

func (p *Persister) SaveUsers(ctx context.Context, users []models.User) error {
	return saveCollection(ctx, p.db, tableUsers, users, func(u models.User) string { return u.ID })
}

func (p *Persister) LoadCurrentUserID(ctx context.Context) (string, error) {
	var id string
	err := p.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, settingCurrentUser).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return id, err
}

func (p *Persister) SaveCurrentUserID(ctx context.Context, id string) error {
	if id == "" {
		_, err := p.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, settingCurrentUser)
		return err
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, settingCurrentUser, id)
	return err
}

func (p *Persister) LoadContacts(ctx context.Context) ([]models.Contact, error) {
	return loadCollection[models.Contact](ctx, p.db, tableContacts)
}

func (p *Persister) SaveContacts(ctx context.Context, contacts []models.Contact) error {
	return saveCollection(ctx, p.db, tableContacts, contacts, func(c models.Contact) string { return c.ID })
}

func (p *Persister) LoadMeetings(ctx context.Context) ([]models.Meeting, error) {
	return loadCollection[models.Meeting](ctx, p.db, tableMeetings)
}

func (p *Persister) SaveMeetings(ctx context.Context, meetings []models.Meeting) error {
	return saveCollection(ctx, p.db, tableMeetings, meetings, func(m models.Meeting) string { return m.ID })
}

func (p *Persister) LoadTasks(ctx context.Context) ([]models.Task, error) {
	return loadCollection[models.Task](ctx, p.db, tableTasks)
}

func (p *Persister) SaveTasks(ctx context.Context, tasks []models.Task) error {
	return saveCollection(ctx, p.db, tableTasks, tasks, func(t models.Task) string { return t.ID })
}

func (p *Persister) LoadDismissals(ctx context.Context) (notify.KeySet, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT key FROM dismissals`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	set := notify.NewKeySet()
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		set.Add(key)
	}
	return set, rows.Err()
}

// SaveDismissals replaces the stored dismissal set. Keys that were already
// dismissed keep their original timestamp.
func (p *Persister) SaveDismissals(ctx context.Context, dismissed notify.KeySet) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	existing := make(map[string]bool)
	rows, err := tx.QueryContext(ctx, `SELECT key FROM dismissals`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			_ = rows.Close()
			return err
		}
		existing[key] = true
	}
	_ = rows.Close()

	now := time.Now().UTC()
	for _, key := range dismissed.Keys() {
		if existing[key] {
			delete(existing, key)
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO dismissals (key, dismissed_at) VALUES (?, ?)`, key, now); err != nil {
			return err
		}
	}
	for key := range existing {
		if _, err := tx.ExecContext(ctx, `DELETE FROM dismissals WHERE key = ?`, key); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func loadCollection[T any](ctx context.Context, db *sql.DB, table string) ([]T, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT id, data FROM %s ORDER BY position`, table))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []T
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		var item T
		if err := json.Unmarshal(data, &item); err != nil {
			return nil, fmt.Errorf("failed to decode %s row %s: %w", table, id, err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// saveCollection replaces the table's contents with items inside a single
// transaction, so a failed save leaves the previous collection intact.
func saveCollection[T any](ctx context.Context, db *sql.DB, table string, items []T, id func(T) string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, table)); err != nil {
		return err
	}

	insert := fmt.Sprintf(`INSERT INTO %s (id, position, data, updated_at) VALUES (?, ?, ?, ?)`, table)
	now := time.Now().UTC()
	for i, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insert, id(item), i, data, now); err != nil {
			return fmt.Errorf("failed to save %s row %s: %w", table, id(item), err)
		}
	}
	return tx.Commit()
}
