// ABOUTME: Badger-backed persistence for the CRM store using the browser storage key layout
// ABOUTME: Each collection is one JSON document under its crm_enterprise_* key
package kv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abbrubin150-ui/crmhtml/models"
	"github.com/abbrubin150-ui/crmhtml/notify"
)

const (
	KeyPrefix      = "crm_enterprise_"
	KeyUsers       = KeyPrefix + "users"
	KeyCurrentUser = KeyPrefix + "current_user"
	KeyContacts    = KeyPrefix + "contacts"
	KeyMeetings    = KeyPrefix + "meetings"
	KeyTasks       = KeyPrefix + "tasks"
	KeyDismissals  = KeyPrefix + "dismissed_notifications"
)

// Persister satisfies store.Persister on top of a KV.
type Persister struct {
	kv *KV
}

func NewPersister(kv *KV) *Persister {
	return &Persister{kv: kv}
}

func (p *Persister) LoadUsers(_ context.Context) ([]models.User, error) {
	var users []models.User
	return users, p.load(KeyUsers, &users)
}

func (p *Persister) SaveUsers(_ context.Context, users []models.User) error {
	return p.save(KeyUsers, users)
}

func (p *Persister) LoadCurrentUserID(_ context.Context) (string, error) {
	var id string
	return id, p.load(KeyCurrentUser, &id)
}

func (p *Persister) SaveCurrentUserID(_ context.Context, id string) error {
	if id == "" {
		return p.kv.Delete(KeyCurrentUser)
	}
	return p.save(KeyCurrentUser, id)
}

func (p *Persister) LoadContacts(_ context.Context) ([]models.Contact, error) {
	var contacts []models.Contact
	return contacts, p.load(KeyContacts, &contacts)
}

func (p *Persister) SaveContacts(_ context.Context, contacts []models.Contact) error {
	return p.save(KeyContacts, contacts)
}

func (p *Persister) LoadMeetings(_ context.Context) ([]models.Meeting, error) {
	var meetings []models.Meeting
	return meetings, p.load(KeyMeetings, &meetings)
}

func (p *Persister) SaveMeetings(_ context.Context, meetings []models.Meeting) error {
	return p.save(KeyMeetings, meetings)
}

func (p *Persister) LoadTasks(_ context.Context) ([]models.Task, error) {
	var tasks []models.Task
	return tasks, p.load(KeyTasks, &tasks)
}

func (p *Persister) SaveTasks(_ context.Context, tasks []models.Task) error {
	return p.save(KeyTasks, tasks)
}

func (p *Persister) LoadDismissals(_ context.Context) (notify.KeySet, error) {
	set := notify.NewKeySet()
	if err := p.load(KeyDismissals, &set); err != nil {
		return nil, err
	}
	return set, nil
}

func (p *Persister) SaveDismissals(_ context.Context, dismissed notify.KeySet) error {
	return p.save(KeyDismissals, dismissed)
}

// load decodes key into v. A missing key leaves v untouched.
func (p *Persister) load(key string, v any) error {
	data, err := p.kv.Get(key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if data == nil {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (p *Persister) save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return p.kv.Set(key, data)
}
