// ABOUTME: Persistence boundary for the CRM store
// ABOUTME: Defines the Persister interface and an in-memory implementation
package store

import (
	"context"
	"sync"

	"github.com/abbrubin150-ui/crmhtml/models"
	"github.com/abbrubin150-ui/crmhtml/notify"
)

// Persister loads and saves whole collections, one key per collection.
// Implementations live in the db (SQLite) and kv (Badger) packages.
type Persister interface {
	LoadUsers(ctx context.Context) ([]models.User, error)
	SaveUsers(ctx context.Context, users []models.User) error

	LoadCurrentUserID(ctx context.Context) (string, error)
	SaveCurrentUserID(ctx context.Context, id string) error

	LoadContacts(ctx context.Context) ([]models.Contact, error)
	SaveContacts(ctx context.Context, contacts []models.Contact) error

	LoadMeetings(ctx context.Context) ([]models.Meeting, error)
	SaveMeetings(ctx context.Context, meetings []models.Meeting) error

	LoadTasks(ctx context.Context) ([]models.Task, error)
	SaveTasks(ctx context.Context, tasks []models.Task) error

	LoadDismissals(ctx context.Context) (notify.KeySet, error)
	SaveDismissals(ctx context.Context, dismissed notify.KeySet) error
}

// MemoryPersister keeps collections in process memory. It is used by tests
// and as a scratch backend.
type MemoryPersister struct {
	mu          sync.Mutex
	users       []models.User
	currentUser string
	contacts    []models.Contact
	meetings    []models.Meeting
	tasks       []models.Task
	dismissed   notify.KeySet
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{dismissed: notify.NewKeySet()}
}

func (m *MemoryPersister) LoadUsers(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.CloneAll(m.users), nil
}

func (m *MemoryPersister) SaveUsers(_ context.Context, users []models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = models.CloneAll(users)
	return nil
}

func (m *MemoryPersister) LoadCurrentUserID(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentUser, nil
}

func (m *MemoryPersister) SaveCurrentUserID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentUser = id
	return nil
}

func (m *MemoryPersister) LoadContacts(_ context.Context) ([]models.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.CloneAll(m.contacts), nil
}

func (m *MemoryPersister) SaveContacts(_ context.Context, contacts []models.Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts = models.CloneAll(contacts)
	return nil
}

func (m *MemoryPersister) LoadMeetings(_ context.Context) ([]models.Meeting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.CloneAll(m.meetings), nil
}

func (m *MemoryPersister) SaveMeetings(_ context.Context, meetings []models.Meeting) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meetings = models.CloneAll(meetings)
	return nil
}

func (m *MemoryPersister) LoadTasks(_ context.Context) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return models.CloneAll(m.tasks), nil
}

func (m *MemoryPersister) SaveTasks(_ context.Context, tasks []models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = models.CloneAll(tasks)
	return nil
}

func (m *MemoryPersister) LoadDismissals(_ context.Context) (notify.KeySet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dismissed.Clone(), nil
}

func (m *MemoryPersister) SaveDismissals(_ context.Context, dismissed notify.KeySet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dismissed = dismissed.Clone()
	return nil
}
