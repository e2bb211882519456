// ABOUTME: Single-writer CRM store with reactive re-derivation of every view
// ABOUTME: All mutations go through Dispatch, which persists and recomputes scoped views and notifications
package store

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/abbrubin150-ui/crmhtml/activity"
	"github.com/abbrubin150-ui/crmhtml/belonging"
	"github.com/abbrubin150-ui/crmhtml/models"
	"github.com/abbrubin150-ui/crmhtml/notify"
	"github.com/charmbracelet/log"
)

// State is the raw, unfiltered data owned by the store.
type State struct {
	Users         []models.User
	CurrentUserID string
	Contacts      []models.Contact
	Meetings      []models.Meeting
	Tasks         []models.Task
	Dismissed     notify.KeySet
	// Read is session state and is never persisted.
	Read notify.KeySet
}

func (s State) clone() State {
	return State{
		Users:         models.CloneAll(s.Users),
		CurrentUserID: s.CurrentUserID,
		Contacts:      models.CloneAll(s.Contacts),
		Meetings:      models.CloneAll(s.Meetings),
		Tasks:         models.CloneAll(s.Tasks),
		Dismissed:     s.Dismissed.Clone(),
		Read:          s.Read.Clone(),
	}
}

type dirty uint8

const (
	dirtyUsers dirty = 1 << iota
	dirtyCurrentUser
	dirtyContacts
	dirtyMeetings
	dirtyTasks
	dirtyDismissals
)

type draft struct {
	State
	now   time.Time
	feed  notify.Feed
	dirty dirty
}

func (d *draft) touch(flags dirty) { d.dirty |= flags }

func (d *draft) userIndex(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(d.Users, func(u models.User) bool { return u.ID == id })
}

type Options struct {
	Logger *log.Logger
	// Clock supplies the evaluation instant. Defaults to time.Now.
	Clock func() time.Time
	// Notify overrides the notification windows. Nil means
	// notify.DefaultOptions; zero windows are honoured as given.
	Notify *notify.Options
	// ActivityLimit bounds the in-memory activity timeline.
	ActivityLimit int
}

// Store owns the CRM state. It is safe for concurrent use, but every
// mutation is serialised through Dispatch.
type Store struct {
	mu        sync.RWMutex
	persister Persister
	logger    *log.Logger
	clock     func() time.Time
	notifyOpt notify.Options
	activity  *activity.Log

	state State
	view  View
}

// Open loads every collection, upgrades legacy users, seeds a default admin
// when no users exist, and derives the initial view.
func Open(ctx context.Context, p Persister, opts Options) (*Store, error) {
	s := &Store{
		persister: p,
		logger:    opts.Logger,
		clock:     opts.Clock,
		notifyOpt: notify.DefaultOptions(),
		activity:  activity.NewLog(opts.ActivityLimit),
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	if opts.Notify != nil {
		s.notifyOpt = *opts.Notify
	}

	if err := s.load(ctx); err != nil {
		return nil, err
	}
	s.view = derive(s.state, s.clock(), s.notifyOpt)
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	var st State
	var err error

	if st.Users, err = s.persister.LoadUsers(ctx); err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	if st.CurrentUserID, err = s.persister.LoadCurrentUserID(ctx); err != nil {
		return fmt.Errorf("failed to load current user: %w", err)
	}
	if st.Contacts, err = s.persister.LoadContacts(ctx); err != nil {
		return fmt.Errorf("failed to load contacts: %w", err)
	}
	if st.Meetings, err = s.persister.LoadMeetings(ctx); err != nil {
		return fmt.Errorf("failed to load meetings: %w", err)
	}
	if st.Tasks, err = s.persister.LoadTasks(ctx); err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	if st.Dismissed, err = s.persister.LoadDismissals(ctx); err != nil {
		return fmt.Errorf("failed to load dismissals: %w", err)
	}
	if st.Dismissed == nil {
		st.Dismissed = notify.NewKeySet()
	}
	st.Read = notify.NewKeySet()

	if len(st.Users) == 0 {
		st.Users = []models.User{{
			ID:      models.NewID(),
			Name:    "System Admin",
			Email:   "admin@company.com",
			Role:    models.RoleAdmin,
			Active:  true,
			Created: s.clock(),
		}}
		s.logger.Info("created default admin user", "id", st.Users[0].ID)
	}

	migrated, changed := belonging.MigrateUsers(st.Users)
	if changed {
		if err := s.persister.SaveUsers(ctx, migrated); err != nil {
			return fmt.Errorf("failed to save migrated users: %w", err)
		}
		s.logger.Info("users migrated to belonging schema", "count", len(migrated))
	}
	st.Users = migrated

	if st.CurrentUserID != "" && !slices.ContainsFunc(st.Users, func(u models.User) bool { return u.ID == st.CurrentUserID }) {
		s.logger.Warn("stored current user no longer exists", "id", st.CurrentUserID)
		st.CurrentUserID = ""
	}

	s.state = st
	return nil
}

// Dispatch applies a single action. On success the touched collections are
// persisted and every derived view is recomputed before Dispatch returns.
// On failure neither state nor view changes.
func (s *Store) Dispatch(ctx context.Context, a Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := &draft{State: s.state.clone(), now: s.clock(), feed: s.view.Notifications}
	if err := a.apply(d); err != nil {
		s.logger.Debug("action rejected", "action", fmt.Sprintf("%T", a), "err", err)
		return err
	}
	if err := s.persist(ctx, d); err != nil {
		s.logger.Error("failed to persist state", "err", err)
		return err
	}

	s.activity.Record(describe(a, s.state, d.State, d.now)...)
	s.state = d.State
	s.view = derive(s.state, d.now, s.notifyOpt)
	if sw, ok := a.(SwitchViewMode); ok {
		s.logger.Info("view mode switched", "user", s.state.CurrentUserID, "mode", sw.Mode)
	}
	return nil
}

func (s *Store) persist(ctx context.Context, d *draft) error {
	if d.dirty&dirtyUsers != 0 {
		if err := s.persister.SaveUsers(ctx, d.Users); err != nil {
			return fmt.Errorf("failed to save users: %w", err)
		}
	}
	if d.dirty&dirtyCurrentUser != 0 {
		if err := s.persister.SaveCurrentUserID(ctx, d.CurrentUserID); err != nil {
			return fmt.Errorf("failed to save current user: %w", err)
		}
	}
	if d.dirty&dirtyContacts != 0 {
		if err := s.persister.SaveContacts(ctx, d.Contacts); err != nil {
			return fmt.Errorf("failed to save contacts: %w", err)
		}
	}
	if d.dirty&dirtyMeetings != 0 {
		if err := s.persister.SaveMeetings(ctx, d.Meetings); err != nil {
			return fmt.Errorf("failed to save meetings: %w", err)
		}
	}
	if d.dirty&dirtyTasks != 0 {
		if err := s.persister.SaveTasks(ctx, d.Tasks); err != nil {
			return fmt.Errorf("failed to save tasks: %w", err)
		}
	}
	if d.dirty&dirtyDismissals != 0 {
		if err := s.persister.SaveDismissals(ctx, d.Dismissed); err != nil {
			return fmt.Errorf("failed to save dismissals: %w", err)
		}
	}
	return nil
}

// Refresh re-derives the view against the current clock without changing
// state, so day boundaries are picked up by long-running sessions.
func (s *Store) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = derive(s.state, s.clock(), s.notifyOpt)
}

// View returns the current derived snapshot.
func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view.clone()
}

// Users returns every stored user, unfiltered.
func (s *Store) Users() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneAll(s.state.Users)
}

// CurrentUser returns a deep copy of the signed-in user, or nil.
func (s *Store) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findUser(s.state.Users, s.state.CurrentUserID)
}

// HasPermission consults the permission gate for the current user.
func (s *Store) HasPermission(resource models.Resource, action models.Action) bool {
	return belonging.HasPermission(s.CurrentUser(), resource, action)
}

// Activity returns up to n recent timeline entries, newest first. The
// timeline lives only as long as the store.
func (s *Store) Activity(n int) []activity.Entry {
	return s.activity.Recent(n)
}

// Dismissed returns the persisted dismissal keys.
func (s *Store) Dismissed() notify.KeySet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Dismissed.Clone()
}

func findUser(users []models.User, id string) *models.User {
	if id == "" {
		return nil
	}
	for _, u := range users {
		if u.ID == id {
			c := u.Clone()
			return &c
		}
	}
	return nil
}
