// ABOUTME: Actions accepted by the store's single Dispatch entry point
// ABOUTME: Each action mutates a draft of the state and marks the collections it touched
package store

import (
	"errors"
	"fmt"
	"slices"

	"github.com/abbrubin150-ui/crmhtml/belonging"
	"github.com/abbrubin150-ui/crmhtml/models"
	"github.com/abbrubin150-ui/crmhtml/notify"
)

var (
	ErrNoCurrentUser     = errors.New("no current user")
	ErrUserNotFound      = errors.New("user not found")
	ErrRecordNotFound    = errors.New("record not found")
	ErrUnsupportedAction = errors.New("action not supported for this notification kind")
)

// Action is a state transition. Actions are applied only through
// Store.Dispatch.
type Action interface {
	apply(d *draft) error
}

// SetCurrentUser signs a user in. A Session sign-in lasts only as long as
// the store and leaves the stored current user untouched.
type SetCurrentUser struct {
	UserID  string
	Session bool
}

func (a SetCurrentUser) apply(d *draft) error {
	i := d.userIndex(a.UserID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, a.UserID)
	}
	now := d.now
	d.Users[i].LastLogin = &now
	d.CurrentUserID = a.UserID
	d.Read = notify.NewKeySet()
	d.touch(dirtyUsers)
	if !a.Session {
		d.touch(dirtyCurrentUser)
	}
	return nil
}

// SwitchViewMode changes the current user's view mode. Modes the user's
// role cannot reach are rejected with belonging.ErrPermissionDenied.
type SwitchViewMode struct{ Mode models.ViewMode }

func (a SwitchViewMode) apply(d *draft) error {
	i := d.userIndex(d.CurrentUserID)
	if i < 0 {
		return ErrNoCurrentUser
	}
	user := &d.Users[i]
	if !belonging.CanSwitchView(user, a.Mode) {
		return fmt.Errorf("%w: %s cannot use %s", belonging.ErrPermissionDenied, user.Role, a.Mode)
	}
	user.ViewMode = a.Mode
	d.touch(dirtyUsers)
	return nil
}

// UpsertUser adds or replaces a user. New or legacy-shaped users receive
// role defaults.
type UpsertUser struct{ User models.User }

func (a UpsertUser) apply(d *draft) error {
	u, _ := belonging.MigrateUser(a.User.Clone())
	if u.Created.IsZero() {
		u.Created = d.now
	}
	if i := d.userIndex(u.ID); i >= 0 {
		d.Users[i] = u
	} else {
		d.Users = append(d.Users, u)
	}
	d.touch(dirtyUsers)
	return nil
}

// SetUserRole changes a user's role, resetting permissions to the role
// defaults and moving the view mode back into reach when needed.
type SetUserRole struct {
	UserID string
	Role   models.Role
}

func (a SetUserRole) apply(d *draft) error {
	i := d.userIndex(a.UserID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, a.UserID)
	}
	user := &d.Users[i]
	user.Role = a.Role
	user.Permissions = belonging.DefaultPermissions(a.Role)
	if !belonging.CanSwitchView(user, user.ViewMode) {
		user.ViewMode = belonging.DefaultViewMode(a.Role)
	}
	d.touch(dirtyUsers)
	return nil
}

type SetFilterPreset struct {
	UserID string
	Preset models.FilterPreset
}

func (a SetFilterPreset) apply(d *draft) error {
	i := d.userIndex(a.UserID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUserNotFound, a.UserID)
	}
	p := a.Preset.Clone()
	for _, dim := range []*[]string{&p.Owner, &p.ProjectTypes, &p.Locations, &p.Teams} {
		if *dim == nil {
			*dim = []string{}
		}
	}
	d.Users[i].FilterPreset = p
	d.touch(dirtyUsers)
	return nil
}

type UpsertContact struct{ Contact models.Contact }

func (a UpsertContact) apply(d *draft) error {
	c := a.Contact.Clone()
	if c.ID == "" {
		c.ID = models.NewID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = d.now
	}
	if c.Status == "" {
		c.Status = models.ContactStatusNew
	}
	d.Contacts = upsert(d.Contacts, c, func(x models.Contact) string { return x.ID })
	d.touch(dirtyContacts)
	return nil
}

type DeleteContact struct{ ID string }

func (a DeleteContact) apply(d *draft) error {
	out, ok := remove(d.Contacts, a.ID, func(x models.Contact) string { return x.ID })
	if !ok {
		return fmt.Errorf("%w: contact %s", ErrRecordNotFound, a.ID)
	}
	d.Contacts = out
	d.touch(dirtyContacts)
	return nil
}

type UpsertMeeting struct{ Meeting models.Meeting }

func (a UpsertMeeting) apply(d *draft) error {
	m := a.Meeting.Clone()
	if m.ID == "" {
		m.ID = models.NewID()
	}
	if m.Status == "" {
		m.Status = models.MeetingStatusScheduled
	}
	d.Meetings = upsert(d.Meetings, m, func(x models.Meeting) string { return x.ID })
	d.touch(dirtyMeetings)
	return nil
}

type DeleteMeeting struct{ ID string }

func (a DeleteMeeting) apply(d *draft) error {
	out, ok := remove(d.Meetings, a.ID, func(x models.Meeting) string { return x.ID })
	if !ok {
		return fmt.Errorf("%w: meeting %s", ErrRecordNotFound, a.ID)
	}
	d.Meetings = out
	d.touch(dirtyMeetings)
	return nil
}

type UpsertTask struct{ Task models.Task }

func (a UpsertTask) apply(d *draft) error {
	t := a.Task.Clone()
	if t.ID == "" {
		t.ID = models.NewID()
	}
	if t.Status == "" {
		t.Status = models.TaskStatusOpen
	}
	d.Tasks = upsert(d.Tasks, t, func(x models.Task) string { return x.ID })
	d.touch(dirtyTasks)
	return nil
}

type DeleteTask struct{ ID string }

func (a DeleteTask) apply(d *draft) error {
	out, ok := remove(d.Tasks, a.ID, func(x models.Task) string { return x.ID })
	if !ok {
		return fmt.Errorf("%w: task %s", ErrRecordNotFound, a.ID)
	}
	d.Tasks = out
	d.touch(dirtyTasks)
	return nil
}

// MarkDone completes the record behind a notification. The record drops
// out of the next evaluation; no dismissal entry is written.
type MarkDone struct {
	Kind notify.Kind
	ID   string
}

func (a MarkDone) apply(d *draft) error {
	switch a.Kind {
	case notify.KindMeeting:
		i := slices.IndexFunc(d.Meetings, func(m models.Meeting) bool { return m.ID == a.ID })
		if i < 0 {
			return fmt.Errorf("%w: meeting %s", ErrRecordNotFound, a.ID)
		}
		notify.CompleteMeeting(&d.Meetings[i])
		d.touch(dirtyMeetings)
	case notify.KindTask:
		i := slices.IndexFunc(d.Tasks, func(t models.Task) bool { return t.ID == a.ID })
		if i < 0 {
			return fmt.Errorf("%w: task %s", ErrRecordNotFound, a.ID)
		}
		notify.CompleteTask(&d.Tasks[i])
		d.touch(dirtyTasks)
	default:
		return fmt.Errorf("%w: mark done on %s", ErrUnsupportedAction, a.Kind)
	}
	return nil
}

// Reschedule moves the record behind a notification to a new date, and for
// meetings optionally a new time.
type Reschedule struct {
	Kind notify.Kind
	ID   string
	Date string
	Time string
}

func (a Reschedule) apply(d *draft) error {
	switch a.Kind {
	case notify.KindMeeting:
		i := slices.IndexFunc(d.Meetings, func(m models.Meeting) bool { return m.ID == a.ID })
		if i < 0 {
			return fmt.Errorf("%w: meeting %s", ErrRecordNotFound, a.ID)
		}
		if err := notify.RescheduleMeeting(&d.Meetings[i], a.Date, a.Time); err != nil {
			return err
		}
		d.touch(dirtyMeetings)
	case notify.KindTask:
		i := slices.IndexFunc(d.Tasks, func(t models.Task) bool { return t.ID == a.ID })
		if i < 0 {
			return fmt.Errorf("%w: task %s", ErrRecordNotFound, a.ID)
		}
		if err := notify.RescheduleTask(&d.Tasks[i], a.Date); err != nil {
			return err
		}
		d.touch(dirtyTasks)
	default:
		return fmt.Errorf("%w: reschedule on %s", ErrUnsupportedAction, a.Kind)
	}
	return nil
}

// Dismiss hides a notification until it is undismissed. The source record
// is not modified.
type Dismiss struct {
	Kind notify.Kind
	ID   string
}

func (a Dismiss) apply(d *draft) error {
	if err := checkKind(a.Kind); err != nil {
		return err
	}
	d.Dismissed.Add(notify.Key(a.Kind, a.ID))
	d.touch(dirtyDismissals)
	return nil
}

type Undismiss struct {
	Kind notify.Kind
	ID   string
}

func (a Undismiss) apply(d *draft) error {
	if err := checkKind(a.Kind); err != nil {
		return err
	}
	d.Dismissed.Remove(notify.Key(a.Kind, a.ID))
	d.touch(dirtyDismissals)
	return nil
}

// MarkRead clears a notification from the unread badge without hiding it.
type MarkRead struct{ Key string }

func (a MarkRead) apply(d *draft) error {
	d.Read.Add(a.Key)
	return nil
}

type MarkAllRead struct{}

func (MarkAllRead) apply(d *draft) error {
	for _, k := range d.feed.Keys() {
		d.Read.Add(k)
	}
	return nil
}

// ClearAll dismisses every notification currently in the feed.
type ClearAll struct{}

func (ClearAll) apply(d *draft) error {
	for _, k := range d.feed.Keys() {
		d.Dismissed.Add(k)
	}
	d.touch(dirtyDismissals)
	return nil
}

func checkKind(kind notify.Kind) error {
	switch kind {
	case notify.KindMeeting, notify.KindTask, notify.KindContact:
		return nil
	}
	return fmt.Errorf("%w: unknown kind %q", ErrUnsupportedAction, kind)
}

func upsert[T any](items []T, item T, id func(T) string) []T {
	key := id(item)
	if i := slices.IndexFunc(items, func(x T) bool { return id(x) == key }); i >= 0 {
		items[i] = item
		return items
	}
	return append(items, item)
}

func remove[T any](items []T, key string, id func(T) string) ([]T, bool) {
	i := slices.IndexFunc(items, func(x T) bool { return id(x) == key })
	if i < 0 {
		return items, false
	}
	return slices.Delete(items, i, i+1), true
}
