// ABOUTME: Turns applied store actions into activity timeline entries
// ABOUTME: Compares state before and after an action to pick the verb and field changes
package store

import (
	"fmt"
	"slices"
	"time"

	"github.com/abbrubin150-ui/crmhtml/activity"
	"github.com/abbrubin150-ui/crmhtml/belonging"
	"github.com/abbrubin150-ui/crmhtml/models"
	"github.com/abbrubin150-ui/crmhtml/notify"
)

// describe returns the timeline entries for an action that has already
// been applied. Read-state actions produce none.
func describe(a Action, prev, next State, at time.Time) []activity.Entry {
	actor := next.CurrentUserID
	entry := func(verb activity.Verb, kind, id, summary string) activity.Entry {
		return activity.NewEntry(actor, verb, kind, id, summary, at)
	}

	switch a := a.(type) {
	case SetCurrentUser:
		if a.UserID == "" {
			return nil
		}
		name := a.UserID
		if u := findUser(next.Users, a.UserID); u != nil {
			name = u.Name
		}
		return []activity.Entry{entry(activity.VerbSignedIn, "user", a.UserID, "Signed in: "+name)}

	case SwitchViewMode:
		return []activity.Entry{entry(activity.VerbSwitchedView, "user", actor,
			"Switched view to "+belonging.ViewModeLabel(a.Mode))}

	case UpsertUser, SetUserRole, SetFilterPreset:
		return changed(entry, "user", prev.Users, next.Users, userID, func(u models.User) string { return u.Name })

	case UpsertContact:
		return changed(entry, "contact", prev.Contacts, next.Contacts, contactID, func(c models.Contact) string { return c.Name })
	case UpsertMeeting:
		return changed(entry, "meeting", prev.Meetings, next.Meetings, meetingID, func(m models.Meeting) string { return m.ContactName })
	case UpsertTask:
		return changed(entry, "task", prev.Tasks, next.Tasks, taskID, func(t models.Task) string { return t.Task })

	case DeleteContact:
		return []activity.Entry{entry(activity.VerbDeleted, "contact", a.ID, "Deleted contact: "+nameOf(prev.Contacts, a.ID, contactID, func(c models.Contact) string { return c.Name }))}
	case DeleteMeeting:
		return []activity.Entry{entry(activity.VerbDeleted, "meeting", a.ID, "Deleted meeting: "+nameOf(prev.Meetings, a.ID, meetingID, func(m models.Meeting) string { return m.ContactName }))}
	case DeleteTask:
		return []activity.Entry{entry(activity.VerbDeleted, "task", a.ID, "Deleted task: "+nameOf(prev.Tasks, a.ID, taskID, func(t models.Task) string { return t.Task }))}

	case MarkDone:
		return []activity.Entry{entry(activity.VerbCompleted, string(a.Kind), a.ID, fmt.Sprintf("Completed %s %s", a.Kind, a.ID))}

	case Reschedule:
		e := entry(activity.VerbRescheduled, string(a.Kind), a.ID, fmt.Sprintf("Rescheduled %s %s to %s", a.Kind, a.ID, a.Date))
		switch a.Kind {
		case notify.KindMeeting:
			e.Changes = diffByID(prev.Meetings, next.Meetings, a.ID, meetingID)
		case notify.KindTask:
			e.Changes = diffByID(prev.Tasks, next.Tasks, a.ID, taskID)
		}
		return []activity.Entry{e}

	case Dismiss:
		key := notify.Key(a.Kind, a.ID)
		return []activity.Entry{entry(activity.VerbDismissed, "notification", key, "Dismissed notification "+key)}
	case Undismiss:
		key := notify.Key(a.Kind, a.ID)
		return []activity.Entry{entry(activity.VerbRestored, "notification", key, "Restored notification "+key)}
	case ClearAll:
		n := len(next.Dismissed.Keys()) - len(prev.Dismissed.Keys())
		return []activity.Entry{entry(activity.VerbDismissed, "notification", "", fmt.Sprintf("Cleared %d notifications", n))}
	}
	return nil
}

func userID(u models.User) string       { return u.ID }
func contactID(c models.Contact) string { return c.ID }
func meetingID(m models.Meeting) string { return m.ID }
func taskID(t models.Task) string       { return t.ID }

// changed reports the records that were added or modified between prev and next.
func changed[T any](entry func(activity.Verb, string, string, string) activity.Entry, kind string,
	prev, next []T, id func(T) string, name func(T) string) []activity.Entry {
	var out []activity.Entry
	for _, item := range next {
		key := id(item)
		i := slices.IndexFunc(prev, func(x T) bool { return id(x) == key })
		if i < 0 {
			out = append(out, entry(activity.VerbCreated, kind, key, fmt.Sprintf("Added %s: %s", kind, name(item))))
			continue
		}
		if changes := activity.Diff(prev[i], item); changes != nil {
			e := entry(activity.VerbUpdated, kind, key, fmt.Sprintf("Updated %s: %s", kind, name(item)))
			e.Changes = changes
			out = append(out, e)
		}
	}
	return out
}

func diffByID[T any](prev, next []T, key string, id func(T) string) map[string]activity.Change {
	i := slices.IndexFunc(prev, func(x T) bool { return id(x) == key })
	j := slices.IndexFunc(next, func(x T) bool { return id(x) == key })
	if i < 0 || j < 0 {
		return nil
	}
	return activity.Diff(prev[i], next[j])
}

func nameOf[T any](items []T, key string, id func(T) string, name func(T) string) string {
	if i := slices.IndexFunc(items, func(x T) bool { return id(x) == key }); i >= 0 && name(items[i]) != "" {
		return name(items[i])
	}
	return key
}
