// ABOUTME: Derived, scope-filtered snapshot of the store for every screen
// ABOUTME: Recomputed in full after each mutation: records, dashboard counts and the notification feed
package store

import (
	"slices"
	"time"

	"github.com/abbrubin150-ui/crmhtml/belonging"
	"github.com/abbrubin150-ui/crmhtml/models"
	"github.com/abbrubin150-ui/crmhtml/notify"
)

// Dashboard holds the headline counts over the scoped working set.
type Dashboard struct {
	Contacts          int `json:"contacts"`
	ImportantContacts int `json:"important_contacts"`
	OpenTasks         int `json:"open_tasks"`
	OverdueTasks      int `json:"overdue_tasks"`
	MeetingsToday     int `json:"meetings_today"`
	MeetingsNext7Days int `json:"meetings_next_7_days"`
	Alerts            int `json:"alerts"`
}

// View is everything a screen renders. Every field is derived from the same
// state and user, so screens can never disagree about scope.
type View struct {
	User           *models.User      `json:"user,omitempty"`
	ViewMode       models.ViewMode   `json:"view_mode,omitempty"`
	AvailableModes []models.ViewMode `json:"available_modes"`
	Contacts       []models.Contact  `json:"contacts"`
	Meetings       []models.Meeting  `json:"meetings"`
	Tasks          []models.Task     `json:"tasks"`
	Dashboard      Dashboard         `json:"dashboard"`
	Notifications  notify.Feed       `json:"notifications"`
}

func (v View) clone() View {
	out := v
	if v.User != nil {
		u := v.User.Clone()
		out.User = &u
	}
	out.AvailableModes = slices.Clone(v.AvailableModes)
	out.Contacts = models.CloneAll(v.Contacts)
	out.Meetings = models.CloneAll(v.Meetings)
	out.Tasks = models.CloneAll(v.Tasks)
	out.Notifications = v.Notifications.Clone()
	return out
}

func derive(st State, now time.Time, opts notify.Options) View {
	user := findUser(st.Users, st.CurrentUserID)

	v := View{
		User:           user,
		AvailableModes: belonging.AvailableViewModes(user),
		Contacts:       belonging.FilterByScope(st.Contacts, user),
		Meetings:       belonging.FilterByScope(st.Meetings, user),
		Tasks:          belonging.FilterByScope(st.Tasks, user),
	}
	if user != nil {
		v.ViewMode = user.ViewMode
	}

	v.Notifications = notify.Evaluate(notify.Input{
		Meetings:  v.Meetings,
		Tasks:     v.Tasks,
		Contacts:  v.Contacts,
		Dismissed: st.Dismissed,
		Read:      st.Read,
		Now:       now,
	}, opts)
	v.Dashboard = summarize(v, now)
	return v
}

func summarize(v View, now time.Time) Dashboard {
	today, _ := notify.ParseDate(now.Format(models.DateLayout))
	d := Dashboard{Contacts: len(v.Contacts), Alerts: v.Notifications.BadgeCount}

	for _, c := range v.Contacts {
		if c.Important && c.Status != models.ContactStatusClosed {
			d.ImportantContacts++
		}
	}

	for _, t := range v.Tasks {
		switch t.Status {
		case models.TaskStatusCompleted, models.TaskStatusDone, models.TaskStatusCancelled:
			continue
		}
		d.OpenTasks++
		if due, err := notify.ParseDate(t.Due); err == nil && due.Before(today) {
			d.OverdueTasks++
		}
	}

	week := today.AddDate(0, 0, 7)
	for _, m := range v.Meetings {
		if m.Status == models.MeetingStatusCancelled {
			continue
		}
		date, err := notify.ParseDate(m.Date)
		if err != nil {
			continue
		}
		if date.Equal(today) {
			d.MeetingsToday++
		}
		if !date.Before(today) && !date.After(week) {
			d.MeetingsNext7Days++
		}
	}
	return d
}
