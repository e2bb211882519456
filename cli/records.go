// ABOUTME: Contact, meeting and task CLI commands
// ABOUTME: Adds records after a permission check and lists them through the current view scope
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/abbrubin150-ui/crmhtml/belonging"
	"github.com/abbrubin150-ui/crmhtml/models"
	"github.com/abbrubin150-ui/crmhtml/notify"
	"github.com/abbrubin150-ui/crmhtml/store"
)

// scopeFlags registers the ownership flags shared by every record kind.
func scopeFlags(fs *flag.FlagSet) func(defaultOwner string) models.Scope {
	owner := fs.String("owner", "", "Owner name (default: current user)")
	assigned := fs.String("assigned", "", "Comma separated assigned user ids")
	location := fs.String("location", "", "Location")
	region := fs.String("region", "", "Region")
	projectType := fs.String("project-type", "", "Project type")
	team := fs.String("team", "", "Team name")

	return func(defaultOwner string) models.Scope {
		sc := models.Scope{
			Owner:       *owner,
			Location:    *location,
			Region:      *region,
			ProjectType: *projectType,
			TeamName:    *team,
		}
		if ids := splitList(*assigned); len(ids) > 0 {
			sc.AssignedUsers = ids
		}
		if sc.Owner == "" {
			sc.Owner = defaultOwner
		}
		return sc
	}
}

func requirePermission(s *store.Store, resource models.Resource, action models.Action) error {
	if !s.HasPermission(resource, action) {
		return fmt.Errorf("%w: %s %s", belonging.ErrPermissionDenied, action, resource)
	}
	return nil
}

func currentName(s *store.Store) string {
	if u := s.CurrentUser(); u != nil {
		return u.Name
	}
	return ""
}

// ContactsAddCommand adds a contact.
func ContactsAddCommand(s *store.Store, args []string) error {
	fs := flag.NewFlagSet("contacts add", flag.ContinueOnError)
	name := fs.String("name", "", "Contact name (required)")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	status := fs.String("status", models.ContactStatusNew, "Status")
	important := fs.Bool("important", false, "Flag for follow-up reminders")
	notes := fs.String("notes", "", "Notes")
	scope := scopeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" {
		return fmt.Errorf("--name is required")
	}
	if err := requirePermission(s, models.ResourceContacts, models.ActionCreate); err != nil {
		return err
	}

	c := models.Contact{
		Scope:     scope(currentName(s)),
		ID:        models.NewID(),
		Name:      *name,
		Email:     *email,
		Phone:     *phone,
		Status:    *status,
		Important: *important,
		Notes:     *notes,
	}
	if err := s.Dispatch(context.Background(), store.UpsertContact{Contact: c}); err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Created contact: %s (ID: %s)\n", c.Name, c.ID)
	return nil
}

// ContactsListCommand lists contacts visible in the current view.
func ContactsListCommand(s *store.Store, _ []string) error {
	if err := requirePermission(s, models.ResourceContacts, models.ActionView); err != nil {
		return err
	}

	w := newTable()
	_, _ = fmt.Fprintln(w, "ID\tNAME\tSTATUS\tOWNER\tLOCATION\t!")
	_, _ = fmt.Fprintln(w, "--\t----\t------\t-----\t--------\t-")
	for _, c := range s.View().Contacts {
		flagged := ""
		if c.Important {
			flagged = "★"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Status, orDash(c.Owner), orDash(c.Location), flagged)
	}
	return w.Flush()
}

// MeetingsAddCommand schedules a meeting.
func MeetingsAddCommand(s *store.Store, args []string) error {
	fs := flag.NewFlagSet("meetings add", flag.ContinueOnError)
	contact := fs.String("contact", "", "Contact name (required)")
	date := fs.String("date", "", "Date YYYY-MM-DD (required)")
	at := fs.String("time", "", "Time HH:MM")
	kind := fs.String("type", "", "Meeting type")
	notes := fs.String("notes", "", "Notes")
	scope := scopeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *contact == "" || *date == "" {
		return fmt.Errorf("--contact and --date are required")
	}
	if _, err := notify.ParseDate(*date); err != nil {
		return err
	}
	if *at != "" {
		if err := notify.ParseTime(*at); err != nil {
			return err
		}
	}
	if err := requirePermission(s, models.ResourceMeetings, models.ActionCreate); err != nil {
		return err
	}

	m := models.Meeting{
		Scope:       scope(currentName(s)),
		ID:          models.NewID(),
		ContactName: *contact,
		Date:        *date,
		Time:        *at,
		Type:        *kind,
		Notes:       *notes,
	}
	if err := s.Dispatch(context.Background(), store.UpsertMeeting{Meeting: m}); err != nil {
		return fmt.Errorf("failed to create meeting: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Scheduled meeting with %s on %s (ID: %s)\n", m.ContactName, m.Date, m.ID)
	return nil
}

// MeetingsListCommand lists meetings visible in the current view.
func MeetingsListCommand(s *store.Store, _ []string) error {
	if err := requirePermission(s, models.ResourceMeetings, models.ActionView); err != nil {
		return err
	}

	w := newTable()
	_, _ = fmt.Fprintln(w, "ID\tCONTACT\tDATE\tTIME\tSTATUS\tOWNER")
	_, _ = fmt.Fprintln(w, "--\t-------\t----\t----\t------\t-----")
	for _, m := range s.View().Meetings {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", m.ID, m.ContactName, m.Date, orDash(m.Time), m.Status, orDash(m.Owner))
	}
	return w.Flush()
}

// TasksAddCommand adds a task.
func TasksAddCommand(s *store.Store, args []string) error {
	fs := flag.NewFlagSet("tasks add", flag.ContinueOnError)
	title := fs.String("task", "", "Task description (required)")
	due := fs.String("due", "", "Due date YYYY-MM-DD (required)")
	contact := fs.String("contact", "", "Related contact name")
	priority := fs.String("priority", "", "Priority")
	scope := scopeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *title == "" || *due == "" {
		return fmt.Errorf("--task and --due are required")
	}
	if _, err := notify.ParseDate(*due); err != nil {
		return err
	}
	if err := requirePermission(s, models.ResourceTasks, models.ActionCreate); err != nil {
		return err
	}

	t := models.Task{
		Scope:       scope(currentName(s)),
		ID:          models.NewID(),
		Task:        *title,
		ContactName: *contact,
		Due:         *due,
		Priority:    *priority,
	}
	if err := s.Dispatch(context.Background(), store.UpsertTask{Task: t}); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	_, _ = fmt.Fprintf(stdout, "✓ Created task: %s due %s (ID: %s)\n", t.Task, t.Due, t.ID)
	return nil
}

// TasksListCommand lists tasks visible in the current view.
func TasksListCommand(s *store.Store, _ []string) error {
	if err := requirePermission(s, models.ResourceTasks, models.ActionView); err != nil {
		return err
	}

	w := newTable()
	_, _ = fmt.Fprintln(w, "ID\tTASK\tDUE\tSTATUS\tOWNER")
	_, _ = fmt.Fprintln(w, "--\t----\t---\t------\t-----")
	for _, t := range s.View().Tasks {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Task, t.Due, t.Status, orDash(t.Owner))
	}
	return w.Flush()
}
