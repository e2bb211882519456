// ABOUTME: Tests for the single-writer store
// ABOUTME: Exercises view switching, reactive re-derivation, notification actions and persistence
package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abbrubin150-ui/crmhtml/activity"
	"github.com/abbrubin150-ui/crmhtml/belonging"
	"github.com/abbrubin150-ui/crmhtml/models"
	"github.com/abbrubin150-ui/crmhtml/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func day(offset int) string {
	return testNow.AddDate(0, 0, offset).Format(models.DateLayout)
}

func openStore(t *testing.T, p Persister) *Store {
	t.Helper()
	s, err := Open(context.Background(), p, Options{Clock: fixedClock})
	require.NoError(t, err)
	return s
}

// seed writes a small team and data set straight into the persister.
func seed(t *testing.T) *MemoryPersister {
	t.Helper()
	ctx := context.Background()
	p := NewMemoryPersister()

	require.NoError(t, p.SaveUsers(ctx, []models.User{
		{ID: "alice", Name: "Alice", Role: models.RoleSalesRep, Active: true},
		{ID: "lena", Name: "Lena", Role: models.RoleTeamLead, Active: true, TeamName: "Blue"},
		{ID: "root", Name: "Root", Role: models.RoleAdmin, Active: true},
	}))
	require.NoError(t, p.SaveMeetings(ctx, []models.Meeting{
		{ID: "m-alice", ContactName: "Acme", Date: day(0), Time: "10:30", Status: models.MeetingStatusScheduled, Scope: models.Scope{Owner: "Alice"}},
		{ID: "m-bob", ContactName: "Globex", Date: day(0), Status: models.MeetingStatusScheduled, Scope: models.Scope{Owner: "Bob", Location: "London"}},
		{ID: "m-root", ContactName: "Initech", Date: day(1), Status: models.MeetingStatusScheduled, Scope: models.Scope{Owner: "Root"}},
	}))
	require.NoError(t, p.SaveTasks(ctx, []models.Task{
		{ID: "t-late", Task: "Send proposal", Due: day(-1), Status: models.TaskStatusOpen, Scope: models.Scope{Owner: "Root"}},
	}))
	require.NoError(t, p.SaveContacts(ctx, []models.Contact{
		{ID: "c-acme", Name: "Acme", Status: models.ContactStatusNew, Scope: models.Scope{Owner: "Alice"}},
		{ID: "c-globex", Name: "Globex", Status: models.ContactStatusNew, Scope: models.Scope{Owner: "Bob"}},
	}))
	return p
}

func login(t *testing.T, s *Store, id string) {
	t.Helper()
	require.NoError(t, s.Dispatch(context.Background(), SetCurrentUser{UserID: id}))
}

func meetingIDs(v View) []string {
	var out []string
	for _, m := range v.Meetings {
		out = append(out, m.ID)
	}
	return out
}

func TestOpenSeedsDefaultAdmin(t *testing.T) {
	p := NewMemoryPersister()
	s := openStore(t, p)

	users := s.Users()
	require.Len(t, users, 1)
	assert.Equal(t, "System Admin", users[0].Name)
	assert.Equal(t, models.RoleAdmin, users[0].Role)
	assert.Equal(t, models.ViewAllData, users[0].ViewMode)

	stored, err := p.LoadUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, users, stored)
}

func TestOpenMigratesLegacyUsers(t *testing.T) {
	p := seed(t)
	s := openStore(t, p)

	for _, u := range s.Users() {
		assert.NotEmpty(t, u.ViewMode, u.Name)
		assert.NotNil(t, u.Permissions, u.Name)
	}

	stored, err := p.LoadUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ViewTeamData, stored[1].ViewMode)
}

func TestOpenDropsUnknownCurrentUser(t *testing.T) {
	p := seed(t)
	require.NoError(t, p.SaveCurrentUserID(context.Background(), "ghost"))

	s := openStore(t, p)
	assert.Nil(t, s.CurrentUser())
}

func TestNoCurrentUserSeesEverything(t *testing.T) {
	s := openStore(t, seed(t))
	v := s.View()

	assert.Nil(t, v.User)
	assert.Len(t, v.Meetings, 3)
	assert.Empty(t, v.AvailableModes)
	assert.True(t, s.HasPermission(models.ResourceSettings, models.ActionEdit))
}

func TestSalesRepScenario(t *testing.T) {
	s := openStore(t, seed(t))
	login(t, s, "alice")

	v := s.View()
	assert.Equal(t, []string{"m-alice"}, meetingIDs(v))
	require.Len(t, v.Notifications.Groups, 1)
	assert.Equal(t, "Today's meetings", v.Notifications.Groups[0].Label)
	require.Len(t, v.Notifications.Items, 1)
	assert.Equal(t, "meeting-m-alice", v.Notifications.Items[0].ID)
	assert.Equal(t, notify.SeverityHigh, v.Notifications.Items[0].Severity)
	assert.Equal(t, 1, v.Notifications.BadgeCount)
	assert.Equal(t, 1, v.Dashboard.MeetingsToday)
	assert.Equal(t, []models.ViewMode{models.ViewMyData}, v.AvailableModes)
}

func TestTeamLeadCannotSwitchToRegional(t *testing.T) {
	s := openStore(t, seed(t))
	login(t, s, "lena")
	before := s.View()

	err := s.Dispatch(context.Background(), SwitchViewMode{Mode: models.ViewRegionalData})
	require.Error(t, err)
	assert.True(t, errors.Is(err, belonging.ErrPermissionDenied))

	assert.Equal(t, models.ViewTeamData, s.CurrentUser().ViewMode)
	assert.Equal(t, before, s.View())
}

func TestSwitchViewModeWithoutUser(t *testing.T) {
	s := openStore(t, seed(t))
	err := s.Dispatch(context.Background(), SwitchViewMode{Mode: models.ViewMyData})
	assert.ErrorIs(t, err, ErrNoCurrentUser)
}

func TestAdminRegionalFallbackAndReactiveRefresh(t *testing.T) {
	p := seed(t)
	s := openStore(t, p)
	login(t, s, "root")
	ctx := context.Background()

	require.Len(t, s.View().Meetings, 3)

	require.NoError(t, s.Dispatch(ctx, SwitchViewMode{Mode: models.ViewMyData}))
	require.NoError(t, s.Dispatch(ctx, SwitchViewMode{Mode: models.ViewRegionalData}))

	v := s.View()
	assert.Equal(t, models.ViewRegionalData, v.ViewMode)
	assert.Equal(t, []string{"m-root"}, meetingIDs(v))
	assert.Empty(t, v.Contacts)
	require.Len(t, v.Tasks, 1)
	assert.Equal(t, 1, v.Dashboard.OverdueTasks)
	assert.ElementsMatch(t, []string{"meeting-m-root", "task-t-late"}, v.Notifications.Keys())

	stored, err := p.LoadUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ViewRegionalData, stored[2].ViewMode)

	require.NoError(t, s.Dispatch(ctx, SetFilterPreset{UserID: "root", Preset: models.FilterPreset{Locations: []string{"London"}}}))
	assert.Equal(t, []string{"m-bob"}, meetingIDs(s.View()))
}

func TestRoleDowngradeNarrowsReachability(t *testing.T) {
	s := openStore(t, seed(t))
	login(t, s, "root")
	ctx := context.Background()

	require.NoError(t, s.Dispatch(ctx, SetUserRole{UserID: "root", Role: models.RoleSalesRep}))

	user := s.CurrentUser()
	assert.Equal(t, models.ViewMyData, user.ViewMode)
	assert.False(t, s.HasPermission(models.ResourceSettings, models.ActionEdit))
	assert.ErrorIs(t, s.Dispatch(ctx, SwitchViewMode{Mode: models.ViewAllData}), belonging.ErrPermissionDenied)
}

func TestDismissPersistsAcrossReopen(t *testing.T) {
	p := seed(t)
	s := openStore(t, p)
	login(t, s, "alice")

	require.NoError(t, s.Dispatch(context.Background(), Dismiss{Kind: notify.KindMeeting, ID: "m-alice"}))
	assert.Empty(t, s.View().Notifications.Items)
	assert.Len(t, s.View().Meetings, 1, "dismissal does not touch the record")

	reopened := openStore(t, p)
	assert.Equal(t, "alice", reopened.CurrentUser().ID)
	assert.Empty(t, reopened.View().Notifications.Items)

	require.NoError(t, reopened.Dispatch(context.Background(), Undismiss{Kind: notify.KindMeeting, ID: "m-alice"}))
	assert.Len(t, reopened.View().Notifications.Items, 1)
}

func TestMarkDoneCompletesRecord(t *testing.T) {
	p := seed(t)
	s := openStore(t, p)
	login(t, s, "root")
	ctx := context.Background()

	require.NoError(t, s.Dispatch(ctx, MarkDone{Kind: notify.KindTask, ID: "t-late"}))
	_, found := s.View().Notifications.Find("task-t-late")
	assert.False(t, found)
	assert.Empty(t, s.Dismissed())

	tasks, err := p.LoadTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, tasks[0].Status)

	assert.ErrorIs(t, s.Dispatch(ctx, MarkDone{Kind: notify.KindContact, ID: "c-acme"}), ErrUnsupportedAction)
	assert.ErrorIs(t, s.Dispatch(ctx, MarkDone{Kind: notify.KindMeeting, ID: "nope"}), ErrRecordNotFound)
}

func TestRescheduleRebuckets(t *testing.T) {
	s := openStore(t, seed(t))
	login(t, s, "root")
	ctx := context.Background()

	require.NoError(t, s.Dispatch(ctx, Reschedule{Kind: notify.KindTask, ID: "t-late", Date: day(2)}))
	item, ok := s.View().Notifications.Find("task-t-late")
	require.True(t, ok)
	assert.Equal(t, notify.BucketUpcoming, item.Bucket)

	require.NoError(t, s.Dispatch(ctx, Reschedule{Kind: notify.KindMeeting, ID: "m-root", Date: day(0), Time: "16:00"}))
	item, ok = s.View().Notifications.Find("meeting-m-root")
	require.True(t, ok)
	assert.Equal(t, notify.BucketToday, item.Bucket)
	assert.Contains(t, item.Message, "16:00")

	err := s.Dispatch(ctx, Reschedule{Kind: notify.KindTask, ID: "t-late", Date: "soon"})
	assert.ErrorIs(t, err, notify.ErrInvalidDate)
}

func TestMarkReadAndClearAll(t *testing.T) {
	s := openStore(t, seed(t))
	login(t, s, "root")
	ctx := context.Background()

	feed := s.View().Notifications
	require.NotEmpty(t, feed.Items)
	high := feed.BadgeCount

	require.NoError(t, s.Dispatch(ctx, MarkAllRead{}))
	feed = s.View().Notifications
	assert.Equal(t, high, feed.BadgeCount)
	assert.Zero(t, feed.UnreadCount)
	assert.NotEmpty(t, feed.Items, "read items stay visible")
	assert.Empty(t, s.Dismissed())

	require.NoError(t, s.Dispatch(ctx, ClearAll{}))
	assert.Empty(t, s.View().Notifications.Items)
	assert.Len(t, s.Dismissed(), len(feed.Items))
}

func TestRecordCRUD(t *testing.T) {
	p := seed(t)
	s := openStore(t, p)
	login(t, s, "alice")
	ctx := context.Background()

	require.NoError(t, s.Dispatch(ctx, UpsertTask{Task: models.Task{Task: "Follow up", Due: day(0), Scope: models.Scope{Owner: "Alice"}}}))
	v := s.View()
	require.Len(t, v.Tasks, 1)
	created := v.Tasks[0]
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.TaskStatusOpen, created.Status)
	_, found := v.Notifications.Find(notify.Key(notify.KindTask, created.ID))
	assert.True(t, found)

	created.Task = "Follow up again"
	require.NoError(t, s.Dispatch(ctx, UpsertTask{Task: created}))
	assert.Equal(t, "Follow up again", s.View().Tasks[0].Task)

	require.NoError(t, s.Dispatch(ctx, DeleteTask{ID: created.ID}))
	assert.Empty(t, s.View().Tasks)
	assert.ErrorIs(t, s.Dispatch(ctx, DeleteTask{ID: created.ID}), ErrRecordNotFound)

	require.NoError(t, s.Dispatch(ctx, UpsertContact{Contact: models.Contact{Name: "Hooli", Important: true, Scope: models.Scope{Owner: "Alice"}}}))
	_, found = s.View().Notifications.Find(notify.Key(notify.KindContact, s.View().Contacts[1].ID))
	assert.True(t, found)

	contacts, err := p.LoadContacts(ctx)
	require.NoError(t, err)
	assert.Len(t, contacts, 3)
}

func TestUpsertUserFillsDefaults(t *testing.T) {
	s := openStore(t, seed(t))
	require.NoError(t, s.Dispatch(context.Background(), UpsertUser{User: models.User{Name: "Pat", Role: models.RoleProjectManager}}))

	users := s.Users()
	pat := users[len(users)-1]
	assert.NotEmpty(t, pat.ID)
	assert.Equal(t, models.ViewProjectTypeData, pat.ViewMode)
	assert.Equal(t, testNow, pat.Created)
	assert.Equal(t, belonging.DefaultPermissions(models.RoleProjectManager), pat.Permissions)
}

type failingPersister struct {
	*MemoryPersister
}

func (failingPersister) SaveMeetings(context.Context, []models.Meeting) error {
	return errors.New("disk full")
}

func TestFailedPersistLeavesStateUnchanged(t *testing.T) {
	s := openStore(t, failingPersister{seed(t)})
	login(t, s, "alice")
	before := s.View()

	err := s.Dispatch(context.Background(), MarkDone{Kind: notify.KindMeeting, ID: "m-alice"})
	require.Error(t, err)
	assert.Equal(t, before, s.View())
}

func TestRefreshPicksUpNewDay(t *testing.T) {
	now := testNow
	s, err := Open(context.Background(), seed(t), Options{Clock: func() time.Time { return now }})
	require.NoError(t, err)
	login(t, s, "alice")

	item, _ := s.View().Notifications.Find("meeting-m-alice")
	assert.Equal(t, notify.BucketToday, item.Bucket)

	now = now.AddDate(0, 0, 1)
	s.Refresh()
	item, _ = s.View().Notifications.Find("meeting-m-alice")
	assert.Equal(t, notify.BucketOverdue, item.Bucket)
}

func TestActivityTimeline(t *testing.T) {
	s := openStore(t, seed(t))
	ctx := context.Background()
	login(t, s, "alice")

	recent := s.Activity(1)
	require.Len(t, recent, 1)
	assert.Equal(t, activity.VerbSignedIn, recent[0].Verb)
	assert.Equal(t, "Signed in: Alice", recent[0].Summary)

	require.NoError(t, s.Dispatch(ctx, UpsertContact{Contact: models.Contact{ID: "c-new", Name: "Hooli", Scope: models.Scope{Owner: "Alice"}}}))
	created := s.Activity(1)[0]
	assert.Equal(t, activity.VerbCreated, created.Verb)
	assert.Equal(t, "Added contact: Hooli", created.Summary)
	assert.Equal(t, "alice", created.ActorID)

	acme := s.View().Contacts[0]
	acme.Status = models.ContactStatusClosed
	require.NoError(t, s.Dispatch(ctx, UpsertContact{Contact: acme}))
	updated := s.Activity(1)[0]
	assert.Equal(t, activity.VerbUpdated, updated.Verb)
	require.Contains(t, updated.Changes, "status")
	assert.Equal(t, models.ContactStatusClosed, updated.Changes["status"].After)

	require.NoError(t, s.Dispatch(ctx, Reschedule{Kind: notify.KindMeeting, ID: "m-alice", Date: day(2)}))
	moved := s.Activity(1)[0]
	assert.Equal(t, activity.VerbRescheduled, moved.Verb)
	assert.Equal(t, day(2), moved.Changes["date"].After)

	require.NoError(t, s.Dispatch(ctx, DeleteContact{ID: "c-new"}))
	assert.Equal(t, "Deleted contact: Hooli", s.Activity(1)[0].Summary)

	// Read-state changes and rejected actions leave the timeline alone.
	n := len(s.Activity(0))
	require.NoError(t, s.Dispatch(ctx, MarkAllRead{}))
	assert.Error(t, s.Dispatch(ctx, SwitchViewMode{Mode: models.ViewAllData}))
	assert.Len(t, s.Activity(0), n)
}

func TestReturnedValuesDoNotAliasState(t *testing.T) {
	s := openStore(t, seed(t))
	login(t, s, "root")
	ctx := context.Background()
	require.NoError(t, s.Dispatch(ctx, SetFilterPreset{UserID: "root", Preset: models.FilterPreset{Owner: []string{"Root"}}}))
	require.NoError(t, s.Dispatch(ctx, UpsertTask{Task: models.Task{ID: "t-shared", Task: "Review", Due: day(-1), Scope: models.Scope{Owner: "Root", AssignedUsers: []string{"root"}}}}))
	require.True(t, s.HasPermission(models.ResourceContacts, models.ActionDelete))

	u := s.CurrentUser()
	u.Permissions[models.ResourceContacts][models.ActionDelete] = false
	u.FilterPreset.Owner[0] = "Mallory"

	v := s.View()
	v.User.Permissions[models.ResourceContacts][models.ActionDelete] = false
	v.User.FilterPreset.Owner[0] = "Mallory"
	for i := range v.Tasks {
		if v.Tasks[i].ID == "t-shared" {
			v.Tasks[i].AssignedUsers[0] = "mallory"
		}
	}
	require.NotEmpty(t, v.Notifications.Groups)
	v.Notifications.Groups[0].Items[0].Title = "tampered"

	s.Users()[2].FilterPreset.Owner[0] = "Mallory"

	assert.True(t, s.HasPermission(models.ResourceContacts, models.ActionDelete))
	assert.Equal(t, []string{"Root"}, s.CurrentUser().FilterPreset.Owner)

	fresh := s.View()
	assert.Equal(t, []string{"Root"}, fresh.User.FilterPreset.Owner)
	var found bool
	for _, task := range fresh.Tasks {
		if task.ID == "t-shared" {
			found = true
			assert.Equal(t, []string{"root"}, task.AssignedUsers)
		}
	}
	assert.True(t, found)
	assert.NotEqual(t, "tampered", fresh.Notifications.Groups[0].Items[0].Title)
}

func TestDispatchCopiesActionInputs(t *testing.T) {
	s := openStore(t, seed(t))
	login(t, s, "root")
	ctx := context.Background()

	preset := models.FilterPreset{Owner: []string{"Root"}}
	require.NoError(t, s.Dispatch(ctx, SetFilterPreset{UserID: "root", Preset: preset}))
	task := models.Task{ID: "t-in", Task: "Review", Due: day(2), Scope: models.Scope{Owner: "Root", AssignedUsers: []string{"root"}}}
	require.NoError(t, s.Dispatch(ctx, UpsertTask{Task: task}))

	preset.Owner[0] = "Mallory"
	task.AssignedUsers[0] = "mallory"

	assert.Equal(t, []string{"Root"}, s.CurrentUser().FilterPreset.Owner)
	for _, got := range s.View().Tasks {
		if got.ID == "t-in" {
			assert.Equal(t, []string{"root"}, got.AssignedUsers)
		}
	}
}

func TestZeroNotificationWindowsAreHonoured(t *testing.T) {
	s := openStore(t, seed(t))
	login(t, s, "root")
	assert.Contains(t, s.View().Notifications.Keys(), "meeting-m-root")

	s, err := Open(context.Background(), seed(t), Options{Clock: fixedClock, Notify: &notify.Options{}})
	require.NoError(t, err)
	login(t, s, "root")

	keys := s.View().Notifications.Keys()
	assert.NotContains(t, keys, "meeting-m-root")
	assert.Contains(t, keys, "meeting-m-alice")
}

func TestSessionSignInIsNotPersisted(t *testing.T) {
	p := seed(t)
	ctx := context.Background()
	s := openStore(t, p)
	login(t, s, "alice")

	require.NoError(t, s.Dispatch(ctx, SetCurrentUser{UserID: "root", Session: true}))
	assert.Equal(t, "root", s.CurrentUser().ID)

	stored, err := p.LoadCurrentUserID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored)

	reopened := openStore(t, p)
	assert.Equal(t, "alice", reopened.CurrentUser().ID)
}
