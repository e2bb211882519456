// ABOUTME: Tests for the notification derivation engine
// ABOUTME: Covers bucketing, dismissal, dedup, ordering, grouping and badge counting
package notify

import (
	"testing"
	"time"

	"github.com/abbrubin150-ui/crmhtml/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)

func day(offset int) string {
	return testNow.AddDate(0, 0, offset).Format(models.DateLayout)
}

func evaluate(in Input) Feed {
	if in.Now.IsZero() {
		in.Now = testNow
	}
	return Evaluate(in, DefaultOptions())
}

func TestMeetingBuckets(t *testing.T) {
	feed := evaluate(Input{Meetings: []models.Meeting{
		{ID: "past", ContactName: "Acme", Date: day(-1), Status: models.MeetingStatusScheduled},
		{ID: "now", ContactName: "Globex", Date: day(0), Time: "23:30", Status: models.MeetingStatusScheduled},
		{ID: "soon", ContactName: "Initech", Date: day(2), Status: models.MeetingStatusScheduled},
		{ID: "later", ContactName: "Hooli", Date: day(3), Status: models.MeetingStatusScheduled},
	}})

	buckets := map[string]Bucket{}
	for _, it := range feed.Items {
		buckets[it.RecordID] = it.Bucket
	}
	assert.Equal(t, map[string]Bucket{
		"past": BucketOverdue,
		"now":  BucketToday,
		"soon": BucketUpcoming,
	}, buckets)
}

func TestMeetingEarlierTodayIsStillToday(t *testing.T) {
	feed := evaluate(Input{Meetings: []models.Meeting{
		{ID: "m1", ContactName: "Acme", Date: day(0), Time: "08:00", Status: models.MeetingStatusScheduled},
	}})
	require.Len(t, feed.Items, 1)
	assert.Equal(t, BucketToday, feed.Items[0].Bucket)
	assert.Equal(t, "Meeting with Acme today at 08:00", feed.Items[0].Message)
}

func TestClosedRecordsAreSkipped(t *testing.T) {
	feed := evaluate(Input{
		Meetings: []models.Meeting{
			{ID: "m1", Date: day(0), Status: models.MeetingStatusCompleted},
			{ID: "m2", Date: day(0), Status: models.MeetingStatusCancelled},
		},
		Tasks: []models.Task{
			{ID: "t1", Task: "a", Due: day(-1), Status: models.TaskStatusCompleted},
			{ID: "t2", Task: "b", Due: day(-1), Status: models.TaskStatusCancelled},
			{ID: "t3", Task: "c", Due: day(-1), Status: models.TaskStatusDone},
		},
	})
	assert.Empty(t, feed.Items)
	assert.Zero(t, feed.BadgeCount)
}

func TestOverdueTaskMessages(t *testing.T) {
	feed := evaluate(Input{Tasks: []models.Task{
		{ID: "t1", Task: "Send proposal", Due: day(-1), Status: models.TaskStatusOpen},
		{ID: "t3", Task: "Call back", Due: day(-3), Status: models.TaskStatusOpen},
	}})
	require.Len(t, feed.Items, 2)

	one, ok := feed.Find("task-t1")
	require.True(t, ok)
	assert.Equal(t, BucketOverdue, one.Bucket)
	assert.Equal(t, SeverityHigh, one.Severity)
	assert.Equal(t, `"Send proposal" is 1 day overdue`, one.Message)

	three, ok := feed.Find("task-t3")
	require.True(t, ok)
	assert.Equal(t, `"Call back" is 3 days overdue`, three.Message)
	assert.Equal(t, "#ef4444", three.Color)
	assert.Equal(t, "fa-exclamation-circle", three.Icon)
}

func TestTaskBucketsAndHorizon(t *testing.T) {
	feed := evaluate(Input{Tasks: []models.Task{
		{ID: "today", Task: "a", Due: day(0), Status: models.TaskStatusOpen},
		{ID: "tomorrow", Task: "b", Due: day(1), Status: models.TaskStatusInProgress},
		{ID: "two", Task: "c", Due: day(2), Status: models.TaskStatusOnHold},
		{ID: "three", Task: "d", Due: day(3), Status: models.TaskStatusOpen},
	}})

	require.Len(t, feed.Items, 3)
	today, _ := feed.Find("task-today")
	assert.Equal(t, SeverityMedium, today.Severity)
	assert.Equal(t, `"a" is due today`, today.Message)

	tomorrow, _ := feed.Find("task-tomorrow")
	assert.Equal(t, BucketUpcoming, tomorrow.Bucket)
	assert.Equal(t, `"b" is due tomorrow`, tomorrow.Message)

	two, _ := feed.Find("task-two")
	assert.Equal(t, `"c" is due in 2 days`, two.Message)

	_, found := feed.Find("task-three")
	assert.False(t, found)
}

func TestUpcomingHorizonIsConfigurable(t *testing.T) {
	in := Input{Now: testNow, Tasks: []models.Task{{ID: "t", Task: "x", Due: day(5), Status: models.TaskStatusOpen}}}

	assert.Empty(t, Evaluate(in, DefaultOptions()).Items)
	assert.Len(t, Evaluate(in, Options{UpcomingDays: 7, FollowupDays: 14}).Items, 1)
}

func TestMalformedDatesAreSkipped(t *testing.T) {
	assert.NotPanics(t, func() {
		feed := evaluate(Input{
			Meetings: []models.Meeting{{ID: "m", Date: "next tuesday", Status: models.MeetingStatusScheduled}},
			Tasks: []models.Task{
				{ID: "t1", Task: "x", Due: "2026-13-45", Status: models.TaskStatusOpen},
				{ID: "t2", Task: "y", Due: "", Status: models.TaskStatusOpen},
			},
		})
		assert.Empty(t, feed.Items)
	})
}

func TestContactFollowups(t *testing.T) {
	feed := evaluate(Input{
		Contacts: []models.Contact{
			{ID: "c1", Name: "Acme", Important: true, Status: models.ContactStatusNew},
			{ID: "c2", Name: "Globex", Important: true, Status: models.ContactStatusInProgress},
			{ID: "c3", Name: "Initech", Important: false, Status: models.ContactStatusNew},
			{ID: "c4", Name: "Hooli", Important: true, Status: models.ContactStatusClosed},
			{ID: "c5", Name: "Umbrella", Important: true, Status: models.ContactStatusNew},
		},
		Meetings: []models.Meeting{
			{ID: "m1", ContactName: "Globex", Date: day(14), Status: models.MeetingStatusScheduled},
			{ID: "m2", ContactName: "Umbrella", Date: day(15), Status: models.MeetingStatusScheduled},
		},
	})

	var followups []string
	for _, it := range feed.Items {
		if it.Kind == KindContact {
			followups = append(followups, it.RecordID)
			assert.Equal(t, SeverityLow, it.Severity)
			assert.Equal(t, BucketNone, it.Bucket)
			assert.Equal(t, "Follow-ups needed", it.Group)
		}
	}
	assert.Equal(t, []string{"c1", "c5"}, followups)

	acme, _ := feed.Find("contact-c1")
	assert.Equal(t, "No upcoming meeting scheduled with Acme", acme.Message)
}

func TestDismissedItemsAreExcluded(t *testing.T) {
	in := Input{
		Meetings: []models.Meeting{
			{ID: "123", ContactName: "Acme", Date: day(0), Status: models.MeetingStatusScheduled},
			{ID: "456", ContactName: "Globex", Date: day(1), Status: models.MeetingStatusScheduled},
		},
		Tasks: []models.Task{{ID: "123", Task: "Prep", Due: day(0), Status: models.TaskStatusOpen}},
	}
	before := evaluate(in)
	require.Len(t, before.Items, 3)

	in.Dismissed = NewKeySet("meeting-123")
	after := evaluate(in)

	assert.ElementsMatch(t, []string{"task-123", "meeting-456"}, after.Keys())
}

func TestDismissedContactFollowupIsExcluded(t *testing.T) {
	feed := evaluate(Input{
		Contacts:  []models.Contact{{ID: "c1", Name: "Acme", Important: true, Status: models.ContactStatusNew}},
		Dismissed: NewKeySet(Key(KindContact, "c1")),
	})
	assert.Empty(t, feed.Items)
}

func TestDuplicateRecordsProduceOneItem(t *testing.T) {
	feed := evaluate(Input{Meetings: []models.Meeting{
		{ID: "dup", ContactName: "Acme", Date: day(1), Status: models.MeetingStatusScheduled},
		{ID: "dup", ContactName: "Acme", Date: day(0), Status: models.MeetingStatusScheduled},
	}})
	require.Len(t, feed.Items, 1)
	assert.Equal(t, BucketToday, feed.Items[0].Bucket)
}

func TestOrderingBySeverity(t *testing.T) {
	feed := evaluate(Input{
		Tasks: []models.Task{
			{ID: "low", Task: "a", Due: day(1), Status: models.TaskStatusOpen},
			{ID: "medium", Task: "b", Due: day(0), Status: models.TaskStatusOpen},
			{ID: "high", Task: "c", Due: day(-2), Status: models.TaskStatusOpen},
		},
	})
	assert.Equal(t, []string{"task-high", "task-medium", "task-low"}, feed.Keys())
}

func TestSortUsesTimestampDescendingWithinSeverity(t *testing.T) {
	older := Item{ID: "a", Severity: SeverityHigh, Timestamp: testNow.Add(-time.Hour)}
	newer := Item{ID: "b", Severity: SeverityHigh, Timestamp: testNow}
	low := Item{ID: "c", Severity: SeverityLow, Timestamp: testNow.Add(time.Hour)}
	same := Item{ID: "d", Severity: SeverityHigh, Timestamp: testNow}

	items := []Item{low, older, newer, same}
	sortItems(items)

	var got []string
	for _, it := range items {
		got = append(got, it.ID)
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, got)
}

func TestGroupsFollowSortedOrder(t *testing.T) {
	feed := evaluate(Input{
		Meetings: []models.Meeting{
			{ID: "m1", ContactName: "Acme", Date: day(0), Status: models.MeetingStatusScheduled},
			{ID: "m2", ContactName: "Globex", Date: day(0), Status: models.MeetingStatusScheduled},
		},
		Tasks: []models.Task{
			{ID: "t1", Task: "a", Due: day(-1), Status: models.TaskStatusOpen},
			{ID: "t2", Task: "b", Due: day(2), Status: models.TaskStatusOpen},
		},
	})

	var labels []string
	for _, g := range feed.Groups {
		labels = append(labels, g.Label)
	}
	assert.Equal(t, []string{"Today's meetings", "Overdue tasks", "Upcoming tasks"}, labels)
	assert.Len(t, feed.Groups[0].Items, 2)
	assert.Equal(t, SeverityHigh, feed.Groups[0].Severity)
}

func TestBadgeCountsOnlyHighSeverity(t *testing.T) {
	feed := evaluate(Input{
		Meetings: []models.Meeting{
			{ID: "m1", ContactName: "Acme", Date: day(0), Status: models.MeetingStatusScheduled},
			{ID: "m2", ContactName: "Globex", Date: day(1), Status: models.MeetingStatusScheduled},
		},
		Tasks: []models.Task{
			{ID: "t1", Task: "a", Due: day(-1), Status: models.TaskStatusOpen},
			{ID: "t2", Task: "b", Due: day(0), Status: models.TaskStatusOpen},
			{ID: "t3", Task: "c", Due: day(1), Status: models.TaskStatusOpen},
		},
		Contacts: []models.Contact{{ID: "c1", Name: "Initech", Important: true, Status: models.ContactStatusNew}},
	})

	high := 0
	for _, it := range feed.Items {
		if it.Severity == SeverityHigh {
			high++
		}
	}
	assert.Len(t, feed.Items, 6)
	assert.Equal(t, 2, high)
	assert.Equal(t, high, feed.BadgeCount)
	assert.Equal(t, high, feed.UnreadCount)
}

func TestReadIsIndependentFromDismissal(t *testing.T) {
	in := Input{
		Meetings: []models.Meeting{{ID: "m1", ContactName: "Acme", Date: day(0), Status: models.MeetingStatusScheduled}},
		Tasks:    []models.Task{{ID: "t1", Task: "a", Due: day(-1), Status: models.TaskStatusOpen}},
		Read:     NewKeySet("meeting-m1"),
	}
	feed := evaluate(in)

	require.Len(t, feed.Items, 2)
	m1, _ := feed.Find("meeting-m1")
	assert.True(t, m1.Read)
	assert.Equal(t, 2, feed.BadgeCount)
	assert.Equal(t, 1, feed.UnreadCount)
}

func TestTodaysMeetingScenario(t *testing.T) {
	feed := evaluate(Input{Meetings: []models.Meeting{
		{ID: "a1", ContactName: "Acme", Date: day(0), Time: "10:30", Status: models.MeetingStatusScheduled, Scope: models.Scope{Owner: "Alice"}},
	}})

	require.Len(t, feed.Groups, 1)
	assert.Equal(t, "Today's meetings", feed.Groups[0].Label)
	require.Len(t, feed.Groups[0].Items, 1)
	assert.Equal(t, SeverityHigh, feed.Groups[0].Items[0].Severity)
	assert.Equal(t, "meeting-a1", feed.Groups[0].Items[0].ID)
	assert.Equal(t, testNow, feed.Groups[0].Items[0].Timestamp)
	assert.Equal(t, 1, feed.BadgeCount)
}

func TestDayBoundaryUsesNowLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	// 2026-10-15 20:00 UTC is already 2026-10-16 in UTC+9.
	now := time.Date(2026, 10, 15, 20, 0, 0, 0, time.UTC).In(loc)

	feed := Evaluate(Input{
		Now:   now,
		Tasks: []models.Task{{ID: "t", Task: "x", Due: "2026-10-16", Status: models.TaskStatusOpen}},
	}, DefaultOptions())
	require.Len(t, feed.Items, 1)
	assert.Equal(t, BucketToday, feed.Items[0].Bucket)
}

func TestOverdueCountForDistantPastDate(t *testing.T) {
	feed := evaluate(Input{Tasks: []models.Task{
		{ID: "t1", Task: "Call", Due: "0202-10-15", Status: models.TaskStatusOpen},
	}})

	item, ok := feed.Find("task-t1")
	require.True(t, ok)
	assert.Equal(t, BucketOverdue, item.Bucket)
	assert.Equal(t, `"Call" is 666203 days overdue`, item.Message)
}
