// ABOUTME: Notification derivation engine for meetings, tasks and contact follow-ups
// ABOUTME: Buckets time-sensitive records, drops dismissed items, dedups, sorts and groups the feed
package notify

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/abbrubin150-ui/crmhtml/models"
)

// Kind identifies the source record type of a notification.
type Kind string

const (
	KindMeeting Kind = "meeting"
	KindTask    Kind = "task"
	KindContact Kind = "contact"
)

// Bucket is the urgency of a dated record relative to today. Contact
// follow-ups carry BucketNone.
type Bucket string

const (
	BucketNone     Bucket = ""
	BucketOverdue  Bucket = "overdue"
	BucketToday    Bucket = "today"
	BucketUpcoming Bucket = "upcoming"
)

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Rank orders severities for sorting; lower is more urgent.
func (s Severity) Rank() int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 2
	}
	return 3
}

// Item is one derived notification. Items are never persisted; only their
// dismissal keys are.
type Item struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Bucket    Bucket    `json:"bucket,omitempty"`
	Severity  Severity  `json:"severity"`
	Group     string    `json:"group"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Icon      string    `json:"icon"`
	Color     string    `json:"color"`
	RecordID  string    `json:"record_id"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}

type Group struct {
	Label    string   `json:"label"`
	Severity Severity `json:"severity"`
	Items    []Item   `json:"items"`
}

// Feed is the result of one evaluation pass.
type Feed struct {
	Items       []Item    `json:"items"`
	Groups      []Group   `json:"groups"`
	BadgeCount  int       `json:"badge_count"`
	UnreadCount int       `json:"unread_count"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// Clone returns a copy whose items and groups share no backing arrays with f.
func (f Feed) Clone() Feed {
	out := f
	out.Items = slices.Clone(f.Items)
	out.Groups = slices.Clone(f.Groups)
	for i := range out.Groups {
		out.Groups[i].Items = slices.Clone(f.Groups[i].Items)
	}
	return out
}

// Keys returns the composite ids of every item in the feed.
func (f Feed) Keys() []string {
	keys := make([]string, len(f.Items))
	for i, it := range f.Items {
		keys[i] = it.ID
	}
	return keys
}

// Find returns the item with the given composite id.
func (f Feed) Find(id string) (Item, bool) {
	for _, it := range f.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

type Options struct {
	// UpcomingDays is how many days ahead a meeting or task counts as upcoming.
	UpcomingDays int
	// FollowupDays is the window in which an important contact needs a meeting.
	FollowupDays int
}

func DefaultOptions() Options {
	return Options{UpcomingDays: 2, FollowupDays: 14}
}

// Input is the already scope-filtered working set for one evaluation.
type Input struct {
	Meetings  []models.Meeting
	Tasks     []models.Task
	Contacts  []models.Contact
	Dismissed KeySet
	Read      KeySet
	Now       time.Time
}

var (
	closedMeetingStatuses = []string{models.MeetingStatusCompleted, models.MeetingStatusCancelled}
	closedTaskStatuses    = []string{models.TaskStatusCompleted, models.TaskStatusCancelled, models.TaskStatusDone}
)

// Evaluate derives the notification feed. It is a pure function of its
// input and is meant to be re-run in full after every change.
func Evaluate(in Input, opts Options) Feed {
	today := civilDay(in.Now)
	var items []Item

	for _, m := range in.Meetings {
		key := Key(KindMeeting, m.ID)
		if in.Dismissed.Has(key) || slices.Contains(closedMeetingStatuses, m.Status) {
			continue
		}
		days, ok := daysUntil(today, m.Date)
		if !ok {
			continue
		}
		bucket := classify(days, opts.UpcomingDays)
		if bucket == BucketNone {
			continue
		}
		items = append(items, newItem(KindMeeting, bucket, m.ID, in.Now,
			meetingMessage(bucket, m.ContactName, strings.TrimSpace(m.Time), days)))
	}

	for _, t := range in.Tasks {
		key := Key(KindTask, t.ID)
		if in.Dismissed.Has(key) || slices.Contains(closedTaskStatuses, t.Status) {
			continue
		}
		days, ok := daysUntil(today, t.Due)
		if !ok {
			continue
		}
		bucket := classify(days, opts.UpcomingDays)
		if bucket == BucketNone {
			continue
		}
		items = append(items, newItem(KindTask, bucket, t.ID, in.Now, taskMessage(bucket, t.Task, days)))
	}

	for _, c := range in.Contacts {
		key := Key(KindContact, c.ID)
		if in.Dismissed.Has(key) || c.Status == models.ContactStatusClosed || !c.Important {
			continue
		}
		if hasMeetingWithin(in.Meetings, c.Name, today, opts.FollowupDays) {
			continue
		}
		items = append(items, newItem(KindContact, BucketNone, c.ID, in.Now, followupMessage(c.Name)))
	}

	items = dedup(items)
	for i := range items {
		items[i].Read = in.Read.Has(items[i].ID)
	}
	sortItems(items)

	feed := Feed{Items: items, Groups: group(items), EvaluatedAt: in.Now}
	for _, it := range items {
		if it.Severity != SeverityHigh {
			continue
		}
		feed.BadgeCount++
		if !it.Read {
			feed.UnreadCount++
		}
	}
	return feed
}

func newItem(kind Kind, bucket Bucket, recordID string, now time.Time, message string) Item {
	p := presentationFor(kind, bucket)
	return Item{
		ID:        Key(kind, recordID),
		Kind:      kind,
		Bucket:    bucket,
		Severity:  p.severity,
		Group:     p.group,
		Title:     p.title,
		Message:   message,
		Icon:      p.icon,
		Color:     p.color,
		RecordID:  recordID,
		Timestamp: now,
	}
}

func classify(days, upcomingDays int) Bucket {
	switch {
	case days < 0:
		return BucketOverdue
	case days == 0:
		return BucketToday
	case days <= upcomingDays:
		return BucketUpcoming
	}
	return BucketNone
}

func hasMeetingWithin(meetings []models.Meeting, contactName string, today time.Time, window int) bool {
	for _, m := range meetings {
		if m.ContactName != contactName {
			continue
		}
		days, ok := daysUntil(today, m.Date)
		if ok && days >= 0 && days <= window {
			return true
		}
	}
	return false
}

// dedup keeps one item per composite id, preferring the most severe.
func dedup(items []Item) []Item {
	out := make([]Item, 0, len(items))
	index := make(map[string]int, len(items))
	for _, it := range items {
		if i, ok := index[it.ID]; ok {
			if it.Severity.Rank() < out[i].Severity.Rank() {
				out[i] = it
			}
			continue
		}
		index[it.ID] = len(out)
		out = append(out, it)
	}
	return out
}

func sortItems(items []Item) {
	slices.SortStableFunc(items, func(a, b Item) int {
		if r := cmp.Compare(a.Severity.Rank(), b.Severity.Rank()); r != 0 {
			return r
		}
		return b.Timestamp.Compare(a.Timestamp)
	})
}

func group(items []Item) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, it := range items {
		i, ok := index[it.Group]
		if !ok {
			i = len(groups)
			index[it.Group] = i
			groups = append(groups, Group{Label: it.Group, Severity: it.Severity})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

// civilDay returns midnight UTC of t's calendar date in t's own location.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysUntil returns whole calendar days from today to the stored date.
// Unparseable dates report ok=false.
func daysUntil(today time.Time, date string) (int, bool) {
	day, err := ParseDate(date)
	if err != nil {
		return 0, false
	}
	// Both are UTC midnights. Duration saturates past ~292 years, Unix seconds do not.
	return int((day.Unix() - today.Unix()) / 86400), true
}
