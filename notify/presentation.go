// ABOUTME: Presentation metadata for derived notifications
// ABOUTME: Maps kind and urgency bucket to severity, group label, icon, colour and message text
package notify

import "fmt"

type presentation struct {
	severity Severity
	group    string
	title    string
	icon     string
	color    string
}

type presentationKey struct {
	kind   Kind
	bucket Bucket
}

var presentations = map[presentationKey]presentation{
	{KindMeeting, BucketOverdue}:  {SeverityHigh, "Overdue meetings", "Overdue Meeting", "fa-calendar-times", "#ef4444"},
	{KindMeeting, BucketToday}:    {SeverityHigh, "Today's meetings", "Meeting Today", "fa-calendar-day", "#3b82f6"},
	{KindMeeting, BucketUpcoming}: {SeverityMedium, "Upcoming meetings", "Upcoming Meeting", "fa-calendar", "#f59e0b"},
	{KindTask, BucketOverdue}:     {SeverityHigh, "Overdue tasks", "Overdue Task", "fa-exclamation-circle", "#ef4444"},
	{KindTask, BucketToday}:       {SeverityMedium, "Tasks due today", "Task Due Today", "fa-tasks", "#f59e0b"},
	{KindTask, BucketUpcoming}:    {SeverityLow, "Upcoming tasks", "Task Due Soon", "fa-clock", "#6b7280"},
	{KindContact, BucketNone}:     {SeverityLow, "Follow-ups needed", "Follow-up Needed", "fa-user-clock", "#8b5cf6"},
}

func presentationFor(kind Kind, bucket Bucket) presentation {
	return presentations[presentationKey{kind, bucket}]
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func meetingSubject(contactName string) string {
	if contactName == "" {
		return "Meeting"
	}
	return "Meeting with " + contactName
}

func atTime(t string) string {
	if t == "" {
		return ""
	}
	return " at " + t
}

// meetingMessage describes a meeting days away from today (negative when past).
func meetingMessage(bucket Bucket, contactName, timeOfDay string, days int) string {
	subject := meetingSubject(contactName)
	switch bucket {
	case BucketOverdue:
		return fmt.Sprintf("%s is %s overdue", subject, pluralDays(-days))
	case BucketToday:
		return subject + " today" + atTime(timeOfDay)
	default:
		if days == 1 {
			return subject + " tomorrow" + atTime(timeOfDay)
		}
		return fmt.Sprintf("%s in %s%s", subject, pluralDays(days), atTime(timeOfDay))
	}
}

func taskMessage(bucket Bucket, title string, days int) string {
	switch bucket {
	case BucketOverdue:
		return fmt.Sprintf("\"%s\" is %s overdue", title, pluralDays(-days))
	case BucketToday:
		return fmt.Sprintf("\"%s\" is due today", title)
	default:
		if days == 1 {
			return fmt.Sprintf("\"%s\" is due tomorrow", title)
		}
		return fmt.Sprintf("\"%s\" is due in %s", title, pluralDays(days))
	}
}

func followupMessage(contactName string) string {
	return "No upcoming meeting scheduled with " + contactName
}
