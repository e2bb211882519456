// ABOUTME: Record-level semantics of notification actions
// ABOUTME: Mark-done and reschedule mutations plus date/time parsing for stored records
package notify

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abbrubin150-ui/crmhtml/models"
)

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrInvalidTime = errors.New("invalid time")
)

// ParseDate parses a stored YYYY-MM-DD date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ParseTime validates a stored HH:MM time of day.
func ParseTime(s string) error {
	if _, err := time.Parse(models.TimeLayout, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return nil
}

// CompleteMeeting marks m completed; it drops out of the next evaluation.
func CompleteMeeting(m *models.Meeting) {
	m.Status = models.MeetingStatusCompleted
}

// CompleteTask marks t completed; it drops out of the next evaluation.
func CompleteTask(t *models.Task) {
	t.Status = models.TaskStatusCompleted
}

// RescheduleMeeting moves m to date and, when timeOfDay is non-empty, to
// that time. Nothing changes if either value is invalid.
func RescheduleMeeting(m *models.Meeting, date, timeOfDay string) error {
	if _, err := ParseDate(date); err != nil {
		return err
	}
	if timeOfDay != "" {
		if err := ParseTime(timeOfDay); err != nil {
			return err
		}
	}
	m.Date = strings.TrimSpace(date)
	if timeOfDay != "" {
		m.Time = strings.TrimSpace(timeOfDay)
	}
	return nil
}

// RescheduleTask moves t's due date. Tasks carry no time of day.
func RescheduleTask(t *models.Task, date string) error {
	if _, err := ParseDate(date); err != nil {
		return err
	}
	t.Due = strings.TrimSpace(date)
	return nil
}
