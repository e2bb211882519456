// ABOUTME: Notification MCP tool handlers
// ABOUTME: Implements evaluate, dismiss, mark-done and reschedule tools over the derived feed
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/abbrubin150-ui/crmhtml/belonging"
	"github.com/abbrubin150-ui/crmhtml/models"
	"github.com/abbrubin150-ui/crmhtml/notify"
	"github.com/abbrubin150-ui/crmhtml/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type NotificationHandlers struct {
	store *store.Store
}

func NewNotificationHandlers(s *store.Store) *NotificationHandlers {
	return &NotificationHandlers{store: s}
}

type NotificationOutput struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Bucket    string `json:"bucket,omitempty"`
	Severity  string `json:"severity"`
	Group     string `json:"group"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	RecordID  string `json:"record_id"`
	Read      bool   `json:"read"`
	Timestamp string `json:"timestamp"`
}

type NotificationGroupOutput struct {
	Label    string `json:"label"`
	Severity string `json:"severity"`
	Count    int    `json:"count"`
}

type FeedOutput struct {
	Notifications []NotificationOutput      `json:"notifications"`
	Groups        []NotificationGroupOutput `json:"groups"`
	BadgeCount    int                       `json:"badge_count"`
	UnreadCount   int                       `json:"unread_count"`
}

type EvaluateNotificationsInput struct {
	Severity string `json:"severity,omitempty" jsonschema:"Only return items of this severity (high, medium, low)"`
}

func (h *NotificationHandlers) EvaluateNotifications(_ context.Context, _ *mcp.CallToolRequest, input EvaluateNotificationsInput) (*mcp.CallToolResult, FeedOutput, error) {
	h.store.Refresh()
	return nil, feedOutput(h.store.View().Notifications, notify.Severity(input.Severity)), nil
}

type NotificationRefInput struct {
	Kind string `json:"kind" jsonschema:"Notification kind: meeting, task or contact"`
	ID   string `json:"id" jsonschema:"ID of the record behind the notification"`
}

type DismissNotificationInput struct {
	Kind string `json:"kind" jsonschema:"Notification kind: meeting, task or contact"`
	ID   string `json:"id" jsonschema:"ID of the record behind the notification"`
	Undo bool   `json:"undo,omitempty" jsonschema:"Restore a previously dismissed notification"`
}

func (h *NotificationHandlers) DismissNotification(ctx context.Context, _ *mcp.CallToolRequest, input DismissNotificationInput) (*mcp.CallToolResult, FeedOutput, error) {
	kind, err := parseRef(input.Kind, input.ID)
	if err != nil {
		return nil, FeedOutput{}, err
	}

	var action store.Action = store.Dismiss{Kind: kind, ID: input.ID}
	if input.Undo {
		action = store.Undismiss{Kind: kind, ID: input.ID}
	}
	if err := h.store.Dispatch(ctx, action); err != nil {
		return nil, FeedOutput{}, fmt.Errorf("failed to dismiss notification: %w", err)
	}
	return nil, feedOutput(h.store.View().Notifications, ""), nil
}

func (h *NotificationHandlers) MarkNotificationDone(ctx context.Context, _ *mcp.CallToolRequest, input NotificationRefInput) (*mcp.CallToolResult, FeedOutput, error) {
	kind, err := parseRef(input.Kind, input.ID)
	if err != nil {
		return nil, FeedOutput{}, err
	}
	if err := h.requireEdit(kind); err != nil {
		return nil, FeedOutput{}, err
	}

	if err := h.store.Dispatch(ctx, store.MarkDone{Kind: kind, ID: input.ID}); err != nil {
		return nil, FeedOutput{}, fmt.Errorf("failed to mark done: %w", err)
	}
	return nil, feedOutput(h.store.View().Notifications, ""), nil
}

type RescheduleNotificationInput struct {
	Kind string `json:"kind" jsonschema:"Notification kind: meeting or task"`
	ID   string `json:"id" jsonschema:"ID of the record behind the notification"`
	Date string `json:"date" jsonschema:"New date (YYYY-MM-DD)"`
	Time string `json:"time,omitempty" jsonschema:"New time of day for meetings (HH:MM)"`
}

func (h *NotificationHandlers) RescheduleNotification(ctx context.Context, _ *mcp.CallToolRequest, input RescheduleNotificationInput) (*mcp.CallToolResult, FeedOutput, error) {
	kind, err := parseRef(input.Kind, input.ID)
	if err != nil {
		return nil, FeedOutput{}, err
	}
	if input.Date == "" {
		return nil, FeedOutput{}, fmt.Errorf("date is required")
	}
	if err := h.requireEdit(kind); err != nil {
		return nil, FeedOutput{}, err
	}

	if err := h.store.Dispatch(ctx, store.Reschedule{Kind: kind, ID: input.ID, Date: input.Date, Time: input.Time}); err != nil {
		return nil, FeedOutput{}, fmt.Errorf("failed to reschedule: %w", err)
	}
	return nil, feedOutput(h.store.View().Notifications, ""), nil
}

func (h *NotificationHandlers) requireEdit(kind notify.Kind) error {
	res := ResourceForKind(kind)
	if !h.store.HasPermission(res, models.ActionEdit) {
		return fmt.Errorf("%w: edit %s", belonging.ErrPermissionDenied, res)
	}
	return nil
}

// ResourceForKind maps a notification kind to the resource guarding its record.
func ResourceForKind(kind notify.Kind) models.Resource {
	switch kind {
	case notify.KindMeeting:
		return models.ResourceMeetings
	case notify.KindTask:
		return models.ResourceTasks
	}
	return models.ResourceContacts
}

// ParseKind accepts the notification kinds plus the "contact-followup" alias.
func ParseKind(s string) (notify.Kind, error) {
	switch s {
	case "meeting":
		return notify.KindMeeting, nil
	case "task":
		return notify.KindTask, nil
	case "contact", "contact-followup", "followup":
		return notify.KindContact, nil
	}
	return "", fmt.Errorf("invalid kind: %s (valid: meeting, task, contact)", s)
}

func parseRef(kind, id string) (notify.Kind, error) {
	if id == "" {
		return "", fmt.Errorf("id is required")
	}
	return ParseKind(kind)
}

func feedOutput(feed notify.Feed, severity notify.Severity) FeedOutput {
	out := FeedOutput{
		Notifications: []NotificationOutput{},
		Groups:        []NotificationGroupOutput{},
		BadgeCount:    feed.BadgeCount,
		UnreadCount:   feed.UnreadCount,
	}
	for _, it := range feed.Items {
		if severity != "" && it.Severity != severity {
			continue
		}
		out.Notifications = append(out.Notifications, NotificationOutput{
			ID:        it.ID,
			Kind:      string(it.Kind),
			Bucket:    string(it.Bucket),
			Severity:  string(it.Severity),
			Group:     it.Group,
			Title:     it.Title,
			Message:   it.Message,
			RecordID:  it.RecordID,
			Read:      it.Read,
			Timestamp: it.Timestamp.Format(time.RFC3339),
		})
	}
	for _, g := range feed.Groups {
		if severity != "" && g.Severity != severity {
			continue
		}
		out.Groups = append(out.Groups, NotificationGroupOutput{Label: g.Label, Severity: string(g.Severity), Count: len(g.Items)})
	}
	return out
}
