// ABOUTME: Scoped record MCP tool handler
// ABOUTME: Implements list_scoped_records over the current user's view
package handlers

import (
	"context"
	"fmt"

	"github.com/abbrubin150-ui/crmhtml/models"
	"github.com/abbrubin150-ui/crmhtml/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type RecordHandlers struct {
	store *store.Store
}

func NewRecordHandlers(s *store.Store) *RecordHandlers {
	return &RecordHandlers{store: s}
}

type ListScopedRecordsInput struct {
	Kind  string `json:"kind,omitempty" jsonschema:"Record kind: contact, meeting or task (default all)"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum results per kind (default 50)"`
}

type RecordOutput struct {
	Kind        string `json:"kind"`
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date,omitempty"`
	Status      string `json:"status"`
	Owner       string `json:"owner,omitempty"`
	Location    string `json:"location,omitempty"`
	ProjectType string `json:"project_type,omitempty"`
	TeamName    string `json:"team_name,omitempty"`
}

type ListScopedRecordsOutput struct {
	ViewMode string         `json:"view_mode,omitempty"`
	Records  []RecordOutput `json:"records"`
	Count    int            `json:"count"`
}

func (h *RecordHandlers) ListScopedRecords(_ context.Context, _ *mcp.CallToolRequest, input ListScopedRecordsInput) (*mcp.CallToolResult, ListScopedRecordsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	kinds := []string{"contact", "meeting", "task"}
	if input.Kind != "" {
		kinds = []string{input.Kind}
	}

	v := h.store.View()
	out := ListScopedRecordsOutput{ViewMode: string(v.ViewMode), Records: []RecordOutput{}}

	for _, kind := range kinds {
		var records []RecordOutput
		switch kind {
		case "contact":
			if !h.store.HasPermission(models.ResourceContacts, models.ActionView) {
				continue
			}
			for _, c := range v.Contacts {
				records = append(records, recordOutput(kind, c.ID, c.Name, "", c.Status, c.Scope))
			}
		case "meeting":
			if !h.store.HasPermission(models.ResourceMeetings, models.ActionView) {
				continue
			}
			for _, m := range v.Meetings {
				records = append(records, recordOutput(kind, m.ID, m.ContactName, m.Date, m.Status, m.Scope))
			}
		case "task":
			if !h.store.HasPermission(models.ResourceTasks, models.ActionView) {
				continue
			}
			for _, t := range v.Tasks {
				records = append(records, recordOutput(kind, t.ID, t.Task, t.Due, t.Status, t.Scope))
			}
		default:
			return nil, ListScopedRecordsOutput{}, fmt.Errorf("invalid kind: %s (valid: contact, meeting, task)", kind)
		}
		if len(records) > limit {
			records = records[:limit]
		}
		out.Records = append(out.Records, records...)
	}

	out.Count = len(out.Records)
	return nil, out, nil
}

func recordOutput(kind, id, title, date, status string, s models.Scope) RecordOutput {
	return RecordOutput{
		Kind:        kind,
		ID:          id,
		Title:       title,
		Date:        date,
		Status:      status,
		Owner:       s.Owner,
		Location:    s.Location,
		ProjectType: s.ProjectType,
		TeamName:    s.TeamName,
	}
}
