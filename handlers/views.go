// ABOUTME: View-mode and permission MCP tool handlers
// ABOUTME: Implements list_view_modes, switch_view_mode, check_permission and scope_graph tools
package handlers

import (
	"context"
	"fmt"

	"github.com/abbrubin150-ui/crmhtml/belonging"
	"github.com/abbrubin150-ui/crmhtml/models"
	"github.com/abbrubin150-ui/crmhtml/store"
	"github.com/abbrubin150-ui/crmhtml/viz"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ViewHandlers struct {
	store *store.Store
}

func NewViewHandlers(s *store.Store) *ViewHandlers {
	return &ViewHandlers{store: s}
}

type ListViewModesInput struct{}

type ViewModeOutput struct {
	Mode    string `json:"mode"`
	Label   string `json:"label"`
	Current bool   `json:"current"`
}

type ListViewModesOutput struct {
	User  string           `json:"user,omitempty"`
	Role  string           `json:"role,omitempty"`
	Modes []ViewModeOutput `json:"modes"`
}

func (h *ViewHandlers) ListViewModes(_ context.Context, _ *mcp.CallToolRequest, _ ListViewModesInput) (*mcp.CallToolResult, ListViewModesOutput, error) {
	v := h.store.View()
	out := ListViewModesOutput{Modes: []ViewModeOutput{}}
	if v.User != nil {
		out.User = v.User.Name
		out.Role = string(v.User.Role)
	}
	for _, mode := range v.AvailableModes {
		out.Modes = append(out.Modes, ViewModeOutput{
			Mode:    string(mode),
			Label:   belonging.ViewModeLabel(mode),
			Current: mode == v.ViewMode,
		})
	}
	return nil, out, nil
}

type SwitchViewModeInput struct {
	Mode string `json:"mode" jsonschema:"View mode to switch to (my_data, team_data, regional_data, project_type_data, all_data)"`
}

type SwitchViewModeOutput struct {
	ViewMode      string `json:"view_mode"`
	Contacts      int    `json:"contacts"`
	Meetings      int    `json:"meetings"`
	Tasks         int    `json:"tasks"`
	Notifications int    `json:"notifications"`
}

func (h *ViewHandlers) SwitchViewMode(ctx context.Context, _ *mcp.CallToolRequest, input SwitchViewModeInput) (*mcp.CallToolResult, SwitchViewModeOutput, error) {
	if input.Mode == "" {
		return nil, SwitchViewModeOutput{}, fmt.Errorf("mode is required")
	}
	mode := models.ViewMode(input.Mode)
	if !belonging.IsKnownViewMode(mode) {
		return nil, SwitchViewModeOutput{}, fmt.Errorf("unknown view mode: %s", input.Mode)
	}

	if err := h.store.Dispatch(ctx, store.SwitchViewMode{Mode: mode}); err != nil {
		return nil, SwitchViewModeOutput{}, fmt.Errorf("failed to switch view mode: %w", err)
	}

	v := h.store.View()
	return nil, SwitchViewModeOutput{
		ViewMode:      string(v.ViewMode),
		Contacts:      len(v.Contacts),
		Meetings:      len(v.Meetings),
		Tasks:         len(v.Tasks),
		Notifications: len(v.Notifications.Items),
	}, nil
}

type CheckPermissionInput struct {
	Resource string `json:"resource" jsonschema:"Resource (contacts, meetings, tasks, reports, settings)"`
	Action   string `json:"action" jsonschema:"Action (view, create, edit, delete, export)"`
}

type CheckPermissionOutput struct {
	Resource string `json:"resource"`
	Action   string `json:"action"`
	Allowed  bool   `json:"allowed"`
}

func (h *ViewHandlers) CheckPermission(_ context.Context, _ *mcp.CallToolRequest, input CheckPermissionInput) (*mcp.CallToolResult, CheckPermissionOutput, error) {
	if input.Resource == "" || input.Action == "" {
		return nil, CheckPermissionOutput{}, fmt.Errorf("resource and action are required")
	}
	allowed := h.store.HasPermission(models.Resource(input.Resource), models.Action(input.Action))
	return nil, CheckPermissionOutput{Resource: input.Resource, Action: input.Action, Allowed: allowed}, nil
}

type ScopeGraphInput struct{}

type ScopeGraphOutput struct {
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *ViewHandlers) ScopeGraph(ctx context.Context, _ *mcp.CallToolRequest, _ ScopeGraphInput) (*mcp.CallToolResult, ScopeGraphOutput, error) {
	g, err := viz.GenerateScopeGraph(ctx, h.store.CurrentUser())
	if err != nil {
		return nil, ScopeGraphOutput{}, err
	}
	return nil, ScopeGraphOutput{DOTSource: g.DOT, NodeCount: g.NodeCount, EdgeCount: g.EdgeCount}, nil
}
