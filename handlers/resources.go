// ABOUTME: MCP resource handlers exposing the scoped CRM view
// ABOUTME: Serves the view, notification feed, users and session activity as JSON
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abbrubin150-ui/crmhtml/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// activityLimit caps the entries returned by crm://activity.
const activityLimit = 50

type ResourceHandlers struct {
	store *store.Store
}

func NewResourceHandlers(s *store.Store) *ResourceHandlers {
	return &ResourceHandlers{store: s}
}

// Resources lists the URIs ReadResource can serve.
func (h *ResourceHandlers) Resources() []*mcp.Resource {
	return []*mcp.Resource{
		{URI: "crm://view", Name: "view", Description: "Records, dashboard and notifications in the current view mode", MIMEType: "application/json"},
		{URI: "crm://notifications", Name: "notifications", Description: "Current notification feed", MIMEType: "application/json"},
		{URI: "crm://users", Name: "users", Description: "All users with their roles and view modes", MIMEType: "application/json"},
		{URI: "crm://activity", Name: "activity", Description: "Changes made since the server started, newest first", MIMEType: "application/json"},
	}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(_ context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, "crm://") {
		return nil, fmt.Errorf("invalid URI scheme: expected crm://")
	}

	var payload any
	switch strings.TrimPrefix(uri, "crm://") {
	case "view":
		payload = h.store.View()
	case "notifications":
		payload = h.store.View().Notifications
	case "users":
		payload = h.store.Users()
	case "activity":
		payload = h.store.Activity(activityLimit)
	default:
		return nil, fmt.Errorf("unknown resource: %s", uri)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
