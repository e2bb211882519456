// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server on stdio over the scoped CRM store
package cli

import (
	"context"

	"github.com/abbrubin150-ui/crmhtml/handlers"
	"github.com/abbrubin150-ui/crmhtml/store"
	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewMCPServer builds the MCP server with every CRM tool and resource registered.
func NewMCPServer(s *store.Store, version string) *mcp.Server {
	viewHandlers := handlers.NewViewHandlers(s)
	recordHandlers := handlers.NewRecordHandlers(s)
	notificationHandlers := handlers.NewNotificationHandlers(s)
	resourceHandlers := handlers.NewResourceHandlers(s)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "crmhtml",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_view_modes",
		Description: "List the view modes the current user can switch to",
	}, viewHandlers.ListViewModes)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "switch_view_mode",
		Description: "Switch the current user's view mode; fails if their role cannot reach it",
	}, viewHandlers.SwitchViewMode)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_permission",
		Description: "Check whether the current user may perform an action on a resource",
	}, viewHandlers.CheckPermission)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scope_graph",
		Description: "Render which roles can reach which view modes as a DOT graph",
	}, viewHandlers.ScopeGraph)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_scoped_records",
		Description: "List contacts, meetings and tasks visible in the current view mode",
	}, recordHandlers.ListScopedRecords)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "evaluate_notifications",
		Description: "Evaluate overdue, today and upcoming notifications for the current view",
	}, notificationHandlers.EvaluateNotifications)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dismiss_notification",
		Description: "Dismiss (or with undo, restore) a notification without touching its record",
	}, notificationHandlers.DismissNotification)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "mark_notification_done",
		Description: "Complete the meeting or task behind a notification",
	}, notificationHandlers.MarkNotificationDone)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reschedule_notification",
		Description: "Move the meeting or task behind a notification to a new date",
	}, notificationHandlers.RescheduleNotification)

	for _, r := range resourceHandlers.Resources() {
		server.AddResource(r, resourceHandlers.ReadResource)
	}

	return server
}

// MCPCommand starts the MCP server on stdio, refreshing the view on schedule
// while it runs.
func MCPCommand(s *store.Store, logger *log.Logger, version, schedule string) error {
	refresher, err := StartRefresher(s, logger, schedule)
	if err != nil {
		return err
	}
	defer refresher.Stop()

	logger.Info("starting CRM MCP server", "version", version, "refresh", schedule)
	return NewMCPServer(s, version).Run(context.Background(), &mcp.StdioTransport{})
}
