// ABOUTME: List screen for the TUI: notification feed and scoped record tabs
// ABOUTME: Handles navigation plus dismiss, done, read and clear actions on notifications
package tui

import (
	"fmt"
	"strings"

	"github.com/abbrubin150-ui/crmhtml/belonging"
	"github.com/abbrubin150-ui/crmhtml/handlers"
	"github.com/abbrubin150-ui/crmhtml/models"
	"github.com/abbrubin150-ui/crmhtml/notify"
	"github.com/abbrubin150-ui/crmhtml/store"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/xeonx/timeago"
)

var severityStyles = map[notify.Severity]lipgloss.Style{
	notify.SeverityHigh:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef4444")),
	notify.SeverityMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")),
	notify.SeverityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280")),
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit

	case "tab":
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		m.selectedRow = 0
		m.status = ""

	case "shift+tab":
		m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
		m.selectedRow = 0
		m.status = ""

	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}

	case "down", "j":
		if m.selectedRow < m.rowCount()-1 {
			m.selectedRow++
		}

	case "v":
		m.cycleViewMode()

	case "a":
		if m.tab == TabNotifications {
			m.dispatch(store.MarkAllRead{}, "All notifications marked read")
		}

	case "x":
		if m.tab == TabNotifications {
			m.dispatch(store.ClearAll{}, "Notifications cleared")
		}

	case "d", "c", "r", "s":
		item, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		return m.handleItemKey(msg.String(), item)
	}

	return m, nil
}

func (m Model) handleItemKey(key string, item notify.Item) (tea.Model, tea.Cmd) {
	switch key {
	case "d":
		m.dispatch(store.Dismiss{Kind: item.Kind, ID: item.RecordID}, "Dismissed "+item.Title)
	case "r":
		m.dispatch(store.MarkRead{Key: item.ID}, "")
	case "c":
		if !m.canEdit(item) {
			return m, nil
		}
		m.dispatch(store.MarkDone{Kind: item.Kind, ID: item.RecordID}, "Completed "+item.Title)
	case "s":
		if item.Kind == notify.KindContact {
			m.err = fmt.Errorf("%w: reschedule on %s", store.ErrUnsupportedAction, item.Kind)
			return m, nil
		}
		if !m.canEdit(item) {
			return m, nil
		}
		m.screen = ScreenReschedule
		m.target = item.ID
		m.err = nil
		m.input.SetValue("")
		return m, m.input.Focus()
	}
	return m, nil
}

// canEdit reports whether the signed-in user may change the record behind item.
func (m *Model) canEdit(item notify.Item) bool {
	resource := handlers.ResourceForKind(item.Kind)
	if !m.store.HasPermission(resource, models.ActionEdit) {
		m.err = fmt.Errorf("%w: %s %s", belonging.ErrPermissionDenied, models.ActionEdit, resource)
		return false
	}
	return true
}

func (m Model) selectedItem() (notify.Item, bool) {
	if m.tab != TabNotifications {
		return notify.Item{}, false
	}
	items := displayOrder(m.store.View().Notifications)
	if m.selectedRow < 0 || m.selectedRow >= len(items) {
		return notify.Item{}, false
	}
	return items[m.selectedRow], true
}

// displayOrder flattens the feed's groups, which is the order rows are drawn in.
func displayOrder(feed notify.Feed) []notify.Item {
	items := make([]notify.Item, 0, len(feed.Items))
	for _, g := range feed.Groups {
		items = append(items, g.Items...)
	}
	return items
}

func (m Model) renderListView() string {
	v := m.store.View()
	var s strings.Builder

	s.WriteString(titleStyle.Render("CRM"))
	s.WriteString("\n")
	s.WriteString(m.renderHeader(v))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs(v))
	s.WriteString("\n\n")

	switch m.tab {
	case TabNotifications:
		s.WriteString(m.renderNotifications(v))
	case TabMeetings:
		s.WriteString(m.renderMeetings(v))
	case TabTasks:
		s.WriteString(m.renderTasks(v))
	case TabContacts:
		s.WriteString(m.renderContacts(v))
	case TabActivity:
		s.WriteString(m.renderActivity())
	}

	s.WriteString("\n")
	if m.err != nil {
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
	} else if m.status != "" {
		s.WriteString(statusStyle.Render(m.status))
		s.WriteString("\n")
	}

	help := "tab: switch • ↑/k ↓/j: navigate • v: view mode • q: quit"
	if m.tab == TabNotifications {
		help = "d: dismiss • c: done • s: reschedule • r: read • a: all read • x: clear\n" + help
	}
	s.WriteString(helpStyle.Render(help))

	return s.String()
}

func (m Model) renderHeader(v store.View) string {
	if v.User == nil {
		return "Not signed in, showing all records"
	}
	return fmt.Sprintf("%s (%s) • %s • %d unread",
		v.User.Name, v.User.Role, belonging.ViewModeLabel(v.ViewMode), v.Notifications.UnreadCount)
}

func (m Model) renderTabs(v store.View) string {
	counts := []int{len(v.Notifications.Items), len(v.Meetings), len(v.Tasks), len(v.Contacts), len(m.store.Activity(activityRows))}
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		label := fmt.Sprintf("%s (%d)", name, counts[i])
		if Tab(i) == m.tab {
			tabs[i] = tabActiveStyle.Render(label)
		} else {
			tabs[i] = tabInactiveStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) renderNotifications(v store.View) string {
	if len(v.Notifications.Items) == 0 {
		return "No notifications"
	}

	var s strings.Builder
	row := 0
	for _, g := range v.Notifications.Groups {
		style := severityStyles[g.Severity]
		s.WriteString(style.Render(fmt.Sprintf("%s (%d)", g.Label, len(g.Items))))
		s.WriteString("\n")
		for _, it := range g.Items {
			cursor := "  "
			if row == m.selectedRow {
				cursor = "> "
			}
			marker := "•"
			if it.Read {
				marker = " "
			}
			line := fmt.Sprintf("%s%s %s", cursor, marker, it.Message)
			if row == m.selectedRow {
				line = style.Render(line)
			}
			s.WriteString(line)
			s.WriteString("\n")
			row++
		}
	}
	return s.String()
}

func (m Model) renderTable(columns []table.Column, rows []table.Row) string {
	if len(rows) == 0 {
		return "No records in this view"
	}

	height := m.height - 12
	if height < 5 {
		height = 5
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(styles)
	t.SetCursor(m.selectedRow)

	return t.View()
}

func (m Model) renderMeetings(v store.View) string {
	columns := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Time", Width: 6},
		{Title: "Contact", Width: 24},
		{Title: "Status", Width: 12},
		{Title: "Owner", Width: 16},
	}
	rows := make([]table.Row, len(v.Meetings))
	for i, mt := range v.Meetings {
		rows[i] = table.Row{mt.Date, mt.Time, mt.ContactName, mt.Status, mt.Owner}
	}
	return m.renderTable(columns, rows)
}

func (m Model) renderTasks(v store.View) string {
	columns := []table.Column{
		{Title: "Due", Width: 12},
		{Title: "Task", Width: 28},
		{Title: "Priority", Width: 10},
		{Title: "Status", Width: 12},
		{Title: "Owner", Width: 16},
	}
	rows := make([]table.Row, len(v.Tasks))
	for i, t := range v.Tasks {
		rows[i] = table.Row{t.Due, t.Task, t.Priority, t.Status, t.Owner}
	}
	return m.renderTable(columns, rows)
}

func (m Model) renderContacts(v store.View) string {
	columns := []table.Column{
		{Title: "", Width: 2},
		{Title: "Name", Width: 24},
		{Title: "Stage", Width: 14},
		{Title: "Status", Width: 12},
		{Title: "Owner", Width: 16},
	}
	rows := make([]table.Row, len(v.Contacts))
	for i, c := range v.Contacts {
		star := ""
		if c.Important {
			star = "★"
		}
		rows[i] = table.Row{star, c.Name, c.Stage, c.Status, c.Owner}
	}
	return m.renderTable(columns, rows)
}

func (m Model) renderActivity() string {
	entries := m.store.Activity(activityRows)
	if len(entries) == 0 {
		return "No activity this session"
	}

	columns := []table.Column{
		{Title: "When", Width: 16},
		{Title: "Verb", Width: 14},
		{Title: "Summary", Width: 48},
	}
	rows := make([]table.Row, len(entries))
	for i, e := range entries {
		rows[i] = table.Row{timeago.English.Format(e.At), string(e.Verb), e.Summary}
	}
	return m.renderTable(columns, rows)
}
