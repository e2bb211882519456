// ABOUTME: Terminal dashboard rendering for the scoped CRM view
// ABOUTME: Prints headline counts and a bar per notification group
package viz

import (
	"fmt"
	"strings"

	"github.com/abbrubin150-ui/crmhtml/belonging"
	"github.com/abbrubin150-ui/crmhtml/store"
)

func RenderDashboard(v store.View) string {
	var out strings.Builder

	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	out.WriteString("  CRM DASHBOARD\n")
	out.WriteString("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

	if v.User != nil {
		out.WriteString(fmt.Sprintf("  %s (%s) viewing %s\n\n", v.User.Name, v.User.Role, belonging.ViewModeLabel(v.ViewMode)))
	} else {
		out.WriteString("  nobody signed in, showing all data\n\n")
	}

	d := v.Dashboard
	out.WriteString("STATS\n")
	out.WriteString(fmt.Sprintf("  📇 %d contacts (%d important)\n", d.Contacts, d.ImportantContacts))
	out.WriteString(fmt.Sprintf("  ✅ %d open tasks, %d overdue\n", d.OpenTasks, d.OverdueTasks))
	out.WriteString(fmt.Sprintf("  📅 %d meetings today, %d in the next 7 days\n\n", d.MeetingsToday, d.MeetingsNext7Days))

	if len(v.Notifications.Groups) > 0 {
		out.WriteString(fmt.Sprintf("NEEDS ATTENTION (%d urgent)\n", d.Alerts))
		renderGroups(&out, v)
	}

	return out.String()
}

func renderGroups(out *strings.Builder, v store.View) {
	maxCount := 1
	for _, g := range v.Notifications.Groups {
		if len(g.Items) > maxCount {
			maxCount = len(g.Items)
		}
	}

	for _, g := range v.Notifications.Groups {
		barLength := (len(g.Items) * 10) / maxCount
		bar := strings.Repeat("█", barLength) + strings.Repeat("░", 10-barLength)
		out.WriteString(fmt.Sprintf("  %-18s %s  %2d\n", g.Label, bar, len(g.Items)))
	}
}
