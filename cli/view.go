// ABOUTME: View-mode and permission CLI commands
// ABOUTME: Lists and switches view modes, shows the scoped dashboard and checks permissions
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/abbrubin150-ui/crmhtml/belonging"
	"github.com/abbrubin150-ui/crmhtml/models"
	"github.com/abbrubin150-ui/crmhtml/store"
	"github.com/abbrubin150-ui/crmhtml/viz"
)

// ViewModesCommand lists the modes the current user can switch to.
func ViewModesCommand(s *store.Store, _ []string) error {
	v := s.View()
	if v.User == nil {
		return store.ErrNoCurrentUser
	}

	w := newTable()
	_, _ = fmt.Fprintln(w, "\tMODE\tLABEL")
	for _, mode := range v.AvailableModes {
		marker := ""
		if mode == v.ViewMode {
			marker = "*"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", marker, mode, belonging.ViewModeLabel(mode))
	}
	return w.Flush()
}

// ViewSwitchCommand changes the current user's view mode.
func ViewSwitchCommand(s *store.Store, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("view mode required")
	}
	mode := models.ViewMode(args[0])
	if !belonging.IsKnownViewMode(mode) {
		return fmt.Errorf("unknown view mode: %s", args[0])
	}

	if err := s.Dispatch(context.Background(), store.SwitchViewMode{Mode: mode}); err != nil {
		return err
	}

	v := s.View()
	_, _ = fmt.Fprintf(stdout, "✓ Now viewing %s: %d contacts, %d meetings, %d tasks\n",
		belonging.ViewModeLabel(mode), len(v.Contacts), len(v.Meetings), len(v.Tasks))
	return nil
}

// ViewShowCommand prints the dashboard for the current view.
func ViewShowCommand(s *store.Store, _ []string) error {
	_, _ = fmt.Fprint(stdout, viz.RenderDashboard(s.View()))
	return nil
}

// PermCheckCommand reports whether the current user may perform an action.
func PermCheckCommand(s *store.Store, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: perm check <resource> <action>")
	}
	resource, action := models.Resource(args[0]), models.Action(args[1])

	if s.HasPermission(resource, action) {
		_, _ = fmt.Fprintf(stdout, "✓ allowed: %s %s\n", action, resource)
		return nil
	}
	return fmt.Errorf("%w: %s %s", belonging.ErrPermissionDenied, action, resource)
}

// PermShowCommand prints the current user's permission matrix.
func PermShowCommand(s *store.Store, _ []string) error {
	w := newTable()
	_, _ = fmt.Fprintln(w, "RESOURCE\tALLOWED\tDENIED")
	_, _ = fmt.Fprintln(w, "--------\t-------\t------")
	for _, r := range belonging.Resources() {
		var allowed, denied []string
		for _, a := range belonging.Actions(r) {
			if s.HasPermission(r, a) {
				allowed = append(allowed, string(a))
			} else {
				denied = append(denied, string(a))
			}
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r, orDash(strings.Join(allowed, ",")), dimStyle.Render(orDash(strings.Join(denied, ","))))
	}
	return w.Flush()
}
