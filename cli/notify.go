// ABOUTME: Notification CLI commands
// ABOUTME: Lists the grouped feed and applies dismiss, done, reschedule and clear actions
package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/abbrubin150-ui/crmhtml/handlers"
	"github.com/abbrubin150-ui/crmhtml/models"
	"github.com/abbrubin150-ui/crmhtml/notify"
	"github.com/abbrubin150-ui/crmhtml/store"
)

// NotifyListCommand prints the notification feed grouped by label.
func NotifyListCommand(s *store.Store, args []string) error {
	fs := flag.NewFlagSet("notify list", flag.ContinueOnError)
	dismissed := fs.Bool("dismissed", false, "List dismissed keys instead")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *dismissed {
		for _, k := range s.Dismissed().Keys() {
			_, _ = fmt.Fprintln(stdout, k)
		}
		return nil
	}

	feed := s.View().Notifications
	if len(feed.Items) == 0 {
		_, _ = fmt.Fprintln(stdout, "No notifications")
		return nil
	}

	_, _ = fmt.Fprintf(stdout, "🔔 %d urgent, %d total\n\n", feed.BadgeCount, len(feed.Items))
	for _, g := range feed.Groups {
		_, _ = fmt.Fprintf(stdout, "%s (%d)\n", g.Label, len(g.Items))
		w := newTable()
		for _, it := range g.Items {
			_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\n", severityLabel(it.Severity), it.ID, it.Message)
		}
		_ = w.Flush()
		_, _ = fmt.Fprintln(stdout)
	}
	return nil
}

func parseRefArgs(args []string) (notify.Kind, string, error) {
	if len(args) < 2 {
		return "", "", fmt.Errorf("usage: <kind> <id>")
	}
	kind, err := handlers.ParseKind(args[0])
	if err != nil {
		return "", "", err
	}
	return kind, args[1], nil
}

// NotifyDismissCommand hides a notification until undismissed.
func NotifyDismissCommand(s *store.Store, args []string) error {
	kind, id, err := parseRefArgs(args)
	if err != nil {
		return err
	}
	if err := s.Dispatch(context.Background(), store.Dismiss{Kind: kind, ID: id}); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "✓ Dismissed %s\n", notify.Key(kind, id))
	return nil
}

// NotifyUndismissCommand restores a dismissed notification.
func NotifyUndismissCommand(s *store.Store, args []string) error {
	kind, id, err := parseRefArgs(args)
	if err != nil {
		return err
	}
	if err := s.Dispatch(context.Background(), store.Undismiss{Kind: kind, ID: id}); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "✓ Restored %s\n", notify.Key(kind, id))
	return nil
}

// NotifyDoneCommand completes the meeting or task behind a notification.
func NotifyDoneCommand(s *store.Store, args []string) error {
	kind, id, err := parseRefArgs(args)
	if err != nil {
		return err
	}
	if err := requirePermission(s, handlers.ResourceForKind(kind), models.ActionEdit); err != nil {
		return err
	}
	if err := s.Dispatch(context.Background(), store.MarkDone{Kind: kind, ID: id}); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "✓ Marked %s %s as done\n", kind, id)
	return nil
}

// NotifyRescheduleCommand moves the meeting or task behind a notification.
func NotifyRescheduleCommand(s *store.Store, args []string) error {
	fs := flag.NewFlagSet("notify reschedule", flag.ContinueOnError)
	at := fs.String("time", "", "New time HH:MM (meetings only)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 3 {
		return fmt.Errorf("usage: notify reschedule [--time HH:MM] <kind> <id> <date>")
	}

	kind, id, err := parseRefArgs(fs.Args())
	if err != nil {
		return err
	}
	if err := requirePermission(s, handlers.ResourceForKind(kind), models.ActionEdit); err != nil {
		return err
	}
	date := fs.Arg(2)
	if err := s.Dispatch(context.Background(), store.Reschedule{Kind: kind, ID: id, Date: date, Time: *at}); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "✓ Rescheduled %s %s to %s\n", kind, id, date)
	return nil
}

// NotifyClearCommand dismisses every notification in the current feed.
func NotifyClearCommand(s *store.Store, _ []string) error {
	n := len(s.View().Notifications.Items)
	if err := s.Dispatch(context.Background(), store.ClearAll{}); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(stdout, "✓ Cleared %d notifications\n", n)
	return nil
}
