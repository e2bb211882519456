// ABOUTME: Scheduled re-derivation for long-running commands
// ABOUTME: Uses cron so notifications roll over at day boundaries without a new action
package cli

import (
	"fmt"

	"github.com/abbrubin150-ui/crmhtml/store"
	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

// StartRefresher calls s.Refresh on the given cron schedule until the
// returned scheduler is stopped.
func StartRefresher(s *store.Store, logger *log.Logger, schedule string) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		s.Refresh()
		logger.Debug("view refreshed", "alerts", s.View().Notifications.BadgeCount)
	}); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}
	c.Start()
	return c, nil
}
