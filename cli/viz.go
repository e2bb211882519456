// ABOUTME: Visualization CLI commands
// ABOUTME: Writes the role reachability graph as DOT
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/abbrubin150-ui/crmhtml/store"
	"github.com/abbrubin150-ui/crmhtml/viz"
)

// VizScopeCommand renders which roles reach which view modes.
func VizScopeCommand(s *store.Store, args []string) error {
	fs := flag.NewFlagSet("viz scope", flag.ContinueOnError)
	output := fs.String("output", "", "Output file (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	g, err := viz.GenerateScopeGraph(context.Background(), s.CurrentUser())
	if err != nil {
		return err
	}

	if *output != "" {
		return os.WriteFile(*output, []byte(g.DOT), 0644)
	}

	_, _ = fmt.Fprintln(stdout, g.DOT)
	return nil
}
