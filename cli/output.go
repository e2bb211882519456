// ABOUTME: Shared output helpers for CLI commands
// ABOUTME: Table writer, severity colouring and comma-list flag parsing
package cli

import (
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/abbrubin150-ui/crmhtml/notify"
	"github.com/charmbracelet/lipgloss"
)

// stdout is swapped out by tests.
var stdout io.Writer = os.Stdout

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
}

var (
	highStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true)
	mediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b"))
	lowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b5cf6"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func severityLabel(s notify.Severity) string {
	switch s {
	case notify.SeverityHigh:
		return highStyle.Render("HIGH")
	case notify.SeverityMedium:
		return mediumStyle.Render("MED")
	}
	return lowStyle.Render("LOW")
}

// splitList parses a comma separated flag value, dropping blanks.
func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
