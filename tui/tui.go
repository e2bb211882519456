// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Notification panel plus scoped record tabs over the CRM store
package tui

import (
	"context"
	"slices"
	"time"

	"github.com/abbrubin150-ui/crmhtml/belonging"
	"github.com/abbrubin150-ui/crmhtml/store"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen is the current TUI screen
type Screen int

const (
	ScreenList Screen = iota
	ScreenReschedule
)

// Tab is the collection shown on the list screen
type Tab int

const (
	TabNotifications Tab = iota
	TabMeetings
	TabTasks
	TabContacts
	TabActivity
)

var tabNames = []string{"Notifications", "Meetings", "Tasks", "Contacts", "Activity"}

// activityRows is how much of the session timeline the activity tab shows.
const activityRows = 20

// refreshInterval re-derives the view so day boundaries show up in long sessions.
const refreshInterval = time.Minute

type refreshMsg time.Time

// Model is the main bubbletea model
type Model struct {
	store  *store.Store
	screen Screen
	tab    Tab

	selectedRow int

	// Reschedule state
	input textinput.Model
	// target is the composite id of the notification being rescheduled.
	target string

	status string
	err    error

	width  int
	height int
}

// NewModel creates a new TUI model
func NewModel(s *store.Store) Model {
	input := textinput.New()
	input.Placeholder = "YYYY-MM-DD [HH:MM]"
	input.CharLimit = 16

	return Model{
		store:  s,
		screen: ScreenList,
		tab:    TabNotifications,
		input:  input,
		width:  80,
		height: 24,
	}
}

// Run starts the full-screen program.
func Run(s *store.Store) error {
	_, err := tea.NewProgram(NewModel(s), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case refreshMsg:
		m.store.Refresh()
		m.clampRow()
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	switch m.screen {
	case ScreenReschedule:
		return m.renderRescheduleView()
	default:
		return m.renderListView()
	}
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.screen {
	case ScreenReschedule:
		return m.handleRescheduleKeys(msg)
	default:
		return m.handleListKeys(msg)
	}
}

func (m *Model) dispatch(a store.Action, ok string) {
	if err := m.store.Dispatch(context.Background(), a); err != nil {
		m.err = err
		m.status = ""
		return
	}
	m.err = nil
	m.status = ok
	m.clampRow()
}

// cycleViewMode moves to the next view mode the user's role can reach.
func (m *Model) cycleViewMode() {
	v := m.store.View()
	if v.User == nil || len(v.AvailableModes) < 2 {
		return
	}
	i := slices.Index(v.AvailableModes, v.ViewMode)
	next := v.AvailableModes[(i+1)%len(v.AvailableModes)]
	m.dispatch(store.SwitchViewMode{Mode: next}, "Viewing "+belonging.ViewModeLabel(next))
	m.selectedRow = 0
}

func (m Model) rowCount() int {
	v := m.store.View()
	switch m.tab {
	case TabMeetings:
		return len(v.Meetings)
	case TabTasks:
		return len(v.Tasks)
	case TabContacts:
		return len(v.Contacts)
	case TabActivity:
		return len(m.store.Activity(activityRows))
	}
	return len(v.Notifications.Items)
}

func (m *Model) clampRow() {
	n := m.rowCount()
	if m.selectedRow >= n {
		m.selectedRow = n - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981"))
)
