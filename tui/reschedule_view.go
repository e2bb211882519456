// ABOUTME: Reschedule screen for the TUI
// ABOUTME: Reads a new date and optional time for the selected meeting or task
package tui

import (
	"context"
	"strings"

	"github.com/abbrubin150-ui/crmhtml/notify"
	"github.com/abbrubin150-ui/crmhtml/store"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) handleRescheduleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeReschedule()
		return m, nil

	case "enter":
		item, ok := m.store.View().Notifications.Find(m.target)
		if !ok {
			m.closeReschedule()
			return m, nil
		}

		date, clock, _ := strings.Cut(strings.TrimSpace(m.input.Value()), " ")
		a := store.Reschedule{Kind: item.Kind, ID: item.RecordID, Date: date}
		if item.Kind == notify.KindMeeting {
			a.Time = strings.TrimSpace(clock)
		}
		if err := m.store.Dispatch(context.Background(), a); err != nil {
			// Stay on the screen so the input can be corrected.
			m.err = err
			return m, nil
		}
		m.closeReschedule()
		m.status = "Rescheduled " + item.Title + " to " + date
		m.clampRow()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeReschedule() {
	m.screen = ScreenList
	m.target = ""
	m.err = nil
	m.input.Blur()
	m.input.SetValue("")
}

func (m Model) renderRescheduleView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Reschedule"))
	s.WriteString("\n")
	if item, ok := m.store.View().Notifications.Find(m.target); ok {
		s.WriteString(item.Message)
		s.WriteString("\n\n")
	}
	s.WriteString("New date: ")
	s.WriteString(m.input.View())
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
	}

	s.WriteString(helpStyle.Render("enter: save • esc: cancel"))
	return s.String()
}
