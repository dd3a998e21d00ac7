package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

var _ tea.Model = Model{}

// View renders the header, the active page, and a one-line status bar.
func (m Model) View() string {
	if !m.booted {
		return m.styles.Content.Render("Connecting to CodeNest...")
	}

	var sb strings.Builder
	sb.WriteString(m.header())
	sb.WriteString("\n")

	switch m.page {
	case pageAuth:
		sb.WriteString(m.auth.View())
	case pageViewer:
		sb.WriteString(m.viewer.View())
	case pageCreate:
		sb.WriteString(m.create.View())
	case pageGroups:
		sb.WriteString(m.groups.View())
	case pageMessages:
		sb.WriteString(m.messages.View())
	default:
		if m.openActive {
			sb.WriteString(m.styles.Content.Render("Open snippet by id:\n" + m.openInput.View()))
		} else {
			sb.WriteString(m.latest.View())
		}
	}

	if m.status != "" {
		sb.WriteString("\n")
		sb.WriteString(m.styles.Muted.Render(m.status))
	}
	return sb.String()
}

func (m Model) header() string {
	title := m.styles.Header.Render(" CodeNest ")
	who := "browsing anonymously, l to sign in"
	if user := m.state.Current(); user != nil {
		who = user.Name + ", l to sign out"
	}
	return title + " " + m.styles.Muted.Render(who)
}
