package ui

import (
	"strings"

	"codenest/internal/api"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// LoginSubmitMsg asks the app layer to authenticate.
type LoginSubmitMsg struct {
	Credentials api.Credentials
}

// RegisterSubmitMsg asks the app layer to create an account.
type RegisterSubmitMsg struct {
	Registration api.Registration
}

// AuthPageModel is the combined login and registration form.
type AuthPageModel struct {
	registering bool
	name        textinput.Model
	email       textinput.Model
	password    textinput.Model
	remember    bool
	focus       int
	errText     string
	styles      Styles
	width       int
	height      int
}

// NewAuthPageModel creates the form in login mode.
func NewAuthPageModel(styles Styles) AuthPageModel {
	name := textinput.New()
	name.Placeholder = "Name"
	name.CharLimit = 100

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 200
	email.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 200

	return AuthPageModel{
		name:     name,
		email:    email,
		password: password,
		styles:   styles,
	}
}

// SetError surfaces an authentication failure on the form.
func (m *AuthPageModel) SetError(msg string) {
	m.errText = msg
}

// SetSize updates the size.
func (m *AuthPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.name.Width = 40
	m.email.Width = 40
	m.password.Width = 40
}

func (m *AuthPageModel) fieldCount() int {
	if m.registering {
		return 3 // name, email, password
	}
	return 3 // email, password, remember
}

func (m *AuthPageModel) setFocus(n int) {
	m.focus = n
	m.name.Blur()
	m.email.Blur()
	m.password.Blur()
	if m.registering {
		switch n {
		case 0:
			m.name.Focus()
		case 1:
			m.email.Focus()
		case 2:
			m.password.Focus()
		}
		return
	}
	switch n {
	case 0:
		m.email.Focus()
	case 1:
		m.password.Focus()
	}
}

func (m *AuthPageModel) submit() (tea.Msg, bool) {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()

	if m.registering {
		name := strings.TrimSpace(m.name.Value())
		if name == "" || email == "" || password == "" {
			m.errText = "Name, email and password are all required"
			return nil, false
		}
		return RegisterSubmitMsg{Registration: api.Registration{Name: name, Email: email, Password: password}}, true
	}

	if email == "" || password == "" {
		m.errText = "Email and password are required"
		return nil, false
	}
	return LoginSubmitMsg{Credentials: api.Credentials{Email: email, Password: password, Remember: m.remember}}, true
}

// Update handles messages.
func (m AuthPageModel) Update(msg tea.Msg) (AuthPageModel, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)
	if !isKey {
		return m, nil
	}

	switch key.String() {
	case "tab":
		m.setFocus((m.focus + 1) % m.fieldCount())
		return m, nil
	case "shift+tab":
		m.setFocus((m.focus + m.fieldCount() - 1) % m.fieldCount())
		return m, nil
	case "ctrl+r":
		m.registering = !m.registering
		m.errText = ""
		m.setFocus(0)
		return m, nil
	case " ":
		if !m.registering && m.focus == 2 {
			m.remember = !m.remember
			return m, nil
		}
	case "enter":
		out, ok := m.submit()
		if !ok {
			return m, nil
		}
		m.errText = ""
		return m, func() tea.Msg { return out }
	}

	var cmd tea.Cmd
	if m.registering {
		switch m.focus {
		case 0:
			m.name, cmd = m.name.Update(key)
		case 1:
			m.email, cmd = m.email.Update(key)
		case 2:
			m.password, cmd = m.password.Update(key)
		}
	} else {
		switch m.focus {
		case 0:
			m.email, cmd = m.email.Update(key)
		case 1:
			m.password, cmd = m.password.Update(key)
		}
	}
	return m, cmd
}

// View renders the form.
func (m AuthPageModel) View() string {
	var sb strings.Builder

	if m.registering {
		sb.WriteString(m.styles.Title.Render("Create your CodeNest account"))
		sb.WriteString("\n\n")
		sb.WriteString(m.name.View())
		sb.WriteString("\n")
		sb.WriteString(m.email.View())
		sb.WriteString("\n")
		sb.WriteString(m.password.View())
		sb.WriteString("\n\n")
		sb.WriteString(m.styles.Muted.Render("enter register  ctrl+r back to login  esc skip"))
	} else {
		sb.WriteString(m.styles.Title.Render("Sign in to CodeNest"))
		sb.WriteString("\n\n")
		sb.WriteString(m.email.View())
		sb.WriteString("\n")
		sb.WriteString(m.password.View())
		sb.WriteString("\n")

		check := "[ ]"
		if m.remember {
			check = "[x]"
		}
		line := check + " Remember me"
		if m.focus == 2 {
			line = m.styles.Bold.Render(line)
		} else {
			line = m.styles.Muted.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n\n")
		sb.WriteString(m.styles.Muted.Render("enter sign in  ctrl+r register  esc browse without account"))
	}

	if m.errText != "" {
		sb.WriteString("\n\n")
		sb.WriteString(m.styles.Error.Render(m.errText))
	}

	return m.styles.Content.Render(sb.String())
}
