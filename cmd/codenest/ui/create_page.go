package ui

import (
	"fmt"
	"strconv"
	"strings"

	"codenest/internal/api"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// CreateSubmitMsg asks the app layer to send the snippet to the server.
type CreateSubmitMsg struct {
	Request api.CreateSnippetRequest
}

// Fields of the create form, in tab order.
const (
	fieldTitle = iota
	fieldContent
	fieldExpiration
	fieldValue
	fieldTags
	fieldCount
)

var expirationChoices = []string{api.ExpirationNone, api.ExpirationTime, api.ExpirationViews}

// CreatePageModel is the snippet creation form.
type CreatePageModel struct {
	title    textinput.Model
	content  textarea.Model
	value    textinput.Model
	tags     textinput.Model
	expIndex int
	focus    int
	errText  string
	styles   Styles
	width    int
	height   int
}

// NewCreatePageModel creates an empty form.
func NewCreatePageModel(styles Styles) CreatePageModel {
	title := textinput.New()
	title.Placeholder = "Title (optional)"
	title.CharLimit = 120
	title.Focus()

	content := textarea.New()
	content.Placeholder = "Paste your code here..."
	content.CharLimit = 0

	value := textinput.New()
	value.Placeholder = "seconds / views"
	value.CharLimit = 10

	tags := textinput.New()
	tags.Placeholder = "tags, comma, separated"
	tags.CharLimit = 200

	return CreatePageModel{
		title:   title,
		content: content,
		value:   value,
		tags:    tags,
		styles:  styles,
	}
}

// Reset clears the form for a fresh snippet.
func (m *CreatePageModel) Reset() {
	m.title.SetValue("")
	m.content.SetValue("")
	m.value.SetValue("")
	m.tags.SetValue("")
	m.expIndex = 0
	m.errText = ""
	m.setFocus(fieldTitle)
}

// SetError surfaces a server-side rejection on the form.
func (m *CreatePageModel) SetError(msg string) {
	m.errText = msg
}

// SetSize updates the size.
func (m *CreatePageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.title.Width = w - 8
	m.value.Width = 20
	m.tags.Width = w - 8
	m.content.SetWidth(w - 8)
	contentH := h - 14
	if contentH < 3 {
		contentH = 3
	}
	m.content.SetHeight(contentH)
}

func (m *CreatePageModel) setFocus(field int) {
	m.focus = field
	m.title.Blur()
	m.content.Blur()
	m.value.Blur()
	m.tags.Blur()
	switch field {
	case fieldTitle:
		m.title.Focus()
	case fieldContent:
		m.content.Focus()
	case fieldValue:
		m.value.Focus()
	case fieldTags:
		m.tags.Focus()
	}
}

// request validates the form into an API request.
func (m *CreatePageModel) request() (api.CreateSnippetRequest, error) {
	content := m.content.Value()
	if strings.TrimSpace(content) == "" {
		return api.CreateSnippetRequest{}, fmt.Errorf("snippet content is required")
	}

	req := api.CreateSnippetRequest{
		Title:   strings.TrimSpace(m.title.Value()),
		Content: content,
	}

	expType := expirationChoices[m.expIndex]
	if expType != api.ExpirationNone {
		raw := strings.TrimSpace(m.value.Value())
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			if expType == api.ExpirationTime {
				return api.CreateSnippetRequest{}, fmt.Errorf("time expiration needs a positive number of seconds")
			}
			return api.CreateSnippetRequest{}, fmt.Errorf("view expiration needs a positive number of views")
		}
		req.ExpirationType = expType
		req.ExpirationValue = n
	}

	for _, tag := range strings.Split(m.tags.Value(), ",") {
		if t := strings.TrimSpace(tag); t != "" {
			req.Tags = append(req.Tags, t)
		}
	}
	return req, nil
}

// Update handles messages.
func (m CreatePageModel) Update(msg tea.Msg) (CreatePageModel, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab":
			m.setFocus((m.focus + 1) % fieldCount)
			return m, nil
		case "shift+tab":
			m.setFocus((m.focus + fieldCount - 1) % fieldCount)
			return m, nil
		case "ctrl+s":
			req, err := m.request()
			if err != nil {
				m.errText = err.Error()
				return m, nil
			}
			m.errText = ""
			return m, func() tea.Msg { return CreateSubmitMsg{Request: req} }
		case "left", "right":
			if m.focus == fieldExpiration {
				if key.String() == "right" {
					m.expIndex = (m.expIndex + 1) % len(expirationChoices)
				} else {
					m.expIndex = (m.expIndex + len(expirationChoices) - 1) % len(expirationChoices)
				}
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case fieldTitle:
		m.title, cmd = m.title.Update(msg)
	case fieldContent:
		m.content, cmd = m.content.Update(msg)
	case fieldValue:
		m.value, cmd = m.value.Update(msg)
	case fieldTags:
		m.tags, cmd = m.tags.Update(msg)
	}
	return m, cmd
}

// View renders the form.
func (m CreatePageModel) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("New Snippet"))
	sb.WriteString("\n\n")

	sb.WriteString(m.fieldLabel("Title", fieldTitle))
	sb.WriteString("\n")
	sb.WriteString(m.title.View())
	sb.WriteString("\n\n")

	sb.WriteString(m.fieldLabel("Code", fieldContent))
	sb.WriteString("\n")
	sb.WriteString(m.content.View())
	sb.WriteString("\n\n")

	sb.WriteString(m.fieldLabel("Expiration", fieldExpiration))
	sb.WriteString("  ")
	for i, choice := range expirationChoices {
		label := expirationLabel(choice)
		if i == m.expIndex {
			sb.WriteString(m.styles.Badge.Render(label))
		} else {
			sb.WriteString(m.styles.Muted.Render(label))
		}
		sb.WriteString(" ")
	}
	sb.WriteString("\n")

	if expirationChoices[m.expIndex] != api.ExpirationNone {
		sb.WriteString(m.fieldLabel(expirationUnit(expirationChoices[m.expIndex]), fieldValue))
		sb.WriteString(" ")
		sb.WriteString(m.value.View())
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(m.fieldLabel("Tags", fieldTags))
	sb.WriteString("\n")
	sb.WriteString(m.tags.View())
	sb.WriteString("\n\n")

	if m.errText != "" {
		sb.WriteString(m.styles.Error.Render(m.errText))
		sb.WriteString("\n\n")
	}

	sb.WriteString(m.styles.Muted.Render("tab next field  ←/→ change expiration  ctrl+s publish  esc back"))
	return m.styles.Content.Render(sb.String())
}

func (m CreatePageModel) fieldLabel(name string, field int) string {
	if m.focus == field {
		return m.styles.Bold.Render("> " + name)
	}
	return m.styles.Muted.Render("  " + name)
}

func expirationLabel(choice string) string {
	switch choice {
	case api.ExpirationTime:
		return "[ Time ]"
	case api.ExpirationViews:
		return "[ Views ]"
	default:
		return "[ Never ]"
	}
}

func expirationUnit(choice string) string {
	if choice == api.ExpirationTime {
		return "Seconds"
	}
	return "Views"
}
