package ui

import (
	"fmt"
	"strings"

	"codenest/internal/api"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

// Messages the messages page emits for the app layer.
type (
	// MessagesReloadMsg asks for a fresh inbox or sent listing.
	MessagesReloadMsg struct{ Box string } // "inbox" or "sent"
	// ConversationOpenMsg asks for the thread with one user.
	ConversationOpenMsg struct{ UserID int64 }
	// MessageSendMsg asks the server to deliver a direct message.
	MessageSendMsg struct{ Request api.SendMessageRequest }
	// OpenSnippetMsg jumps to the viewer for a snippet attached to a message.
	OpenSnippetMsg struct{ UUID string }
)

type messagesMode int

const (
	messagesModeList messagesMode = iota
	messagesModeThread
	messagesModeCompose
)

// MessagesPageModel shows direct messages: inbox and sent listings, one
// conversation thread, and a compose form. Message bodies are markdown and
// rendered through glamour.
type MessagesPageModel struct {
	mode     messagesMode
	box      string
	messages []api.Message
	cursor   int

	thread   *api.Conversation
	threadVP viewport.Model

	recipient textinput.Model
	body      textinput.Model
	attach    textinput.Model
	composeAt int // 0 recipient, 1 body, 2 attach

	renderer *glamour.TermRenderer
	notice   string
	styles   Styles
	width    int
	height   int
}

// NewMessagesPageModel creates the messages page.
func NewMessagesPageModel(styles Styles) MessagesPageModel {
	recipient := textinput.New()
	recipient.Placeholder = "Recipient email"
	body := textinput.New()
	body.Placeholder = "Message (markdown ok)"
	attach := textinput.New()
	attach.Placeholder = "Snippet id to attach (optional)"

	var renderer *glamour.TermRenderer
	if styles.Theme.IsDark {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
	} else {
		renderer, _ = glamour.NewTermRenderer(
			glamour.WithStylePath("light"),
			glamour.WithWordWrap(80),
		)
	}

	return MessagesPageModel{
		box:       "inbox",
		threadVP:  viewport.New(80, 20),
		recipient: recipient,
		body:      body,
		attach:    attach,
		renderer:  renderer,
		styles:    styles,
	}
}

// SetSize updates the size.
func (m *MessagesPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.threadVP.Width = w
	m.threadVP.Height = h - 4
	m.recipient.Width = w - 10
	m.body.Width = w - 10
	m.attach.Width = w - 10
	if m.renderer != nil {
		m.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(w-8),
		)
	}
	if m.mode == messagesModeThread {
		m.renderThread()
	}
}

// UpdateListing replaces the inbox or sent listing.
func (m *MessagesPageModel) UpdateListing(box string, messages []api.Message) {
	m.box = box
	m.messages = messages
	m.mode = messagesModeList
	if m.cursor >= len(messages) {
		m.cursor = 0
	}
}

// UpdateThread fills in one conversation.
func (m *MessagesPageModel) UpdateThread(conv *api.Conversation) {
	m.thread = conv
	m.mode = messagesModeThread
	m.renderThread()
}

// SetNotice shows a one-line status message.
func (m *MessagesPageModel) SetNotice(msg string) {
	m.notice = msg
}

// AtRoot reports whether the page is at its top-level listing.
func (m *MessagesPageModel) AtRoot() bool {
	return m.mode == messagesModeList
}

func (m *MessagesPageModel) markdown(content string) string {
	if m.renderer == nil {
		return content
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

func (m *MessagesPageModel) renderThread() {
	if m.thread == nil {
		return
	}
	var sb strings.Builder

	name := "conversation"
	if m.thread.OtherUser != nil {
		name = m.thread.OtherUser.Username
	}
	sb.WriteString(m.styles.Title.Render("Conversation with " + name))
	sb.WriteString("\n\n")

	for _, msg := range m.thread.Messages {
		who := name
		if msg.Direction == "sent" {
			who = "you"
		}
		sb.WriteString(m.styles.Bold.Render(who))
		sb.WriteString(m.styles.Muted.Render("  " + msg.SentAt))
		sb.WriteString("\n")
		sb.WriteString(m.markdown(msg.Content))
		sb.WriteString("\n")
		if msg.SnippetUUID != "" {
			sb.WriteString(m.styles.Badge.Render("snippet: " + msg.SnippetUUID))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	m.threadVP.SetContent(sb.String())
	m.threadVP.GotoBottom()
}

func (m *MessagesPageModel) startCompose(to string) {
	m.mode = messagesModeCompose
	m.recipient.SetValue(to)
	m.body.SetValue("")
	m.attach.SetValue("")
	m.composeAt = 0
	if to != "" {
		m.composeAt = 1
	}
	m.focusCompose()
}

func (m *MessagesPageModel) focusCompose() {
	m.recipient.Blur()
	m.body.Blur()
	m.attach.Blur()
	switch m.composeAt {
	case 0:
		m.recipient.Focus()
	case 1:
		m.body.Focus()
	default:
		m.attach.Focus()
	}
}

// Update handles messages.
func (m MessagesPageModel) Update(msg tea.Msg) (MessagesPageModel, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)
	if !isKey {
		var cmd tea.Cmd
		m.threadVP, cmd = m.threadVP.Update(msg)
		return m, cmd
	}

	switch m.mode {
	case messagesModeCompose:
		return m.updateCompose(key)
	case messagesModeThread:
		return m.updateThread(key)
	default:
		return m.updateList(key)
	}
}

func (m MessagesPageModel) updateList(key tea.KeyMsg) (MessagesPageModel, tea.Cmd) {
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.messages)-1 {
			m.cursor++
		}
	case "tab":
		box := "inbox"
		if m.box == "inbox" {
			box = "sent"
		}
		return m, func() tea.Msg { return MessagesReloadMsg{Box: box} }
	case "enter":
		if m.cursor < len(m.messages) {
			msg := m.messages[m.cursor]
			other := msg.SenderID
			if m.box == "sent" {
				other = msg.ReceiverID
			}
			return m, func() tea.Msg { return ConversationOpenMsg{UserID: other} }
		}
	case "n":
		m.startCompose("")
	}
	return m, nil
}

func (m MessagesPageModel) updateThread(key tea.KeyMsg) (MessagesPageModel, tea.Cmd) {
	switch key.String() {
	case "esc", "backspace":
		m.mode = messagesModeList
		box := m.box
		return m, func() tea.Msg { return MessagesReloadMsg{Box: box} }
	case "r":
		if m.thread != nil && m.thread.OtherUser != nil {
			m.startCompose(m.thread.OtherUser.Username)
		}
		return m, nil
	case "o":
		// Open the most recent attached snippet in the thread.
		if m.thread != nil {
			for i := len(m.thread.Messages) - 1; i >= 0; i-- {
				if id := m.thread.Messages[i].SnippetUUID; id != "" {
					return m, func() tea.Msg { return OpenSnippetMsg{UUID: id} }
				}
			}
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.threadVP, cmd = m.threadVP.Update(key)
	return m, cmd
}

func (m MessagesPageModel) updateCompose(key tea.KeyMsg) (MessagesPageModel, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.mode = messagesModeList
		return m, nil
	case "tab":
		m.composeAt = (m.composeAt + 1) % 3
		m.focusCompose()
		return m, nil
	case "enter":
		req := api.SendMessageRequest{
			ReceiverEmail: strings.TrimSpace(m.recipient.Value()),
			Content:       m.body.Value(),
			SnippetUUID:   strings.TrimSpace(m.attach.Value()),
		}
		if req.ReceiverEmail == "" || strings.TrimSpace(req.Content) == "" {
			m.notice = "Recipient and message are required"
			return m, nil
		}
		if m.thread != nil && m.thread.OtherUser != nil && req.ReceiverEmail == m.thread.OtherUser.Username {
			// Replying inside a thread addresses by id, not email.
			req.ReceiverEmail = ""
			req.ReceiverID = m.thread.OtherUser.ID
		}
		m.mode = messagesModeList
		m.notice = ""
		return m, func() tea.Msg { return MessageSendMsg{Request: req} }
	}

	var cmd tea.Cmd
	switch m.composeAt {
	case 0:
		m.recipient, cmd = m.recipient.Update(key)
	case 1:
		m.body, cmd = m.body.Update(key)
	default:
		m.attach, cmd = m.attach.Update(key)
	}
	return m, cmd
}

// View renders the page.
func (m MessagesPageModel) View() string {
	var sb strings.Builder

	switch m.mode {
	case messagesModeCompose:
		sb.WriteString(m.styles.Title.Render("New Message"))
		sb.WriteString("\n\n")
		sb.WriteString(m.recipient.View())
		sb.WriteString("\n")
		sb.WriteString(m.body.View())
		sb.WriteString("\n")
		sb.WriteString(m.attach.View())
		sb.WriteString("\n\n")
		sb.WriteString(m.styles.Muted.Render("tab next field  enter send  esc cancel"))

	case messagesModeThread:
		sb.WriteString(m.threadVP.View())
		sb.WriteString("\n")
		sb.WriteString(m.styles.Muted.Render("r reply  o open attached snippet  esc back"))

	default:
		title := "Inbox"
		if m.box == "sent" {
			title = "Sent"
		}
		sb.WriteString(m.styles.Title.Render(title))
		sb.WriteString("\n\n")
		if len(m.messages) == 0 {
			sb.WriteString(m.styles.Muted.Render("No messages."))
			sb.WriteString("\n")
		}
		for i, msg := range m.messages {
			who := msg.SenderName
			if m.box == "sent" {
				who = "to " + msg.ReceiverName
			}
			preview := msg.Content
			if len(preview) > 60 {
				preview = preview[:57] + "..."
			}
			preview = strings.ReplaceAll(preview, "\n", " ")
			line := fmt.Sprintf("%s  %s", m.styles.Bold.Render(who), preview)
			if msg.SnippetUUID != "" {
				line += "  " + m.styles.Badge.Render("snippet")
			}
			if i == m.cursor {
				line = m.styles.Bold.Render("> ") + line
			} else {
				line = "  " + line
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
		sb.WriteString(m.styles.Muted.Render("enter open thread  tab inbox/sent  n new message"))
	}

	if m.notice != "" {
		sb.WriteString("\n")
		sb.WriteString(m.styles.Success.Render(m.notice))
	}

	return m.styles.Content.Render(sb.String())
}
