package ui

import (
	"fmt"
	"strconv"
	"strings"

	"codenest/internal/api"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// Messages the groups page emits for the app layer to act on.
type (
	// GroupsReloadMsg asks for a fresh listing of the user's groups.
	GroupsReloadMsg struct{}
	// GroupOpenMsg asks for the snippets and members of one group.
	GroupOpenMsg struct{ ID int64 }
	// GroupCreateMsg asks the server to create a group.
	GroupCreateMsg struct{ Name string }
	// GroupAddMemberMsg invites a user by email.
	GroupAddMemberMsg struct {
		GroupID int64
		Email   string
	}
	// GroupShareMsg shares an existing snippet into a group.
	GroupShareMsg struct {
		GroupID int64
		UUID    string
	}
	// GroupRemoveMemberMsg removes a member; only the creator may do this.
	GroupRemoveMemberMsg struct {
		GroupID int64
		UserID  int64
	}
)

type groupsMode int

const (
	groupsModeList groupsMode = iota
	groupsModeDetail
	groupsModeInput
)

// GroupsPageModel lists the user's groups and drills into one group's
// shared snippets and members.
type GroupsPageModel struct {
	mode     groupsMode
	groups   []api.Group
	cursor   int
	detail   viewport.Model
	current  *api.Group
	snippets []api.GroupSnippet
	members  []api.GroupMember

	input       textinput.Model
	inputAction string // "create", "invite", "share"

	notice string
	styles Styles
	width  int
	height int
}

// NewGroupsPageModel creates the groups page.
func NewGroupsPageModel(styles Styles) GroupsPageModel {
	input := textinput.New()
	input.CharLimit = 200

	return GroupsPageModel{
		detail: viewport.New(80, 20),
		input:  input,
		styles: styles,
	}
}

// SetSize updates the size.
func (m *GroupsPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.detail.Width = w
	m.detail.Height = h - 4
	m.input.Width = w - 10
	if m.mode == groupsModeDetail {
		m.renderDetail()
	}
}

// UpdateGroups replaces the group listing.
func (m *GroupsPageModel) UpdateGroups(groups []api.Group) {
	m.groups = groups
	if m.cursor >= len(groups) {
		m.cursor = 0
	}
}

// UpdateDetail fills in one group's shared snippets and member roster.
func (m *GroupsPageModel) UpdateDetail(group api.Group, snippets []api.GroupSnippet, members []api.GroupMember) {
	m.current = &group
	m.snippets = snippets
	m.members = members
	m.mode = groupsModeDetail
	m.renderDetail()
}

// SetNotice shows a one-line status message, such as a share confirmation.
func (m *GroupsPageModel) SetNotice(msg string) {
	m.notice = msg
}

func (m *GroupsPageModel) renderDetail() {
	if m.current == nil {
		return
	}
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render(m.current.Name))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("%d members, your role: %s", m.current.MemberCount, m.current.Role)))
	sb.WriteString("\n\n")

	sb.WriteString(m.styles.Bold.Render("Shared snippets"))
	sb.WriteString("\n")
	if len(m.snippets) == 0 {
		sb.WriteString(m.styles.Muted.Render("Nothing shared yet."))
		sb.WriteString("\n")
	}
	for i, snip := range m.snippets {
		title := snip.Title
		if title == "" {
			title = "Untitled snippet"
		}
		line := fmt.Sprintf("%d. %s", i+1, title)
		if snip.SharedBy != nil {
			line += m.styles.Muted.Render("  shared by " + snip.SharedBy.Username)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(m.styles.Bold.Render("Members"))
	sb.WriteString("\n")
	for i, member := range m.members {
		line := fmt.Sprintf("  %d. %s", i+1, member.Username)
		if member.IsCreator {
			line += " " + m.styles.Badge.Render("creator")
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	m.detail.SetContent(sb.String())
}

// AtRoot reports whether the page is at its top-level listing, where an
// escape should leave the page entirely.
func (m *GroupsPageModel) AtRoot() bool {
	return m.mode == groupsModeList
}

// OpenSnippetByIndex resolves a numbered shared snippet to its id.
func (m *GroupsPageModel) OpenSnippetByIndex(n int) (string, bool) {
	if n < 1 || n > len(m.snippets) {
		return "", false
	}
	return m.snippets[n-1].UUID, true
}

func (m *GroupsPageModel) startInput(action, placeholder string) {
	m.mode = groupsModeInput
	m.inputAction = action
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	m.input.Focus()
}

// Update handles messages.
func (m GroupsPageModel) Update(msg tea.Msg) (GroupsPageModel, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)
	if !isKey {
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}

	switch m.mode {
	case groupsModeInput:
		return m.updateInput(key)
	case groupsModeDetail:
		return m.updateDetail(key)
	default:
		return m.updateList(key)
	}
}

func (m GroupsPageModel) updateList(key tea.KeyMsg) (GroupsPageModel, tea.Cmd) {
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.groups)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(m.groups) {
			id := m.groups[m.cursor].ID
			return m, func() tea.Msg { return GroupOpenMsg{ID: id} }
		}
	case "n":
		m.startInput("create", "Group name")
	}
	return m, nil
}

func (m GroupsPageModel) updateDetail(key tea.KeyMsg) (GroupsPageModel, tea.Cmd) {
	switch s := key.String(); s {
	case "esc", "backspace":
		m.mode = groupsModeList
		return m, func() tea.Msg { return GroupsReloadMsg{} }
	case "a":
		m.startInput("invite", "Member email")
		return m, nil
	case "s":
		m.startInput("share", "Snippet id to share")
		return m, nil
	case "d":
		m.startInput("remove", "Member number to remove")
		return m, nil
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if uuid, ok := m.OpenSnippetByIndex(int(s[0] - '0')); ok {
			return m, func() tea.Msg { return OpenSnippetMsg{UUID: uuid} }
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(key)
	return m, cmd
}

func (m GroupsPageModel) updateInput(key tea.KeyMsg) (GroupsPageModel, tea.Cmd) {
	switch key.String() {
	case "esc":
		m.input.Blur()
		if m.current != nil && m.inputAction != "create" {
			m.mode = groupsModeDetail
		} else {
			m.mode = groupsModeList
		}
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.input.Value())
		m.input.Blur()
		action := m.inputAction
		if value == "" {
			m.mode = groupsModeList
			return m, nil
		}
		switch action {
		case "create":
			m.mode = groupsModeList
			return m, func() tea.Msg { return GroupCreateMsg{Name: value} }
		case "invite":
			m.mode = groupsModeDetail
			id := m.current.ID
			return m, func() tea.Msg { return GroupAddMemberMsg{GroupID: id, Email: value} }
		case "share":
			m.mode = groupsModeDetail
			id := m.current.ID
			return m, func() tea.Msg { return GroupShareMsg{GroupID: id, UUID: value} }
		case "remove":
			m.mode = groupsModeDetail
			n, err := strconv.Atoi(value)
			if err != nil || n < 1 || n > len(m.members) {
				m.notice = "No such member number"
				return m, nil
			}
			id := m.current.ID
			userID := m.members[n-1].ID
			return m, func() tea.Msg { return GroupRemoveMemberMsg{GroupID: id, UserID: userID} }
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	return m, cmd
}

// View renders the page.
func (m GroupsPageModel) View() string {
	var sb strings.Builder

	switch m.mode {
	case groupsModeInput:
		sb.WriteString(m.styles.Title.Render("Groups"))
		sb.WriteString("\n\n")
		sb.WriteString(m.input.View())
		sb.WriteString("\n\n")
		sb.WriteString(m.styles.Muted.Render("enter confirm  esc cancel"))

	case groupsModeDetail:
		sb.WriteString(m.detail.View())
		sb.WriteString("\n")
		sb.WriteString(m.styles.Muted.Render("1-9 open snippet  a invite  s share  d remove member  esc back"))

	default:
		sb.WriteString(m.styles.Title.Render("My Groups"))
		sb.WriteString("\n\n")
		if len(m.groups) == 0 {
			sb.WriteString(m.styles.Muted.Render("You are not in any groups yet. Press n to create one."))
			sb.WriteString("\n")
		}
		for i, group := range m.groups {
			line := fmt.Sprintf("%s  %s", group.Name,
				m.styles.Muted.Render(fmt.Sprintf("(%d members, %s)", group.MemberCount, group.Role)))
			if i == m.cursor {
				line = m.styles.Bold.Render("> ") + line
			} else {
				line = "  " + line
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
		sb.WriteString(m.styles.Muted.Render("enter open  n new group"))
	}

	if m.notice != "" {
		sb.WriteString("\n")
		sb.WriteString(m.styles.Success.Render(m.notice))
	}

	return m.styles.Content.Render(sb.String())
}
