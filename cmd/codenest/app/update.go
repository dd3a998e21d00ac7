package app

import (
	"strings"

	"codenest/cmd/codenest/ui"
	"codenest/internal/api"
	"codenest/internal/logging"

	tea "github.com/charmbracelet/bubbletea"
)

// Update routes messages to the active page and executes the side effects
// pages ask for.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		body := msg.Height - 2 // header + status line
		m.latest.SetSize(msg.Width, body)
		m.viewer.SetSize(msg.Width, body)
		m.create.SetSize(msg.Width, body)
		m.groups.SetSize(msg.Width, body)
		m.messages.SetSize(msg.Width, body)
		m.auth.SetSize(msg.Width, body)
		m.openInput.Width = msg.Width - 20
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m.updateKey(msg)

	// ===== BOOT =====

	case bootDoneMsg:
		m.booted = true
		if msg.err != nil {
			m.status = "Server unreachable: " + msg.err.Error()
		}
		m.latest.UpdateContent(msg.latest)
		if m.initial != "" {
			uuid := m.initial
			m.initial = ""
			return m, m.openSnippet(uuid, false)
		}
		return m, nil

	// ===== VIEWER =====

	case snippetFetchedMsg:
		if m.viewer.Resolve(msg.seq, msg.outcome) {
			return m, m.afterResolve()
		}
		return m, nil

	case countdownTickMsg:
		if !m.viewer.Tick(msg.seq) {
			return m, nil
		}
		sess := m.viewer.Session()
		if sess.TickActive() {
			return m, countdownCmd(sess.Seq())
		}
		// Countdown hit zero: the snippet is gone for everyone, so drop it
		// from local history too.
		if m.history != nil {
			_ = m.history.Forget(sess.ID())
		}
		return m, nil

	// ===== LATEST =====

	case latestLoadedMsg:
		if msg.err != nil {
			m.status = "Could not refresh: " + msg.err.Error()
			return m, nil
		}
		m.status = ""
		m.latest.UpdateContent(msg.result)
		return m, nil

	// ===== CREATE =====

	case ui.CreateSubmitMsg:
		return m, createSnippetCmd(m.client, msg.Request)

	case snippetCreatedMsg:
		if msg.err != nil {
			m.create.SetError(errorText(msg.err))
			return m, nil
		}
		// Jump straight to the fresh snippet without spending one of its
		// views on the author.
		m.status = "Snippet published"
		return m, m.openSnippet(msg.uuid, true)

	// ===== AUTH =====

	case ui.LoginSubmitMsg:
		return m, loginCmd(m.client, m.state, msg.Credentials)

	case ui.RegisterSubmitMsg:
		return m, registerCmd(m.client, msg.Registration)

	case loginDoneMsg:
		if msg.err != nil {
			m.auth.SetError(errorText(msg.err))
			return m, nil
		}
		m.status = "Signed in as " + msg.user.Name
		m.page = pageLatest
		return m, loadLatestCmd(m.client)

	case registerDoneMsg:
		if msg.err != nil {
			m.auth.SetError(errorText(msg.err))
			return m, nil
		}
		m.auth.SetError("")
		m.status = "Account created, sign in to continue"
		return m, nil

	case logoutDoneMsg:
		m.status = "Signed out"
		m.page = pageLatest
		return m, nil

	// ===== GROUPS =====

	case ui.GroupsReloadMsg:
		return m, loadGroupsCmd(m.client)

	case ui.GroupOpenMsg:
		if group, ok := m.groupByID(msg.ID); ok {
			return m, loadGroupDetailCmd(m.client, group)
		}
		return m, nil

	case ui.GroupCreateMsg:
		return m, createGroupCmd(m.client, msg.Name)

	case ui.GroupAddMemberMsg:
		return m, addMemberCmd(m.client, msg.GroupID, msg.Email)

	case ui.GroupShareMsg:
		return m, shareSnippetCmd(m.client, msg.GroupID, msg.UUID)

	case ui.GroupRemoveMemberMsg:
		return m, removeMemberCmd(m.client, msg.GroupID, msg.UserID)

	case groupsLoadedMsg:
		if msg.err != nil {
			m.status = errorText(msg.err)
			return m, nil
		}
		m.groupsCache = msg.groups
		m.groups.UpdateGroups(msg.groups)
		return m, nil

	case groupDetailMsg:
		if msg.err != nil {
			m.groups.SetNotice(errorText(msg.err))
			return m, nil
		}
		m.groups.UpdateDetail(msg.group, msg.snippets, msg.members)
		return m, nil

	case groupActionDoneMsg:
		if msg.err != nil {
			m.groups.SetNotice(errorText(msg.err))
			return m, nil
		}
		m.groups.SetNotice(msg.notice)
		if group, ok := m.groupByID(msg.groupID); ok {
			return m, loadGroupDetailCmd(m.client, group)
		}
		return m, loadGroupsCmd(m.client)

	// ===== MESSAGES =====

	case ui.MessagesReloadMsg:
		return m, loadMessagesCmd(m.client, msg.Box)

	case ui.ConversationOpenMsg:
		return m, loadConversationCmd(m.client, msg.UserID)

	case ui.MessageSendMsg:
		return m, sendMessageCmd(m.client, msg.Request)

	case ui.OpenSnippetMsg:
		return m, m.openSnippet(msg.UUID, false)

	case messagesLoadedMsg:
		if msg.err != nil {
			m.status = errorText(msg.err)
			return m, nil
		}
		m.messages.UpdateListing(msg.box, msg.messages)
		return m, nil

	case conversationLoadedMsg:
		if msg.err != nil {
			m.messages.SetNotice(errorText(msg.err))
			return m, nil
		}
		m.messages.UpdateThread(msg.conv)
		return m, nil

	case messageSentMsg:
		if msg.err != nil {
			m.messages.SetNotice(errorText(msg.err))
			return m, nil
		}
		m.messages.SetNotice("Message sent")
		return m, loadMessagesCmd(m.client, "sent")
	}

	return m.updatePage(msg)
}

// updateKey handles navigation keys, then falls through to the active page.
func (m Model) updateKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.page {
	case pageLatest:
		return m.updateLatestKey(key)

	case pageViewer:
		switch key.String() {
		case "esc", "backspace":
			// Tear the visit down first so a pending countdown tick cannot
			// keep decrementing or rescheduling behind the next page.
			m.viewer.Leave()
			m.page = m.viewerReturn
			if m.page == pageLatest {
				return m, loadLatestCmd(m.client)
			}
			return m, nil
		case "r":
			if directive, ok := m.viewer.Retry(); ok {
				return m, tea.Batch(fetchSnippetCmd(m.client, directive), m.viewer.SpinnerTick())
			}
			return m, nil
		}

	case pageCreate:
		if key.String() == "esc" {
			m.page = pageLatest
			return m, nil
		}

	case pageAuth:
		if key.String() == "esc" {
			m.page = pageLatest
			return m, nil
		}

	case pageGroups:
		if key.String() == "esc" && m.groups.AtRoot() {
			m.page = pageLatest
			return m, nil
		}

	case pageMessages:
		if key.String() == "esc" && m.messages.AtRoot() {
			m.page = pageLatest
			return m, nil
		}
	}

	return m.updatePage(key)
}

func (m Model) updateLatestKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.openActive {
		switch key.String() {
		case "esc":
			m.openActive = false
			m.openInput.Blur()
			return m, nil
		case "enter":
			uuid := strings.TrimSpace(m.openInput.Value())
			m.openActive = false
			m.openInput.Blur()
			m.openInput.SetValue("")
			if uuid == "" {
				return m, nil
			}
			return m, m.openSnippet(uuid, false)
		}
		var cmd tea.Cmd
		m.openInput, cmd = m.openInput.Update(key)
		return m, cmd
	}

	if !m.latest.Filtering() {
		switch key.String() {
		case "q":
			return m, tea.Quit
		case "enter":
			if uuid, ok := m.latest.SelectedUUID(); ok {
				return m, m.openSnippet(uuid, false)
			}
			return m, nil
		case "o":
			m.openActive = true
			m.openInput.Focus()
			return m, nil
		case "n":
			m.create.Reset()
			m.page = pageCreate
			return m, nil
		case "g":
			m.page = pageGroups
			return m, loadGroupsCmd(m.client)
		case "m":
			m.page = pageMessages
			return m, loadMessagesCmd(m.client, "inbox")
		case "l":
			if m.state.Authenticated() {
				return m, logoutCmd(m.client, m.state)
			}
			m.page = pageAuth
			return m, nil
		case "h":
			if m.history != nil {
				if entries, err := m.history.Recent(20); err == nil {
					items := make([]ui.HistoryItem, 0, len(entries))
					for _, e := range entries {
						items = append(items, ui.HistoryItem{
							UUID:   e.UUID,
							Title:  e.Title,
							Viewed: e.ViewedAt.Local().Format("2006-01-02 15:04"),
						})
					}
					m.latest.ShowHistory(items)
				}
			}
			return m, nil
		case "R":
			return m, loadLatestCmd(m.client)
		}
	}

	return m.updatePage(key)
}

// updatePage forwards a message to whichever page is active.
func (m Model) updatePage(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.page {
	case pageAuth:
		m.auth, cmd = m.auth.Update(msg)
	case pageLatest:
		m.latest, cmd = m.latest.Update(msg)
	case pageViewer:
		m.viewer, cmd = m.viewer.Update(msg)
	case pageCreate:
		m.create, cmd = m.create.Update(msg)
	case pageGroups:
		m.groups, cmd = m.groups.Update(msg)
	case pageMessages:
		m.messages, cmd = m.messages.Update(msg)
	}
	return m, cmd
}

func (m *Model) groupByID(id int64) (api.Group, bool) {
	for _, group := range m.groupsCache {
		if group.ID == id {
			return group, true
		}
	}
	return api.Group{}, false
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	logging.UI("operation failed: %v", err)
	return err.Error()
}
