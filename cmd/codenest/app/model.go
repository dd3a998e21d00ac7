// Package app wires the CodeNest pages into one Bubble Tea program. The
// model owns navigation between pages and the side effects (HTTP calls,
// countdown timer, view history) the pages direct it to perform.
package app

import (
	"codenest/cmd/codenest/ui"
	"codenest/internal/api"
	"codenest/internal/session"
	"codenest/internal/store"
	"codenest/internal/viewer"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// page identifies which screen is active.
type page int

const (
	pageAuth page = iota
	pageLatest
	pageViewer
	pageCreate
	pageGroups
	pageMessages
)

// Model is the root Bubble Tea model for the client.
type Model struct {
	client  *api.Client
	state   *session.State
	history *store.HistoryStore

	page   page
	styles ui.Styles

	// viewerReturn is the page to go back to when the viewer is dismissed,
	// recorded when the visit starts.
	viewerReturn page

	auth     ui.AuthPageModel
	latest   ui.LatestPageModel
	viewer   ui.ViewerPageModel
	create   ui.CreatePageModel
	groups   ui.GroupsPageModel
	messages ui.MessagesPageModel

	// openInput captures a snippet id typed at the browse page.
	openInput  textinput.Model
	openActive bool

	// groupsCache is the last loaded group listing, kept so detail loads
	// can carry the full group record.
	groupsCache []api.Group

	width   int
	height  int
	booted  bool
	status  string
	initial string // snippet id to open straight away, from the command line
}

// Option adjusts the initial model.
type Option func(*Model)

// WithInitialSnippet opens the given snippet as soon as the program boots.
func WithInitialSnippet(uuid string) Option {
	return func(m *Model) { m.initial = uuid }
}

// New assembles the root model. The history store may be nil; viewing then
// simply leaves no local trace.
func New(client *api.Client, state *session.State, history *store.HistoryStore, styles ui.Styles, opts ...Option) Model {
	openInput := textinput.New()
	openInput.Placeholder = "Snippet id"
	openInput.CharLimit = 64

	m := Model{
		client:    client,
		state:     state,
		history:   history,
		page:      pageLatest,
		styles:    styles,
		auth:      ui.NewAuthPageModel(styles),
		latest:    ui.NewLatestPageModel(styles),
		viewer:    ui.NewViewerPageModel(styles),
		create:    ui.NewCreatePageModel(styles),
		groups:    ui.NewGroupsPageModel(styles),
		messages:  ui.NewMessagesPageModel(styles),
		openInput: openInput,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init starts the concurrent boot: resume any saved session and pull the
// latest public snippets.
func (m Model) Init() tea.Cmd {
	return bootCmd(m.client, m.state)
}

// openSnippet switches to the viewer page and starts a visit. Dismissing the
// viewer later returns to wherever the visit came from.
func (m *Model) openSnippet(uuid string, skipIncrement bool) tea.Cmd {
	switch m.page {
	case pageGroups, pageMessages:
		m.viewerReturn = m.page
	default:
		m.viewerReturn = pageLatest
	}
	m.page = pageViewer
	directive := m.viewer.Open(uuid, skipIncrement)
	return tea.Batch(fetchSnippetCmd(m.client, directive), m.viewer.SpinnerTick())
}

// afterResolve handles the bookkeeping that follows an applied fetch
// outcome: start the countdown if one is needed and update local history.
func (m *Model) afterResolve() tea.Cmd {
	sess := m.viewer.Session()

	if m.history != nil {
		switch sess.Status() {
		case viewer.StatusReady:
			if snip := sess.Snippet(); snip != nil {
				_ = m.history.RecordView(snip.UUID, snip.Title)
			}
		case viewer.StatusExpired, viewer.StatusNotFound:
			_ = m.history.Forget(sess.ID())
		}
	}

	if sess.TickActive() {
		return countdownCmd(sess.Seq())
	}
	return nil
}
