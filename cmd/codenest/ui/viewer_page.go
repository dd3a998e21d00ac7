package ui

import (
	"fmt"
	"strings"

	"codenest/internal/highlight"
	"codenest/internal/viewer"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewerPageModel renders a single snippet visit. It owns the view session
// state machine; the app layer performs the fetch and timer it is directed
// to run and feeds the results back through Resolve and Tick.
type ViewerPageModel struct {
	viewport viewport.Model
	spinner  spinner.Model
	session  *viewer.Session
	styles   Styles
	width    int
	height   int
	notice   string
}

// NewViewerPageModel creates an empty viewer page.
func NewViewerPageModel(styles Styles) ViewerPageModel {
	vp := viewport.New(80, 20)
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Countdown
	return ViewerPageModel{
		viewport: vp,
		spinner:  sp,
		session:  viewer.NewSession(),
		styles:   styles,
	}
}

// SpinnerTick starts the loading spinner animation.
func (m *ViewerPageModel) SpinnerTick() tea.Cmd {
	return m.spinner.Tick
}

// Open starts a visit to the given snippet and returns the fetch the app
// must perform. skipIncrement marks a visit arriving straight from creation,
// which must not consume a view; the flag is honored at most once.
func (m *ViewerPageModel) Open(id string, skipIncrement bool) viewer.FetchDirective {
	m.notice = ""
	d := m.session.Navigate(id, skipIncrement)
	m.UpdateContent()
	return d
}

// Resolve feeds a fetch outcome into the session. It reports whether the
// outcome was applied; stale responses from an earlier navigation are
// discarded and leave the page untouched.
func (m *ViewerPageModel) Resolve(seq int, outcome viewer.Outcome) bool {
	applied := m.session.Resolve(seq, outcome)
	if applied {
		m.UpdateContent()
	}
	return applied
}

// Tick advances the local countdown by one second.
func (m *ViewerPageModel) Tick(seq int) bool {
	applied := m.session.Tick(seq)
	if applied {
		m.UpdateContent()
	}
	return applied
}

// Leave abandons the visit when the user navigates away. The session's
// sequence token advances, so an in-flight fetch or a pending countdown tick
// scheduled for this visit is discarded on arrival.
func (m *ViewerPageModel) Leave() {
	m.notice = ""
	m.session.Leave()
	m.UpdateContent()
}

// Retry re-issues the request after a transport failure, if the session is
// in a recoverable state.
func (m *ViewerPageModel) Retry() (viewer.FetchDirective, bool) {
	d, ok := m.session.Retry()
	if ok {
		m.notice = ""
		m.UpdateContent()
	}
	return d, ok
}

// Session exposes the underlying state machine so the app layer can decide
// whether a countdown command needs scheduling.
func (m *ViewerPageModel) Session() *viewer.Session {
	return m.session
}

// SetSize updates the size of the viewport.
func (m *ViewerPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.viewport.Height = h - 4 // Reserve space for header/footer
	m.UpdateContent()
}

// UpdateContent re-renders the page body from the session state.
func (m *ViewerPageModel) UpdateContent() {
	var sb strings.Builder

	switch m.session.Status() {
	case viewer.StatusLoading:
		sb.WriteString(m.spinner.View())
		sb.WriteString(m.styles.Muted.Render(" Loading snippet..."))

	case viewer.StatusReady:
		m.renderSnippet(&sb)

	case viewer.StatusExpired:
		sb.WriteString(m.styles.Warning.Render("This snippet has expired."))
		sb.WriteString("\n\n")
		sb.WriteString(m.styles.Muted.Render("Its view or time budget ran out. The content is no longer available."))

	case viewer.StatusNotFound:
		sb.WriteString(m.styles.Error.Render("Snippet not found."))
		sb.WriteString("\n\n")
		sb.WriteString(m.styles.Muted.Render("No snippet exists with id " + m.session.ID() + ". Check the link and try again."))

	case viewer.StatusError:
		sb.WriteString(m.styles.Error.Render("Could not load snippet."))
		sb.WriteString("\n\n")
		sb.WriteString(m.styles.Body.Render(m.session.Err()))
		sb.WriteString("\n\n")
		sb.WriteString(m.styles.Muted.Render("Press r to retry."))
	}

	if m.notice != "" {
		sb.WriteString("\n\n")
		sb.WriteString(m.styles.Success.Render(m.notice))
	}

	m.viewport.SetContent(sb.String())
}

func (m *ViewerPageModel) renderSnippet(sb *strings.Builder) {
	snip := m.session.Snippet()
	if snip == nil {
		return
	}

	title := snip.Title
	if title == "" {
		title = "Untitled snippet"
	}
	sb.WriteString(m.styles.Title.Render(title))
	sb.WriteString("\n")

	if author := m.session.Author(); author != nil && author.Name != "" {
		sb.WriteString(m.styles.Subtitle.Render("by " + author.Name))
		sb.WriteString("\n")
	}
	if snip.CreatedAt != "" {
		sb.WriteString(m.styles.Muted.Render("created " + snip.CreatedAt))
		sb.WriteString("\n")
	}

	if len(snip.Tags) > 0 {
		var badges []string
		for _, tag := range snip.Tags {
			badges = append(badges, m.styles.Badge.Render(tag))
		}
		sb.WriteString(strings.Join(badges, " "))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.CodeBlock.Render(highlight.Source(snip.Content, languageHint(snip.Tags))))
	sb.WriteString("\n\n")

	switch {
	case snip.TimeLimited():
		sb.WriteString(m.styles.Muted.Render("Expires in "))
		sb.WriteString(m.styles.Countdown.Render(viewer.FormatRemaining(m.session.Remaining())))
	case snip.ViewLimited():
		// Server-reported counts, verbatim. The client never simulates the
		// view budget, so 3/3 still renders as Ready until the server says
		// expired.
		sb.WriteString(m.styles.Muted.Render("Views: "))
		sb.WriteString(m.styles.Countdown.Render(fmt.Sprintf("%d/%d", snip.ViewCount, snip.ExpirationValue)))
	default:
		sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("Viewed %d times", snip.ViewCount)))
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render("id " + snip.UUID))
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Muted.Render("c copy code  y copy id  esc back"))
}

// languageHint picks a plausible language name out of the snippet's tags.
// Tags are free-form, so an unknown hint just falls through to content
// analysis in the highlighter.
func languageHint(tags []string) string {
	if len(tags) > 0 {
		return tags[0]
	}
	return ""
}

// Update handles messages.
func (m ViewerPageModel) Update(msg tea.Msg) (ViewerPageModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.session.Status() != viewer.StatusLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.UpdateContent()
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "c":
			if snip := m.session.Snippet(); snip != nil {
				m.copyToClipboard(snip.Content, "Code copied to clipboard")
			}
			return m, nil
		case "y":
			if snip := m.session.Snippet(); snip != nil {
				m.copyToClipboard(snip.UUID, "Snippet id copied to clipboard")
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *ViewerPageModel) copyToClipboard(text, ok string) {
	if err := clipboard.WriteAll(text); err != nil {
		m.notice = "Copy failed: " + err.Error()
	} else {
		m.notice = ok
	}
	m.UpdateContent()
}

// View renders the page.
func (m ViewerPageModel) View() string {
	return m.viewport.View()
}
