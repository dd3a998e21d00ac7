package ui

import (
	"fmt"
	"strings"

	"codenest/internal/api"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// LatestPageModel shows the most recent public snippets.
type LatestPageModel struct {
	list   list.Model
	styles Styles
	width  int
	height int
}

// snippetItem adapts api.Snippet to list.Item.
type snippetItem struct {
	snippet api.Snippet
	author  string
}

func (i snippetItem) Title() string {
	if i.snippet.Title == "" {
		return "Untitled snippet"
	}
	return i.snippet.Title
}

func (i snippetItem) Description() string {
	parts := []string{}
	if i.author != "" {
		parts = append(parts, "by "+i.author)
	}
	switch i.snippet.ExpirationType {
	case api.ExpirationTime:
		parts = append(parts, fmt.Sprintf("%ds left", i.snippet.RemainingSeconds))
	case api.ExpirationViews:
		parts = append(parts, fmt.Sprintf("%d views left", i.snippet.RemainingViews))
	}
	if len(i.snippet.Tags) > 0 {
		parts = append(parts, strings.Join(i.snippet.Tags, ", "))
	}
	if len(parts) == 0 {
		return i.snippet.CreatedAt
	}
	return strings.Join(parts, " | ")
}

func (i snippetItem) FilterValue() string {
	return i.snippet.Title + " " + strings.Join(i.snippet.Tags, " ")
}

// NewLatestPageModel creates the latest-snippets page.
func NewLatestPageModel(styles Styles) LatestPageModel {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Latest Snippets"
	l.SetShowHelp(false)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = styles.Title

	return LatestPageModel{
		list:   l,
		styles: styles,
	}
}

// SetSize updates the size.
func (m *LatestPageModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.list.SetSize(w, h-2)
}

// UpdateContent replaces the listing. Authors arrive as a parallel slice
// aligned with the snippets; a missing entry just drops the byline.
func (m *LatestPageModel) UpdateContent(result *api.LatestResult) {
	if result == nil {
		return
	}
	items := make([]list.Item, 0, len(result.Snippets))
	for idx, snip := range result.Snippets {
		author := ""
		if idx < len(result.Authors) {
			author = result.Authors[idx].Name
		}
		items = append(items, snippetItem{snippet: snip, author: author})
	}
	m.list.SetItems(items)
	m.list.Title = fmt.Sprintf("Latest Snippets (%d)", len(items))
}

// HistoryItem is one locally recorded snippet visit.
type HistoryItem struct {
	UUID   string
	Title  string
	Viewed string
}

// ShowHistory swaps the listing for the locally recorded recent views.
func (m *LatestPageModel) ShowHistory(entries []HistoryItem) {
	items := make([]list.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, snippetItem{
			snippet: api.Snippet{UUID: e.UUID, Title: e.Title, CreatedAt: e.Viewed},
		})
	}
	m.list.SetItems(items)
	m.list.Title = fmt.Sprintf("Recently Viewed (%d)", len(items))
}

// SelectedUUID returns the id of the highlighted snippet, if any.
func (m *LatestPageModel) SelectedUUID() (string, bool) {
	sel := m.list.SelectedItem()
	if sel == nil {
		return "", false
	}
	return sel.(snippetItem).snippet.UUID, true
}

// Filtering reports whether the list is capturing keystrokes for a filter,
// so the app layer does not treat them as navigation.
func (m *LatestPageModel) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// Update handles messages.
func (m LatestPageModel) Update(msg tea.Msg) (LatestPageModel, tea.Cmd) {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the page.
func (m LatestPageModel) View() string {
	help := m.styles.Muted.Render(" enter: open • /: filter • n: new • h: history • R: refresh")
	return m.list.View() + "\n" + help
}
