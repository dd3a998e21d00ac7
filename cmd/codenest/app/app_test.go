package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"codenest/cmd/codenest/ui"
	"codenest/internal/api"
	"codenest/internal/session"

	tea "github.com/charmbracelet/bubbletea"
)

func newTestModel(t *testing.T, handler http.Handler) Model {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := api.NewClient(api.Config{BaseURL: srv.URL + "/api"})
	if err != nil {
		t.Fatalf("failed to build client: %v", err)
	}

	model := New(client, session.NewState(), nil, ui.DefaultStyles())
	updated, _ := model.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m := updated.(Model)
	m.booted = true
	return m
}

// run applies a message and then drains every non-timer command it
// produces, feeding the resulting messages back in.
func run(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	queue := []tea.Msg{msg}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if _, isTick := next.(countdownTickMsg); isTick {
			// Timer messages are injected explicitly by the tests.
			continue
		}
		updated, cmd := m.Update(next)
		m = updated.(Model)
		if cmd != nil {
			if out := cmd(); out != nil {
				if batch, ok := out.(tea.BatchMsg); ok {
					for _, sub := range batch {
						if sub != nil {
							if inner := sub(); inner != nil {
								queue = append(queue, inner)
							}
						}
					}
				} else {
					queue = append(queue, out)
				}
			}
		}
	}
	return m
}

func snippetHandler(snip api.Snippet) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/code/"+snip.UUID, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.SnippetResult{
			Snippet: &snip,
			Author:  &api.Author{Name: "ada"},
		})
	})
	return mux
}

func TestOpenSnippetRendersContent(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, snippetHandler(api.Snippet{
		UUID:    "abc",
		Title:   "hello world",
		Content: "println(1)",
	}))

	m = run(t, m, ui.OpenSnippetMsg{UUID: "abc"})

	if m.page != pageViewer {
		t.Fatalf("expected viewer page, got %d", m.page)
	}
	if !strings.Contains(m.View(), "hello world") {
		t.Fatalf("expected snippet title in view")
	}
}

func TestTimeLimitedSnippetSchedulesCountdown(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, snippetHandler(api.Snippet{
		UUID:             "abc",
		Content:          "x",
		ExpirationType:   api.ExpirationTime,
		ExpirationValue:  600,
		RemainingSeconds: 3,
	}))

	m = run(t, m, ui.OpenSnippetMsg{UUID: "abc"})
	if !strings.Contains(m.View(), "00:00:03") {
		t.Fatalf("expected seeded countdown, got:\n%s", m.View())
	}

	seq := m.viewer.Session().Seq()
	updated, cmd := m.Update(countdownTickMsg{seq: seq})
	m = updated.(Model)
	if !strings.Contains(m.View(), "00:00:02") {
		t.Fatalf("expected countdown to advance")
	}
	if cmd == nil {
		t.Fatalf("expected the next tick to be scheduled while time remains")
	}
}

func TestStaleTickFromPreviousSnippetIgnored(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	timed := api.Snippet{UUID: "timed", Content: "x", ExpirationType: api.ExpirationTime, ExpirationValue: 600, RemainingSeconds: 30}
	plain := api.Snippet{UUID: "plain", Content: "y"}
	mux.HandleFunc("/api/code/timed", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.SnippetResult{Snippet: &timed})
	})
	mux.HandleFunc("/api/code/plain", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.SnippetResult{Snippet: &plain})
	})
	m := newTestModel(t, mux)

	m = run(t, m, ui.OpenSnippetMsg{UUID: "timed"})
	oldSeq := m.viewer.Session().Seq()

	m = run(t, m, ui.OpenSnippetMsg{UUID: "plain"})

	updated, cmd := m.Update(countdownTickMsg{seq: oldSeq})
	m = updated.(Model)
	if cmd != nil {
		t.Fatalf("a leftover tick from the previous snippet must not reschedule")
	}
	if strings.Contains(m.View(), "00:00") {
		t.Fatalf("old countdown must not bleed into the new snippet")
	}
}

func TestCreatedSnippetOpensWithSkipIncrement(t *testing.T) {
	t.Parallel()
	var sawSkip string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/code/new", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "uuid": "fresh"})
	})
	mux.HandleFunc("/api/code/fresh", func(w http.ResponseWriter, r *http.Request) {
		sawSkip = r.URL.Query().Get("skipIncrement")
		json.NewEncoder(w).Encode(api.SnippetResult{Snippet: &api.Snippet{UUID: "fresh", Content: "x"}})
	})
	m := newTestModel(t, mux)

	m = run(t, m, ui.CreateSubmitMsg{Request: api.CreateSnippetRequest{Content: "x"}})

	if sawSkip != "true" {
		t.Fatalf("the author's first view must not consume a view budget")
	}
	if m.page != pageViewer {
		t.Fatalf("expected redirect to the viewer after publishing")
	}
}

func TestSecondCreatedSnippetAlsoSkipsIncrement(t *testing.T) {
	t.Parallel()
	var nextUUID string
	skips := map[string]string{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/code/new", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "uuid": nextUUID})
	})
	for _, uuid := range []string{"first", "second"} {
		uuid := uuid
		mux.HandleFunc("/api/code/"+uuid, func(w http.ResponseWriter, r *http.Request) {
			skips[uuid] = r.URL.Query().Get("skipIncrement")
			json.NewEncoder(w).Encode(api.SnippetResult{Snippet: &api.Snippet{UUID: uuid, Content: "x"}})
		})
	}
	m := newTestModel(t, mux)

	nextUUID = "first"
	m = run(t, m, ui.CreateSubmitMsg{Request: api.CreateSnippetRequest{Content: "a"}})
	nextUUID = "second"
	m = run(t, m, ui.CreateSubmitMsg{Request: api.CreateSnippetRequest{Content: "b"}})

	if skips["first"] != "true" || skips["second"] != "true" {
		t.Fatalf("every freshly published snippet must open without consuming a view, got %v", skips)
	}
}

func TestLeavingViewerTearsDownCountdown(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, snippetHandler(api.Snippet{
		UUID:             "abc",
		Content:          "x",
		ExpirationType:   api.ExpirationTime,
		ExpirationValue:  600,
		RemainingSeconds: 30,
	}))

	m = run(t, m, ui.OpenSnippetMsg{UUID: "abc"})
	seq := m.viewer.Session().Seq()

	m = run(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.page != pageLatest {
		t.Fatalf("expected return to the browse page, got %d", m.page)
	}

	// The tick scheduled while the viewer was up lands after the exit.
	updated, cmd := m.Update(countdownTickMsg{seq: seq})
	m = updated.(Model)
	if cmd != nil {
		t.Fatalf("a tick from the dismissed viewer must not reschedule")
	}
	if m.viewer.Session().Remaining() != 0 {
		t.Fatalf("dismissed session must not keep counting down, remaining=%d", m.viewer.Session().Remaining())
	}
}

func TestDismissingViewerReturnsToOriginPage(t *testing.T) {
	t.Parallel()
	m := newTestModel(t, snippetHandler(api.Snippet{UUID: "abc", Content: "x"}))
	m.page = pageMessages

	m = run(t, m, ui.OpenSnippetMsg{UUID: "abc"})
	if m.page != pageViewer {
		t.Fatalf("expected viewer page, got %d", m.page)
	}

	m = run(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.page != pageMessages {
		t.Fatalf("expected return to the messages page, got %d", m.page)
	}
}

func TestExpiredFetchShowsNoticeWithoutContent(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/code/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]interface{}{"message": "expired", "expired": true})
	})
	m := newTestModel(t, mux)

	m = run(t, m, ui.OpenSnippetMsg{UUID: "gone"})

	view := m.View()
	if !strings.Contains(view, "expired") {
		t.Fatalf("expected expired notice")
	}
}
