package app

import (
	"context"
	"time"

	"codenest/internal/api"
	"codenest/internal/logging"
	"codenest/internal/session"
	"codenest/internal/viewer"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

// Messages produced by the commands below.
type (
	bootDoneMsg struct {
		latest *api.LatestResult
		err    error
	}
	snippetFetchedMsg struct {
		seq     int
		outcome viewer.Outcome
	}
	countdownTickMsg struct {
		seq int
	}
	latestLoadedMsg struct {
		result *api.LatestResult
		err    error
	}
	snippetCreatedMsg struct {
		uuid string
		err  error
	}
	loginDoneMsg struct {
		user *api.User
		err  error
	}
	registerDoneMsg struct {
		err error
	}
	logoutDoneMsg   struct{}
	groupsLoadedMsg struct {
		groups []api.Group
		err    error
	}
	groupDetailMsg struct {
		group    api.Group
		snippets []api.GroupSnippet
		members  []api.GroupMember
		err      error
	}
	groupActionDoneMsg struct {
		groupID int64
		notice  string
		err     error
	}
	messagesLoadedMsg struct {
		box      string
		messages []api.Message
		err      error
	}
	conversationLoadedMsg struct {
		conv *api.Conversation
		err  error
	}
	messageSentMsg struct {
		err error
	}
)

// bootCmd resumes any saved session and loads the public feed in parallel.
// A dead server fails the feed but never the program start.
func bootCmd(client *api.Client, state *session.State) tea.Cmd {
	return func() tea.Msg {
		g, ctx := errgroup.WithContext(context.Background())

		var latest *api.LatestResult
		var feedErr error

		g.Go(func() error {
			if err := state.Bootstrap(ctx, client); err != nil {
				logging.Boot("Session resume failed: %v", err)
			}
			return nil
		})
		g.Go(func() error {
			result, err := client.LatestSnippets(ctx)
			if err != nil {
				feedErr = err
				return nil
			}
			latest = result
			return nil
		})

		_ = g.Wait()
		return bootDoneMsg{latest: latest, err: feedErr}
	}
}

// fetchSnippetCmd performs one retrieval directed by the view session. The
// directive's sequence token rides along so a late reply can be recognized
// as stale.
func fetchSnippetCmd(client *api.Client, d viewer.FetchDirective) tea.Cmd {
	return func() tea.Msg {
		result, err := client.GetSnippet(context.Background(), d.ID, d.SkipIncrement)
		return snippetFetchedMsg{seq: d.Seq, outcome: viewer.Outcome{Result: result, Err: err}}
	}
}

// countdownCmd schedules the next one-second tick for the given session
// sequence. Ticks for an abandoned sequence are ignored on arrival, so the
// timer does not need explicit cancellation.
func countdownCmd(seq int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return countdownTickMsg{seq: seq}
	})
}

func loadLatestCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		result, err := client.LatestSnippets(context.Background())
		return latestLoadedMsg{result: result, err: err}
	}
}

func createSnippetCmd(client *api.Client, req api.CreateSnippetRequest) tea.Cmd {
	return func() tea.Msg {
		result, err := client.CreateSnippet(context.Background(), req)
		if err != nil {
			return snippetCreatedMsg{err: err}
		}
		return snippetCreatedMsg{uuid: result.UUID}
	}
}

func loginCmd(client *api.Client, state *session.State, creds api.Credentials) tea.Cmd {
	return func() tea.Msg {
		user, err := state.Login(context.Background(), client, creds)
		return loginDoneMsg{user: user, err: err}
	}
}

func registerCmd(client *api.Client, reg api.Registration) tea.Cmd {
	return func() tea.Msg {
		return registerDoneMsg{err: client.Register(context.Background(), reg)}
	}
}

func logoutCmd(client *api.Client, state *session.State) tea.Cmd {
	return func() tea.Msg {
		_ = state.Logout(context.Background(), client)
		return logoutDoneMsg{}
	}
}

func loadGroupsCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		groups, err := client.MyGroups(context.Background())
		return groupsLoadedMsg{groups: groups, err: err}
	}
}

// loadGroupDetailCmd pulls a group's snippets and members together.
func loadGroupDetailCmd(client *api.Client, group api.Group) tea.Cmd {
	return func() tea.Msg {
		g, ctx := errgroup.WithContext(context.Background())

		var snippets []api.GroupSnippet
		var members []api.GroupMember

		g.Go(func() error {
			s, err := client.GroupSnippets(ctx, group.ID)
			if err != nil {
				return err
			}
			snippets = s
			return nil
		})
		g.Go(func() error {
			m, err := client.Members(ctx, group.ID)
			if err != nil {
				return err
			}
			members = m
			return nil
		})

		if err := g.Wait(); err != nil {
			return groupDetailMsg{err: err}
		}
		return groupDetailMsg{group: group, snippets: snippets, members: members}
	}
}

func createGroupCmd(client *api.Client, name string) tea.Cmd {
	return func() tea.Msg {
		err := client.CreateGroup(context.Background(), name)
		return groupActionDoneMsg{notice: "Group created", err: err}
	}
}

func addMemberCmd(client *api.Client, groupID int64, email string) tea.Cmd {
	return func() tea.Msg {
		err := client.AddMember(context.Background(), groupID, email)
		return groupActionDoneMsg{groupID: groupID, notice: "Member added", err: err}
	}
}

func removeMemberCmd(client *api.Client, groupID, userID int64) tea.Cmd {
	return func() tea.Msg {
		err := client.RemoveMember(context.Background(), groupID, userID)
		return groupActionDoneMsg{groupID: groupID, notice: "Member removed", err: err}
	}
}

func shareSnippetCmd(client *api.Client, groupID int64, uuid string) tea.Cmd {
	return func() tea.Msg {
		err := client.ShareSnippet(context.Background(), groupID, uuid)
		return groupActionDoneMsg{groupID: groupID, notice: "Snippet shared", err: err}
	}
}

func loadMessagesCmd(client *api.Client, box string) tea.Cmd {
	return func() tea.Msg {
		var messages []api.Message
		var err error
		if box == "sent" {
			messages, err = client.Sent(context.Background())
		} else {
			box = "inbox"
			messages, err = client.Inbox(context.Background())
		}
		return messagesLoadedMsg{box: box, messages: messages, err: err}
	}
}

func loadConversationCmd(client *api.Client, userID int64) tea.Cmd {
	return func() tea.Msg {
		conv, err := client.Conversation(context.Background(), userID)
		return conversationLoadedMsg{conv: conv, err: err}
	}
}

func sendMessageCmd(client *api.Client, req api.SendMessageRequest) tea.Cmd {
	return func() tea.Msg {
		return messageSentMsg{err: client.SendMessage(context.Background(), req)}
	}
}
