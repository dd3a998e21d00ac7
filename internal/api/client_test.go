package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{BaseURL: srv.URL + "/api"})
	require.NoError(t, err)
	return client, srv
}

func TestGetSnippet_Success(t *testing.T) {
	want := &SnippetResult{
		Snippet: &Snippet{
			UUID:             "abc",
			Title:            "hello",
			Content:          "package main",
			Tags:             []string{"go"},
			ExpirationType:   ExpirationTime,
			ExpirationValue:  600,
			RemainingSeconds: 540,
			IsAccessible:     true,
			CreatedAt:        "2026/08/01 10:00:00",
		},
		Author: &Author{UUID: "u-1", Name: "ada"},
		Tags:   []string{"go"},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/code/abc", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(want)
	})
	client, _ := newTestClient(t, mux)

	got, err := client.GetSnippet(context.Background(), "abc", false)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("snippet result mismatch (-want +got):\n%s", diff)
	}
}

func TestGetSnippet_SkipIncrementOnWire(t *testing.T) {
	var calls int32
	var firstQuery, secondQuery string

	mux := http.NewServeMux()
	mux.HandleFunc("/api/code/abc", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			firstQuery = r.URL.RawQuery
		} else {
			secondQuery = r.URL.RawQuery
		}
		json.NewEncoder(w).Encode(SnippetResult{Snippet: &Snippet{UUID: "abc", Content: "x"}})
	})
	client, _ := newTestClient(t, mux)

	_, err := client.GetSnippet(context.Background(), "abc", true)
	require.NoError(t, err)
	_, err = client.GetSnippet(context.Background(), "abc", false)
	require.NoError(t, err)

	assert.EqualValues(t, 2, calls, "each load must be a distinct request")
	assert.Equal(t, "skipIncrement=true", firstQuery)
	assert.Empty(t, secondQuery, "second load must not carry the skip flag")
}

func TestGetSnippet_ExpiredVersusNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/code/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": "The code snippet has expired.",
			"expired": true,
		})
	})
	mux.HandleFunc("/api/code/never", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{"message": "No such code snippet"})
	})
	client, _ := newTestClient(t, mux)

	_, err := client.GetSnippet(context.Background(), "gone", false)
	require.Error(t, err)
	assert.True(t, IsExpired(err), "403 with expired flag must classify as ExpiredError, got %v", err)
	assert.False(t, IsNotFound(err))

	_, err = client.GetSnippet(context.Background(), "never", false)
	require.Error(t, err)
	assert.True(t, IsNotFound(err), "404 must classify as NotFoundError, got %v", err)
	assert.False(t, IsExpired(err))
}

func TestGetSnippet_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // refuse connections

	client, err := NewClient(Config{BaseURL: srv.URL + "/api"})
	require.NoError(t, err)

	_, err = client.GetSnippet(context.Background(), "abc", false)
	require.Error(t, err)
	assert.True(t, IsTransport(err), "network failure must classify as TransportError, got %v", err)
}

func TestGetSnippet_MalformedBodyIsTransport(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/code/abc", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})
	client, _ := newTestClient(t, mux)

	_, err := client.GetSnippet(context.Background(), "abc", false)
	require.Error(t, err)
	assert.True(t, IsTransport(err))
}

func TestCreateSnippet(t *testing.T) {
	var gotBody CreateSnippetRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/api/code/new", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "uuid": "new-1"})
	})
	client, _ := newTestClient(t, mux)

	result, err := client.CreateSnippet(context.Background(), CreateSnippetRequest{
		Content:         "fmt.Println(42)",
		ExpirationType:  ExpirationViews,
		ExpirationValue: 3,
		Tags:            []string{"go", "demo"},
	})
	require.NoError(t, err)
	assert.Equal(t, "new-1", result.UUID)
	assert.Equal(t, ExpirationViews, gotBody.ExpirationType)
	assert.EqualValues(t, 3, gotBody.ExpirationValue)
}

func TestCreateSnippet_Unauthenticated(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/code/new", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "Authentication required to create snippet.",
		})
	})
	client, _ := newTestClient(t, mux)

	_, err := client.CreateSnippet(context.Background(), CreateSnippetRequest{Content: "x"})
	require.Error(t, err)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
	assert.Contains(t, reqErr.Message, "Authentication required")
}

func TestSessionCookiePersistsAcrossRequests(t *testing.T) {
	var sawCookie bool
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "uuid", Value: "u-1", Path: "/"})
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("uuid"); err == nil && c.Value == "u-1" {
			sawCookie = true
		}
		json.NewEncoder(w).Encode(User{UUID: "u-1", Name: "ada"})
	})
	client, _ := newTestClient(t, mux)

	_, err := client.Login(context.Background(), Credentials{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.True(t, sawCookie, "session cookie must ride subsequent requests")
}

func TestSessionCookieSurvivesRestart(t *testing.T) {
	var meCookie string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "uuid", Value: "u-9", Path: "/"})
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("uuid"); err == nil {
			meCookie = c.Value
		}
		json.NewEncoder(w).Encode(User{UUID: "u-9", Name: "ada"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "session.json")

	first, err := NewClient(Config{BaseURL: srv.URL + "/api", CookiePath: path})
	require.NoError(t, err)
	_, err = first.Login(context.Background(), Credentials{Email: "ada@example.com", Password: "pw"})
	require.NoError(t, err)

	// A second client stands in for the next process: fresh jar, same file.
	meCookie = ""
	second, err := NewClient(Config{BaseURL: srv.URL + "/api", CookiePath: path})
	require.NoError(t, err)
	_, err = second.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u-9", meCookie, "a new process must resume the saved session")
}

func TestMyGroups(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/groups/my", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"groups": []Group{
				{ID: 1, Name: "compilers", MemberCount: 4, Role: "creator"},
				{ID: 2, Name: "gophers", MemberCount: 12, Role: "member"},
			},
		})
	})
	client, _ := newTestClient(t, mux)

	groups, err := client.MyGroups(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "compilers", groups[0].Name)
	assert.Equal(t, "member", groups[1].Role)
}

func TestConversation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/messages/conversation/7", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":   true,
			"otherUser": GroupMember{ID: 7, Username: "grace"},
			"messages": []Message{
				{ID: 1, Content: "hi", Direction: "sent"},
				{ID: 2, Content: "hello", Direction: "received", SnippetUUID: "abc"},
			},
		})
	})
	client, _ := newTestClient(t, mux)

	conv, err := client.Conversation(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "grace", conv.OtherUser.Username)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "abc", conv.Messages[1].SnippetUUID)
}

func TestSendMessage_RecipientNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/messages", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "Recipient email not found"})
	})
	client, _ := newTestClient(t, mux)

	err := client.SendMessage(context.Background(), SendMessageRequest{ReceiverEmail: "ghost@example.com", Content: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Recipient email not found")
}
