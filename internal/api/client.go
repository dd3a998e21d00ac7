// Package api implements the HTTP client for the CodeNest backend.
// All responses are parsed once at this boundary into explicit result types;
// failures are classified into NotFoundError, ExpiredError, RequestError, or
// TransportError so callers never inspect status codes or raw JSON.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"codenest/internal/logging"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

// Config holds client configuration.
type Config struct {
	// BaseURL is the API root, e.g. "https://codenest.example.com/api".
	BaseURL string
	// Timeout bounds each request unless the context carries a deadline.
	Timeout time.Duration
	// CookiePath, when non-empty, persists session cookies to disk so a
	// login survives across processes.
	CookiePath string
}

// DefaultConfig returns sensible defaults for a local backend.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8080/api",
		Timeout: 30 * time.Second,
	}
}

// Client talks to the CodeNest REST API. The backend identifies sessions via
// a uuid cookie set on login, so the client carries a cookie jar and sends
// it on every request. With a cookie path configured the jar is mirrored to
// disk, which is what lets `codenest login` outlive its own process.
type Client struct {
	baseURL    string
	base       *url.URL
	cookiePath string
	httpClient *http.Client
}

// NewClient creates a client. When cfg.CookiePath is set, session cookies
// saved by an earlier process are loaded into the jar.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		baseURL:    cfg.BaseURL,
		base:       base,
		cookiePath: cfg.CookiePath,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}
	if c.cookiePath != "" {
		c.loadCookies()
	}
	return c, nil
}

// =============================================================================
// SNIPPETS
// =============================================================================

// GetSnippet fetches a snippet by its opaque identifier. skipIncrement tells
// the server not to count this load as a view; it is only valid on the
// navigation immediately following creation.
func (c *Client) GetSnippet(ctx context.Context, uuid string, skipIncrement bool) (*SnippetResult, error) {
	path := "/code/" + url.PathEscape(uuid)
	if skipIncrement {
		path += "?skipIncrement=true"
	}
	logging.APIDebug("GetSnippet uuid=%s skipIncrement=%v", uuid, skipIncrement)

	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
		var result SnippetResult
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, &TransportError{Op: "GET " + path, Err: fmt.Errorf("malformed response: %w", err)}
		}
		if result.Snippet == nil {
			return nil, &TransportError{Op: "GET " + path, Err: fmt.Errorf("response missing snippet payload")}
		}
		return &result, nil
	default:
		return nil, classifySnippetFailure(uuid, status, body, path)
	}
}

// LatestSnippets fetches the most recent public snippets.
func (c *Client) LatestSnippets(ctx context.Context) (*LatestResult, error) {
	var result LatestResult
	if err := c.getJSON(ctx, "/code/latest", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateSnippet stores a new snippet and returns its identifier. Requires an
// authenticated session.
func (c *Client) CreateSnippet(ctx context.Context, req CreateSnippetRequest) (*CreateSnippetResult, error) {
	var payload struct {
		envelope
		UUID string `json:"uuid"`
	}
	if err := c.postJSON(ctx, "/code/new", req, &payload); err != nil {
		return nil, err
	}
	if payload.UUID == "" {
		return nil, &TransportError{Op: "POST /code/new", Err: fmt.Errorf("no UUID returned")}
	}
	logging.API("Created snippet %s", payload.UUID)
	return &CreateSnippetResult{UUID: payload.UUID}, nil
}

// classifySnippetFailure maps a non-200 snippet fetch onto the error
// taxonomy. Expiry is only ever recognized from the server's explicit flag,
// never inferred.
func classifySnippetFailure(uuid string, status int, body []byte, path string) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &TransportError{Op: "GET " + path, Err: fmt.Errorf("unexpected status %d: %s", status, truncateBody(body))}
	}

	switch {
	case env.Expired:
		return &ExpiredError{UUID: uuid, Message: env.Message}
	case status == http.StatusNotFound:
		return &NotFoundError{UUID: uuid, Message: env.Message}
	default:
		return &TransportError{Op: "GET " + path, Err: fmt.Errorf("unexpected status %d: %s", status, env.Message)}
	}
}

// =============================================================================
// AUTHENTICATION
// =============================================================================

// Login authenticates and returns the full account, mirroring the session
// cookie into the jar. The login endpoint only returns a success flag, so a
// follow-up who-am-I fetch supplies the account details.
func (c *Client) Login(ctx context.Context, creds Credentials) (*User, error) {
	var payload envelope
	if err := c.postJSON(ctx, "/login", creds, &payload); err != nil {
		return nil, err
	}
	logging.Session("Logged in as %s", creds.Email)
	return c.Me(ctx)
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	var payload envelope
	if err := c.postJSON(ctx, "/register", reg, &payload); err != nil {
		return err
	}
	logging.Session("Registered account %s", reg.Email)
	return nil
}

// Logout ends the server session and drops the local cookie.
func (c *Client) Logout(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodPost, "/logout", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return &RequestError{StatusCode: status, Message: "logout failed"}
	}
	logging.Session("Logged out")
	return nil
}

// Me returns the currently authenticated user, or a RequestError when the
// session cookie is missing or stale.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.getJSON(ctx, "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// =============================================================================
// GROUPS
// =============================================================================

// CreateGroup creates a group owned by the current user.
func (c *Client) CreateGroup(ctx context.Context, name string) error {
	body := map[string]string{"name": name}
	var payload envelope
	return c.postJSON(ctx, "/groups", body, &payload)
}

// MyGroups lists groups the current user created or joined.
func (c *Client) MyGroups(ctx context.Context) ([]Group, error) {
	var payload struct {
		envelope
		Groups []Group `json:"groups"`
	}
	if err := c.getJSON(ctx, "/groups/my", &payload); err != nil {
		return nil, err
	}
	return payload.Groups, nil
}

// Members lists the members of a group.
func (c *Client) Members(ctx context.Context, groupID int64) ([]GroupMember, error) {
	var payload struct {
		envelope
		Members []GroupMember `json:"members"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/groups/%d/members", groupID), &payload); err != nil {
		return nil, err
	}
	return payload.Members, nil
}

// AddMember adds a user to a group by email. Creator only.
func (c *Client) AddMember(ctx context.Context, groupID int64, email string) error {
	body := map[string]string{"email": email}
	var payload envelope
	return c.postJSON(ctx, fmt.Sprintf("/groups/%d/members", groupID), body, &payload)
}

// RemoveMember removes a user from a group. Creator only.
func (c *Client) RemoveMember(ctx context.Context, groupID, userID int64) error {
	status, body, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/groups/%d/members/%d", groupID, userID), nil)
	if err != nil {
		return err
	}
	return checkEnvelope(status, body)
}

// GroupSnippets lists snippets shared into a group.
func (c *Client) GroupSnippets(ctx context.Context, groupID int64) ([]GroupSnippet, error) {
	var payload struct {
		envelope
		Snippets []GroupSnippet `json:"snippets"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/groups/%d/snippets", groupID), &payload); err != nil {
		return nil, err
	}
	return payload.Snippets, nil
}

// ShareSnippet shares one of the user's snippets into a group.
func (c *Client) ShareSnippet(ctx context.Context, groupID int64, snippetUUID string) error {
	body := map[string]string{"snippetUuid": snippetUUID}
	var payload envelope
	return c.postJSON(ctx, fmt.Sprintf("/groups/%d/snippets", groupID), body, &payload)
}

// =============================================================================
// MESSAGES
// =============================================================================

// SendMessage sends a direct message, optionally attaching a snippet.
func (c *Client) SendMessage(ctx context.Context, req SendMessageRequest) error {
	var payload envelope
	return c.postJSON(ctx, "/messages", req, &payload)
}

// Inbox lists received messages, newest first.
func (c *Client) Inbox(ctx context.Context) ([]Message, error) {
	return c.messageList(ctx, "/messages/inbox")
}

// Sent lists sent messages, newest first.
func (c *Client) Sent(ctx context.Context) ([]Message, error) {
	return c.messageList(ctx, "/messages/sent")
}

func (c *Client) messageList(ctx context.Context, path string) ([]Message, error) {
	var payload struct {
		envelope
		Messages []Message `json:"messages"`
	}
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}
	return payload.Messages, nil
}

// Conversation returns the two-way message history with another user,
// oldest first.
func (c *Client) Conversation(ctx context.Context, otherUserID int64) (*Conversation, error) {
	var payload struct {
		envelope
		OtherUser *GroupMember `json:"otherUser"`
		Messages  []Message    `json:"messages"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/messages/conversation/%d", otherUserID), &payload); err != nil {
		return nil, err
	}
	return &Conversation{OtherUser: payload.OtherUser, Messages: payload.Messages}, nil
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do issues a request and returns the raw status and body. Network failures
// and unreadable bodies come back as TransportError; status interpretation
// is left to the caller.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (int, []byte, error) {
	// Auto-apply timeout if the context has no deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, &TransportError{Op: method + " " + path, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Correlation id, to line client logs up with server access logs.
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Get(logging.CategoryAPI).Error("%s %s [%s]: %v", method, path, requestID, err)
		return 0, nil, &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &TransportError{Op: method + " " + path, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	// A Set-Cookie means the server created, refreshed, or revoked the
	// session; mirror the jar to disk so the next process sees it too.
	if c.cookiePath != "" && len(resp.Header.Values("Set-Cookie")) > 0 {
		c.saveCookies()
	}

	logging.APIDebug("%s %s [%s] -> %d (%d bytes)", method, path, requestID, resp.StatusCode, len(data))
	return resp.StatusCode, data, nil
}

// getJSON issues a GET and decodes a 2xx body into out. Non-2xx responses
// are classified via the generic envelope.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := checkEnvelope(status, body); err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{Op: "GET " + path, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return nil
}

// postJSON marshals body, issues a POST, and decodes a 2xx response into out.
func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return &TransportError{Op: "POST " + path, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	status, respBody, err := c.do(ctx, http.MethodPost, path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	if err := checkEnvelope(status, respBody); err != nil {
		return err
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &TransportError{Op: "POST " + path, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return nil
}

// checkEnvelope turns a non-2xx response, or a 2xx carrying success=false,
// into a RequestError with the server's message when one is present.
func checkEnvelope(status int, body []byte) error {
	var env envelope
	decoded := json.Unmarshal(body, &env) == nil

	if status < 200 || status > 299 {
		if decoded && env.Message != "" {
			return &RequestError{StatusCode: status, Message: env.Message}
		}
		return &RequestError{StatusCode: status, Message: truncateBody(body)}
	}

	// Some endpoints report structured failure inside a 200.
	if decoded && env.Message != "" && !env.Success {
		return &RequestError{StatusCode: status, Message: env.Message}
	}
	return nil
}

func truncateBody(body []byte) string {
	const max = 200
	s := string(body)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
