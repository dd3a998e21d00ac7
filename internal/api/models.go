package api

// Expiration policy types reported by the server. A snippet carries at most
// one policy; enforcement is entirely server-side.
const (
	ExpirationNone  = "NONE"
	ExpirationTime  = "TIME"
	ExpirationViews = "VIEWS"
)

// Snippet is the server's representation of a stored code snippet.
// All fields are read-only from the client's perspective; in particular
// ViewCount and the remaining budgets are authoritative only at the moment
// of the fetch.
type Snippet struct {
	UUID             string   `json:"uuid"`
	Title            string   `json:"title"`
	Content          string   `json:"content"`
	Tags             []string `json:"tags"`
	ExpirationType   string   `json:"expirationType"`
	ExpirationValue  int64    `json:"expirationValue"`
	ViewCount        int64    `json:"viewCount"`
	RemainingViews   int64    `json:"remainingViews"`
	RemainingSeconds int64    `json:"remainingSeconds"`
	IsAccessible     bool     `json:"isAccessible"`
	CreatedAt        string   `json:"createdAt"`
}

// TimeLimited reports whether the snippet counts down in real seconds.
func (s *Snippet) TimeLimited() bool { return s.ExpirationType == ExpirationTime }

// ViewLimited reports whether the snippet consumes a view budget.
func (s *Snippet) ViewLimited() bool { return s.ExpirationType == ExpirationViews }

// Author is the public profile attached to a snippet.
type Author struct {
	UUID     string `json:"uuid"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Personal string `json:"personal,omitempty"`
	GitHub   string `json:"github,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// User is the authenticated account returned by the who-am-I endpoint.
type User struct {
	UUID  string `json:"uuid"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SnippetResult is the success variant of GET /code/{uuid}.
type SnippetResult struct {
	Snippet *Snippet `json:"snippet"`
	Author  *Author  `json:"author"`
	Tags    []string `json:"tags"`
}

// LatestResult is the payload of GET /code/latest.
type LatestResult struct {
	Snippets []Snippet `json:"snippets"`
	Authors  []Author  `json:"authors"`
}

// CreateSnippetRequest is the body of POST /code/new. ExpirationType is one
// of the Expiration* constants or empty for no expiration; ExpirationValue
// is seconds for TIME and a view budget for VIEWS.
type CreateSnippetRequest struct {
	Title           string   `json:"title,omitempty"`
	Content         string   `json:"content"`
	ExpirationType  string   `json:"expirationType,omitempty"`
	ExpirationValue int64    `json:"expirationValue,omitempty"`
	Tags            []string `json:"tags,omitempty"`
}

// CreateSnippetResult carries the new snippet's identifier.
type CreateSnippetResult struct {
	UUID string `json:"uuid"`
}

// Credentials is the body of POST /login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

// Registration is the body of POST /register.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Group is one entry of GET /groups/my. Role is "creator" or "member".
type Group struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CreatedAt   string `json:"createdAt"`
	JoinedAt    string `json:"joinedAt,omitempty"`
	MemberCount int64  `json:"memberCount"`
	Role        string `json:"role"`
}

// GroupMember is one entry of GET /groups/{id}/members.
type GroupMember struct {
	ID        int64  `json:"id"`
	UUID      string `json:"uuid"`
	Username  string `json:"username"`
	JoinedAt  string `json:"joinedAt"`
	IsCreator bool   `json:"isCreator"`
}

// GroupSnippet is a snippet shared into a group, with sharing provenance.
type GroupSnippet struct {
	ID        int64        `json:"id"`
	UUID      string       `json:"uuid"`
	Title     string       `json:"title"`
	CreatedAt string       `json:"createdAt"`
	Author    *GroupMember `json:"author"`
	SharedBy  *GroupMember `json:"sharedBy"`
	SharedAt  string       `json:"sharedAt"`
	Tags      []string     `json:"tags"`
}

// Message is a direct message as returned by the inbox, sent, and
// conversation endpoints. Direction is only populated by conversations.
type Message struct {
	ID           int64  `json:"id"`
	SenderID     int64  `json:"senderId,omitempty"`
	SenderName   string `json:"senderName,omitempty"`
	ReceiverID   int64  `json:"receiverId,omitempty"`
	ReceiverName string `json:"receiverName,omitempty"`
	Content      string `json:"content"`
	SentAt       string `json:"sentAt"`
	Direction    string `json:"direction,omitempty"`
	SnippetUUID  string `json:"snipUuid,omitempty"`
}

// SendMessageRequest is the body of POST /messages. Exactly one of
// ReceiverID or ReceiverEmail must be set; SnippetUUID optionally attaches
// a snippet to the message.
type SendMessageRequest struct {
	ReceiverID    int64  `json:"receiverId,omitempty"`
	ReceiverEmail string `json:"receiverEmail,omitempty"`
	Content       string `json:"content"`
	SnippetUUID   string `json:"snipUuid,omitempty"`
}

// Conversation is the payload of GET /messages/conversation/{id}.
type Conversation struct {
	OtherUser *GroupMember `json:"otherUser"`
	Messages  []Message    `json:"messages"`
}

// envelope is the generic {success, message} wrapper the backend uses for
// every mutating endpoint. Payload fields of specific calls are decoded
// separately from the same body.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Expired bool   `json:"expired"`
}
