// Package viewer implements the expiration-aware view session for a single
// snippet display. It is a pure state machine driven by discrete events
// (Navigate, Resolve, Tick, Retry, Leave); the embedding UI owns the actual
// HTTP call and timer and feeds their results back in. Stale-response discard
// and timer scoping both hang off a per-request sequence token, so a response
// or tick that belongs to an earlier navigation can never touch newer state.
package viewer

import (
	"codenest/internal/api"
	"codenest/internal/logging"
)

// Status is the display state of a view session.
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusExpired
	StatusNotFound
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusExpired:
		return "expired"
	case StatusNotFound:
		return "not_found"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// FetchDirective instructs the caller to issue one retrieval call. Seq must
// be echoed back through Resolve so the session can discard stale results.
type FetchDirective struct {
	ID            string
	SkipIncrement bool
	Seq           int
}

// Outcome is the result of a retrieval call. Exactly one of Result or Err
// is set.
type Outcome struct {
	Result *api.SnippetResult
	Err    error
}

// Session tracks one snippet-viewing visit. It is created on navigation,
// lives for the duration of the page, and is discarded on navigation away.
// Not safe for concurrent use; the UI event loop is its only owner.
type Session struct {
	id        string
	seq       int
	status    Status
	snippet   *api.Snippet
	author    *api.Author
	remaining int64
	errText   string

	// skipConsumed guards the one-time "do not count this view" flag for the
	// current identifier, so a re-processed navigation event cannot re-arm
	// it. A navigation to a different identifier re-arms it. skipInFlight
	// mirrors the flag onto the outstanding request for retries.
	skipConsumed bool
	skipInFlight bool
}

// NewSession returns an empty session in the Loading state.
func NewSession() *Session {
	return &Session{status: StatusLoading}
}

// Navigate resets the session for a (possibly new) identifier and returns
// the fetch to perform. Any countdown seeded by a previous identifier is
// cleared before the new request starts. The skip-increment flag is applied
// at most once per identifier: a re-processed navigation for the same
// snippet cannot re-arm it, while a fresh navigation elsewhere can.
func (s *Session) Navigate(id string, skipIncrement bool) FetchDirective {
	if id != s.id {
		s.skipConsumed = false
	}
	s.seq++
	s.id = id
	s.status = StatusLoading
	s.snippet = nil
	s.author = nil
	s.remaining = 0
	s.errText = ""

	skip := false
	if skipIncrement && !s.skipConsumed {
		skip = true
		s.skipConsumed = true
	}
	s.skipInFlight = skip

	logging.ViewerDebug("navigate id=%s seq=%d skip=%v", id, s.seq, skip)
	return FetchDirective{ID: id, SkipIncrement: skip, Seq: s.seq}
}

// Retry re-issues the identical request after a transport failure, including
// the skip-increment flag if the failed request carried it; a failed fetch
// never counted as a view. Only the Error state is recoverable; Expired and
// NotFound are terminal.
func (s *Session) Retry() (FetchDirective, bool) {
	if s.status != StatusError {
		return FetchDirective{}, false
	}
	s.seq++
	s.status = StatusLoading
	s.errText = ""
	logging.ViewerDebug("retry id=%s seq=%d skip=%v", s.id, s.seq, s.skipInFlight)
	return FetchDirective{ID: s.id, SkipIncrement: s.skipInFlight, Seq: s.seq}, true
}

// Leave abandons the visit on navigation away. The sequence token advances so
// an in-flight fetch or a pending timer tick resolves as stale, and the
// content is dropped immediately.
func (s *Session) Leave() {
	s.seq++
	s.status = StatusLoading
	s.snippet = nil
	s.author = nil
	s.remaining = 0
	s.errText = ""
	logging.ViewerDebug("leave id=%s seq=%d", s.id, s.seq)
}

// Resolve applies a fetch outcome. Outcomes carrying a stale sequence token
// are discarded and reported as not applied; this is what prevents an old
// request's success from overwriting a newer session.
func (s *Session) Resolve(seq int, outcome Outcome) bool {
	if seq != s.seq {
		logging.ViewerDebug("discarding stale response seq=%d current=%d", seq, s.seq)
		return false
	}
	if s.status != StatusLoading {
		return false
	}

	if outcome.Err != nil {
		switch {
		case api.IsExpired(outcome.Err):
			s.expire(outcome.Err.Error())
		case api.IsNotFound(outcome.Err):
			s.status = StatusNotFound
			s.errText = outcome.Err.Error()
		default:
			s.status = StatusError
			s.errText = outcome.Err.Error()
		}
		logging.Viewer("resolved id=%s status=%s", s.id, s.status)
		return true
	}

	snip := outcome.Result.Snippet
	s.snippet = snip
	s.author = outcome.Result.Author
	s.status = StatusReady

	if snip.TimeLimited() {
		s.remaining = snip.RemainingSeconds
		// A zero or negative seed means the budget ran out between the
		// server computing it and us receiving it. Never sit in Ready
		// with no time left.
		if s.remaining <= 0 {
			s.remaining = 0
			s.expire("")
		}
	}

	logging.Viewer("resolved id=%s status=%s remaining=%d", s.id, s.status, s.remaining)
	return true
}

// Tick consumes one second of the local countdown. Ticks are only honored
// while the session is Ready, time-limited, and carrying the current
// sequence token; anything else is a leftover timer from a previous
// navigation and is ignored.
func (s *Session) Tick(seq int) bool {
	if seq != s.seq || !s.TickActive() {
		return false
	}

	s.remaining--
	if s.remaining <= 0 {
		s.remaining = 0
		s.expire("")
		logging.Viewer("local countdown reached zero for %s", s.id)
	}
	return true
}

// TickActive reports whether the countdown should be running.
func (s *Session) TickActive() bool {
	return s.status == StatusReady && s.snippet != nil && s.snippet.TimeLimited() && s.remaining > 0
}

// expire moves to the Expired state and discards the content so nothing can
// render stale code, regardless of whether expiry was server-reported or
// locally timed out.
func (s *Session) expire(message string) {
	s.status = StatusExpired
	s.snippet = nil
	s.author = nil
	s.errText = message
}

// ID returns the identifier of the current navigation.
func (s *Session) ID() string { return s.id }

// Seq returns the current sequence token.
func (s *Session) Seq() int { return s.seq }

// Status returns the display state.
func (s *Session) Status() Status { return s.status }

// Snippet returns the fetched payload, or nil outside Ready.
func (s *Session) Snippet() *api.Snippet { return s.snippet }

// Author returns the snippet's author, or nil outside Ready.
func (s *Session) Author() *api.Author { return s.author }

// Remaining returns the locally ticking seconds budget for TIME snippets.
func (s *Session) Remaining() int64 { return s.remaining }

// Err returns the failure or expiry message for display.
func (s *Session) Err() string { return s.errText }
