package viewer

import (
	"testing"

	"codenest/internal/api"
)

func readyOutcome(snip *api.Snippet) Outcome {
	return Outcome{Result: &api.SnippetResult{
		Snippet: snip,
		Author:  &api.Author{Name: "ada"},
	}}
}

func TestNavigate_StartsLoading(t *testing.T) {
	t.Parallel()
	s := NewSession()

	d := s.Navigate("abc", false)

	if s.Status() != StatusLoading {
		t.Errorf("expected Loading, got %s", s.Status())
	}
	if d.ID != "abc" || d.SkipIncrement {
		t.Errorf("unexpected directive: %+v", d)
	}
	if d.Seq != s.Seq() {
		t.Errorf("directive seq %d does not match session seq %d", d.Seq, s.Seq())
	}
}

func TestResolve_ReadySeedsCountdownForTimeSnippets(t *testing.T) {
	t.Parallel()
	s := NewSession()
	d := s.Navigate("abc", false)

	applied := s.Resolve(d.Seq, readyOutcome(&api.Snippet{
		UUID:             "abc",
		Content:          "package main",
		ExpirationType:   api.ExpirationTime,
		RemainingSeconds: 120,
	}))

	if !applied {
		t.Fatal("outcome with current seq must be applied")
	}
	if s.Status() != StatusReady {
		t.Fatalf("expected Ready, got %s", s.Status())
	}
	if s.Remaining() != 120 {
		t.Errorf("expected remaining 120, got %d", s.Remaining())
	}
	if !s.TickActive() {
		t.Error("countdown should be active for a Ready TIME snippet")
	}
}

func TestResolve_NoCountdownForViewSnippets(t *testing.T) {
	t.Parallel()
	s := NewSession()
	d := s.Navigate("abc", false)

	s.Resolve(d.Seq, readyOutcome(&api.Snippet{
		UUID:            "abc",
		Content:         "x",
		ExpirationType:  api.ExpirationViews,
		ExpirationValue: 3,
		ViewCount:       3,
	}))

	// View-budget exhaustion is server-authoritative: equality of the
	// counts alone never expires the session client-side.
	if s.Status() != StatusReady {
		t.Fatalf("expected Ready, got %s", s.Status())
	}
	if s.TickActive() {
		t.Error("countdown must not run for VIEWS snippets")
	}
	if s.Snippet().ViewCount != 3 || s.Snippet().ExpirationValue != 3 {
		t.Error("server counts must be preserved verbatim")
	}
}

func TestResolve_ZeroSeedExpiresImmediately(t *testing.T) {
	t.Parallel()
	s := NewSession()
	d := s.Navigate("abc", false)

	s.Resolve(d.Seq, readyOutcome(&api.Snippet{
		UUID:             "abc",
		Content:          "x",
		ExpirationType:   api.ExpirationTime,
		RemainingSeconds: 0,
	}))

	if s.Status() != StatusExpired {
		t.Fatalf("expected Expired, got %s", s.Status())
	}
	if s.Snippet() != nil {
		t.Error("content must be discarded on expiry")
	}
}

func TestResolve_ErrorTaxonomy(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want Status
	}{
		{"expired", &api.ExpiredError{UUID: "abc", Message: "expired"}, StatusExpired},
		{"not found", &api.NotFoundError{UUID: "abc", Message: "not found"}, StatusNotFound},
		{"transport", &api.TransportError{Op: "GET /code/abc", Err: errFake}, StatusError},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			s := NewSession()
			d := s.Navigate("abc", false)

			s.Resolve(d.Seq, Outcome{Err: tc.err})

			if s.Status() != tc.want {
				t.Errorf("expected %s, got %s", tc.want, s.Status())
			}
			if s.Snippet() != nil {
				t.Error("no content may be exposed on a failed fetch")
			}
		})
	}
}

func TestResolve_StaleResponseDiscarded(t *testing.T) {
	t.Parallel()
	s := NewSession()

	a := s.Navigate("aaa", false)
	b := s.Navigate("bbb", false)

	// A's response arrives after the identifier changed to B.
	applied := s.Resolve(a.Seq, readyOutcome(&api.Snippet{UUID: "aaa", Content: "old"}))
	if applied {
		t.Fatal("stale response must not be applied")
	}
	if s.Status() != StatusLoading {
		t.Errorf("session showing B must stay Loading, got %s", s.Status())
	}

	// B's own response still lands normally.
	if !s.Resolve(b.Seq, readyOutcome(&api.Snippet{UUID: "bbb", Content: "new"})) {
		t.Fatal("current response must be applied")
	}
	if s.Snippet().UUID != "bbb" {
		t.Errorf("expected snippet bbb, got %s", s.Snippet().UUID)
	}
}

func TestNavigate_ResetsCountdownFromPreviousSnippet(t *testing.T) {
	t.Parallel()
	s := NewSession()
	d := s.Navigate("aaa", false)
	s.Resolve(d.Seq, readyOutcome(&api.Snippet{
		UUID:             "aaa",
		Content:          "x",
		ExpirationType:   api.ExpirationTime,
		RemainingSeconds: 500,
	}))

	s.Navigate("bbb", false)

	if s.Remaining() != 0 {
		t.Errorf("countdown from previous snippet must not bleed over, got %d", s.Remaining())
	}
	if s.Status() != StatusLoading {
		t.Errorf("expected Loading after navigation, got %s", s.Status())
	}
}

func TestTick_CountsDownToExpired(t *testing.T) {
	t.Parallel()
	s := NewSession()
	d := s.Navigate("abc", false)
	s.Resolve(d.Seq, readyOutcome(&api.Snippet{
		UUID:             "abc",
		Content:          "x",
		ExpirationType:   api.ExpirationTime,
		RemainingSeconds: 2,
	}))

	if !s.Tick(d.Seq) {
		t.Fatal("first tick should apply")
	}
	if s.Status() != StatusReady || s.Remaining() != 1 {
		t.Fatalf("expected Ready/1, got %s/%d", s.Status(), s.Remaining())
	}

	if !s.Tick(d.Seq) {
		t.Fatal("second tick should apply")
	}
	if s.Status() != StatusExpired {
		t.Fatalf("expected Expired at zero, got %s", s.Status())
	}
	if s.Snippet() != nil {
		t.Error("content must be discarded at local expiry")
	}
	if s.Tick(d.Seq) {
		t.Error("ticks must stop once expired")
	}
}

func TestTick_StaleTimerIgnored(t *testing.T) {
	t.Parallel()
	s := NewSession()
	a := s.Navigate("aaa", false)
	s.Resolve(a.Seq, readyOutcome(&api.Snippet{
		UUID:             "aaa",
		Content:          "x",
		ExpirationType:   api.ExpirationTime,
		RemainingSeconds: 10,
	}))

	b := s.Navigate("bbb", false)
	s.Resolve(b.Seq, readyOutcome(&api.Snippet{
		UUID:             "bbb",
		Content:          "y",
		ExpirationType:   api.ExpirationTime,
		RemainingSeconds: 10,
	}))

	// A leaked timer from the first navigation fires with the old token.
	if s.Tick(a.Seq) {
		t.Fatal("tick carrying a stale token must be ignored")
	}
	if s.Remaining() != 10 {
		t.Errorf("stale tick decremented the new session: remaining=%d", s.Remaining())
	}
}

func TestNeverReadyWithZeroRemaining(t *testing.T) {
	t.Parallel()
	s := NewSession()
	d := s.Navigate("abc", false)
	s.Resolve(d.Seq, readyOutcome(&api.Snippet{
		UUID:             "abc",
		Content:          "x",
		ExpirationType:   api.ExpirationTime,
		RemainingSeconds: 3,
	}))

	for i := 0; i < 10; i++ {
		s.Tick(d.Seq)
		if s.Status() == StatusReady && s.Remaining() <= 0 {
			t.Fatal("invariant violated: Ready with no time remaining")
		}
	}
	if s.Status() != StatusExpired {
		t.Errorf("expected Expired after exhausting budget, got %s", s.Status())
	}
}

func TestSkipIncrement_ConsumedOnce(t *testing.T) {
	t.Parallel()
	s := NewSession()

	first := s.Navigate("abc", true)
	if !first.SkipIncrement {
		t.Fatal("first navigation with the flag must carry skipIncrement")
	}

	// The same navigation event processed again (re-render) must not
	// re-arm the flag, even while the first request is still in flight.
	second := s.Navigate("abc", true)
	if second.SkipIncrement {
		t.Error("skip-increment flag must be applied at most once per identifier")
	}
	if second.Seq == first.Seq {
		t.Error("each navigation must issue a distinct request")
	}
}

func TestSkipIncrement_RearmsOnFreshNavigation(t *testing.T) {
	t.Parallel()
	s := NewSession()

	// Two snippets published back to back in one run: each author view
	// arrives flagged and each must skip the view count.
	first := s.Navigate("first", true)
	second := s.Navigate("second", true)

	if !first.SkipIncrement {
		t.Error("first flagged navigation must carry skipIncrement")
	}
	if !second.SkipIncrement {
		t.Error("a flagged navigation to a new identifier must carry skipIncrement again")
	}
}

func TestRetry_CarriesSkipFlag(t *testing.T) {
	t.Parallel()
	s := NewSession()
	d := s.Navigate("abc", true)
	if !d.SkipIncrement {
		t.Fatal("flagged navigation must carry skipIncrement")
	}

	s.Resolve(d.Seq, Outcome{Err: &api.TransportError{Op: "GET /code/abc", Err: errFake}})

	// The failed request never reached the server's counter, so the retry
	// must be the identical request, flag included.
	r, ok := s.Retry()
	if !ok {
		t.Fatal("retry must be available from Error")
	}
	if !r.SkipIncrement {
		t.Error("retry must re-issue the identical request including the skip flag")
	}
}

func TestLeave_InvalidatesPendingTicks(t *testing.T) {
	t.Parallel()
	s := NewSession()
	d := s.Navigate("abc", false)
	s.Resolve(d.Seq, readyOutcome(&api.Snippet{
		UUID:             "abc",
		Content:          "x",
		ExpirationType:   api.ExpirationTime,
		RemainingSeconds: 30,
	}))

	s.Leave()

	if s.Tick(d.Seq) {
		t.Error("a tick scheduled before leaving must be discarded")
	}
	if s.TickActive() {
		t.Error("no countdown may run after the visit is abandoned")
	}
	if s.Snippet() != nil {
		t.Error("content must be dropped when the visit is abandoned")
	}
}

func TestRetry_OnlyFromError(t *testing.T) {
	t.Parallel()
	s := NewSession()
	d := s.Navigate("abc", false)

	if _, ok := s.Retry(); ok {
		t.Error("retry must not be available while Loading")
	}

	s.Resolve(d.Seq, Outcome{Err: &api.TransportError{Op: "GET /code/abc", Err: errFake}})

	r, ok := s.Retry()
	if !ok {
		t.Fatal("retry must be available from Error")
	}
	if r.ID != "abc" || r.SkipIncrement {
		t.Errorf("retry must re-issue the identical request, got %+v", r)
	}
	if s.Status() != StatusLoading {
		t.Errorf("expected Loading after retry, got %s", s.Status())
	}

	// Terminal states stay terminal.
	s.Resolve(r.Seq, Outcome{Err: &api.ExpiredError{UUID: "abc"}})
	if _, ok := s.Retry(); ok {
		t.Error("retry must not be available from Expired")
	}
}

var errFake = errFakeType{}

type errFakeType struct{}

func (errFakeType) Error() string { return "connection refused" }
