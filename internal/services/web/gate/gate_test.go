package gate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/louisbranch/ledgerdesk/internal/services/web/platform/errors"
)

type fakeFetcher struct {
	mu      sync.Mutex
	calls   int
	tokens  []string
	user    User
	err     error
	release chan struct{}
}

func (f *fakeFetcher) FetchUser(_ context.Context, token string) (User, error) {
	f.mu.Lock()
	f.calls++
	f.tokens = append(f.tokens, token)
	release := f.release
	user, err := f.user, f.err
	f.mu.Unlock()
	if release != nil {
		<-release
	}
	return user, err
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestGate(t *testing.T, fetcher Fetcher, clock *fakeClock, retry time.Duration) *Gate {
	t.Helper()

	cfg := Config{
		Fetcher:    fetcher,
		RetryDelay: retry,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if clock != nil {
		cfg.Now = clock.Now
	}
	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return g
}

func waitFetch(t *testing.T, sess *Session) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		sess.mu.Lock()
		fetching := sess.fetching
		sess.mu.Unlock()
		if !fetching {
			return
		}
		sess.Wait(context.Background(), 50*time.Millisecond)
	}
	t.Fatal("profile fetch did not resolve")
}

var interactive = Env{Interactive: true}

func TestNewRequiresFetcher(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}); err == nil {
		t.Fatal("expected missing fetcher error")
	}
}

func TestEvaluateWithoutSessionRedirectsToLogin(t *testing.T) {
	t.Parallel()

	g := newTestGate(t, &fakeFetcher{}, nil, 0)
	got := g.Evaluate(context.Background(), "/dashboard", nil, interactive)
	if got.Outcome != OutcomeRedirect || got.Location != "/login" {
		t.Fatalf("Evaluate() = %+v, want redirect to login", got)
	}
}

func TestEvaluateFetchesOnceAndAppliesUser(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	fetcher := &fakeFetcher{user: User{ID: id, SignupVerified: true}, release: make(chan struct{})}
	g := newTestGate(t, fetcher, nil, 0)
	sess := NewSession("tok-1")

	first := g.Evaluate(context.Background(), "/dashboard", sess, interactive)
	if first.Outcome != OutcomeNothing || !first.Fetch {
		t.Fatalf("first Evaluate() = %+v, want nothing with fetch", first)
	}
	if got := sess.State(); got != StateAwaitingProfile {
		t.Fatalf("State() = %s, want awaiting_profile", got)
	}

	// Re-entrant evaluations while the fetch is pending coalesce.
	for i := 0; i < 3; i++ {
		got := g.Evaluate(context.Background(), "/settings", sess, interactive)
		if got.Outcome != OutcomeNothing || got.Fetch {
			t.Fatalf("pending Evaluate() = %+v, want nothing without fetch", got)
		}
	}

	close(fetcher.release)
	waitFetch(t, sess)

	if got := fetcher.callCount(); got != 1 {
		t.Fatalf("fetch calls = %d, want 1", got)
	}
	user, ok := sess.User()
	if !ok || user.ID != id {
		t.Fatalf("User() = %+v, %v; want fetched user", user, ok)
	}

	for i := 0; i < 3; i++ {
		got := g.Evaluate(context.Background(), "/dashboard", sess, interactive)
		if got != (Decision{Outcome: OutcomeRender}) {
			t.Fatalf("Evaluate() after fetch = %+v, want render", got)
		}
	}
	if got := fetcher.callCount(); got != 1 {
		t.Fatalf("fetch calls after renders = %d, want 1", got)
	}
	if got := sess.State(); got != StateActive {
		t.Fatalf("State() = %s, want active", got)
	}
}

func TestEvaluateConcurrentCallsShareOneFetch(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{user: User{ID: uuid.New(), SignupVerified: true}, release: make(chan struct{})}
	g := newTestGate(t, fetcher, nil, 0)
	sess := NewSession("tok-1")

	const callers = 200
	decisions := make(chan Decision, callers)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			decisions <- g.Evaluate(context.Background(), "/dashboard", sess, interactive)
		}()
	}
	close(start)
	wg.Wait()
	close(decisions)

	fetches := 0
	for got := range decisions {
		if got.Outcome != OutcomeNothing {
			t.Fatalf("Evaluate() while fetch blocked = %+v, want nothing", got)
		}
		if got.Fetch {
			fetches++
		}
	}
	if fetches != 1 {
		t.Fatalf("decisions starting a fetch = %d, want 1", fetches)
	}
	deadline := time.Now().Add(2 * time.Second)
	for fetcher.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := fetcher.callCount(); got != 1 {
		t.Fatalf("fetch calls while blocked = %d, want 1", got)
	}

	close(fetcher.release)
	waitFetch(t, sess)

	if got := g.Evaluate(context.Background(), "/dashboard", sess, interactive); got != (Decision{Outcome: OutcomeRender}) {
		t.Fatalf("Evaluate() after release = %+v, want render", got)
	}
	if got := fetcher.callCount(); got != 1 {
		t.Fatalf("fetch calls after release = %d, want 1", got)
	}
}

func TestEvaluateFetchSurvivesRequestCancellation(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{user: User{SignupVerified: true}, release: make(chan struct{})}
	g := newTestGate(t, fetcher, nil, 0)
	sess := NewSession("tok-1")

	ctx, cancel := context.WithCancel(context.Background())
	g.Evaluate(ctx, "/dashboard", sess, interactive)
	cancel()
	close(fetcher.release)
	waitFetch(t, sess)

	if _, ok := sess.User(); !ok {
		t.Fatal("expected fetched user despite cancelled request")
	}
}

func TestEvaluateAuthDenialExpiresSession(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{err: apperrors.FromHTTPStatus(401, "Could not validate credentials")}
	g := newTestGate(t, fetcher, nil, 0)
	sess := NewSession("tok-1")

	g.Evaluate(context.Background(), "/dashboard", sess, interactive)
	waitFetch(t, sess)

	if got := sess.Token(); got != "" {
		t.Fatalf("Token() = %q, want cleared", got)
	}
	if got := sess.State(); got != StateUnauthenticated {
		t.Fatalf("State() = %s, want unauthenticated", got)
	}
	got := g.Evaluate(context.Background(), "/dashboard", sess, interactive)
	want := Decision{Outcome: OutcomeRedirect, Location: "/login", ClearToken: true}
	if got != want {
		t.Fatalf("Evaluate() = %+v, want %+v", got, want)
	}
}

func TestEvaluateForbiddenCountsAsAuthDenial(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{err: apperrors.FromHTTPStatus(403, "")}
	g := newTestGate(t, fetcher, nil, 0)
	sess := NewSession("tok-1")

	g.Evaluate(context.Background(), "/documents", sess, interactive)
	waitFetch(t, sess)
	if got := g.Evaluate(context.Background(), "/documents", sess, interactive); !got.ClearToken {
		t.Fatalf("Evaluate() = %+v, want clear token", got)
	}
}

func TestEvaluateTransientFailureKeepsLoadingAndRetriesLater(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	fetcher := &fakeFetcher{err: apperrors.FromHTTPStatus(503, "")}
	g := newTestGate(t, fetcher, clock, 2*time.Second)
	sess := NewSession("tok-1")

	g.Evaluate(context.Background(), "/dashboard", sess, interactive)
	waitFetch(t, sess)

	if sess.Token() != "tok-1" {
		t.Fatal("transient failure must not clear the token")
	}
	if !apperrors.Is(sess.FetchError(), apperrors.KindUnavailable) {
		t.Fatalf("FetchError() = %v, want unavailable", sess.FetchError())
	}
	got := g.Evaluate(context.Background(), "/dashboard", sess, interactive)
	if got != (Decision{Outcome: OutcomeNothing}) {
		t.Fatalf("Evaluate() during backoff = %+v, want nothing", got)
	}
	if fetcher.callCount() != 1 {
		t.Fatalf("fetch calls during backoff = %d, want 1", fetcher.callCount())
	}

	clock.Advance(2 * time.Second)
	fetcher.mu.Lock()
	fetcher.err = nil
	fetcher.user = User{SignupVerified: true}
	fetcher.mu.Unlock()

	got = g.Evaluate(context.Background(), "/dashboard", sess, interactive)
	if !got.Fetch {
		t.Fatalf("Evaluate() after backoff = %+v, want fetch", got)
	}
	waitFetch(t, sess)
	if sess.FetchError() != nil {
		t.Fatalf("FetchError() = %v, want nil after success", sess.FetchError())
	}
	if got := g.Evaluate(context.Background(), "/dashboard", sess, interactive); got.Outcome != OutcomeRender {
		t.Fatalf("Evaluate() = %+v, want render", got)
	}
}

func TestEvaluateWithoutRetryDelayFetchesOnlyOnce(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Now()}
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	g := newTestGate(t, fetcher, clock, 0)
	sess := NewSession("tok-1")

	g.Evaluate(context.Background(), "/dashboard", sess, interactive)
	waitFetch(t, sess)
	clock.Advance(time.Hour)
	if got := g.Evaluate(context.Background(), "/dashboard", sess, interactive); got.Fetch {
		t.Fatalf("Evaluate() = %+v, want no refetch", got)
	}
}

func TestEvaluateDiscardsResultForDroppedSession(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{user: User{SignupVerified: true}, release: make(chan struct{})}
	g := newTestGate(t, fetcher, nil, 0)
	registry := NewRegistry(time.Hour)
	sess := registry.Session("tok-1")

	g.Evaluate(context.Background(), "/dashboard", sess, interactive)
	registry.Drop("tok-1")
	close(fetcher.release)
	waitFetch(t, sess)

	if _, ok := sess.User(); ok {
		t.Fatal("stale profile applied to a dropped session")
	}
	if got := sess.State(); got != StateUnauthenticated {
		t.Fatalf("State() = %s, want unauthenticated", got)
	}
}

func TestEvaluateDiscardsResultAfterUserReplaced(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{user: User{FullName: "Old Name", SignupVerified: true}, release: make(chan struct{})}
	g := newTestGate(t, fetcher, nil, 0)
	sess := NewSession("tok-1")

	g.Evaluate(context.Background(), "/dashboard", sess, interactive)
	sess.ReplaceUser(User{FullName: "New Name", SignupVerified: true})
	close(fetcher.release)
	waitFetch(t, sess)

	user, _ := sess.User()
	if user.FullName != "New Name" {
		t.Fatalf("FullName = %q, want %q", user.FullName, "New Name")
	}
}

func TestEvaluateNonInteractiveDoesNotFetch(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	g := newTestGate(t, fetcher, nil, 0)
	sess := NewSession("tok-1")

	got := g.Evaluate(context.Background(), "/dashboard", sess, Env{})
	if got != (Decision{Outcome: OutcomeNothing}) {
		t.Fatalf("Evaluate() = %+v, want nothing", got)
	}
	if sess.Wait(context.Background(), 10*time.Millisecond) {
		t.Fatal("non-interactive evaluation started a fetch")
	}
	if fetcher.callCount() != 0 {
		t.Fatalf("fetch calls = %d, want 0", fetcher.callCount())
	}
}

func TestEvaluatePassesSessionToken(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{user: User{SignupVerified: true}}
	g := newTestGate(t, fetcher, nil, 0)
	sess := NewSession("tok-xyz")

	g.Evaluate(context.Background(), "/dashboard", sess, interactive)
	waitFetch(t, sess)
	fetcher.mu.Lock()
	defer fetcher.mu.Unlock()
	if len(fetcher.tokens) != 1 || fetcher.tokens[0] != "tok-xyz" {
		t.Fatalf("tokens = %v, want [tok-xyz]", fetcher.tokens)
	}
}

func TestFetcherFunc(t *testing.T) {
	t.Parallel()

	f := FetcherFunc(func(_ context.Context, token string) (User, error) {
		return User{Email: token + "@example.com"}, nil
	})
	user, err := f.FetchUser(context.Background(), "ada")
	if err != nil || user.Email != "ada@example.com" {
		t.Fatalf("FetchUser() = %+v, %v", user, err)
	}
}
