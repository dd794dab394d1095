package gate

import (
	"context"
	"sync"
	"time"
)

// Session is the gate's view of one browser: its bearer token and, once
// fetched, the user record. All fields are guarded by mu; callers read them
// through snapshots.
type Session struct {
	mu sync.Mutex

	token string
	user  *User

	// fetching is the pending-fetch guard; done is closed when that fetch
	// resolves.
	fetching bool
	done     chan struct{}

	fetchErr error
	// retryAt is the earliest time a failed fetch may be retried. Zero
	// with a non-nil fetchErr means never.
	retryAt time.Time

	// expired is set when the backend denied token.
	expired bool

	lastSeen time.Time
}

// NewSession returns a session for token with no user yet.
func NewSession(token string) *Session {
	return &Session{token: token, lastSeen: time.Now()}
}

type snapshot struct {
	token       string
	user        *User
	fetching    bool
	expired     bool
	fetchFailed bool
}

func (s *Session) snapshot(now time.Time) snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		token:    s.token,
		fetching: s.fetching,
		expired:  s.expired,
	}
	if s.user != nil {
		u := *s.user
		snap.user = &u
	}
	if s.fetchErr != nil {
		snap.fetchFailed = s.retryAt.IsZero() || now.Before(s.retryAt)
	}
	return snap
}

// Token returns the bearer token, or "" once the session was invalidated.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns a copy of the cached user record.
func (s *Session) User() (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return User{}, false
	}
	return *s.user, true
}

// ReplaceUser swaps the cached record wholesale, as after signup
// verification or a profile update.
func (s *Session) ReplaceUser(u User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		return
	}
	s.user = &u
	s.fetchErr = nil
	s.retryAt = time.Time{}
}

// FetchError returns the last non-auth profile fetch failure.
func (s *Session) FetchError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchErr
}

// State reports where the session sits on the sign-in ladder.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.token == "" || s.expired:
		return StateUnauthenticated
	case s.user == nil:
		return StateAwaitingProfile
	default:
		return stateOf(*s.user)
	}
}

// Wait blocks until the in-flight fetch resolves, d elapses or ctx ends. It
// reports whether a fetch resolved. Without a fetch in flight it returns
// false immediately.
func (s *Session) Wait(ctx context.Context, d time.Duration) bool {
	s.mu.Lock()
	done := s.done
	fetching := s.fetching
	s.mu.Unlock()
	if !fetching || done == nil || d <= 0 {
		return false
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// beginFetch claims the pending-fetch guard. It returns the token the fetch
// must use, or false when a fetch is already running, a user is cached, the
// session is invalid or a previous failure is still backing off.
func (s *Session) beginFetch(now time.Time) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetching || s.user != nil || s.expired || s.token == "" {
		return "", false
	}
	if s.fetchErr != nil && (s.retryAt.IsZero() || now.Before(s.retryAt)) {
		return "", false
	}
	s.fetching = true
	s.done = make(chan struct{})
	return s.token, true
}

// endFetch releases the guard and wakes waiters. Callers hold mu.
func (s *Session) endFetch() {
	s.fetching = false
	if s.done != nil {
		close(s.done)
		s.done = nil
	}
}

// applyUser stores a fetched record when the session still holds token and
// nothing replaced the user meanwhile. It reports whether the record was
// applied.
func (s *Session) applyUser(token string, u User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.endFetch()
	if s.token != token || s.user != nil {
		return false
	}
	s.user = &u
	s.fetchErr = nil
	s.retryAt = time.Time{}
	return true
}

// expire records that the backend denied token.
func (s *Session) expire(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.endFetch()
	if s.token != token {
		return false
	}
	s.expired = true
	s.token = ""
	s.user = nil
	return true
}

// fail records a transient fetch failure.
func (s *Session) fail(token string, err error, retryAt time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.endFetch()
	if s.token != token {
		return false
	}
	s.fetchErr = err
	s.retryAt = retryAt
	return true
}

// invalidate forgets the token so in-flight results are discarded.
func (s *Session) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen), s.fetching
}
