package gate

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Registry maps bearer tokens to their sessions. Entries idle for longer
// than the configured TTL are evicted by Sweep.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	idle     time.Duration
	now      func() time.Time
}

// NewRegistry creates an empty registry. A non-positive idle disables
// eviction.
func NewRegistry(idle time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		idle:     idle,
		now:      time.Now,
	}
}

// Session returns the session for token, creating an empty one on first
// sight. An empty token yields nil.
func (r *Registry) Session(token string) *Session {
	if token == "" {
		return nil
	}
	now := r.now()
	r.mu.Lock()
	sess, ok := r.sessions[token]
	if !ok {
		sess = NewSession(token)
		r.sessions[token] = sess
	}
	r.mu.Unlock()
	sess.touch(now)
	return sess
}

// Lookup returns the session for token without creating one.
func (r *Registry) Lookup(token string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[token]
	return sess, ok
}

// Seed registers a freshly acquired token together with the user the
// backend returned alongside it, so the first page needs no profile fetch.
func (r *Registry) Seed(token string, u User) *Session {
	sess := NewSession(token)
	sess.user = &u
	sess.lastSeen = r.now()

	r.mu.Lock()
	prev := r.sessions[token]
	r.sessions[token] = sess
	r.mu.Unlock()
	if prev != nil {
		prev.invalidate()
	}
	return sess
}

// Rotate replaces oldToken with newToken, as after 2FA verification. The
// old session is invalidated so a late fetch for it is discarded.
func (r *Registry) Rotate(oldToken, newToken string, u User) *Session {
	r.Drop(oldToken)
	return r.Seed(newToken, u)
}

// Drop forgets token and invalidates its session.
func (r *Registry) Drop(token string) {
	if token == "" {
		return
	}
	r.mu.Lock()
	sess, ok := r.sessions[token]
	delete(r.sessions, token)
	r.mu.Unlock()
	if ok {
		sess.invalidate()
	}
}

// Len returns the number of tracked sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts idle sessions and returns how many were removed. Sessions
// with a fetch in flight are kept.
func (r *Registry) Sweep() int {
	if r.idle <= 0 {
		return 0
	}
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for token, sess := range r.sessions {
		idle, fetching := sess.idleSince(now)
		if fetching || idle < r.idle {
			continue
		}
		delete(r.sessions, token)
		removed++
	}
	return removed
}

// Run sweeps every interval until ctx ends.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || r.idle <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.DebugContext(ctx, "evicted idle sessions", "count", n, "remaining", r.Len())
			}
		}
	}
}
