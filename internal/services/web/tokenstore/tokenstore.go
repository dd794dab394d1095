// Package tokenstore keeps one bearer credential per browser.
//
// Two backends exist: Cookie keeps the raw token in an HttpOnly cookie, and
// Server keeps it in a TokenStore on the web host behind an opaque session
// id cookie. Both treat a token whose exp claim has passed as absent.
package tokenstore

import (
	"context"
	"net/http"
	"time"
)

// CookieName is the fixed key the Cookie backend stores the token under.
const CookieName = "access_token"

// Store reads, writes and clears the browser's credential.
type Store interface {
	// Read returns the live token for the request, if any.
	Read(r *http.Request) (string, bool)
	Write(w http.ResponseWriter, r *http.Request, token string) error
	Clear(w http.ResponseWriter, r *http.Request) error
}

// Sweeper is implemented by backends that hold server-side state.
type Sweeper interface {
	Sweep(ctx context.Context, now time.Time) (int64, error)
}
