package tokenstore

import (
	"net/http"
	"time"

	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/sessioncookie"
)

// Cookie keeps the raw token in an HttpOnly cookie.
type Cookie struct {
	jar sessioncookie.Jar
	now func() time.Time
}

// NewCookie returns the cookie backend.
func NewCookie(policy requestmeta.SchemePolicy) *Cookie {
	return &Cookie{
		jar: sessioncookie.Jar{Name: CookieName, Policy: policy},
		now: time.Now,
	}
}

// Read returns the cookie token when it is live.
func (c *Cookie) Read(r *http.Request) (string, bool) {
	token, ok := c.jar.Read(r)
	if !ok || !Live(token, c.now()) {
		return "", false
	}
	return token, true
}

// Write stores token. The cookie expires with the token when it carries an
// exp claim.
func (c *Cookie) Write(w http.ResponseWriter, r *http.Request, token string) error {
	jar := c.jar
	if exp, ok := Expiry(token); ok {
		if secs := int(exp.Sub(c.now()).Seconds()); secs > 0 {
			jar.MaxAge = secs
		}
	}
	jar.Write(w, r, token)
	return nil
}

// Clear expires the cookie.
func (c *Cookie) Clear(w http.ResponseWriter, r *http.Request) error {
	c.jar.Clear(w, r)
	return nil
}
