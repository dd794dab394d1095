// Package sessioncookie centralizes the HttpOnly cookies the web process
// sets on browsers.
package sessioncookie

import (
	"net/http"
	"strings"

	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/requestmeta"
)

// Jar reads and writes one named cookie.
type Jar struct {
	Name   string
	Policy requestmeta.SchemePolicy
	// MaxAge, when positive, makes the cookie persistent for that many
	// seconds. Zero yields a browser-session cookie.
	MaxAge int
}

// Read returns the trimmed cookie value when present.
func (j Jar) Read(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(j.Name)
	if err != nil || cookie == nil {
		return "", false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", false
	}
	return value, true
}

// Write sets the cookie for the current request.
func (j Jar) Write(w http.ResponseWriter, r *http.Request, value string) {
	if w == nil {
		return
	}
	cookie := j.base(r)
	cookie.Value = strings.TrimSpace(value)
	if j.MaxAge > 0 {
		cookie.MaxAge = j.MaxAge
	}
	http.SetCookie(w, cookie)
}

// Clear expires the cookie for the current request.
func (j Jar) Clear(w http.ResponseWriter, r *http.Request) {
	if w == nil {
		return
	}
	cookie := j.base(r)
	cookie.MaxAge = -1
	http.SetCookie(w, cookie)
}

func (j Jar) base(r *http.Request) *http.Cookie {
	return &http.Cookie{
		Name:     j.Name,
		Path:     "/",
		HttpOnly: true,
		Secure:   requestmeta.IsHTTPS(r, j.Policy),
		SameSite: http.SameSiteLaxMode,
	}
}
