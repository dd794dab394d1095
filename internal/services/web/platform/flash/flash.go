// Package flash carries one-time notices across a redirect or into the next
// page render. It is the notification channel for rate-limit and transient
// backend failures.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/sessioncookie"
)

// CookieName is the cookie holding the pending notice.
const CookieName = "ld_flash"

// Kind classifies flash notice presentation.
type Kind string

const (
	KindSuccess Kind = "success"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Notice stores one flash message reference. Key is a catalog key; Text,
// when set, is shown verbatim (backend-provided detail).
type Notice struct {
	Kind Kind   `json:"kind"`
	Key  string `json:"key,omitempty"`
	Text string `json:"text,omitempty"`
}

// Success builds a success notice for a catalog key.
func Success(key string) Notice {
	return Notice{Kind: KindSuccess, Key: key}
}

// Error builds an error notice for a catalog key.
func Error(key string) Notice {
	return Notice{Kind: KindError, Key: key}
}

// Notifier writes and consumes notices.
type Notifier struct {
	jar sessioncookie.Jar
}

// NewNotifier returns a Notifier using policy for the Secure attribute.
func NewNotifier(policy requestmeta.SchemePolicy) Notifier {
	return Notifier{jar: sessioncookie.Jar{Name: CookieName, Policy: policy}}
}

// Write stores a notice for the next page render.
func (n Notifier) Write(w http.ResponseWriter, r *http.Request, notice Notice) {
	normalized, ok := normalize(notice)
	if !ok {
		return
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return
	}
	n.jar.Write(w, r, base64.RawURLEncoding.EncodeToString(payload))
}

// ReadAndClear returns the pending notice, if any, and expires it.
func (n Notifier) ReadAndClear(w http.ResponseWriter, r *http.Request) (Notice, bool) {
	raw, ok := n.jar.Read(r)
	if !ok {
		return Notice{}, false
	}
	n.jar.Clear(w, r)
	return decode(raw)
}

func decode(raw string) (Notice, bool) {
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return Notice{}, false
	}
	var notice Notice
	if err := json.Unmarshal(decoded, &notice); err != nil {
		return Notice{}, false
	}
	return normalize(notice)
}

func normalize(notice Notice) (Notice, bool) {
	notice.Key = strings.TrimSpace(notice.Key)
	notice.Text = strings.TrimSpace(notice.Text)
	if notice.Key == "" && notice.Text == "" {
		return Notice{}, false
	}
	notice.Kind = Kind(strings.ToLower(strings.TrimSpace(string(notice.Kind))))
	switch notice.Kind {
	case KindSuccess, KindInfo, KindWarning, KindError:
		return notice, true
	default:
		return Notice{}, false
	}
}
