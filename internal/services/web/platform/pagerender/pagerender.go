// Package pagerender centralizes page rendering behavior.
package pagerender

import (
	"bytes"
	"html"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/louisbranch/ledgerdesk/internal/platform/branding"
	webi18n "github.com/louisbranch/ledgerdesk/internal/services/web/i18n"
	flashnotice "github.com/louisbranch/ledgerdesk/internal/services/web/platform/flash"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/httpx"
	webtemplates "github.com/louisbranch/ledgerdesk/internal/services/web/templates"
)

// Page describes one page response for both full-page and HTMX flows.
type Page struct {
	TitleKey   string
	StatusCode int
	// UserName switches the layout to signed-in chrome.
	UserName       string
	RefreshSeconds int
	// Notice, when set, is shown instead of a pending flash notice.
	Notice *flashnotice.Notice
	Body   func(webtemplates.PageContext) templ.Component
}

// Renderer writes pages with the viewer's language and pending notice.
type Renderer struct {
	Flash flashnotice.Notifier
}

// Write renders page. HTMX requests get the body alone, prefixed by a title.
func (rd Renderer) Write(w http.ResponseWriter, r *http.Request, page Page) error {
	if w == nil {
		return nil
	}
	statusCode := page.StatusCode
	if statusCode <= 0 {
		statusCode = http.StatusOK
	}
	loc, tag := webi18n.Resolve(w, r)
	pc := webtemplates.PageContext{
		Lang:           tag.String(),
		Loc:            loc,
		Title:          webtemplates.T(loc, page.TitleKey),
		UserName:       page.UserName,
		RefreshSeconds: page.RefreshSeconds,
	}
	if r != nil && r.URL != nil {
		pc.CurrentPath = r.URL.Path
		pc.CurrentQuery = r.URL.RawQuery
	}
	var body templ.Component = templ.NopComponent
	if page.Body != nil {
		body = page.Body(pc)
	}

	ctx := httpx.RequestContext(r)
	var buf bytes.Buffer
	if httpx.IsHTMXRequest(r) {
		buf.WriteString("<title>" + html.EscapeString(branding.PageTitle(pc.Title)) + "</title>")
		if err := body.Render(ctx, &buf); err != nil {
			return err
		}
	} else {
		pc.Toast = rd.toast(w, r, pc.Loc, page.Notice)
		if err := webtemplates.Layout(pc).Render(templ.WithChildren(ctx, body), &buf); err != nil {
			return err
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
	return nil
}

func (rd Renderer) toast(w http.ResponseWriter, r *http.Request, loc webtemplates.Localizer, override *flashnotice.Notice) *webtemplates.Toast {
	var notice flashnotice.Notice
	if override != nil {
		notice = *override
	} else {
		pending, ok := rd.Flash.ReadAndClear(w, r)
		if !ok {
			return nil
		}
		notice = pending
	}
	message := strings.TrimSpace(notice.Text)
	if message == "" && notice.Key != "" {
		message = strings.TrimSpace(webtemplates.T(loc, notice.Key))
	}
	if message == "" {
		return nil
	}
	return &webtemplates.Toast{Kind: string(notice.Kind), Message: message}
}
