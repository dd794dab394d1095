package web

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/louisbranch/ledgerdesk/internal/platform/requestctx"
	"github.com/louisbranch/ledgerdesk/internal/services/web/gate"
	apperrors "github.com/louisbranch/ledgerdesk/internal/services/web/platform/errors"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/flash"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/httpx"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/pagerender"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/weberror"
	webtemplates "github.com/louisbranch/ledgerdesk/internal/services/web/templates"
)

// loadingRefreshSeconds is how soon the loading placeholder asks again.
const loadingRefreshSeconds = 2

// viewer is what a gated handler knows about the browser.
type viewer struct {
	token   string
	session *gate.Session
	// user is nil until the profile is known.
	user *gate.User
}

func (v viewer) userName() string {
	if v.user == nil {
		return ""
	}
	if v.user.FullName != "" {
		return v.user.FullName
	}
	return v.user.Email
}

type gatedHandler func(w http.ResponseWriter, r *http.Request, v viewer)

// gated evaluates the session gate for the request and applies its single
// effect: a redirect, the loading placeholder, or next.
func (h *handler) gated(next gatedHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		token, _ := h.tokens.Read(r)
		sess := h.registry.Session(token)
		env := gate.Env{Interactive: !httpx.IsSpeculative(r)}

		decision := h.gate.Evaluate(ctx, r.URL.Path, sess, env)
		if decision.Outcome == gate.OutcomeNothing && env.Interactive && sess != nil && sess.Wait(ctx, h.loadingWait) {
			decision = h.gate.Evaluate(ctx, r.URL.Path, sess, env)
		}

		if decision.ClearToken {
			h.endSession(w, r, token)
			token, sess = "", nil
		}
		switch decision.Outcome {
		case gate.OutcomeRedirect:
			httpx.WriteRedirect(w, r, decision.Location)
		case gate.OutcomeNothing:
			h.writeNothing(w, r, env, sess)
		default:
			v := viewer{token: token, session: sess}
			if sess != nil {
				if u, ok := sess.User(); ok {
					v.user = &u
					r = r.WithContext(requestctx.WithUserID(ctx, u.ID.String()))
				}
			}
			next(w, r, v)
		}
	})
}

// writeNothing answers a request the gate will not route yet. Speculative
// requests get an empty response; form posts are sent back to the page so
// the browser lands on the placeholder.
func (h *handler) writeNothing(w http.ResponseWriter, r *http.Request, env gate.Env, sess *gate.Session) {
	if !env.Interactive {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Redirect(w, r, r.URL.RequestURI(), http.StatusSeeOther)
		return
	}
	page := pagerender.Page{
		TitleKey:       "title.loading",
		RefreshSeconds: loadingRefreshSeconds,
		Body: func(pc webtemplates.PageContext) templ.Component {
			return webtemplates.LoadingPage(pc)
		},
	}
	if sess != nil {
		if err := sess.FetchError(); err != nil {
			notice := flash.Error(fetchErrorKey(err))
			page.Notice = &notice
		}
	}
	h.writePage(w, r, page)
}

func fetchErrorKey(err error) string {
	if key := apperrors.LocalizationKey(err); key != "" {
		return key
	}
	return "error.unavailable"
}

// endSession drops the stored credential and its cached session.
func (h *handler) endSession(w http.ResponseWriter, r *http.Request, token string) {
	if err := h.tokens.Clear(w, r); err != nil {
		h.logger.WarnContext(r.Context(), "clear token", "error", err)
	}
	h.registry.Drop(token)
}

// sameOrigin rejects state-changing requests that do not prove they came
// from our own pages.
func (h *handler) sameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !requestmeta.SameOrigin(r, h.policy) {
			h.logger.WarnContext(r.Context(), "rejected cross-origin form post", "path", r.URL.Path)
			weberror.Write(w, r, h.pages, http.StatusForbidden, apperrors.EK(apperrors.KindUnknown, "error.forbidden_origin", "cross-origin form post"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// form guards a form post: same-origin proof first, then the gate.
func (h *handler) form(next gatedHandler) http.Handler {
	return h.sameOrigin(h.gated(next))
}

func (h *handler) writePage(w http.ResponseWriter, r *http.Request, page pagerender.Page) {
	if err := h.pages.Write(w, r, page); err != nil {
		h.logger.ErrorContext(r.Context(), "render page", "path", r.URL.Path, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
