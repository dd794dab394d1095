package web

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/louisbranch/ledgerdesk/internal/platform/requestctx"
	"github.com/louisbranch/ledgerdesk/internal/services/web/backend"
	apperrors "github.com/louisbranch/ledgerdesk/internal/services/web/platform/errors"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/flash"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/httpx"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/pagerender"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/weberror"
	"github.com/louisbranch/ledgerdesk/internal/services/web/routepath"
	webtemplates "github.com/louisbranch/ledgerdesk/internal/services/web/templates"
)

// formOutcome is how a failed backend call shows up on the form that made it.
type formOutcome struct {
	status  int
	message string
	notice  *flash.Notice
}

// formFailure applies the backend error policy to a form post. It reports
// false when it already wrote the response.
//
// A rejected credential ends the session; outside the guest pages the
// browser goes back to sign in. Rate limits and outages become a notice
// and leave the session alone. Validation failures keep the backend's
// detail for inline display.
func (h *handler) formFailure(w http.ResponseWriter, r *http.Request, v viewer, err error) (formOutcome, bool) {
	switch apperrors.KindOf(err) {
	case apperrors.KindUnauthorized:
		h.endSession(w, r, v.token)
		if routepath.Classify(r.URL.Path) != routepath.ClassGuest {
			httpx.WriteRedirect(w, r, routepath.Login)
			return formOutcome{}, false
		}
		return formOutcome{status: http.StatusUnauthorized, message: err.Error()}, true
	case apperrors.KindRateLimited:
		notice := flash.Error("error.rate_limited")
		return formOutcome{status: http.StatusTooManyRequests, notice: &notice}, true
	case apperrors.KindInvalidInput, apperrors.KindNotFound:
		return formOutcome{status: apperrors.HTTPStatus(err), message: err.Error()}, true
	default:
		h.logger.ErrorContext(r.Context(), "backend call failed",
			"path", r.URL.Path,
			"user_id", requestctx.UserIDFromContext(r.Context()),
			"error", err,
		)
		notice := flash.Error(fetchErrorKey(err))
		return formOutcome{status: http.StatusServiceUnavailable, notice: &notice}, true
	}
}

// redirectWithNotice is formFailure for posts that have no page of their
// own: the outcome travels as a flash notice to target.
func (h *handler) redirectWithNotice(w http.ResponseWriter, r *http.Request, v viewer, err error, target string) {
	out, ok := h.formFailure(w, r, v, err)
	if !ok {
		return
	}
	notice := flash.Notice{Kind: flash.KindError, Text: out.message}
	if out.notice != nil {
		notice = *out.notice
	}
	h.flash.Write(w, r, notice)
	httpx.WriteRedirect(w, r, target)
}

func (h *handler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		weberror.Write(w, r, h.pages, http.StatusBadRequest, apperrors.E(apperrors.KindInvalidInput, "malformed form"))
		return false
	}
	return true
}

// renderPage writes a page for v.
func (h *handler) renderPage(w http.ResponseWriter, r *http.Request, v viewer, titleKey string, status int, notice *flash.Notice, body func(webtemplates.PageContext) templ.Component) {
	h.writePage(w, r, pagerender.Page{
		TitleKey:   titleKey,
		StatusCode: status,
		UserName:   v.userName(),
		Notice:     notice,
		Body:       body,
	})
}

// signIn stores a freshly issued credential and seeds its session with the
// user the backend returned, replacing whatever session v had.
func (h *handler) signIn(w http.ResponseWriter, r *http.Request, v viewer, auth backend.Auth) bool {
	if err := h.tokens.Write(w, r, auth.AccessToken); err != nil {
		h.logger.ErrorContext(r.Context(), "store token", "error", err)
		weberror.WriteError(w, r, h.pages, err)
		return false
	}
	if v.token != "" {
		h.registry.Rotate(v.token, auth.AccessToken, auth.User)
	} else {
		h.registry.Seed(auth.AccessToken, auth.User)
	}
	h.logger.InfoContext(r.Context(), "signed in", "user_id", auth.User.ID.String())
	return true
}
