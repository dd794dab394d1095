// Package weberror renders error responses for web pages.
package weberror

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"
	apperrors "github.com/louisbranch/ledgerdesk/internal/services/web/platform/errors"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/pagerender"
	webtemplates "github.com/louisbranch/ledgerdesk/internal/services/web/templates"
)

// PublicMessage resolves a user-safe localized error message. Validation
// failures keep the backend's detail; everything else is reduced to its
// catalog key or status text.
func PublicMessage(loc webtemplates.Localizer, err error) string {
	if err == nil {
		return ""
	}
	if apperrors.KindOf(err) == apperrors.KindInvalidInput {
		if text := strings.TrimSpace(err.Error()); text != "" {
			return text
		}
	}
	if key := apperrors.LocalizationKey(err); key != "" && loc != nil {
		if localized := strings.TrimSpace(loc.Sprintf(key)); localized != "" {
			return localized
		}
	}
	statusCode := apperrors.HTTPStatus(err)
	if statusCode < http.StatusBadRequest {
		statusCode = http.StatusInternalServerError
	}
	return http.StatusText(statusCode)
}

// Write renders the error page for statusCode. Statuses outside 4xx/5xx
// become 500.
func Write(w http.ResponseWriter, r *http.Request, rd pagerender.Renderer, statusCode int, err error) {
	if w == nil {
		return
	}
	if statusCode < http.StatusBadRequest {
		statusCode = http.StatusInternalServerError
	}
	page := pagerender.Page{
		TitleKey:   webtemplates.ErrorPageTitleKey(statusCode),
		StatusCode: statusCode,
		Body: func(pc webtemplates.PageContext) templ.Component {
			message := ""
			if err != nil && statusCode != http.StatusNotFound {
				message = PublicMessage(pc.Loc, err)
			}
			return webtemplates.ErrorPage(pc, statusCode, message)
		},
	}
	if renderErr := rd.Write(w, r, page); renderErr != nil {
		http.Error(w, http.StatusText(statusCode), statusCode)
	}
}

// WriteError renders err with the status its kind maps to.
func WriteError(w http.ResponseWriter, r *http.Request, rd pagerender.Renderer, err error) {
	Write(w, r, rd, apperrors.HTTPStatus(err), err)
}
