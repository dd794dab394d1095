package web

import (
	"net/http"

	"github.com/a-h/templ"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/weberror"
	webtemplates "github.com/louisbranch/ledgerdesk/internal/services/web/templates"
)

func (h *handler) handleHome(w http.ResponseWriter, r *http.Request, v viewer) {
	h.renderPage(w, r, v, "title.home", http.StatusOK, nil, func(pc webtemplates.PageContext) templ.Component {
		return webtemplates.HomePage(pc)
	})
}

func (h *handler) handleIntegrations(w http.ResponseWriter, r *http.Request, v viewer) {
	h.renderPage(w, r, v, "title.integrations", http.StatusOK, nil, func(pc webtemplates.PageContext) templ.Component {
		return webtemplates.IntegrationsPage(pc)
	})
}

func (h *handler) handleSupport(w http.ResponseWriter, r *http.Request, v viewer) {
	h.renderPage(w, r, v, "title.support", http.StatusOK, nil, func(pc webtemplates.PageContext) templ.Component {
		return webtemplates.SupportPage(pc)
	})
}

func (h *handler) handleNotFound(w http.ResponseWriter, r *http.Request, _ viewer) {
	weberror.Write(w, r, h.pages, http.StatusNotFound, nil)
}
