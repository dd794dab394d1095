package web

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/louisbranch/ledgerdesk/internal/platform/requestctx"
	"github.com/louisbranch/ledgerdesk/internal/services/web/backend"
	apperrors "github.com/louisbranch/ledgerdesk/internal/services/web/platform/errors"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/flash"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/httpx"
	"github.com/louisbranch/ledgerdesk/internal/services/web/routepath"
	webtemplates "github.com/louisbranch/ledgerdesk/internal/services/web/templates"
	"github.com/louisbranch/ledgerdesk/internal/services/web/validation"
)

func (h *handler) handleDashboard(w http.ResponseWriter, r *http.Request, v viewer) {
	h.renderPage(w, r, v, "title.dashboard", http.StatusOK, nil, func(pc webtemplates.PageContext) templ.Component {
		return webtemplates.DashboardPage(pc, v.userName())
	})
}

func (h *handler) handleDocuments(w http.ResponseWriter, r *http.Request, v viewer) {
	h.renderPage(w, r, v, "title.documents", http.StatusOK, nil, func(pc webtemplates.PageContext) templ.Component {
		return webtemplates.DocumentsPage(pc)
	})
}

func (h *handler) renderSettings(w http.ResponseWriter, r *http.Request, v viewer, view webtemplates.SettingsView, status int, notice *flash.Notice) {
	if v.user != nil {
		view.FullName = v.user.FullName
		view.Email = v.user.Email
		view.TwoFactorEnabled = v.user.TwoFactorEnabled
	}
	h.renderPage(w, r, v, "title.settings", status, notice, func(pc webtemplates.PageContext) templ.Component {
		return webtemplates.SettingsPage(pc, view)
	})
}

func (h *handler) handleSettingsPage(w http.ResponseWriter, r *http.Request, v viewer) {
	h.renderSettings(w, r, v, webtemplates.SettingsView{}, http.StatusOK, nil)
}

func (h *handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request, v viewer) {
	if !h.parseForm(w, r) {
		return
	}
	fullName := strings.Join(strings.Fields(r.PostFormValue("full_name")), " ")
	form := webtemplates.FormState{Values: map[string]string{"full_name": fullName}}
	var errs validation.Errors
	errs.Add("full_name", validation.FullName(fullName))
	if !errs.OK() {
		form.Errors = errs
		h.renderSettings(w, r, v, webtemplates.SettingsView{Profile: form}, http.StatusUnprocessableEntity, nil)
		return
	}

	user, err := h.account.UpdateProfile(r.Context(), v.token, fullName)
	if err != nil {
		if out, ok := h.formFailure(w, r, v, err); ok {
			form.Message = out.message
			h.renderSettings(w, r, v, webtemplates.SettingsView{Profile: form}, out.status, out.notice)
		}
		return
	}
	v.session.ReplaceUser(user)
	h.flash.Write(w, r, flash.Success("notice.profile_updated"))
	httpx.WriteRedirect(w, r, routepath.Settings)
}

func (h *handler) handleChangePassword(w http.ResponseWriter, r *http.Request, v viewer) {
	if !h.parseForm(w, r) {
		return
	}
	current := r.PostFormValue("current_password")
	password := r.PostFormValue("password")
	form := webtemplates.FormState{}
	if errs := validation.ChangePassword(current, password, r.PostFormValue("confirm_password")); !errs.OK() {
		form.Errors = errs
		h.renderSettings(w, r, v, webtemplates.SettingsView{Password: form}, http.StatusUnprocessableEntity, nil)
		return
	}

	if _, err := h.account.ChangePassword(r.Context(), v.token, current, password); err != nil {
		if out, ok := h.formFailure(w, r, v, err); ok {
			form.Message = out.message
			h.renderSettings(w, r, v, webtemplates.SettingsView{Password: form}, out.status, out.notice)
		}
		return
	}
	h.flash.Write(w, r, flash.Success("notice.password_changed"))
	httpx.WriteRedirect(w, r, routepath.Settings)
}

func (h *handler) handleSetupTwoFactor(w http.ResponseWriter, r *http.Request, v viewer) {
	setup, err := h.account.SetupTwoFactor(r.Context(), v.token)
	if err != nil {
		h.redirectWithNotice(w, r, v, err, routepath.Settings)
		return
	}
	view := webtemplates.SettingsView{TwoFactor: webtemplates.TwoFactorSetup{URL: setup.URL, Secret: setup.Secret}}
	h.renderSettings(w, r, v, view, http.StatusOK, nil)
}

func (h *handler) handleEnableTwoFactor(w http.ResponseWriter, r *http.Request, v viewer) {
	if !h.parseForm(w, r) {
		return
	}
	setup, err := backend.ParseTwoFactorSetup(r.PostFormValue("otpauth_url"))
	if err != nil {
		h.flash.Write(w, r, flash.Error("error.two_factor_setup"))
		httpx.WriteRedirect(w, r, routepath.Settings)
		return
	}
	code := strings.TrimSpace(r.PostFormValue("code"))
	pending := webtemplates.TwoFactorSetup{URL: setup.URL, Secret: setup.Secret}
	var errs validation.Errors
	errs.Add("code", validation.Code(code))
	if !errs.OK() {
		pending.Form.Errors = errs
		h.renderSettings(w, r, v, webtemplates.SettingsView{TwoFactor: pending}, http.StatusUnprocessableEntity, nil)
		return
	}

	if _, err := h.account.EnableTwoFactor(r.Context(), v.token, code); err != nil {
		if out, ok := h.formFailure(w, r, v, err); ok {
			pending.Form.Message = out.message
			h.renderSettings(w, r, v, webtemplates.SettingsView{TwoFactor: pending}, out.status, out.notice)
		}
		return
	}
	if !h.refreshUser(w, r, v, true) {
		return
	}
	h.flash.Write(w, r, flash.Success("notice.two_factor_enabled"))
	httpx.WriteRedirect(w, r, routepath.Settings)
}

func (h *handler) handleDisableTwoFactor(w http.ResponseWriter, r *http.Request, v viewer) {
	if _, err := h.account.DisableTwoFactor(r.Context(), v.token); err != nil {
		h.redirectWithNotice(w, r, v, err, routepath.Settings)
		return
	}
	if !h.refreshUser(w, r, v, false) {
		return
	}
	h.flash.Write(w, r, flash.Success("notice.two_factor_disabled"))
	httpx.WriteRedirect(w, r, routepath.Settings)
}

// refreshUser replaces the cached user with the backend's current record
// after a two-factor change. When the refetch fails for any reason other
// than a rejected token, the cached user is kept with the new flag. It
// reports false when it already wrote the response.
func (h *handler) refreshUser(w http.ResponseWriter, r *http.Request, v viewer, twoFactorEnabled bool) bool {
	user, err := h.account.FetchUser(r.Context(), v.token)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindUnauthorized {
			h.endSession(w, r, v.token)
			httpx.WriteRedirect(w, r, routepath.Login)
			return false
		}
		h.logger.WarnContext(r.Context(), "refresh user", "error", err)
		if v.user == nil {
			return true
		}
		user = *v.user
		user.TwoFactorEnabled = twoFactorEnabled
	}
	if v.session != nil {
		v.session.ReplaceUser(user)
	}
	return true
}

func (h *handler) handleDeleteAccount(w http.ResponseWriter, r *http.Request, v viewer) {
	if !h.parseForm(w, r) {
		return
	}
	form := webtemplates.FormState{}
	var errs validation.Errors
	errs.Add("confirm", validation.DeleteConfirmed(r.PostFormValue("confirm")))
	if !errs.OK() {
		form.Errors = errs
		h.renderSettings(w, r, v, webtemplates.SettingsView{Delete: form}, http.StatusUnprocessableEntity, nil)
		return
	}

	if _, err := h.account.DeleteAccount(r.Context(), v.token); err != nil {
		if out, ok := h.formFailure(w, r, v, err); ok {
			form.Message = out.message
			h.renderSettings(w, r, v, webtemplates.SettingsView{Delete: form}, out.status, out.notice)
		}
		return
	}
	h.endSession(w, r, v.token)
	h.logger.InfoContext(r.Context(), "account deleted", "user_id", requestctx.UserIDFromContext(r.Context()))
	h.flash.Write(w, r, flash.Success("notice.account_deleted"))
	httpx.WriteRedirect(w, r, routepath.Login)
}
