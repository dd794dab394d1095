package web

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/google/uuid"
	"github.com/louisbranch/ledgerdesk/internal/services/web/backend"
	"github.com/louisbranch/ledgerdesk/internal/services/web/gate"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/flash"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/httpx"
	"github.com/louisbranch/ledgerdesk/internal/services/web/routepath"
	webtemplates "github.com/louisbranch/ledgerdesk/internal/services/web/templates"
	"github.com/louisbranch/ledgerdesk/internal/services/web/validation"
)

func (h *handler) renderLogin(w http.ResponseWriter, r *http.Request, v viewer, form webtemplates.FormState, status int, notice *flash.Notice) {
	h.renderPage(w, r, v, "title.login", status, notice, func(pc webtemplates.PageContext) templ.Component {
		return webtemplates.LoginPage(pc, form)
	})
}

func (h *handler) handleLoginPage(w http.ResponseWriter, r *http.Request, v viewer) {
	h.renderLogin(w, r, v, webtemplates.FormState{}, http.StatusOK, nil)
}

func (h *handler) handleLogin(w http.ResponseWriter, r *http.Request, v viewer) {
	if !h.parseForm(w, r) {
		return
	}
	email := validation.NormalizeEmail(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	form := webtemplates.FormState{Values: map[string]string{"email": email}}
	if errs := validation.Login(email, password); !errs.OK() {
		form.Errors = errs
		h.renderLogin(w, r, v, form, http.StatusUnprocessableEntity, nil)
		return
	}

	auth, err := h.account.Login(r.Context(), email, password)
	if err != nil {
		if out, ok := h.formFailure(w, r, v, err); ok {
			form.Message = out.message
			h.renderLogin(w, r, v, form, out.status, out.notice)
		}
		return
	}
	if !h.signIn(w, r, v, auth) {
		return
	}
	httpx.WriteRedirect(w, r, gate.LandingFor(auth.User))
}

func (h *handler) renderSignup(w http.ResponseWriter, r *http.Request, v viewer, form webtemplates.FormState, status int, notice *flash.Notice) {
	h.renderPage(w, r, v, "title.signup", status, notice, func(pc webtemplates.PageContext) templ.Component {
		return webtemplates.SignupPage(pc, form)
	})
}

func (h *handler) handleSignupPage(w http.ResponseWriter, r *http.Request, v viewer) {
	h.renderSignup(w, r, v, webtemplates.FormState{}, http.StatusOK, nil)
}

func (h *handler) handleSignup(w http.ResponseWriter, r *http.Request, v viewer) {
	if !h.parseForm(w, r) {
		return
	}
	in := backend.SignupInput{
		FullName: strings.Join(strings.Fields(r.PostFormValue("full_name")), " "),
		Email:    validation.NormalizeEmail(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	form := webtemplates.FormState{Values: map[string]string{"full_name": in.FullName, "email": in.Email}}
	if errs := validation.Signup(in.FullName, in.Email, in.Password, r.PostFormValue("confirm_password")); !errs.OK() {
		form.Errors = errs
		h.renderSignup(w, r, v, form, http.StatusUnprocessableEntity, nil)
		return
	}

	auth, err := h.account.Signup(r.Context(), in)
	if err != nil {
		if out, ok := h.formFailure(w, r, v, err); ok {
			form.Message = out.message
			h.renderSignup(w, r, v, form, out.status, out.notice)
		}
		return
	}
	if !h.signIn(w, r, v, auth) {
		return
	}
	httpx.WriteRedirect(w, r, gate.LandingFor(auth.User))
}

func (h *handler) renderForgotPassword(w http.ResponseWriter, r *http.Request, v viewer, form webtemplates.FormState, status int, notice *flash.Notice) {
	h.renderPage(w, r, v, "title.forgot_password", status, notice, func(pc webtemplates.PageContext) templ.Component {
		return webtemplates.ForgotPasswordPage(pc, form)
	})
}

func (h *handler) handleForgotPasswordPage(w http.ResponseWriter, r *http.Request, v viewer) {
	h.renderForgotPassword(w, r, v, webtemplates.FormState{}, http.StatusOK, nil)
}

func (h *handler) handleForgotPassword(w http.ResponseWriter, r *http.Request, v viewer) {
	if !h.parseForm(w, r) {
		return
	}
	email := validation.NormalizeEmail(r.PostFormValue("email"))
	form := webtemplates.FormState{Values: map[string]string{"email": email}}
	var errs validation.Errors
	errs.Add("email", validation.Email(email))
	if !errs.OK() {
		form.Errors = errs
		h.renderForgotPassword(w, r, v, form, http.StatusUnprocessableEntity, nil)
		return
	}

	if _, err := h.account.ForgotPassword(r.Context(), email); err != nil {
		if out, ok := h.formFailure(w, r, v, err); ok {
			form.Message = out.message
			h.renderForgotPassword(w, r, v, form, out.status, out.notice)
		}
		return
	}
	h.flash.Write(w, r, flash.Success("notice.reset_link_sent"))
	httpx.WriteRedirect(w, r, routepath.Login)
}

func (h *handler) renderResetPassword(w http.ResponseWriter, r *http.Request, v viewer, form webtemplates.FormState, status int, notice *flash.Notice) {
	h.renderPage(w, r, v, "title.reset_password", status, notice, func(pc webtemplates.PageContext) templ.Component {
		if form.Message == "" && !validResetLink(form.Value("token"), form.Value("user_id")) {
			form.Message = webtemplates.T(pc.Loc, "error.reset_link")
		}
		return webtemplates.ResetPasswordPage(pc, form)
	})
}

func validResetLink(token, userID string) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}
	_, err := uuid.Parse(userID)
	return err == nil
}

// handleResetPasswordPage renders the form for a mailed reset link, which
// carries token and user_id in its query.
func (h *handler) handleResetPasswordPage(w http.ResponseWriter, r *http.Request, v viewer) {
	query := r.URL.Query()
	form := webtemplates.FormState{Values: map[string]string{
		"token":   strings.TrimSpace(query.Get("token")),
		"user_id": strings.TrimSpace(query.Get("user_id")),
	}}
	h.renderResetPassword(w, r, v, form, http.StatusOK, nil)
}

func (h *handler) handleResetPassword(w http.ResponseWriter, r *http.Request, v viewer) {
	if !h.parseForm(w, r) {
		return
	}
	token := strings.TrimSpace(r.PostFormValue("token"))
	rawUserID := strings.TrimSpace(r.PostFormValue("user_id"))
	password := r.PostFormValue("password")
	form := webtemplates.FormState{Values: map[string]string{"token": token, "user_id": rawUserID}}
	if !validResetLink(token, rawUserID) {
		h.renderResetPassword(w, r, v, form, http.StatusBadRequest, nil)
		return
	}
	if errs := validation.ResetPassword(password, r.PostFormValue("confirm_password")); !errs.OK() {
		form.Errors = errs
		h.renderResetPassword(w, r, v, form, http.StatusUnprocessableEntity, nil)
		return
	}

	in := backend.ResetPasswordInput{Token: token, UserID: uuid.MustParse(rawUserID), NewPassword: password}
	if _, err := h.account.ResetPassword(r.Context(), in); err != nil {
		if out, ok := h.formFailure(w, r, v, err); ok {
			form.Message = out.message
			h.renderResetPassword(w, r, v, form, out.status, out.notice)
		}
		return
	}
	h.flash.Write(w, r, flash.Success("notice.password_reset"))
	httpx.WriteRedirect(w, r, routepath.Login)
}

func (h *handler) renderVerifyTwoFactor(w http.ResponseWriter, r *http.Request, v viewer, form webtemplates.FormState, status int, notice *flash.Notice) {
	h.renderPage(w, r, v, "title.verify_2fa", status, notice, func(pc webtemplates.PageContext) templ.Component {
		return webtemplates.VerifyTwoFactorPage(pc, form)
	})
}

func (h *handler) handleVerifyTwoFactorPage(w http.ResponseWriter, r *http.Request, v viewer) {
	h.renderVerifyTwoFactor(w, r, v, webtemplates.FormState{}, http.StatusOK, nil)
}

// handleVerifyTwoFactor trades the pending token for a full one. The new
// token replaces the old one in the store and in the registry.
func (h *handler) handleVerifyTwoFactor(w http.ResponseWriter, r *http.Request, v viewer) {
	if !h.parseForm(w, r) {
		return
	}
	code := strings.TrimSpace(r.PostFormValue("code"))
	form := webtemplates.FormState{}
	var errs validation.Errors
	errs.Add("code", validation.Code(code))
	if !errs.OK() {
		form.Errors = errs
		h.renderVerifyTwoFactor(w, r, v, form, http.StatusUnprocessableEntity, nil)
		return
	}

	auth, err := h.account.VerifyTwoFactor(r.Context(), v.token, code)
	if err != nil {
		if out, ok := h.formFailure(w, r, v, err); ok {
			form.Message = out.message
			h.renderVerifyTwoFactor(w, r, v, form, out.status, out.notice)
		}
		return
	}
	if !h.signIn(w, r, v, auth) {
		return
	}
	httpx.WriteRedirect(w, r, gate.LandingFor(auth.User))
}

func (h *handler) renderVerifySignup(w http.ResponseWriter, r *http.Request, v viewer, form webtemplates.FormState, status int, notice *flash.Notice) {
	email := ""
	if v.user != nil {
		email = v.user.Email
	}
	h.renderPage(w, r, v, "title.verify_signup", status, notice, func(pc webtemplates.PageContext) templ.Component {
		return webtemplates.VerifySignupPage(pc, email, form)
	})
}

func (h *handler) handleVerifySignupPage(w http.ResponseWriter, r *http.Request, v viewer) {
	h.renderVerifySignup(w, r, v, webtemplates.FormState{}, http.StatusOK, nil)
}

// handleVerifySignup confirms the mailed code. The backend answers with the
// updated user, which replaces the cached one.
func (h *handler) handleVerifySignup(w http.ResponseWriter, r *http.Request, v viewer) {
	if !h.parseForm(w, r) {
		return
	}
	code := strings.TrimSpace(r.PostFormValue("code"))
	form := webtemplates.FormState{}
	var errs validation.Errors
	errs.Add("code", validation.Code(code))
	if !errs.OK() {
		form.Errors = errs
		h.renderVerifySignup(w, r, v, form, http.StatusUnprocessableEntity, nil)
		return
	}

	user, err := h.account.VerifySignup(r.Context(), v.token, code)
	if err != nil {
		if out, ok := h.formFailure(w, r, v, err); ok {
			form.Message = out.message
			h.renderVerifySignup(w, r, v, form, out.status, out.notice)
		}
		return
	}
	v.session.ReplaceUser(user)
	h.flash.Write(w, r, flash.Success("notice.email_verified"))
	httpx.WriteRedirect(w, r, gate.LandingFor(user))
}

func (h *handler) handleResendVerification(w http.ResponseWriter, r *http.Request, v viewer) {
	if _, err := h.account.ResendVerification(r.Context(), v.token); err != nil {
		h.redirectWithNotice(w, r, v, err, routepath.VerifySignup)
		return
	}
	h.flash.Write(w, r, flash.Success("notice.code_resent"))
	httpx.WriteRedirect(w, r, routepath.VerifySignup)
}

func (h *handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := h.tokens.Read(r)
	h.endSession(w, r, token)
	h.flash.Write(w, r, flash.Success("notice.signed_out"))
	httpx.WriteRedirect(w, r, routepath.Login)
}
