package templates

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/a-h/templ"
	webi18n "github.com/louisbranch/ledgerdesk/internal/services/web/i18n"
	"golang.org/x/text/language"
)

func testPage(path string) PageContext {
	return PageContext{
		Lang:        "en-US",
		Loc:         webi18n.Printer(language.AmericanEnglish),
		Title:       "Sign in",
		CurrentPath: path,
	}
}

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return b.String()
}

func renderInLayout(t *testing.T, page PageContext, body templ.Component) string {
	t.Helper()
	var b strings.Builder
	ctx := templ.WithChildren(context.Background(), body)
	if err := Layout(page).Render(ctx, &b); err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	return b.String()
}

func TestLayoutWrapsChildrenWithTitle(t *testing.T) {
	t.Parallel()

	got := renderInLayout(t, testPage("/login"), LoginPage(testPage("/login"), FormState{}))
	if !strings.Contains(got, "<title>Sign in - Ledgerdesk</title>") {
		t.Fatalf("missing title in %q", got)
	}
	if !strings.Contains(got, `<main id="main"><h1>Sign in to your account</h1>`) {
		t.Fatalf("children not rendered in main: %q", got)
	}
	if !strings.Contains(got, `<a href="/login" aria-current="page">Sign in</a>`) {
		t.Fatalf("current nav link not marked: %q", got)
	}
	if strings.Contains(got, "http-equiv") {
		t.Fatalf("unexpected refresh meta: %q", got)
	}
}

func TestLayoutSignedInChrome(t *testing.T) {
	t.Parallel()

	page := testPage("/dashboard")
	page.UserName = "Ada Lovelace"
	got := renderInLayout(t, page, DashboardPage(page, "Ada Lovelace"))
	if !strings.Contains(got, `action="/logout"`) {
		t.Fatalf("missing logout form: %q", got)
	}
	if strings.Contains(got, `href="/signup"`) {
		t.Fatalf("signed-in chrome links to signup: %q", got)
	}
	if !strings.Contains(got, "Welcome, Ada Lovelace") {
		t.Fatalf("missing greeting: %q", got)
	}
}

func TestLayoutToastAndRefresh(t *testing.T) {
	t.Parallel()

	page := testPage("/dashboard")
	page.RefreshSeconds = 2
	page.Toast = &Toast{Kind: "error", Message: "Too many requests."}
	got := renderInLayout(t, page, LoadingPage(page))
	if !strings.Contains(got, `<meta http-equiv="refresh" content="2">`) {
		t.Fatalf("missing refresh meta: %q", got)
	}
	if !strings.Contains(got, `<div class="toast toast-error" role="status">Too many requests.</div>`) {
		t.Fatalf("missing toast: %q", got)
	}
	if !strings.Contains(got, "Loading your account...") {
		t.Fatalf("missing loading copy: %q", got)
	}
}

func TestFormStateEchoesValuesButNotPasswords(t *testing.T) {
	t.Parallel()

	form := FormState{
		Values: map[string]string{"email": `ada@example.com"><script>`, "password": "secret-value"},
		Errors: map[string]string{"password": "validation.required"},
	}
	got := render(t, LoginPage(testPage("/login"), form))
	if strings.Contains(got, "<script>") {
		t.Fatalf("value not escaped: %q", got)
	}
	if !strings.Contains(got, `value="ada@example.com&#34;&gt;&lt;script&gt;"`) {
		t.Fatalf("email not echoed: %q", got)
	}
	if strings.Contains(got, "secret-value") {
		t.Fatalf("password echoed: %q", got)
	}
	if !strings.Contains(got, "This field is required") {
		t.Fatalf("missing field error: %q", got)
	}
}

func TestResetPasswordPageCarriesLink(t *testing.T) {
	t.Parallel()

	form := FormState{Values: map[string]string{"token": "reset-1", "user_id": "user-1"}}
	got := render(t, ResetPasswordPage(testPage("/verify-forgot-password"), form))
	if !strings.Contains(got, `name="token" value="reset-1"`) || !strings.Contains(got, `name="user_id" value="user-1"`) {
		t.Fatalf("missing hidden link fields: %q", got)
	}
}

func TestVerifySignupPageShowsEmailAndResend(t *testing.T) {
	t.Parallel()

	got := render(t, VerifySignupPage(testPage("/verify-signup"), "ada@example.com", FormState{}))
	if !strings.Contains(got, "We sent a 6-digit code to ada@example.com.") {
		t.Fatalf("missing email copy: %q", got)
	}
	if !strings.Contains(got, `action="/verify-signup/resend"`) {
		t.Fatalf("missing resend form: %q", got)
	}
}

func TestSettingsPagePrefillsProfile(t *testing.T) {
	t.Parallel()

	got := render(t, SettingsPage(testPage("/settings"), SettingsView{
		FullName:         "Ada Lovelace",
		Email:            "ada@example.com",
		TwoFactorEnabled: true,
	}))
	if !strings.Contains(got, `name="full_name" autocomplete="name" value="Ada Lovelace"`) {
		t.Fatalf("profile not prefilled: %q", got)
	}
	if !strings.Contains(got, "Two-factor authentication is on.") {
		t.Fatalf("missing 2FA state: %q", got)
	}
}

func TestSettingsPageTwoFactorStates(t *testing.T) {
	t.Parallel()

	page := testPage("/settings")
	tests := []struct {
		name string
		view SettingsView
		want []string
	}{
		{
			name: "off",
			view: SettingsView{},
			want: []string{"Two-factor authentication is off.", `action="/settings/2fa/setup"`},
		},
		{
			name: "on",
			view: SettingsView{TwoFactorEnabled: true},
			want: []string{"Two-factor authentication is on.", `action="/settings/2fa/disable"`},
		},
		{
			name: "enrolling",
			view: SettingsView{TwoFactor: TwoFactorSetup{
				URL:    "otpauth://totp/Ledgerdesk?secret=JBSWY3DPEHPK3PXP",
				Secret: "JBSWY3DPEHPK3PXP",
				Form:   FormState{Errors: map[string]string{"code": "validation.code"}},
			}},
			want: []string{
				`<a href="otpauth://totp/Ledgerdesk?secret=JBSWY3DPEHPK3PXP">`,
				"<code>JBSWY3DPEHPK3PXP</code>",
				`name="otpauth_url" value="otpauth://totp/Ledgerdesk?secret=JBSWY3DPEHPK3PXP"`,
				`action="/settings/2fa/enable"`,
				"Verification code must be a 6-digit number",
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := render(t, SettingsPage(page, tc.view))
			for _, want := range tc.want {
				if !strings.Contains(got, want) {
					t.Fatalf("settings page missing %q: %q", want, got)
				}
			}
		})
	}
}

func TestSettingsPageDeleteSection(t *testing.T) {
	t.Parallel()

	view := SettingsView{Delete: FormState{Errors: map[string]string{"confirm": "validation.delete_confirm"}}}
	got := render(t, SettingsPage(testPage("/settings"), view))
	if !strings.Contains(got, `action="/settings/delete"`) {
		t.Fatalf("missing delete form: %q", got)
	}
	if !strings.Contains(got, `<input type="checkbox" name="confirm" value="yes" aria-invalid="true">`) {
		t.Fatalf("missing invalid confirm checkbox: %q", got)
	}
	if !strings.Contains(got, "Confirm that you want to delete your account") {
		t.Fatalf("missing confirm error: %q", got)
	}
}

func TestCardFormWrapsChildren(t *testing.T) {
	t.Parallel()

	got := render(t, VerifyTwoFactorPage(testPage("/verify-2fa"), FormState{Message: "Invalid code"}))
	want := `<form class="card" method="post" action="/verify-2fa" novalidate><p class="alert alert-error" role="alert">Invalid code</p><label class="field">`
	if !strings.Contains(got, want) {
		t.Fatalf("form markup = %q, want %q", got, want)
	}
}

func TestErrorPage(t *testing.T) {
	t.Parallel()

	got := render(t, ErrorPage(testPage("/missing"), http.StatusNotFound, ""))
	if !strings.Contains(got, "Page not found") || !strings.Contains(got, "We could not find that page.") {
		t.Fatalf("not found page = %q", got)
	}
	got = render(t, ErrorPage(testPage("/"), http.StatusServiceUnavailable, "Try later."))
	if !strings.Contains(got, "Something went wrong") || !strings.Contains(got, "Try later.") {
		t.Fatalf("error page = %q", got)
	}
}

func TestLanguageURLKeepsQuery(t *testing.T) {
	t.Parallel()

	page := PageContext{CurrentPath: "/verify-forgot-password", CurrentQuery: "token=abc&lang=en-US"}
	got := LanguageURL(page, "pt-BR")
	if got != "/verify-forgot-password?lang=pt-BR&token=abc" {
		t.Fatalf("LanguageURL() = %q", got)
	}
}

func TestLanguageOptionsMarkActive(t *testing.T) {
	t.Parallel()

	options := LanguageOptions(PageContext{Lang: "pt-BR", Loc: webi18n.Printer(language.BrazilianPortuguese)})
	if len(options) != 2 {
		t.Fatalf("options = %v", options)
	}
	if options[0].Active || !options[1].Active {
		t.Fatalf("active option = %v, want pt-BR", options)
	}
	if options[1].Label != "PT-BR" {
		t.Fatalf("label = %q, want %q", options[1].Label, "PT-BR")
	}
}
