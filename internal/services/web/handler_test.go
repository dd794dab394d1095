package web

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/louisbranch/ledgerdesk/internal/services/web/backend"
	"github.com/louisbranch/ledgerdesk/internal/services/web/gate"
	apperrors "github.com/louisbranch/ledgerdesk/internal/services/web/platform/errors"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/flash"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/ledgerdesk/internal/services/web/tokenstore"
)

var errNotStubbed = errors.New("not stubbed")

type fakeAccount struct {
	mu         sync.Mutex
	fetchCalls int
	started    chan struct{}

	fetch          func(ctx context.Context, token string) (gate.User, error)
	login          func(email, password string) (backend.Auth, error)
	signup         func(in backend.SignupInput) (backend.Auth, error)
	verify2FA      func(token, code string) (backend.Auth, error)
	verifySignup   func(token, code string) (gate.User, error)
	resend         func(token string) (string, error)
	forgotPassword func(email string) (string, error)
	resetPassword  func(in backend.ResetPasswordInput) (string, error)
	updateProfile  func(token, fullName string) (gate.User, error)
	changePassword func(token, oldPassword, newPassword string) (string, error)
	setup2FA       func(token string) (backend.TwoFactorSetup, error)
	enable2FA      func(token, code string) (string, error)
	disable2FA     func(token string) (string, error)
	deleteAccount  func(token string) (string, error)
}

func newFakeAccount() *fakeAccount {
	return &fakeAccount{started: make(chan struct{}, 16)}
}

func (f *fakeAccount) FetchUser(ctx context.Context, token string) (gate.User, error) {
	f.mu.Lock()
	f.fetchCalls++
	fetch := f.fetch
	f.mu.Unlock()
	f.started <- struct{}{}
	if fetch == nil {
		return gate.User{}, errNotStubbed
	}
	return fetch(ctx, token)
}

func (f *fakeAccount) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetchCalls
}

func (f *fakeAccount) Login(_ context.Context, email, password string) (backend.Auth, error) {
	if f.login == nil {
		return backend.Auth{}, errNotStubbed
	}
	return f.login(email, password)
}

func (f *fakeAccount) Signup(_ context.Context, in backend.SignupInput) (backend.Auth, error) {
	if f.signup == nil {
		return backend.Auth{}, errNotStubbed
	}
	return f.signup(in)
}

func (f *fakeAccount) VerifyTwoFactor(_ context.Context, token, code string) (backend.Auth, error) {
	if f.verify2FA == nil {
		return backend.Auth{}, errNotStubbed
	}
	return f.verify2FA(token, code)
}

func (f *fakeAccount) VerifySignup(_ context.Context, token, code string) (gate.User, error) {
	if f.verifySignup == nil {
		return gate.User{}, errNotStubbed
	}
	return f.verifySignup(token, code)
}

func (f *fakeAccount) ResendVerification(_ context.Context, token string) (string, error) {
	if f.resend == nil {
		return "", errNotStubbed
	}
	return f.resend(token)
}

func (f *fakeAccount) ForgotPassword(_ context.Context, email string) (string, error) {
	if f.forgotPassword == nil {
		return "", errNotStubbed
	}
	return f.forgotPassword(email)
}

func (f *fakeAccount) ResetPassword(_ context.Context, in backend.ResetPasswordInput) (string, error) {
	if f.resetPassword == nil {
		return "", errNotStubbed
	}
	return f.resetPassword(in)
}

func (f *fakeAccount) UpdateProfile(_ context.Context, token, fullName string) (gate.User, error) {
	if f.updateProfile == nil {
		return gate.User{}, errNotStubbed
	}
	return f.updateProfile(token, fullName)
}

func (f *fakeAccount) ChangePassword(_ context.Context, token, oldPassword, newPassword string) (string, error) {
	if f.changePassword == nil {
		return "", errNotStubbed
	}
	return f.changePassword(token, oldPassword, newPassword)
}

func (f *fakeAccount) SetupTwoFactor(_ context.Context, token string) (backend.TwoFactorSetup, error) {
	if f.setup2FA == nil {
		return backend.TwoFactorSetup{}, errNotStubbed
	}
	return f.setup2FA(token)
}

func (f *fakeAccount) EnableTwoFactor(_ context.Context, token, code string) (string, error) {
	if f.enable2FA == nil {
		return "", errNotStubbed
	}
	return f.enable2FA(token, code)
}

func (f *fakeAccount) DisableTwoFactor(_ context.Context, token string) (string, error) {
	if f.disable2FA == nil {
		return "", errNotStubbed
	}
	return f.disable2FA(token)
}

func (f *fakeAccount) DeleteAccount(_ context.Context, token string) (string, error) {
	if f.deleteAccount == nil {
		return "", errNotStubbed
	}
	return f.deleteAccount(token)
}

func activeUser() gate.User {
	return gate.User{
		ID:             uuid.MustParse("6f1c1f0e-8d5e-4c3a-9a7a-2a1e0e4c5b6d"),
		Email:          "ada@example.com",
		FullName:       "Ada Lovelace",
		SignupVerified: true,
	}
}

func pendingUser() gate.User {
	u := activeUser()
	u.Pending2FA = true
	return u
}

func unverifiedUser() gate.User {
	u := activeUser()
	u.SignupVerified = false
	return u
}

type testEnv struct {
	handler  http.Handler
	registry *gate.Registry
	account  *fakeAccount
}

func newTestEnv(t *testing.T, account *fakeAccount, loadingWait time.Duration) testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	g, err := gate.New(gate.Config{Fetcher: account, Logger: logger})
	if err != nil {
		t.Fatalf("gate.New() error = %v", err)
	}
	registry := gate.NewRegistry(time.Hour)
	h, err := NewHandler(Dependencies{
		Account:     account,
		Gate:        g,
		Registry:    registry,
		Tokens:      tokenstore.NewCookie(requestmeta.SchemePolicy{}),
		LoadingWait: loadingWait,
		Logger:      logger,
	})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	return testEnv{handler: h, registry: registry, account: account}
}

func (e testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func withToken(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: tokenstore.CookieName, Value: token})
	return req
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", "http://example.com")
	return req
}

func cookieFrom(rr *httptest.ResponseRecorder, name string) (*http.Cookie, bool) {
	for _, cookie := range rr.Result().Cookies() {
		if cookie.Name == name {
			return cookie, true
		}
	}
	return nil, false
}

func assertRedirect(t *testing.T, rr *httptest.ResponseRecorder, want string) {
	t.Helper()
	if rr.Code != http.StatusFound {
		t.Fatalf("status = %d, want %d (body %q)", rr.Code, http.StatusFound, rr.Body.String())
	}
	if got := rr.Header().Get("Location"); got != want {
		t.Fatalf("Location = %q, want %q", got, want)
	}
}

func assertTokenCleared(t *testing.T, rr *httptest.ResponseRecorder) {
	t.Helper()
	cookie, ok := cookieFrom(rr, tokenstore.CookieName)
	if !ok || cookie.MaxAge >= 0 {
		t.Fatalf("expected %s cookie to be cleared, got %v", tokenstore.CookieName, rr.Result().Cookies())
	}
}

func waitStarted(t *testing.T, account *fakeAccount) {
	t.Helper()
	select {
	case <-account.started:
	case <-time.After(time.Second):
		t.Fatal("profile fetch never started")
	}
}

func TestNewHandlerRequiresDependencies(t *testing.T) {
	t.Parallel()

	if _, err := NewHandler(Dependencies{}); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, newFakeAccount(), 0)
	rr := env.serve(httptest.NewRequest(http.MethodGet, "/up", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), `"status":"ok"`) {
		t.Fatalf("body = %q", rr.Body.String())
	}
}

func TestStaticStylesheetServed(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, newFakeAccount(), 0)
	rr := env.serve(httptest.NewRequest(http.MethodGet, "/static/app.css", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "text/css") {
		t.Fatalf("content-type = %q, want text/css", ct)
	}
}

func TestPublicPagesRenderForEveryone(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, newFakeAccount(), 0)
	for _, path := range []string{"/", "/integrations", "/support"} {
		rr := env.serve(httptest.NewRequest(http.MethodGet, path, nil))
		if rr.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d, want %d", path, rr.Code, http.StatusOK)
		}
	}
	if env.account.calls() != 0 {
		t.Fatalf("public pages fetched the profile %d times", env.account.calls())
	}
}

func TestUnknownPathRendersNotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, newFakeAccount(), 0)
	rr := env.serve(httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestGuestPageWithoutToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, newFakeAccount(), 0)
	rr := env.serve(httptest.NewRequest(http.MethodGet, "/login", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), "Sign in to your account") {
		t.Fatalf("body missing login form: %q", rr.Body.String())
	}
}

func TestGuestPageWithTokenRedirectsToDashboard(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, newFakeAccount(), 0)
	rr := env.serve(withToken(httptest.NewRequest(http.MethodGet, "/signup", nil), "tok-1"))
	assertRedirect(t, rr, "/dashboard")
}

func TestAuthenticatedPageWithoutTokenRedirectsToLogin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, newFakeAccount(), 0)
	rr := env.serve(httptest.NewRequest(http.MethodGet, "/settings", nil))
	assertRedirect(t, rr, "/login")
}

func TestAuthenticatedPageWaitsForProfile(t *testing.T) {
	t.Parallel()

	account := newFakeAccount()
	account.fetch = func(_ context.Context, token string) (gate.User, error) {
		if token != "tok-1" {
			t.Errorf("fetch token = %q, want %q", token, "tok-1")
		}
		return activeUser(), nil
	}
	env := newTestEnv(t, account, time.Second)

	rr := env.serve(withToken(httptest.NewRequest(http.MethodGet, "/dashboard", nil), "tok-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), "Welcome, Ada Lovelace") {
		t.Fatalf("body missing dashboard: %q", rr.Body.String())
	}

	rr = env.serve(withToken(httptest.NewRequest(http.MethodGet, "/documents", nil), "tok-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("second page status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got := account.calls(); got != 1 {
		t.Fatalf("fetch calls = %d, want 1", got)
	}
}

func TestLadderRedirects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		user gate.User
		path string
		want string
	}{
		{name: "pending 2fa", user: pendingUser(), path: "/dashboard", want: "/verify-2fa"},
		{name: "pending 2fa on verify-signup", user: pendingUser(), path: "/verify-signup", want: "/verify-2fa"},
		{name: "unverified", user: unverifiedUser(), path: "/settings", want: "/verify-signup"},
		{name: "unverified leaves 2fa page", user: unverifiedUser(), path: "/verify-2fa", want: "/verify-signup"},
		{name: "active leaves verify-signup", user: activeUser(), path: "/verify-signup", want: "/dashboard"},
		{name: "active leaves 2fa page", user: activeUser(), path: "/verify-2fa", want: "/dashboard"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t, newFakeAccount(), 0)
			env.registry.Seed("tok-1", tc.user)
			rr := env.serve(withToken(httptest.NewRequest(http.MethodGet, tc.path, nil), "tok-1"))
			assertRedirect(t, rr, tc.want)
		})
	}
}

func TestLoadingPlaceholderWhileFetchInFlight(t *testing.T) {
	t.Parallel()

	account := newFakeAccount()
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	account.fetch = func(ctx context.Context, _ string) (gate.User, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return gate.User{}, context.Canceled
	}
	env := newTestEnv(t, account, 10*time.Millisecond)

	rr := env.serve(withToken(httptest.NewRequest(http.MethodGet, "/dashboard", nil), "tok-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `http-equiv="refresh"`) || !strings.Contains(body, "Loading your account...") {
		t.Fatalf("body missing loading placeholder: %q", body)
	}
	waitStarted(t, account)

	rr = env.serve(withToken(httptest.NewRequest(http.MethodGet, "/settings", nil), "tok-1"))
	if !strings.Contains(rr.Body.String(), "Loading your account...") {
		t.Fatalf("second request body = %q", rr.Body.String())
	}
	select {
	case <-account.started:
		t.Fatal("second request started a duplicate fetch")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRejectedTokenClearsSessionAndRedirects(t *testing.T) {
	t.Parallel()

	account := newFakeAccount()
	account.fetch = func(context.Context, string) (gate.User, error) {
		return gate.User{}, apperrors.FromHTTPStatus(http.StatusUnauthorized, "Could not validate credentials")
	}
	env := newTestEnv(t, account, time.Second)

	rr := env.serve(withToken(httptest.NewRequest(http.MethodGet, "/dashboard", nil), "tok-1"))
	assertRedirect(t, rr, "/login")
	assertTokenCleared(t, rr)
	if _, ok := env.registry.Lookup("tok-1"); ok {
		t.Fatal("expected rejected session to be dropped")
	}
}

func TestTransientFailureKeepsSessionAndNotifies(t *testing.T) {
	t.Parallel()

	account := newFakeAccount()
	account.fetch = func(context.Context, string) (gate.User, error) {
		return gate.User{}, apperrors.FromHTTPStatus(http.StatusServiceUnavailable, "")
	}
	env := newTestEnv(t, account, time.Second)

	rr := env.serve(withToken(httptest.NewRequest(http.MethodGet, "/dashboard", nil), "tok-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "The service is unavailable right now.") {
		t.Fatalf("body missing outage notice: %q", body)
	}
	if _, ok := cookieFrom(rr, tokenstore.CookieName); ok {
		t.Fatal("transient failure touched the token cookie")
	}
	if _, ok := env.registry.Lookup("tok-1"); !ok {
		t.Fatal("transient failure dropped the session")
	}
}

func TestSpeculativeRequestRendersNothing(t *testing.T) {
	t.Parallel()

	account := newFakeAccount()
	env := newTestEnv(t, account, time.Second)
	req := withToken(httptest.NewRequest(http.MethodGet, "/dashboard", nil), "tok-1")
	req.Header.Set("Sec-Purpose", "prefetch")

	rr := env.serve(req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if got := account.calls(); got != 0 {
		t.Fatalf("fetch calls = %d, want 0", got)
	}
}

func TestFormPostRequiresSameOrigin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, newFakeAccount(), 0)
	req := postForm("/login", url.Values{"email": {"ada@example.com"}, "password": {"password1"}})
	req.Header.Set("Origin", "https://evil.example")
	rr := env.serve(req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestLoginSeedsSessionAndFollowsLadder(t *testing.T) {
	t.Parallel()

	account := newFakeAccount()
	account.login = func(email, password string) (backend.Auth, error) {
		if email != "ada@example.com" || password != "password1" {
			t.Errorf("login(%q, %q)", email, password)
		}
		return backend.Auth{AccessToken: "tok-new", User: pendingUser()}, nil
	}
	env := newTestEnv(t, account, 0)

	rr := env.serve(postForm("/login", url.Values{"email": {" Ada@Example.com "}, "password": {"password1"}}))
	assertRedirect(t, rr, "/verify-2fa")
	cookie, ok := cookieFrom(rr, tokenstore.CookieName)
	if !ok || cookie.Value != "tok-new" {
		t.Fatalf("token cookie = %v, want tok-new", cookie)
	}
	sess, ok := env.registry.Lookup("tok-new")
	if !ok {
		t.Fatal("expected seeded session")
	}
	if sess.State() != gate.StateTwoFactorPending {
		t.Fatalf("state = %v, want %v", sess.State(), gate.StateTwoFactorPending)
	}
	if got := account.calls(); got != 0 {
		t.Fatalf("fetch calls = %d, want 0 after seeding", got)
	}
}

func TestLoginValidationErrorsRenderInline(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, newFakeAccount(), 0)
	rr := env.serve(postForm("/login", url.Values{"email": {"not-an-email"}}))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Invalid email address format") || !strings.Contains(body, "This field is required") {
		t.Fatalf("body missing validation errors: %q", body)
	}
}

func TestLoginBackendFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		marker string
	}{
		{name: "bad credentials", err: apperrors.FromHTTPStatus(http.StatusUnauthorized, "Invalid email or password"), status: http.StatusUnauthorized, marker: "Invalid email or password"},
		{name: "rate limited", err: apperrors.FromHTTPStatus(http.StatusTooManyRequests, ""), status: http.StatusTooManyRequests, marker: "Too many requests."},
		{name: "outage", err: apperrors.FromHTTPStatus(http.StatusBadGateway, ""), status: http.StatusServiceUnavailable, marker: "The service is unavailable right now."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			account := newFakeAccount()
			account.login = func(string, string) (backend.Auth, error) { return backend.Auth{}, tc.err }
			env := newTestEnv(t, account, 0)

			rr := env.serve(postForm("/login", url.Values{"email": {"ada@example.com"}, "password": {"password1"}}))
			if rr.Code != tc.status {
				t.Fatalf("status = %d, want %d", rr.Code, tc.status)
			}
			if !strings.Contains(rr.Body.String(), tc.marker) {
				t.Fatalf("body missing %q: %q", tc.marker, rr.Body.String())
			}
		})
	}
}

func TestSignupLandsOnVerifySignup(t *testing.T) {
	t.Parallel()

	account := newFakeAccount()
	account.signup = func(in backend.SignupInput) (backend.Auth, error) {
		if in.FullName != "Ada Lovelace" || in.Email != "ada@example.com" {
			t.Errorf("signup input = %+v", in)
		}
		return backend.Auth{AccessToken: "tok-new", User: unverifiedUser()}, nil
	}
	env := newTestEnv(t, account, 0)

	rr := env.serve(postForm("/signup", url.Values{
		"full_name":        {"  Ada   Lovelace "},
		"email":            {"ada@example.com"},
		"password":         {"password1"},
		"confirm_password": {"password1"},
	}))
	assertRedirect(t, rr, "/verify-signup")
}

func TestVerifyTwoFactorRotatesToken(t *testing.T) {
	t.Parallel()

	account := newFakeAccount()
	account.verify2FA = func(token, code string) (backend.Auth, error) {
		if token != "tok-old" || code != "123456" {
			t.Errorf("verify(%q, %q)", token, code)
		}
		return backend.Auth{AccessToken: "tok-new", User: activeUser()}, nil
	}
	env := newTestEnv(t, account, 0)
	old := env.registry.Seed("tok-old", pendingUser())

	rr := env.serve(withToken(postForm("/verify-2fa", url.Values{"code": {"123456"}}), "tok-old"))
	assertRedirect(t, rr, "/dashboard")
	if _, ok := env.registry.Lookup("tok-old"); ok {
		t.Fatal("old session still registered")
	}
	if old.Token() != "" {
		t.Fatal("old session not invalidated")
	}
	if sess, ok := env.registry.Lookup("tok-new"); !ok || sess.State() != gate.StateActive {
		t.Fatal("expected active session for new token")
	}
}

func TestVerifyTwoFactorRejectsMalformedCode(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, newFakeAccount(), 0)
	env.registry.Seed("tok-1", pendingUser())
	rr := env.serve(withToken(postForm("/verify-2fa", url.Values{"code": {"12ab"}}), "tok-1"))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(rr.Body.String(), "Verification code must be a 6-digit number") {
		t.Fatalf("body missing code error: %q", rr.Body.String())
	}
}

func TestVerifySignupReplacesUser(t *testing.T) {
	t.Parallel()

	account := newFakeAccount()
	account.verifySignup = func(token, code string) (gate.User, error) {
		return activeUser(), nil
	}
	env := newTestEnv(t, account, 0)
	sess := env.registry.Seed("tok-1", unverifiedUser())

	rr := env.serve(withToken(postForm("/verify-signup", url.Values{"code": {"654321"}}), "tok-1"))
	assertRedirect(t, rr, "/dashboard")
	if sess.State() != gate.StateActive {
		t.Fatalf("state = %v, want %v", sess.State(), gate.StateActive)
	}
	if _, ok := cookieFrom(rr, flash.CookieName); !ok {
		t.Fatal("expected flash notice")
	}
}

func TestResendVerificationRateLimitedNotice(t *testing.T) {
	t.Parallel()

	account := newFakeAccount()
	account.resend = func(string) (string, error) {
		return "", apperrors.FromHTTPStatus(http.StatusTooManyRequests, "")
	}
	env := newTestEnv(t, account, 0)
	sess := env.registry.Seed("tok-1", unverifiedUser())

	rr := env.serve(withToken(postForm("/verify-signup/resend", nil), "tok-1"))
	assertRedirect(t, rr, "/verify-signup")
	if _, ok := cookieFrom(rr, flash.CookieName); !ok {
		t.Fatal("expected flash notice")
	}
	if sess.State() != gate.StateEmailUnverified {
		t.Fatalf("rate limit changed session state to %v", sess.State())
	}
}

func TestExpiredSessionOnSettingsFormRedirectsToLogin(t *testing.T) {
	t.Parallel()

	account := newFakeAccount()
	account.updateProfile = func(string, string) (gate.User, error) {
		return gate.User{}, apperrors.FromHTTPStatus(http.StatusUnauthorized, "")
	}
	env := newTestEnv(t, account, 0)
	env.registry.Seed("tok-1", activeUser())

	rr := env.serve(withToken(postForm("/settings/profile", url.Values{"full_name": {"Ada King"}}), "tok-1"))
	assertRedirect(t, rr, "/login")
	assertTokenCleared(t, rr)
	if _, ok := env.registry.Lookup("tok-1"); ok {
		t.Fatal("expected session to be dropped")
	}
}

func TestUpdateProfileReplacesUser(t *testing.T) {
	t.Parallel()

	account := newFakeAccount()
	account.updateProfile = func(_ string, fullName string) (gate.User, error) {
		u := activeUser()
		u.FullName = fullName
		return u, nil
	}
	env := newTestEnv(t, account, 0)
	sess := env.registry.Seed("tok-1", activeUser())

	rr := env.serve(withToken(postForm("/settings/profile", url.Values{"full_name": {"Ada King"}}), "tok-1"))
	assertRedirect(t, rr, "/settings")
	u, _ := sess.User()
	if u.FullName != "Ada King" {
		t.Fatalf("FullName = %q, want %q", u.FullName, "Ada King")
	}
}

const testOTPAuthURL = "otpauth://totp/Ledgerdesk:ada?secret=JBSWY3DPEHPK3PXP&issuer=Ledgerdesk"

func TestSetupTwoFactorShowsSecret(t *testing.T) {
	t.Parallel()

	account := newFakeAccount()
	account.setup2FA = func(token string) (backend.TwoFactorSetup, error) {
		if token != "tok-1" {
			t.Errorf("token = %q, want tok-1", token)
		}
		return backend.ParseTwoFactorSetup(testOTPAuthURL)
	}
	env := newTestEnv(t, account, 0)
	env.registry.Seed("tok-1", activeUser())

	rr := env.serve(withToken(postForm("/settings/2fa/setup", nil), "tok-1"))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body := rr.Body.String()
	for _, want := range []string{"<code>JBSWY3DPEHPK3PXP</code>", `name="otpauth_url"`, `action="/settings/2fa/enable"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q: %q", want, body)
		}
	}
}

func TestSetupTwoFactorFailureRedirectsWithNotice(t *testing.T) {
	t.Parallel()

	account := newFakeAccount()
	account.setup2FA = func(string) (backend.TwoFactorSetup, error) {
		return backend.TwoFactorSetup{}, apperrors.FromHTTPStatus(http.StatusBadGateway, "")
	}
	env := newTestEnv(t, account, 0)
	env.registry.Seed("tok-1", activeUser())

	rr := env.serve(withToken(postForm("/settings/2fa/setup", nil), "tok-1"))
	assertRedirect(t, rr, "/settings")
	if _, ok := cookieFrom(rr, flash.CookieName); !ok {
		t.Fatal("expected flash notice")
	}
}

func TestEnableTwoFactorRefreshesUser(t *testing.T) {
	t.Parallel()

	account := newFakeAccount()
	account.enable2FA = func(token, code string) (string, error) {
		if token != "tok-1" || code != "123456" {
			t.Errorf("enable(%q, %q)", token, code)
		}
		return "2FA verified and activated", nil
	}
	account.fetch = func(context.Context, string) (gate.User, error) {
		u := activeUser()
		u.TwoFactorEnabled = true
		u.FullName = "Ada King"
		return u, nil
	}
	env := newTestEnv(t, account, 0)
	sess := env.registry.Seed("tok-1", activeUser())

	rr := env.serve(withToken(postForm("/settings/2fa/enable", url.Values{
		"code":        {"123456"},
		"otpauth_url": {testOTPAuthURL},
	}), "tok-1"))
	assertRedirect(t, rr, "/settings")
	u, _ := sess.User()
	if !u.TwoFactorEnabled || u.FullName != "Ada King" {
		t.Fatalf("user = %+v, want refetched record", u)
	}
	if got := account.calls(); got != 1 {
		t.Fatalf("fetch calls = %d, want 1", got)
	}
}

func TestEnableTwoFactorKeepsEnrolmentOnBadCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		code   string
		enable func(string, string) (string, error)
		status int
		marker string
	}{
		{
			name:   "malformed",
			code:   "12ab",
			status: http.StatusUnprocessableEntity,
			marker: "Verification code must be a 6-digit number",
		},
		{
			name: "rejected",
			code: "654321",
			enable: func(string, string) (string, error) {
				return "", apperrors.FromHTTPStatus(http.StatusBadRequest, "Invalid TOTP code")
			},
			status: http.StatusBadRequest,
			marker: "Invalid TOTP code",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			account := newFakeAccount()
			account.enable2FA = tc.enable
			env := newTestEnv(t, account, 0)
			sess := env.registry.Seed("tok-1", activeUser())

			rr := env.serve(withToken(postForm("/settings/2fa/enable", url.Values{
				"code":        {tc.code},
				"otpauth_url": {testOTPAuthURL},
			}), "tok-1"))
			if rr.Code != tc.status {
				t.Fatalf("status = %d, want %d", rr.Code, tc.status)
			}
			body := rr.Body.String()
			if !strings.Contains(body, tc.marker) || !strings.Contains(body, "<code>JBSWY3DPEHPK3PXP</code>") {
				t.Fatalf("body missing %q or secret: %q", tc.marker, body)
			}
			if u, _ := sess.User(); u.TwoFactorEnabled {
				t.Fatal("failed enrolment turned two-factor on")
			}
		})
	}
}

func TestEnableTwoFactorWithoutSetupStartsOver(t *testing.T) {
	t.Parallel()

	account := newFakeAccount()
	account.enable2FA = func(string, string) (string, error) {
		t.Error("enable called without a setup url")
		return "", nil
	}
	env := newTestEnv(t, account, 0)
	env.registry.Seed("tok-1", activeUser())

	rr := env.serve(withToken(postForm("/settings/2fa/enable", url.Values{"code": {"123456"}}), "tok-1"))
	assertRedirect(t, rr, "/settings")
	if _, ok := cookieFrom(rr, flash.CookieName); !ok {
		t.Fatal("expected flash notice")
	}
}

func TestDisableTwoFactorFallsBackWhenRefreshFails(t *testing.T) {
	t.Parallel()

	account := newFakeAccount()
	account.disable2FA = func(string) (string, error) { return "2FA disabled", nil }
	account.fetch = func(context.Context, string) (gate.User, error) {
		return gate.User{}, apperrors.FromHTTPStatus(http.StatusServiceUnavailable, "")
	}
	env := newTestEnv(t, account, 0)
	enabled := activeUser()
	enabled.TwoFactorEnabled = true
	sess := env.registry.Seed("tok-1", enabled)

	rr := env.serve(withToken(postForm("/settings/2fa/disable", nil), "tok-1"))
	assertRedirect(t, rr, "/settings")
	u, _ := sess.User()
	if u.TwoFactorEnabled {
		t.Fatal("TwoFactorEnabled = true, want false after disable")
	}
	if u.Email != enabled.Email {
		t.Fatalf("user = %+v, want cached record kept", u)
	}
}

func TestTwoFactorRefreshRejectedEndsSession(t *testing.T) {
	t.Parallel()

	account := newFakeAccount()
	account.disable2FA = func(string) (string, error) { return "2FA disabled", nil }
	account.fetch = func(context.Context, string) (gate.User, error) {
		return gate.User{}, apperrors.FromHTTPStatus(http.StatusUnauthorized, "")
	}
	env := newTestEnv(t, account, 0)
	env.registry.Seed("tok-1", activeUser())

	rr := env.serve(withToken(postForm("/settings/2fa/disable", nil), "tok-1"))
	assertRedirect(t, rr, "/login")
	assertTokenCleared(t, rr)
	if _, ok := env.registry.Lookup("tok-1"); ok {
		t.Fatal("expected session to be dropped")
	}
}

func TestDeleteAccountRequiresConfirmation(t *testing.T) {
	t.Parallel()

	account := newFakeAccount()
	account.deleteAccount = func(string) (string, error) {
		t.Error("delete called without confirmation")
		return "", nil
	}
	env := newTestEnv(t, account, 0)
	env.registry.Seed("tok-1", activeUser())

	rr := env.serve(withToken(postForm("/settings/delete", nil), "tok-1"))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(rr.Body.String(), "Confirm that you want to delete your account") {
		t.Fatalf("body missing confirmation error: %q", rr.Body.String())
	}
	if _, ok := env.registry.Lookup("tok-1"); !ok {
		t.Fatal("session dropped without deletion")
	}
}

func TestDeleteAccountEndsSession(t *testing.T) {
	t.Parallel()

	account := newFakeAccount()
	var deleted string
	account.deleteAccount = func(token string) (string, error) {
		deleted = token
		return "User deleted successfully", nil
	}
	env := newTestEnv(t, account, 0)
	sess := env.registry.Seed("tok-1", activeUser())

	rr := env.serve(withToken(postForm("/settings/delete", url.Values{"confirm": {"yes"}}), "tok-1"))
	assertRedirect(t, rr, "/login")
	assertTokenCleared(t, rr)
	if deleted != "tok-1" {
		t.Fatalf("deleted token = %q, want tok-1", deleted)
	}
	if sess.Token() != "" || env.registry.Len() != 0 {
		t.Fatal("expected session to be dropped")
	}
	if _, ok := cookieFrom(rr, flash.CookieName); !ok {
		t.Fatal("expected account deleted notice")
	}
}

func TestDeleteAccountBackendFailureKeepsSession(t *testing.T) {
	t.Parallel()

	account := newFakeAccount()
	account.deleteAccount = func(string) (string, error) {
		return "", apperrors.FromHTTPStatus(http.StatusServiceUnavailable, "")
	}
	env := newTestEnv(t, account, 0)
	env.registry.Seed("tok-1", activeUser())

	rr := env.serve(withToken(postForm("/settings/delete", url.Values{"confirm": {"yes"}}), "tok-1"))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
	if _, ok := env.registry.Lookup("tok-1"); !ok {
		t.Fatal("session dropped after failed deletion")
	}
}

func TestResetPasswordPageFlagsBrokenLink(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, newFakeAccount(), 0)
	rr := env.serve(httptest.NewRequest(http.MethodGet, "/verify-forgot-password?token=abc&user_id=nope", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !strings.Contains(rr.Body.String(), "This reset link is invalid or incomplete.") {
		t.Fatalf("body missing link error: %q", rr.Body.String())
	}
}

func TestResetPasswordSubmitsLink(t *testing.T) {
	t.Parallel()

	account := newFakeAccount()
	userID := activeUser().ID
	account.resetPassword = func(in backend.ResetPasswordInput) (string, error) {
		if in.Token != "reset-1" || in.UserID != userID || in.NewPassword != "password1" {
			t.Errorf("reset input = %+v", in)
		}
		return "Password updated", nil
	}
	env := newTestEnv(t, account, 0)

	rr := env.serve(postForm("/verify-forgot-password", url.Values{
		"token":            {"reset-1"},
		"user_id":          {userID.String()},
		"password":         {"password1"},
		"confirm_password": {"password1"},
	}))
	assertRedirect(t, rr, "/login")
}

func TestLogoutEndsSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, newFakeAccount(), 0)
	sess := env.registry.Seed("tok-1", activeUser())

	rr := env.serve(withToken(postForm("/logout", nil), "tok-1"))
	assertRedirect(t, rr, "/login")
	assertTokenCleared(t, rr)
	if sess.Token() != "" {
		t.Fatal("expected session to be invalidated")
	}
	if env.registry.Len() != 0 {
		t.Fatalf("registry len = %d, want 0", env.registry.Len())
	}
}
