package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/louisbranch/ledgerdesk/internal/platform/timeouts"
	"github.com/louisbranch/ledgerdesk/internal/services/web/backend"
	"github.com/louisbranch/ledgerdesk/internal/services/web/gate"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/flash"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/httpx"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/pagerender"
	"github.com/louisbranch/ledgerdesk/internal/services/web/platform/requestmeta"
	"github.com/louisbranch/ledgerdesk/internal/services/web/routepath"
	"github.com/louisbranch/ledgerdesk/internal/services/web/static"
	"github.com/louisbranch/ledgerdesk/internal/services/web/tokenstore"
)

// AccountAPI is the backend surface the web forms call.
type AccountAPI interface {
	Login(ctx context.Context, email, password string) (backend.Auth, error)
	Signup(ctx context.Context, in backend.SignupInput) (backend.Auth, error)
	VerifyTwoFactor(ctx context.Context, token, code string) (backend.Auth, error)
	VerifySignup(ctx context.Context, token, code string) (gate.User, error)
	ResendVerification(ctx context.Context, token string) (string, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, in backend.ResetPasswordInput) (string, error)
	UpdateProfile(ctx context.Context, token, fullName string) (gate.User, error)
	ChangePassword(ctx context.Context, token, oldPassword, newPassword string) (string, error)
	FetchUser(ctx context.Context, token string) (gate.User, error)
	SetupTwoFactor(ctx context.Context, token string) (backend.TwoFactorSetup, error)
	EnableTwoFactor(ctx context.Context, token, code string) (string, error)
	DisableTwoFactor(ctx context.Context, token string) (string, error)
	DeleteAccount(ctx context.Context, token string) (string, error)
}

var _ AccountAPI = (*backend.Client)(nil)

// Dependencies are the collaborators of the page handler.
type Dependencies struct {
	Account  AccountAPI
	Gate     *gate.Gate
	Registry *gate.Registry
	Tokens   tokenstore.Store
	Policy   requestmeta.SchemePolicy
	// LoadingWait bounds how long a page waits for an in-flight profile
	// fetch before the loading placeholder is shown.
	LoadingWait time.Duration
	Logger      *slog.Logger
}

type handler struct {
	account     AccountAPI
	gate        *gate.Gate
	registry    *gate.Registry
	tokens      tokenstore.Store
	policy      requestmeta.SchemePolicy
	loadingWait time.Duration
	flash       flash.Notifier
	pages       pagerender.Renderer
	logger      *slog.Logger
}

// NewHandler builds the web HTTP handler.
func NewHandler(deps Dependencies) (http.Handler, error) {
	if deps.Account == nil {
		return nil, errors.New("account api is required")
	}
	if deps.Gate == nil {
		return nil, errors.New("gate is required")
	}
	if deps.Registry == nil {
		return nil, errors.New("session registry is required")
	}
	if deps.Tokens == nil {
		return nil, errors.New("token store is required")
	}
	if deps.LoadingWait < 0 {
		deps.LoadingWait = 0
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notifier := flash.NewNotifier(deps.Policy)
	h := &handler{
		account:     deps.Account,
		gate:        deps.Gate,
		registry:    deps.Registry,
		tokens:      deps.Tokens,
		policy:      deps.Policy,
		loadingWait: deps.LoadingWait,
		flash:       notifier,
		pages:       pagerender.Renderer{Flash: notifier},
		logger:      logger,
	}
	return httpx.Chain(h.routes(),
		httpx.RequestID(),
		httpx.LogRequests(logger),
		httpx.RecoverPanic(logger),
	), nil
}

func (h *handler) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+routepath.Health, h.handleHealth)
	mux.Handle("GET "+routepath.StaticPrefix, http.StripPrefix(routepath.StaticPrefix, http.FileServerFS(static.FS)))

	mux.Handle("GET /{$}", h.gated(h.handleHome))
	mux.Handle("GET "+routepath.Integrations, h.gated(h.handleIntegrations))
	mux.Handle("GET "+routepath.Support, h.gated(h.handleSupport))

	mux.Handle("GET "+routepath.Login, h.gated(h.handleLoginPage))
	mux.Handle("POST "+routepath.Login, h.form(h.handleLogin))
	mux.Handle("GET "+routepath.Signup, h.gated(h.handleSignupPage))
	mux.Handle("POST "+routepath.Signup, h.form(h.handleSignup))
	mux.Handle("GET "+routepath.ForgotPassword, h.gated(h.handleForgotPasswordPage))
	mux.Handle("POST "+routepath.ForgotPassword, h.form(h.handleForgotPassword))
	mux.Handle("GET "+routepath.VerifyForgotPassword, h.gated(h.handleResetPasswordPage))
	mux.Handle("POST "+routepath.VerifyForgotPassword, h.form(h.handleResetPassword))

	mux.Handle("GET "+routepath.Verify2FA, h.gated(h.handleVerifyTwoFactorPage))
	mux.Handle("POST "+routepath.Verify2FA, h.form(h.handleVerifyTwoFactor))
	mux.Handle("GET "+routepath.VerifySignup, h.gated(h.handleVerifySignupPage))
	mux.Handle("POST "+routepath.VerifySignup, h.form(h.handleVerifySignup))
	mux.Handle("POST "+routepath.VerifySignupResend, h.form(h.handleResendVerification))

	mux.Handle("GET "+routepath.Dashboard, h.gated(h.handleDashboard))
	mux.Handle("GET "+routepath.Documents, h.gated(h.handleDocuments))
	mux.Handle("GET "+routepath.Settings, h.gated(h.handleSettingsPage))
	mux.Handle("POST "+routepath.SettingsProfile, h.form(h.handleUpdateProfile))
	mux.Handle("POST "+routepath.SettingsPassword, h.form(h.handleChangePassword))
	mux.Handle("POST "+routepath.SettingsTwoFASetup, h.form(h.handleSetupTwoFactor))
	mux.Handle("POST "+routepath.SettingsTwoFAEnable, h.form(h.handleEnableTwoFactor))
	mux.Handle("POST "+routepath.SettingsTwoFADisable, h.form(h.handleDisableTwoFactor))
	mux.Handle("POST "+routepath.SettingsDelete, h.form(h.handleDeleteAccount))

	mux.Handle("POST "+routepath.Logout, h.sameOrigin(http.HandlerFunc(h.handleLogout)))
	mux.Handle("/", h.gated(h.handleNotFound))
	return mux
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sweepInterval is how often the server sweeps idle sessions.
func sweepInterval(idle time.Duration) time.Duration {
	if idle > 0 && idle < timeouts.SessionSweep {
		return idle
	}
	return timeouts.SessionSweep
}
