package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/louisbranch/ledgerdesk/internal/services/web/gate"
	apperrors "github.com/louisbranch/ledgerdesk/internal/services/web/platform/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/ledgerdesk/internal/services/web/backend"

// maxErrorBody caps how much of an error response is read for its detail.
const maxErrorBody = 64 << 10

// Auth is a freshly issued credential with the user it belongs to.
type Auth struct {
	AccessToken string
	User        gate.User
}

// SignupInput carries the sign-up form.
type SignupInput struct {
	Email    string
	Password string
	FullName string
}

// ResetPasswordInput carries the values from a password reset link plus the
// new password.
type ResetPasswordInput struct {
	Token       string
	UserID      uuid.UUID
	NewPassword string
}

// TwoFactorSetup is an authenticator enrolment that has been started but
// not yet confirmed with a code.
type TwoFactorSetup struct {
	URL    string
	Secret string
}

// ParseTwoFactorSetup reads the shared secret out of an otpauth URL.
func ParseTwoFactorSetup(raw string) (TwoFactorSetup, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return TwoFactorSetup{}, fmt.Errorf("parse otpauth url: %w", err)
	}
	if u.Scheme != "otpauth" {
		return TwoFactorSetup{}, fmt.Errorf("otpauth url has scheme %q", u.Scheme)
	}
	secret := u.Query().Get("secret")
	if secret == "" {
		return TwoFactorSetup{}, errors.New("otpauth url has no secret")
	}
	return TwoFactorSetup{URL: u.String(), Secret: secret}, nil
}

// Client calls the product backend over HTTP.
type Client struct {
	base   *url.URL
	client *http.Client
	tracer trace.Tracer
}

var _ gate.Fetcher = (*Client)(nil)

// NewClient builds a client for baseURL joined with prefix (for example
// "http://localhost:8000" and "/api/v1"). A nil httpClient uses
// http.DefaultClient.
func NewClient(baseURL, prefix string, httpClient *http.Client) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q must be http or https", baseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("backend url %q has no host", baseURL)
	}
	base.Path = strings.TrimRight(base.Path, "/") + "/" + strings.Trim(strings.TrimSpace(prefix), "/")
	base.Path = strings.TrimRight(base.Path, "/")
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: base, client: httpClient, tracer: otel.Tracer(tracerName)}, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (Auth, error) {
	var out authPayload
	if err := c.do(ctx, http.MethodPost, "/user/login", "", loginRequest{Email: email, Password: password}, &out); err != nil {
		return Auth{}, err
	}
	return out.auth()
}

// Signup creates an account and returns its first token.
func (c *Client) Signup(ctx context.Context, in SignupInput) (Auth, error) {
	var out authPayload
	body := signupRequest{Email: in.Email, Password: in.Password, FullName: in.FullName}
	if err := c.do(ctx, http.MethodPost, "/user/signup", "", body, &out); err != nil {
		return Auth{}, err
	}
	return out.auth()
}

// FetchUser returns the profile for token.
func (c *Client) FetchUser(ctx context.Context, token string) (gate.User, error) {
	var out userPayload
	if err := c.do(ctx, http.MethodGet, "/user/me", token, nil, &out); err != nil {
		return gate.User{}, err
	}
	return out.user(), nil
}

// VerifyTwoFactor submits a TOTP code and returns the upgraded token.
func (c *Client) VerifyTwoFactor(ctx context.Context, token, code string) (Auth, error) {
	var out authPayload
	if err := c.do(ctx, http.MethodPost, "/two_fa/verify-code", token, verifyCodeRequest{TOTP: code}, &out); err != nil {
		return Auth{}, err
	}
	return out.auth()
}

// VerifySignup submits the mailed sign-up code.
func (c *Client) VerifySignup(ctx context.Context, token, code string) (gate.User, error) {
	var out userPayload
	if err := c.do(ctx, http.MethodPost, "/user/verify-signup", token, verifySignupRequest{SignupToken: code}, &out); err != nil {
		return gate.User{}, err
	}
	return out.user(), nil
}

// ResendVerification asks for a new sign-up code.
func (c *Client) ResendVerification(ctx context.Context, token string) (string, error) {
	return c.message(ctx, http.MethodPost, "/user/resend-verification", token, nil)
}

// ForgotPassword requests a reset link for email.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	return c.message(ctx, http.MethodPost, "/forgot-password/", "", forgotPasswordRequest{Email: email})
}

// ResetPassword sets a new password using a reset link.
func (c *Client) ResetPassword(ctx context.Context, in ResetPasswordInput) (string, error) {
	body := resetPasswordRequest{Token: in.Token, UserID: in.UserID, NewPassword: in.NewPassword}
	return c.message(ctx, http.MethodPost, "/forgot-password/verify", "", body)
}

// UpdateProfile changes the user's full name and returns the new record.
func (c *Client) UpdateProfile(ctx context.Context, token, fullName string) (gate.User, error) {
	var out userPayload
	if err := c.do(ctx, http.MethodPut, "/user/", token, updateUserRequest{FullName: fullName}, &out); err != nil {
		return gate.User{}, err
	}
	return out.user(), nil
}

// ChangePassword replaces the password of the signed-in user.
func (c *Client) ChangePassword(ctx context.Context, token, oldPassword, newPassword string) (string, error) {
	body := changePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword}
	return c.message(ctx, http.MethodPost, "/user/change-password", token, body)
}

// SetupTwoFactor starts authenticator enrolment for the signed-in user.
func (c *Client) SetupTwoFactor(ctx context.Context, token string) (TwoFactorSetup, error) {
	var out twoFactorSetupPayload
	if err := c.do(ctx, http.MethodGet, "/two_fa/setup", token, nil, &out); err != nil {
		return TwoFactorSetup{}, err
	}
	setup, err := ParseTwoFactorSetup(out.URL)
	if err != nil {
		return TwoFactorSetup{}, apperrors.E(apperrors.KindUnavailable, err.Error())
	}
	return setup, nil
}

// EnableTwoFactor confirms enrolment with a code from the authenticator.
func (c *Client) EnableTwoFactor(ctx context.Context, token, code string) (string, error) {
	return c.message(ctx, http.MethodPost, "/two_fa/verify", token, verifyCodeRequest{TOTP: code})
}

// DisableTwoFactor turns two-factor authentication off.
func (c *Client) DisableTwoFactor(ctx context.Context, token string) (string, error) {
	return c.message(ctx, http.MethodPost, "/two_fa/disable", token, nil)
}

// DeleteAccount permanently removes the signed-in user.
func (c *Client) DeleteAccount(ctx context.Context, token string) (string, error) {
	return c.message(ctx, http.MethodDelete, "/user/", token, nil)
}

func (a authPayload) auth() (Auth, error) {
	if strings.TrimSpace(a.AccessToken) == "" {
		return Auth{}, apperrors.E(apperrors.KindUnavailable, "backend returned no access token")
	}
	return Auth{AccessToken: a.AccessToken, User: a.User.user()}, nil
}

func (c *Client) message(ctx context.Context, method, path, token string, body any) (string, error) {
	var out messagePayload
	if err := c.do(ctx, method, path, token, body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = c.base.Path + path
	return u.String()
}

// do sends one request and decodes a 2xx JSON body into out. Non-2xx
// responses become typed errors; transport failures are KindUnavailable.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "backend "+method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}
		return apperrors.Error{
			Kind:    apperrors.KindUnavailable,
			Key:     "error.unavailable",
			Message: fmt.Sprintf("%s %s: %v", method, path, err),
		}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return apperrors.FromHTTPStatus(resp.StatusCode, detailMessage(raw))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Error{
			Kind:    apperrors.KindUnavailable,
			Key:     "error.unavailable",
			Message: fmt.Sprintf("decode %s response: %v", path, err),
		}
	}
	return nil
}
