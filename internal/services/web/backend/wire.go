package backend

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/louisbranch/ledgerdesk/internal/services/web/gate"
)

type userPayload struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	FullName       string     `json:"full_name"`
	SignupVerified *time.Time `json:"signup_verified"`
	AuthProvider   string     `json:"auth_provider"`
	AvatarURL      *string    `json:"avatar_url"`
	IsAdmin        bool       `json:"is_admin"`
	TwoFAEnabled   bool       `json:"two_fa_enabled"`
	Pending2FA     bool       `json:"pending_2fa"`
}

func (p userPayload) user() gate.User {
	u := gate.User{
		ID:               p.ID,
		Email:            p.Email,
		FullName:         p.FullName,
		TwoFactorEnabled: p.TwoFAEnabled,
		Pending2FA:       p.Pending2FA,
		SignupVerified:   p.SignupVerified != nil,
		IsAdmin:          p.IsAdmin,
		AuthProvider:     p.AuthProvider,
	}
	if p.AvatarURL != nil {
		u.AvatarURL = *p.AvatarURL
	}
	return u
}

type authPayload struct {
	AccessToken string      `json:"access_token"`
	User        userPayload `json:"user"`
}

type messagePayload struct {
	Message string `json:"message"`
}

type twoFactorSetupPayload struct {
	URL string `json:"url"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type verifyCodeRequest struct {
	TOTP string `json:"totp"`
}

type verifySignupRequest struct {
	SignupToken string `json:"signup_token"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string    `json:"token"`
	UserID      uuid.UUID `json:"user_id"`
	NewPassword string    `json:"new_password"`
}

type updateUserRequest struct {
	FullName string `json:"full_name"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type errorPayload struct {
	Detail json.RawMessage `json:"detail"`
}

// detailMessage extracts the user-facing message from an error body. The
// backend sends either {"detail": "text"} or a validation list
// {"detail": [{"msg": "text"}, ...]}, of which the first entry is used.
func detailMessage(body []byte) string {
	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var text string
	if err := json.Unmarshal(payload.Detail, &text); err == nil {
		return strings.TrimSpace(text)
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil && len(items) > 0 {
		return strings.TrimSpace(items[0].Msg)
	}
	return ""
}
