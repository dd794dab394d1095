package gate

import (
	"github.com/google/uuid"
	"github.com/louisbranch/ledgerdesk/internal/services/web/routepath"
)

// User is the public profile of the signed-in user as the backend reports it.
type User struct {
	ID               uuid.UUID
	Email            string
	FullName         string
	AvatarURL        string
	TwoFactorEnabled bool
	Pending2FA       bool
	SignupVerified   bool
	IsAdmin          bool
	AuthProvider     string
}

// State is the position of a browser session on the sign-in ladder.
type State int

const (
	StateUnauthenticated State = iota
	StateAwaitingProfile
	StateTwoFactorPending
	StateEmailUnverified
	StateActive
)

func (s State) String() string {
	switch s {
	case StateAwaitingProfile:
		return "awaiting_profile"
	case StateTwoFactorPending:
		return "two_factor_pending"
	case StateEmailUnverified:
		return "email_unverified"
	case StateActive:
		return "active"
	default:
		return "unauthenticated"
	}
}

// stateOf places a known user on the ladder. Pending 2FA outranks a missing
// email verification.
func stateOf(u User) State {
	switch {
	case u.Pending2FA:
		return StateTwoFactorPending
	case !u.SignupVerified:
		return StateEmailUnverified
	default:
		return StateActive
	}
}

// LandingFor returns the first page the user may stay on after sign-in.
func LandingFor(u User) string {
	switch stateOf(u) {
	case StateTwoFactorPending:
		return routepath.Verify2FA
	case StateEmailUnverified:
		return routepath.VerifySignup
	default:
		return routepath.DefaultLanding
	}
}
