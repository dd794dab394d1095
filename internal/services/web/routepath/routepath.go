// Package routepath stores canonical HTTP paths for the web process and the
// static partition of those paths into access classes.
package routepath

import "strings"

const (
	Root                 = "/"
	Integrations         = "/integrations"
	Support              = "/support"
	Login                = "/login"
	Signup               = "/signup"
	ForgotPassword       = "/forgot-password"
	VerifyForgotPassword = "/verify-forgot-password"
	VerifySignup         = "/verify-signup"
	VerifySignupResend   = "/verify-signup/resend"
	Verify2FA            = "/verify-2fa"
	Dashboard            = "/dashboard"
	Settings             = "/settings"
	SettingsProfile      = "/settings/profile"
	SettingsPassword     = "/settings/password"
	SettingsTwoFASetup   = "/settings/2fa/setup"
	SettingsTwoFAEnable  = "/settings/2fa/enable"
	SettingsTwoFADisable = "/settings/2fa/disable"
	SettingsDelete       = "/settings/delete"
	Documents            = "/documents"
	Logout               = "/logout"
	Health               = "/up"
	StaticPrefix         = "/static/"
)

// DefaultLanding is where fully verified users land after sign-in.
const DefaultLanding = Dashboard

// Class is the access class of a path.
type Class int

const (
	// ClassOpen marks a path missing from every table. It renders without
	// session checks, same as ClassPublic.
	ClassOpen Class = iota
	ClassPublic
	ClassGuest
	ClassAuthenticated
)

// String returns the lower-case class name used in logs.
func (c Class) String() string {
	switch c {
	case ClassPublic:
		return "public"
	case ClassGuest:
		return "guest"
	case ClassAuthenticated:
		return "authenticated"
	default:
		return "open"
	}
}

var (
	publicPaths        = []string{Root, Integrations, Support}
	guestPaths         = []string{Login, Signup, ForgotPassword, VerifyForgotPassword}
	authenticatedPaths = []string{VerifySignup, Verify2FA, Dashboard, Settings, Documents}
)

// PublicPaths returns a copy of the public table.
func PublicPaths() []string { return append([]string(nil), publicPaths...) }

// GuestPaths returns a copy of the guest table.
func GuestPaths() []string { return append([]string(nil), guestPaths...) }

// AuthenticatedPaths returns a copy of the authenticated table.
func AuthenticatedPaths() []string { return append([]string(nil), authenticatedPaths...) }

// Classify returns the access class of path. A table entry matches the path
// itself and anything below it ("/settings" covers "/settings/profile"); the
// root entry matches only "/".
func Classify(path string) Class {
	switch {
	case matchesAny(path, authenticatedPaths):
		return ClassAuthenticated
	case matchesAny(path, guestPaths):
		return ClassGuest
	case matchesAny(path, publicPaths):
		return ClassPublic
	default:
		return ClassOpen
	}
}

// Under reports whether path equals base or lies below it.
func Under(path, base string) bool {
	if path == base {
		return true
	}
	if base == Root {
		return false
	}
	return strings.HasPrefix(path, base+"/")
}

func matchesAny(path string, table []string) bool {
	for _, base := range table {
		if Under(path, base) {
			return true
		}
	}
	return false
}
