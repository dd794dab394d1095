package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.AmericanEnglish

	// Titles
	message.SetString(lang, "title.home", "Home")
	message.SetString(lang, "title.integrations", "Integrations")
	message.SetString(lang, "title.support", "Support")
	message.SetString(lang, "title.login", "Sign in")
	message.SetString(lang, "title.signup", "Create account")
	message.SetString(lang, "title.forgot_password", "Forgot password")
	message.SetString(lang, "title.reset_password", "Reset password")
	message.SetString(lang, "title.verify_2fa", "Two-factor verification")
	message.SetString(lang, "title.verify_signup", "Verify your email")
	message.SetString(lang, "title.dashboard", "Dashboard")
	message.SetString(lang, "title.settings", "Settings")
	message.SetString(lang, "title.documents", "Documents")
	message.SetString(lang, "title.loading", "Loading")
	message.SetString(lang, "title.not_found", "Page not found")
	message.SetString(lang, "title.error", "Something went wrong")

	// Navigation
	message.SetString(lang, "nav.home", "Home")
	message.SetString(lang, "nav.integrations", "Integrations")
	message.SetString(lang, "nav.support", "Support")
	message.SetString(lang, "nav.login", "Sign in")
	message.SetString(lang, "nav.signup", "Create account")
	message.SetString(lang, "nav.dashboard", "Dashboard")
	message.SetString(lang, "nav.documents", "Documents")
	message.SetString(lang, "nav.settings", "Settings")
	message.SetString(lang, "nav.logout", "Sign out")
	message.SetString(lang, "nav.lang_en", "EN")
	message.SetString(lang, "nav.lang_pt_br", "PT-BR")

	// Public pages
	message.SetString(lang, "home.heading", "Your books, reconciled.")
	message.SetString(lang, "home.tagline", "Connect your accounts, upload documents and keep every ledger in one place.")
	message.SetString(lang, "home.cta", "Get started")
	message.SetString(lang, "integrations.heading", "Integrations")
	message.SetString(lang, "integrations.body", "Bring in statements from your bank and accounting tools.")
	message.SetString(lang, "support.heading", "Support")
	message.SetString(lang, "support.body", "Questions about your account? Our team answers within one business day.")

	// Form fields
	message.SetString(lang, "form.email", "Email")
	message.SetString(lang, "form.password", "Password")
	message.SetString(lang, "form.confirm_password", "Confirm password")
	message.SetString(lang, "form.full_name", "Full name")
	message.SetString(lang, "form.current_password", "Current password")
	message.SetString(lang, "form.new_password", "New password")
	message.SetString(lang, "form.code", "Verification code")

	// Auth pages
	message.SetString(lang, "login.heading", "Sign in to your account")
	message.SetString(lang, "login.submit", "Sign in")
	message.SetString(lang, "login.forgot_link", "Forgot your password?")
	message.SetString(lang, "login.signup_link", "New here? Create an account")
	message.SetString(lang, "signup.heading", "Create your account")
	message.SetString(lang, "signup.submit", "Create account")
	message.SetString(lang, "signup.login_link", "Already have an account? Sign in")
	message.SetString(lang, "forgot.heading", "Reset your password")
	message.SetString(lang, "forgot.body", "Enter your email and we will send you a reset link.")
	message.SetString(lang, "forgot.submit", "Send reset link")
	message.SetString(lang, "forgot.login_link", "Back to sign in")
	message.SetString(lang, "reset.heading", "Choose a new password")
	message.SetString(lang, "reset.submit", "Reset password")
	message.SetString(lang, "verify_2fa.heading", "Two-factor verification")
	message.SetString(lang, "verify_2fa.body", "Enter the 6-digit code from your authenticator app.")
	message.SetString(lang, "verify_2fa.submit", "Verify")
	message.SetString(lang, "verify_signup.heading", "Verify your email")
	message.SetString(lang, "verify_signup.body", "We sent a 6-digit code to %s.")
	message.SetString(lang, "verify_signup.submit", "Verify email")
	message.SetString(lang, "verify_signup.resend", "Send a new code")

	// Account pages
	message.SetString(lang, "dashboard.heading", "Welcome, %s")
	message.SetString(lang, "dashboard.body", "Your workspace is ready.")
	message.SetString(lang, "settings.heading", "Settings")
	message.SetString(lang, "settings.profile.heading", "Profile")
	message.SetString(lang, "settings.profile.submit", "Save profile")
	message.SetString(lang, "settings.password.heading", "Password")
	message.SetString(lang, "settings.password.submit", "Change password")
	message.SetString(lang, "settings.two_fa.enabled", "Two-factor authentication is on.")
	message.SetString(lang, "settings.two_fa.disabled", "Two-factor authentication is off.")
	message.SetString(lang, "settings.two_fa.heading", "Two-factor authentication")
	message.SetString(lang, "settings.two_fa.setup", "Set up two-factor authentication")
	message.SetString(lang, "settings.two_fa.instructions", "Add this account to your authenticator app with the setup link or the secret key below, then enter the 6-digit code it shows.")
	message.SetString(lang, "settings.two_fa.open_app", "Open in authenticator app")
	message.SetString(lang, "settings.two_fa.secret", "Secret key")
	message.SetString(lang, "settings.two_fa.verify", "Verify and enable")
	message.SetString(lang, "settings.two_fa.disable", "Disable two-factor authentication")
	message.SetString(lang, "settings.delete.heading", "Delete account")
	message.SetString(lang, "settings.delete.body", "Permanently delete your account and all associated data. This cannot be undone.")
	message.SetString(lang, "settings.delete.confirm", "I understand that my account will be deleted permanently")
	message.SetString(lang, "settings.delete.submit", "Delete account")
	message.SetString(lang, "documents.heading", "Documents")
	message.SetString(lang, "documents.empty", "No documents yet.")

	// Loading placeholder
	message.SetString(lang, "loading.message", "Loading your account...")
	message.SetString(lang, "loading.retry", "Try again")

	// Errors
	message.SetString(lang, "error.session_expired", "Your session has expired. Please sign in again.")
	message.SetString(lang, "error.rate_limited", "Too many requests. Please wait a moment and try again.")
	message.SetString(lang, "error.unavailable", "The service is unavailable right now. Please try again shortly.")
	message.SetString(lang, "error.generic", "Something went wrong. Please try again.")
	message.SetString(lang, "error.not_found", "We could not find that page.")
	message.SetString(lang, "error.forbidden_origin", "This request could not be verified. Reload the page and try again.")
	message.SetString(lang, "error.reset_link", "This reset link is invalid or incomplete.")
	message.SetString(lang, "error.two_factor_setup", "Two-factor setup expired. Start again.")
	message.SetString(lang, "error.back_home", "Back to home")

	// Notices
	message.SetString(lang, "notice.signed_out", "You have been signed out.")
	message.SetString(lang, "notice.code_resent", "A new verification code has been sent.")
	message.SetString(lang, "notice.reset_link_sent", "If that address has an account, a reset link is on its way.")
	message.SetString(lang, "notice.password_reset", "Your password was reset. Please sign in.")
	message.SetString(lang, "notice.email_verified", "Your email is verified.")
	message.SetString(lang, "notice.profile_updated", "Profile saved.")
	message.SetString(lang, "notice.password_changed", "Password changed.")
	message.SetString(lang, "notice.two_factor_enabled", "Two-factor authentication enabled.")
	message.SetString(lang, "notice.two_factor_disabled", "Two-factor authentication disabled.")
	message.SetString(lang, "notice.account_deleted", "Your account has been deleted.")

	// Validation
	message.SetString(lang, "validation.required", "This field is required")
	message.SetString(lang, "validation.email_format", "Invalid email address format")
	message.SetString(lang, "validation.full_name", "Full name must contain at least 2 words with minimum 2 characters each")
	message.SetString(lang, "validation.password_length", "Password must be at least 8 characters long")
	message.SetString(lang, "validation.password_mismatch", "Passwords do not match")
	message.SetString(lang, "validation.code", "Verification code must be a 6-digit number")
	message.SetString(lang, "validation.delete_confirm", "Confirm that you want to delete your account")
}
