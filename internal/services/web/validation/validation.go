// Package validation checks auth and settings form input before it reaches
// the backend. Failures are localization keys so pages can render them in
// the viewer's language.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Localization keys for field failures.
const (
	KeyRequired         = "validation.required"
	KeyEmailFormat      = "validation.email_format"
	KeyFullName         = "validation.full_name"
	KeyPasswordLength   = "validation.password_length"
	KeyPasswordMismatch = "validation.password_mismatch"
	KeyCode             = "validation.code"
	KeyDeleteConfirm    = "validation.delete_confirm"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	codePattern  = regexp.MustCompile(`^\d{6}$`)
)

// Errors maps form field names to a failure key. The zero value is usable.
type Errors map[string]string

// Add records key for field unless the field already failed.
func (e *Errors) Add(field, key string) {
	if key == "" {
		return
	}
	if *e == nil {
		*e = Errors{}
	}
	if _, ok := (*e)[field]; ok {
		return
	}
	(*e)[field] = key
}

// OK reports whether no field failed.
func (e Errors) OK() bool {
	return len(e) == 0
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Required fails blank values.
func Required(value string) string {
	if strings.TrimSpace(value) == "" {
		return KeyRequired
	}
	return ""
}

// Email fails blank or malformed addresses.
func Email(value string) string {
	value = NormalizeEmail(value)
	if value == "" {
		return KeyRequired
	}
	if !emailPattern.MatchString(value) {
		return KeyEmailFormat
	}
	return ""
}

// Password fails passwords shorter than MinPasswordLength characters.
func Password(value string) string {
	if value == "" {
		return KeyRequired
	}
	if utf8.RuneCountInString(value) < MinPasswordLength {
		return KeyPasswordLength
	}
	return ""
}

// Confirm fails a confirmation that differs from the password.
func Confirm(password, confirmation string) string {
	if confirmation == "" {
		return KeyRequired
	}
	if password != confirmation {
		return KeyPasswordMismatch
	}
	return ""
}

// FullName needs at least two words of at least two characters each.
func FullName(value string) string {
	words := strings.Fields(value)
	if len(words) == 0 {
		return KeyRequired
	}
	if len(words) < 2 {
		return KeyFullName
	}
	for _, word := range words {
		if utf8.RuneCountInString(word) < 2 {
			return KeyFullName
		}
	}
	return ""
}

// Code fails anything but a six digit verification code.
func Code(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return KeyRequired
	}
	if !codePattern.MatchString(value) {
		return KeyCode
	}
	return ""
}

// DeleteConfirmed fails unless the deletion checkbox was ticked.
func DeleteConfirmed(value string) string {
	switch strings.TrimSpace(value) {
	case "on", "yes", "true":
		return ""
	}
	return KeyDeleteConfirm
}

// Login validates the sign-in form.
func Login(email, password string) Errors {
	var errs Errors
	errs.Add("email", Email(email))
	errs.Add("password", Required(password))
	return errs
}

// Signup validates the registration form.
func Signup(fullName, email, password, confirmation string) Errors {
	var errs Errors
	errs.Add("full_name", FullName(fullName))
	errs.Add("email", Email(email))
	errs.Add("password", Password(password))
	errs.Add("confirm_password", Confirm(password, confirmation))
	return errs
}

// ResetPassword validates a new password and its confirmation.
func ResetPassword(password, confirmation string) Errors {
	var errs Errors
	errs.Add("password", Password(password))
	errs.Add("confirm_password", Confirm(password, confirmation))
	return errs
}

// ChangePassword validates the settings password form.
func ChangePassword(current, password, confirmation string) Errors {
	var errs Errors
	errs.Add("current_password", Required(current))
	errs.Add("password", Password(password))
	errs.Add("confirm_password", Confirm(password, confirmation))
	return errs
}
