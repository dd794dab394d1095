package templates

// PageContext provides shared layout context for pages.
type PageContext struct {
	Lang         string
	Loc          Localizer
	Title        string
	CurrentPath  string
	CurrentQuery string
	// UserName is empty for signed-out viewers.
	UserName string
	Toast    *Toast
	// RefreshSeconds adds a meta refresh when positive.
	RefreshSeconds int
}

// SignedIn reports whether the page renders signed-in chrome.
func (p PageContext) SignedIn() bool {
	return p.UserName != ""
}

func (p PageContext) lang() string {
	if p.Lang == "" {
		return "en-US"
	}
	return p.Lang
}

// currentURL is the path and query the page was requested with.
func (p PageContext) currentURL() string {
	if p.CurrentQuery == "" {
		return p.CurrentPath
	}
	return p.CurrentPath + "?" + p.CurrentQuery
}

// Toast is a one-time notice shown above the page content.
type Toast struct {
	Kind    string
	Message string
}

// FormState carries submitted values and failures back into a form.
type FormState struct {
	Values map[string]string
	// Errors maps field names to localization keys.
	Errors map[string]string
	// Message is a localized form-level failure.
	Message string
}

// Value returns the submitted value for field.
func (f FormState) Value(field string) string {
	return f.Values[field]
}

// SettingsView is the data behind the settings page.
type SettingsView struct {
	FullName         string
	Email            string
	TwoFactorEnabled bool
	Profile          FormState
	Password         FormState
	// TwoFactor is set while an authenticator enrolment awaits its code.
	TwoFactor TwoFactorSetup
	Delete    FormState
}

func (v SettingsView) profileForm() FormState {
	form := v.Profile
	if form.Values == nil {
		form.Values = map[string]string{"full_name": v.FullName}
	}
	return form
}

// TwoFactorSetup is a started authenticator enrolment: the otpauth URL, the
// secret inside it, and the state of the confirmation form.
type TwoFactorSetup struct {
	URL    string
	Secret string
	Form   FormState
}

// Started reports whether enrolment is waiting for a code.
func (s TwoFactorSetup) Started() bool {
	return s.URL != ""
}
