package templates

type fieldSpec struct {
	name         string
	labelKey     string
	inputType    string
	autocomplete string
}

// echoes reports whether a submitted value is written back into the input.
func (f fieldSpec) echoes() bool {
	return f.inputType != "password"
}

var (
	emailField           = fieldSpec{name: "email", labelKey: "form.email", inputType: "email", autocomplete: "email"}
	fullNameField        = fieldSpec{name: "full_name", labelKey: "form.full_name", inputType: "text", autocomplete: "name"}
	passwordField        = fieldSpec{name: "password", labelKey: "form.password", inputType: "password", autocomplete: "current-password"}
	newPasswordField     = fieldSpec{name: "password", labelKey: "form.new_password", inputType: "password", autocomplete: "new-password"}
	confirmPasswordField = fieldSpec{name: "confirm_password", labelKey: "form.confirm_password", inputType: "password", autocomplete: "new-password"}
	currentPasswordField = fieldSpec{name: "current_password", labelKey: "form.current_password", inputType: "password", autocomplete: "current-password"}
	codeField            = fieldSpec{name: "code", labelKey: "form.code", inputType: "text", autocomplete: "one-time-code"}
)
