package templates

import "net/http"

// ErrorPageTitleKey returns the title key for an error status.
func ErrorPageTitleKey(statusCode int) string {
	if statusCode == http.StatusNotFound {
		return "title.not_found"
	}
	return "title.error"
}

// errorMessage is message, or the generic copy for statusCode when the
// caller had nothing more specific.
func errorMessage(page PageContext, statusCode int, message string) string {
	if message != "" {
		return message
	}
	if statusCode == http.StatusNotFound {
		return T(page.Loc, "error.not_found")
	}
	return T(page.Loc, "error.generic")
}
