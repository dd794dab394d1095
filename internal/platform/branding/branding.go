// Package branding holds product naming shared by page titles and emails.
package branding

import "strings"

// AppName is the product name shown in page titles and chrome.
const AppName = "Ledgerdesk"

// PageTitle formats a page title as "<page> - <AppName>".
func PageTitle(page string) string {
	page = strings.TrimSpace(page)
	if page == "" {
		return AppName
	}
	return page + " - " + AppName
}
