package templates

import (
	"net/url"
	"strings"

	webi18n "github.com/louisbranch/ledgerdesk/internal/services/web/i18n"
	"golang.org/x/text/language"
)

// LanguageOption represents a supported language option in the UI.
type LanguageOption struct {
	Tag    string
	Label  string
	Active bool
}

// LanguageOptions returns supported language options with active selection.
func LanguageOptions(page PageContext) []LanguageOption {
	active, _ := webi18n.ParseTag(page.Lang)
	supported := webi18n.Supported()
	options := make([]LanguageOption, 0, len(supported))
	for _, tag := range supported {
		options = append(options, LanguageOption{
			Tag:    tag.String(),
			Label:  T(page.Loc, languageKey(tag)),
			Active: tag == active,
		})
	}
	return options
}

// LanguageURL returns the current URL with the language param updated.
func LanguageURL(page PageContext, tag string) string {
	path := strings.TrimSpace(page.CurrentPath)
	if path == "" {
		path = "/"
	}
	query, err := url.ParseQuery(page.CurrentQuery)
	if err != nil {
		query = url.Values{}
	}
	query.Set(webi18n.LangParam, tag)
	return (&url.URL{Path: path, RawQuery: query.Encode()}).String()
}

func languageKey(tag language.Tag) string {
	if tag == language.BrazilianPortuguese {
		return "nav.lang_pt_br"
	}
	return "nav.lang_en"
}
