package templates

import "golang.org/x/text/message"

// Localizer looks up catalog messages; *message.Printer satisfies it.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// T formats the catalog message for key. Without a localizer the key itself
// is returned and args are dropped, so unwired pages show raw keys.
func T(loc Localizer, key string, args ...any) string {
	if loc == nil {
		return key
	}
	return loc.Sprintf(key, args...)
}
