package ats

import "strings"

// Locale selects message text. It never changes scoring.
type Locale string

const (
	LocalePT Locale = "pt"
	LocaleEN Locale = "en"
	LocaleES Locale = "es"
)

// SupportedLocales lists every locale with a built-in catalog
var SupportedLocales = []Locale{LocalePT, LocaleEN, LocaleES}

// ParseLocale accepts "pt", "en", "es" and region-qualified tags such as
// "pt-BR" or "es_AR".
func ParseLocale(s string) (Locale, bool) {
	tag := strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(tag, "-_"); i > 0 {
		tag = tag[:i]
	}
	switch Locale(tag) {
	case LocalePT, LocaleEN, LocaleES:
		return Locale(tag), true
	}
	return "", false
}
