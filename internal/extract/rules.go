package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// matcher is one fallible extraction rule over the full text
type matcher func(text string) (string, bool)

// firstMatch runs a prioritized chain and returns the first success
func firstMatch(text string, chain ...matcher) string {
	for _, m := range chain {
		if v, ok := m(text); ok {
			return v
		}
	}
	return ""
}

func regexRule(re *regexp.Regexp) matcher {
	return func(text string) (string, bool) {
		m := strings.TrimSpace(re.FindString(text))
		return m, m != ""
	}
}

// canonicalRule rewrites the first submatch into a canonical form
func canonicalRule(re *regexp.Regexp, prefix string) matcher {
	return func(text string) (string, bool) {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 || m[1] == "" {
			return "", false
		}
		return prefix + m[1], true
	}
}

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

	// Brazilian numbers with optional +55/0055 country code and area code
	countryPhonePattern = regexp.MustCompile(`(?:(?:\+|00)?55\s?)?\(?[1-9][0-9]\)?\s?(?:9\d|[2-9])\d{3}-?\d{4}`)
	genericPhonePattern = regexp.MustCompile(`(?:\+\d{1,3}[\s-]?)?\(?\d{2,3}\)?[\s-]?\d{3,5}[\s-]?\d{4}`)

	linkedInPattern = regexp.MustCompile(`(?i)linkedin\.com/in/([A-Za-z0-9_-]+)`)
	gitHubPattern   = regexp.MustCompile(`(?i)github\.com/([A-Za-z0-9-]+)`)

	nameTokenPattern = regexp.MustCompile(`^\p{L}+(?:['’-]\p{L}+)*$`)
)

var (
	emailRules    = []matcher{regexRule(emailPattern)}
	phoneRules    = []matcher{regexRule(countryPhonePattern), regexRule(genericPhonePattern)}
	linkedInRules = []matcher{canonicalRule(linkedInPattern, "linkedin.com/in/")}
	gitHubRules   = []matcher{canonicalRule(gitHubPattern, "github.com/")}
)

// looksLikeName accepts 2 to 4 alphabetic tokens with no digits or '@'
func looksLikeName(line string) bool {
	if strings.ContainsRune(line, '@') || strings.ContainsFunc(line, unicode.IsDigit) {
		return false
	}
	tokens := strings.Fields(line)
	if len(tokens) < 2 || len(tokens) > 4 {
		return false
	}
	for _, tok := range tokens {
		if !nameTokenPattern.MatchString(tok) {
			return false
		}
	}
	return true
}

const (
	monthToken   = `\b(?:jan(?:eiro|uary)?|fev(?:ereiro)?|feb(?:rero|ruary)?|mar(?:ço|ch|zo)?|abr(?:il)?|apr(?:il)?|` +
		`mai(?:o)?|may(?:o)?|jun(?:ho|e|io)?|jul(?:ho|y|io)?|ago(?:sto)?|aug(?:ust)?|set(?:embro)?|` +
		`sep(?:t|tember|tiembre)?|out(?:ubro)?|oct(?:ober|ubre)?|nov(?:embro|ember|iembre)?|` +
		`dez(?:embro)?|dec(?:ember)?|dic(?:iembre)?|ene(?:ro)?)\.?`
	yearToken    = `\b(?:19|20)\d{2}\b`
	dateToken    = `(?:(?:` + monthToken + `\s*(?:de\s+|/\s*)?)?` + yearToken + `|\d{1,2}/` + yearToken + `)`
	presentToken = `(?:present|presente|atual|actual|current|now|hoje|today|o momento)`
)

var (
	dateRangePattern = regexp.MustCompile(`(?i)(` + dateToken + `)\s*(?:-|–|—|to|até|a|hasta)\s*(` + dateToken + `|` + presentToken + `)`)
	datePattern      = regexp.MustCompile(`(?i)` + dateToken)
	bareMonthPattern = regexp.MustCompile(`(?i)` + monthToken + `(?:\s|$)`)

	separatorPattern = regexp.MustCompile(`\s+[-–—|]\s+|\s*@\s*|\s*,\s*`)
	bulletPrefixes   = []string{"•", "·", "▪", "◦", "* ", "- ", "– ", "— "}
)

// dates is a date range found on a line
type dates struct {
	start, end string
	current    bool
}

// splitDates removes the first date range or single date from line
func splitDates(line string) (string, dates, bool) {
	if m := dateRangePattern.FindStringSubmatchIndex(line); m != nil {
		d := dates{start: line[m[2]:m[3]], end: line[m[4]:m[5]]}
		if !datePattern.MatchString(d.end) {
			d.current = true
			d.end = ""
		}
		return line[:m[0]] + line[m[1]:], d, true
	}
	if m := datePattern.FindStringIndex(line); m != nil {
		return line[:m[0]] + line[m[1]:], dates{start: line[m[0]:m[1]]}, true
	}
	return line, dates{}, false
}

// hasLetters reports whether s still carries words after dates are removed
func hasLetters(s string) bool {
	return strings.ContainsFunc(s, unicode.IsLetter)
}

// isBareDate reports whether a line only holds dates and punctuation
func isBareDate(line string) bool {
	rest, _, found := splitDates(line)
	if !found {
		short := len([]rune(line)) <= 20
		return short && bareMonthPattern.MatchString(line) && !hasLetters(bareMonthPattern.ReplaceAllString(line, ""))
	}
	return !hasLetters(rest)
}

func isBullet(line string) bool {
	for _, p := range bulletPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

func stripBullet(line string) string {
	for _, p := range bulletPrefixes {
		if strings.HasPrefix(line, p) {
			return strings.TrimSpace(strings.TrimPrefix(line, p))
		}
	}
	return line
}

// splitParts splits an entry line on the separator set and drops empty parts
func splitParts(line string) []string {
	var parts []string
	for _, p := range separatorPattern.Split(line, -1) {
		p = strings.Trim(p, " \t()[]")
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
