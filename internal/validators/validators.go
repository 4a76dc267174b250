// Package validators holds the field checks shared by the ATS engine and
// the import pipeline. Every function is total: invalid input yields false
// or a poor result, never a panic.
package validators

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	emailPattern    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern    = regexp.MustCompile(`^\+?[\d\s\-().]+$`)
	bareHostPattern = regexp.MustCompile(`(?i)^(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}(?::\d{1,5})?(?:[/?#]\S*)?$`)

	linkedInPathPattern   = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.|[a-z]{2}\.)?linkedin\.com/in/[\p{L}\d_-]+/?(?:[?#]\S*)?$`)
	linkedInHandlePattern = regexp.MustCompile(`^@?[\p{L}\d_-]{3,100}/?$`)
	gitHubPathPattern     = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?github\.com/[a-z\d](?:[a-z\d-]{0,38})(?:[/?#]\S*)?$`)
	gitHubHandlePattern   = regexp.MustCompile(`(?i)^@?[a-z\d](?:[a-z\d-]{0,38})$`)
)

const (
	minPhoneDigits = 8
	maxPhoneDigits = 13
)

// Email reports whether s looks like local@domain.tld
func Email(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

// Phone accepts an optional leading "+" and digit groups separated by
// spaces, dashes, dots or parentheses, with 8 to 13 digits in total.
func Phone(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || !phonePattern.MatchString(s) {
		return false
	}
	if strings.LastIndex(s, "+") > 0 {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= minPhoneDigits && digits <= maxPhoneDigits
}

// URL accepts the empty string, a scheme://host URL or a bare host.tld form.
func URL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	if strings.ContainsAny(s, " \t\n") {
		return false
	}
	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		return err == nil && u.Scheme != "" && u.Host != ""
	}
	return bareHostPattern.MatchString(s)
}

// LinkedIn accepts the empty string, a linkedin.com/in/<handle> URL or a bare handle
func LinkedIn(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	return linkedInPathPattern.MatchString(s) || linkedInHandlePattern.MatchString(s)
}

// GitHub accepts the empty string, a github.com/<handle> URL or a bare handle
func GitHub(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	return gitHubPathPattern.MatchString(s) || gitHubHandlePattern.MatchString(s)
}

// RequiredField reports whether s has content after trimming
func RequiredField(s string) bool {
	return strings.TrimSpace(s) != ""
}

// Quality buckets free text by length
type Quality string

const (
	QualityGood Quality = "good"
	QualityFair Quality = "fair"
	QualityPoor Quality = "poor"
)

// Message keys returned with a length result, resolvable through a message catalog
const (
	KeyDescriptionTooShort = "description.too_short"
	KeyDescriptionFair     = "description.fair"
	KeyDescriptionGood     = "description.good"
	KeyDescriptionTooLong  = "description.too_long"
)

// LengthThresholds are the rune counts separating the quality buckets
type LengthThresholds struct {
	Min  int `mapstructure:"min"`  // below: poor
	Good int `mapstructure:"good"` // at or above: good
	Max  int `mapstructure:"max"`  // above: fair again
}

// DefaultLengthThresholds are used when no thresholds are configured
var DefaultLengthThresholds = LengthThresholds{Min: 100, Good: 200, Max: 2000}

// LengthResult is the outcome of a length check. Message is in English;
// Key can be used to look up a localized variant.
type LengthResult struct {
	Score   Quality `json:"score"`
	Message string  `json:"message"`
	Key     string  `json:"key"`
}

// DescriptionLength buckets s using DefaultLengthThresholds
func DescriptionLength(s string) LengthResult {
	return DefaultLengthThresholds.Check(s)
}

// Check buckets s by its trimmed rune count
func (t LengthThresholds) Check(s string) LengthResult {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	switch {
	case n < t.Min:
		return LengthResult{Score: QualityPoor, Key: KeyDescriptionTooShort,
			Message: "Description is too short, add more detail"}
	case n < t.Good:
		return LengthResult{Score: QualityFair, Key: KeyDescriptionFair,
			Message: "Description could be more detailed"}
	case t.Max > 0 && n > t.Max:
		return LengthResult{Score: QualityFair, Key: KeyDescriptionTooLong,
			Message: "Description is too long, consider condensing it"}
	default:
		return LengthResult{Score: QualityGood, Key: KeyDescriptionGood,
			Message: "Description has a good length"}
	}
}

// ATSKeywords counts how many distinct keywords occur in text at least once.
// Matching ignores case and requires the keyword to be delimited by
// non-alphanumeric characters on both sides.
func ATSKeywords(text string, keywords []string) int {
	if strings.TrimSpace(text) == "" || len(keywords) == 0 {
		return 0
	}
	haystack := strings.ToLower(text)
	seen := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		needle := strings.ToLower(strings.TrimSpace(kw))
		if needle == "" {
			continue
		}
		if _, dup := seen[needle]; dup {
			continue
		}
		if containsWord(haystack, needle) {
			seen[needle] = struct{}{}
		}
	}
	return len(seen)
}

func containsWord(haystack, needle string) bool {
	for offset := 0; offset <= len(haystack)-len(needle); {
		i := strings.Index(haystack[offset:], needle)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(needle)
		if boundaryBefore(haystack, start) && boundaryAfter(haystack, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(haystack[start:])
		offset = start + size
	}
	return false
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
