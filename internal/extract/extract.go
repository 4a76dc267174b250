// Package extract turns loosely structured document text into a
// best-effort partial résumé record. Nothing here fails: a rule that does
// not match leaves its field empty.
package extract

import (
	"regexp"
	"strings"

	"resumeats/internal/resume"
)

// Limits bounds the output size regardless of input size
type Limits struct {
	NameScanLines    int `mapstructure:"nameScanLines"`
	SummaryLines     int `mapstructure:"summaryLines"`
	SummaryMaxRunes  int `mapstructure:"summaryMaxRunes"`
	WindowLines      int `mapstructure:"windowLines"`
	MaxSkills        int `mapstructure:"maxSkills"`
	MinSkillRunes    int `mapstructure:"minSkillRunes"`
	MaxSkillRunes    int `mapstructure:"maxSkillRunes"`
	MaxEntries       int `mapstructure:"maxEntries"`
	MaxLanguages     int `mapstructure:"maxLanguages"`
	EntryFieldRunes  int `mapstructure:"entryFieldRunes"`
	EntryLineRunes   int `mapstructure:"entryLineRunes"`
	ProjectRunes     int `mapstructure:"projectRunes"`
	DescriptionRunes int `mapstructure:"descriptionRunes"`
}

// DefaultLimits are used for every zero field of a Limits value
var DefaultLimits = Limits{
	NameScanLines:    6,
	SummaryLines:     3,
	SummaryMaxRunes:  800,
	WindowLines:      20,
	MaxSkills:        60,
	MinSkillRunes:    2,
	MaxSkillRunes:    40,
	MaxEntries:       5,
	MaxLanguages:     10,
	EntryFieldRunes:  120,
	EntryLineRunes:   200,
	ProjectRunes:     80,
	DescriptionRunes: 1000,
}

func (l Limits) withDefaults() Limits {
	fill := func(v *int, d int) {
		if *v <= 0 {
			*v = d
		}
	}
	fill(&l.NameScanLines, DefaultLimits.NameScanLines)
	fill(&l.SummaryLines, DefaultLimits.SummaryLines)
	fill(&l.SummaryMaxRunes, DefaultLimits.SummaryMaxRunes)
	fill(&l.WindowLines, DefaultLimits.WindowLines)
	fill(&l.MaxSkills, DefaultLimits.MaxSkills)
	fill(&l.MinSkillRunes, DefaultLimits.MinSkillRunes)
	fill(&l.MaxSkillRunes, DefaultLimits.MaxSkillRunes)
	fill(&l.MaxEntries, DefaultLimits.MaxEntries)
	fill(&l.MaxLanguages, DefaultLimits.MaxLanguages)
	fill(&l.EntryFieldRunes, DefaultLimits.EntryFieldRunes)
	fill(&l.EntryLineRunes, DefaultLimits.EntryLineRunes)
	fill(&l.ProjectRunes, DefaultLimits.ProjectRunes)
	fill(&l.DescriptionRunes, DefaultLimits.DescriptionRunes)
	return l
}

// Extractor runs the heuristic rules. The zero value is not usable; call New.
type Extractor struct {
	limits Limits
	newID  func() string
}

// Option configures an Extractor
type Option func(*Extractor)

// WithLimits overrides the default limits; zero fields keep their default
func WithLimits(l Limits) Option {
	return func(e *Extractor) { e.limits = l.withDefaults() }
}

// WithIDGenerator replaces resume.NewID, mainly for tests
func WithIDGenerator(fn func() string) Option {
	return func(e *Extractor) {
		if fn != nil {
			e.newID = fn
		}
	}
}

// New returns an Extractor with DefaultLimits
func New(opts ...Option) *Extractor {
	e := &Extractor{limits: DefaultLimits, newID: resume.NewID}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var lineBreak = regexp.MustCompile(`\r?\n|\r`)

// Extract parses text into a partial record
func (e *Extractor) Extract(text string) resume.PartialRecord {
	lines := splitLines(text)
	if len(lines) == 0 {
		return resume.PartialRecord{}
	}

	windows := sectionWindows(lines, e.limits.WindowLines)

	return resume.PartialRecord{
		Personal: resume.PersonalInfo{
			Name:     e.name(lines),
			Email:    firstMatch(text, emailRules...),
			Phone:    firstMatch(text, phoneRules...),
			LinkedIn: firstMatch(text, linkedInRules...),
			GitHub:   firstMatch(text, gitHubRules...),
		},
		Summary:    e.summary(lines, windows[sectionSummary]),
		Skills:     e.skills(windows[sectionSkills].lines),
		Experience: e.experience(windows[sectionExperience].lines),
		Education:  e.education(windows[sectionEducation].lines),
		Projects:   e.projects(windows[sectionProjects].lines),
		Languages:  e.languages(windows[sectionLanguages].lines),
	}
}

// Extract parses text with a default Extractor
func Extract(text string) resume.PartialRecord {
	return New().Extract(text)
}

func splitLines(text string) []string {
	var lines []string
	for _, l := range lineBreak.Split(text, -1) {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// documentTitles are title lines that look like names but never are
var documentTitles = map[string]bool{
	"curriculum vitae": true,
	"currículo vitae":  true,
	"curriculum vitæ":  true,
	"hoja de vida":     true,
}

func (e *Extractor) name(lines []string) string {
	for _, line := range lines[:min(len(lines), e.limits.NameScanLines)] {
		if sec, _ := heading(line); sec != sectionNone || documentTitles[strings.ToLower(line)] {
			continue
		}
		if looksLikeName(line) {
			return line
		}
	}
	return ""
}

// summary prefers an explicit summary section and falls back to the
// opening lines of the document, stopping at the first section heading
func (e *Extractor) summary(lines []string, w window) string {
	if w.found && len(w.lines) > 0 {
		return truncate(strings.Join(w.lines, " "), e.limits.SummaryMaxRunes)
	}

	var source []string
	for _, line := range lines[:min(len(lines), e.limits.SummaryLines)] {
		if sec, _ := heading(line); sec != sectionNone {
			break
		}
		source = append(source, line)
	}
	return truncate(strings.Join(source, " "), e.limits.SummaryMaxRunes)
}
