// Package ats scores a résumé record for Applicant Tracking System
// compatibility. Scoring is a pure function of the record; the locale only
// selects message text.
package ats

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"resumeats/internal/resume"
	"resumeats/internal/validators"
)

// Status of a feedback entry
type Status string

const (
	StatusGood    Status = "good"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Criterion identifies the rubric group a feedback entry belongs to
type Criterion string

const (
	CriterionPersonal   Criterion = "personal"
	CriterionSummary    Criterion = "summary"
	CriterionExperience Criterion = "experience"
	CriterionEducation  Criterion = "education"
	CriterionSkills     Criterion = "skills"
	CriterionKeywords   Criterion = "keywords"
)

// Criteria lists the rubric groups in evaluation order
var Criteria = []Criterion{
	CriterionPersonal,
	CriterionSummary,
	CriterionExperience,
	CriterionEducation,
	CriterionSkills,
	CriterionKeywords,
}

// MaxScore is the fixed point budget of the rubric
const MaxScore = 100

// Rubric points
const (
	pointsName     = 5
	pointsEmail    = 5
	pointsPhone    = 5
	pointsLinkedIn = 3
	pointsGitHub   = 2

	pointsSummaryGood = 15
	pointsSummaryFair = 10
	pointsSummaryPoor = 5

	pointsExperienceBase     = 10
	pointsExperienceDetail   = 3
	maxExperienceDetail      = 15
	experienceGoodThreshold  = 20
	pointsEducationEntry     = 7
	maxEducation             = 15
	pointsSkillEntry         = 3
	pointsSkillsFull         = 15
	skillsFullCount          = 5
	pointsKeywordsHigh       = 10
	pointsKeywordsMedium     = 7
	pointsKeywordsLow        = 3
	keywordsHighThreshold    = 10
	keywordsMediumThreshold  = 5
	defaultExperienceMinimum = 50
)

// Feedback is one rubric observation
type Feedback struct {
	Criterion Criterion `json:"criterion"`
	Section   string    `json:"section"`
	Status    Status    `json:"status"`
	Message   string    `json:"message"`
	Points    int       `json:"points"`
}

// Report is the outcome of an analysis
type Report struct {
	Score           int        `json:"score"`
	MaxScore        int        `json:"maxScore"`
	Percentage      int        `json:"percentage"`
	Feedback        []Feedback `json:"feedback"`
	Recommendations []string   `json:"recommendations"`
	Locale          Locale     `json:"locale"`
}

// Points returns the sum of points earned for a criterion
func (r Report) Points(c Criterion) int {
	total := 0
	for _, f := range r.Feedback {
		if f.Criterion == c {
			total += f.Points
		}
	}
	return total
}

// HasStatus reports whether any feedback entry has the given status
func (r Report) HasStatus(s Status) bool {
	return slices.ContainsFunc(r.Feedback, func(f Feedback) bool { return f.Status == s })
}

// Count returns the number of feedback entries with the given status
func (r Report) Count(s Status) int {
	n := 0
	for _, f := range r.Feedback {
		if f.Status == s {
			n++
		}
	}
	return n
}

// Options tunes the heuristic constants of an Engine
type Options struct {
	Messages Messages
	Keywords []string
	// SummaryLength buckets the professional summary
	SummaryLength validators.LengthThresholds
	// ExperienceDescriptionMin is the rune count an experience description
	// must exceed to earn detail credit
	ExperienceDescriptionMin int
	DefaultLocale            Locale
}

// Engine scores records. It is safe for concurrent use.
type Engine struct {
	messages      Messages
	keywords      atomic.Pointer[[]string]
	summaryLength validators.LengthThresholds
	experienceMin int
	defaultLocale Locale
}

// NewEngine builds an Engine, filling unset options with defaults
func NewEngine(opts Options) *Engine {
	e := &Engine{
		messages:      opts.Messages,
		summaryLength: opts.SummaryLength,
		experienceMin: opts.ExperienceDescriptionMin,
		defaultLocale: opts.DefaultLocale,
	}
	if e.messages == nil {
		e.messages = DefaultCatalog
	}
	if e.summaryLength == (validators.LengthThresholds{}) {
		e.summaryLength = validators.DefaultLengthThresholds
	}
	if e.experienceMin <= 0 {
		e.experienceMin = defaultExperienceMinimum
	}
	if parsed, ok := ParseLocale(string(e.defaultLocale)); ok {
		e.defaultLocale = parsed
	} else {
		e.defaultLocale = LocalePT
	}
	keywords := opts.Keywords
	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	e.SetKeywords(keywords)
	return e
}

var defaultEngine = NewEngine(Options{})

// Analyze scores record with the default engine
func Analyze(record resume.Record, locale Locale) Report {
	return defaultEngine.Analyze(record, locale)
}

// SetKeywords swaps the keyword list used by subsequent analyses
func (e *Engine) SetKeywords(keywords []string) {
	list := slices.Clone(keywords)
	e.keywords.Store(&list)
}

// Keywords returns a copy of the active keyword list
func (e *Engine) Keywords() []string {
	return slices.Clone(*e.keywords.Load())
}

// Analyze scores record. The record is not modified.
func (e *Engine) Analyze(record resume.Record, locale Locale) Report {
	if parsed, ok := ParseLocale(string(locale)); ok {
		locale = parsed
	} else {
		locale = e.defaultLocale
	}
	a := &analysis{engine: e, locale: locale, keywords: *e.keywords.Load()}

	a.personal(record.Personal)
	a.summary(record.Summary)
	a.experience(record.Experience)
	a.education(record.Education)
	a.skills(record.Skills)
	a.keywordDensity(record)

	score := 0
	for _, f := range a.feedback {
		score += f.Points
	}

	return Report{
		Score:           score,
		MaxScore:        MaxScore,
		Percentage:      int(math.Round(float64(score) / MaxScore * 100)),
		Feedback:        a.feedback,
		Recommendations: a.recommendations(),
		Locale:          locale,
	}
}

// analysis accumulates feedback for a single Analyze call
type analysis struct {
	engine   *Engine
	locale   Locale
	keywords []string
	feedback []Feedback
}

func (a *analysis) msg(key string, args ...any) string {
	text := a.engine.messages.Lookup(a.locale, key)
	if text == "" {
		text = key
	}
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}

var sectionKeys = map[Criterion]string{
	CriterionPersonal:   keySectionPersonal,
	CriterionSummary:    keySectionSummary,
	CriterionExperience: keySectionExperience,
	CriterionEducation:  keySectionEducation,
	CriterionSkills:     keySectionSkills,
	CriterionKeywords:   keySectionKeywords,
}

func (a *analysis) add(c Criterion, status Status, points int, message string) {
	a.feedback = append(a.feedback, Feedback{
		Criterion: c,
		Section:   a.msg(sectionKeys[c]),
		Status:    status,
		Message:   message,
		Points:    points,
	})
}

// required emits good with points when ok, error with zero points otherwise
func (a *analysis) required(ok bool, points int, okKey, missingKey string) {
	if ok {
		a.add(CriterionPersonal, StatusGood, points, a.msg(okKey))
		return
	}
	a.add(CriterionPersonal, StatusError, 0, a.msg(missingKey))
}

func (a *analysis) personal(p resume.PersonalInfo) {
	a.required(validators.RequiredField(p.Name), pointsName, keyNameOK, keyNameMissing)
	a.required(validators.RequiredField(p.Email) && validators.Email(p.Email), pointsEmail, keyEmailOK, keyEmailMissing)
	a.required(validators.RequiredField(p.Phone) && validators.Phone(p.Phone), pointsPhone, keyPhoneOK, keyPhoneMissing)

	if validators.RequiredField(p.LinkedIn) && validators.LinkedIn(p.LinkedIn) {
		a.add(CriterionPersonal, StatusGood, pointsLinkedIn, a.msg(keyLinkedInOK))
	}
	if validators.RequiredField(p.GitHub) && validators.GitHub(p.GitHub) {
		a.add(CriterionPersonal, StatusGood, pointsGitHub, a.msg(keyGitHubOK))
	}
}

func (a *analysis) summary(summary string) {
	if !validators.RequiredField(summary) {
		a.add(CriterionSummary, StatusError, 0, a.msg(keySummaryMissing))
		return
	}

	result := a.engine.summaryLength.Check(summary)
	message := a.engine.messages.Lookup(a.locale, result.Key)
	if message == "" {
		message = result.Message
	}

	switch result.Score {
	case validators.QualityGood:
		a.add(CriterionSummary, StatusGood, pointsSummaryGood, message)
	case validators.QualityFair:
		a.add(CriterionSummary, StatusWarning, pointsSummaryFair, message)
	default:
		a.add(CriterionSummary, StatusWarning, pointsSummaryPoor, message)
	}
}

func (a *analysis) experience(items []resume.Experience) {
	if len(items) == 0 {
		a.add(CriterionExperience, StatusError, 0, a.msg(keyExperienceNone))
		return
	}

	detail := 0
	for _, exp := range items {
		if utf8.RuneCountInString(strings.TrimSpace(exp.Description)) > a.engine.experienceMin {
			detail += pointsExperienceDetail
		}
	}
	score := pointsExperienceBase + min(detail, maxExperienceDetail)

	status := StatusWarning
	if score >= experienceGoodThreshold {
		status = StatusGood
	}
	a.add(CriterionExperience, status, score, a.msg(keyExperienceCount, len(items), score))
}

func (a *analysis) education(items []resume.Education) {
	if len(items) == 0 {
		a.add(CriterionEducation, StatusWarning, 0, a.msg(keyEducationNone))
		return
	}
	score := min(len(items)*pointsEducationEntry, maxEducation)
	a.add(CriterionEducation, StatusGood, score, a.msg(keyEducationCount, len(items)))
}

func (a *analysis) skills(items []resume.Skill) {
	switch {
	case len(items) == 0:
		a.add(CriterionSkills, StatusError, 0, a.msg(keySkillsNone))
	case len(items) >= skillsFullCount:
		a.add(CriterionSkills, StatusGood, pointsSkillsFull, a.msg(keySkillsGood))
	default:
		a.add(CriterionSkills, StatusWarning, len(items)*pointsSkillEntry, a.msg(keySkillsFew))
	}
}

func (a *analysis) keywordDensity(record resume.Record) {
	blob := KeywordText(record)
	if strings.TrimSpace(blob) == "" {
		a.add(CriterionKeywords, StatusWarning, 0, a.msg(keyKeywordsNone))
		return
	}

	count := validators.ATSKeywords(blob, a.keywords)
	switch {
	case count >= keywordsHighThreshold:
		a.add(CriterionKeywords, StatusGood, pointsKeywordsHigh, a.msg(keyKeywordsHigh, count))
	case count >= keywordsMediumThreshold:
		a.add(CriterionKeywords, StatusWarning, pointsKeywordsMedium, a.msg(keyKeywordsMedium, count))
	default:
		a.add(CriterionKeywords, StatusWarning, pointsKeywordsLow, a.msg(keyKeywordsLow, count))
	}
}

// KeywordText concatenates the parts of a record scanned for keywords
func KeywordText(record resume.Record) string {
	parts := []string{record.Summary}
	for _, exp := range record.Experience {
		parts = append(parts, exp.Position+" "+exp.Company+" "+exp.Description)
	}
	for _, skill := range record.Skills {
		parts = append(parts, skill.Name)
	}
	for _, edu := range record.Education {
		parts = append(parts, edu.Degree+" "+edu.Field+" "+edu.Description)
	}
	return strings.Join(parts, " ")
}

func (a *analysis) recommendations() []string {
	var recs []string
	if slices.ContainsFunc(a.feedback, func(f Feedback) bool { return f.Status == StatusError }) {
		recs = append(recs, a.msg(keyRecFixErrors))
	}
	if slices.ContainsFunc(a.feedback, func(f Feedback) bool { return f.Status == StatusWarning }) {
		recs = append(recs, a.msg(keyRecImprovements))
	}
	return append(recs,
		a.msg(keyRecKeywords),
		a.msg(keyRecFormatting),
		a.msg(keyRecFonts),
		a.msg(keyRecPDF),
	)
}
