package resume

import (
	"github.com/google/uuid"
)

// Section keys used by SectionOrder
const (
	SectionSummary        = "summary"
	SectionExperience     = "experience"
	SectionEducation      = "education"
	SectionSkills         = "skills"
	SectionLanguages      = "languages"
	SectionCertifications = "certifications"
	SectionProjects       = "projects"
)

// DefaultSectionOrder is the render order of a freshly created record
var DefaultSectionOrder = []string{
	SectionSummary,
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionLanguages,
	SectionCertifications,
	SectionProjects,
}

// SkillLevel is the self-assessed level of a skill. The empty value means "not informed".
type SkillLevel string

const (
	SkillLevelNone         SkillLevel = ""
	SkillLevelBasic        SkillLevel = "basic"
	SkillLevelIntermediate SkillLevel = "intermediate"
	SkillLevelAdvanced     SkillLevel = "advanced"
	SkillLevelExpert       SkillLevel = "expert"
)

// LanguageLevel is the proficiency in a spoken language
type LanguageLevel string

const (
	LanguageLevelBasic        LanguageLevel = "basic"
	LanguageLevelIntermediate LanguageLevel = "intermediate"
	LanguageLevelAdvanced     LanguageLevel = "advanced"
	LanguageLevelFluent       LanguageLevel = "fluent"
	LanguageLevelNative       LanguageLevel = "native"
)

// PersonalInfo holds contact details. Name, email, phone and address are
// required for a full score but are not enforced as non-empty.
type PersonalInfo struct {
	Name            string `json:"name"`
	DesiredPosition string `json:"desiredPosition,omitempty"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Address         string `json:"address"`
	Portfolio       string `json:"portfolio,omitempty"`
	LinkedIn        string `json:"linkedin,omitempty"`
	GitHub          string `json:"github,omitempty"`
}

// IsZero reports whether every field is empty
func (p PersonalInfo) IsZero() bool {
	return p == PersonalInfo{}
}

type Experience struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type Education struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type Skill struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Level SkillLevel `json:"level,omitempty"`
}

type Language struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Level LanguageLevel `json:"level"`
}

type Certification struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Issuer      string `json:"issuer"`
	Date        string `json:"date"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
}

type Project struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Technologies string `json:"technologies"`
	Link         string `json:"link,omitempty"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Current      bool   `json:"current"`
}

// Record is the canonical résumé. It is owned by the caller; scoring and
// extraction only read it.
type Record struct {
	Personal       PersonalInfo    `json:"personal"`
	Summary        string          `json:"summary"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Skills         []Skill         `json:"skills"`
	Languages      []Language      `json:"languages"`
	Certifications []Certification `json:"certifications"`
	Projects       []Project       `json:"projects"`
	SectionOrder   []string        `json:"sectionOrder"`
}

// PartialRecord is the best-effort output of an import. Empty strings and
// empty slices mean "nothing found".
type PartialRecord struct {
	Personal       PersonalInfo    `json:"personal"`
	Summary        string          `json:"summary,omitempty"`
	Experience     []Experience    `json:"experience,omitempty"`
	Education      []Education     `json:"education,omitempty"`
	Skills         []Skill         `json:"skills,omitempty"`
	Languages      []Language      `json:"languages,omitempty"`
	Certifications []Certification `json:"certifications,omitempty"`
	Projects       []Project       `json:"projects,omitempty"`
}

// IsEmpty reports whether the import found nothing at all
func (p PartialRecord) IsEmpty() bool {
	return p.Personal.IsZero() &&
		p.Summary == "" &&
		len(p.Experience) == 0 &&
		len(p.Education) == 0 &&
		len(p.Skills) == 0 &&
		len(p.Languages) == 0 &&
		len(p.Certifications) == 0 &&
		len(p.Projects) == 0
}

// NewID returns a fresh identifier for a list item
func NewID() string {
	return uuid.NewString()
}

// NewRecord returns an empty record with the default section order
func NewRecord() Record {
	r := Record{SectionOrder: append([]string(nil), DefaultSectionOrder...)}
	return r.Normalize()
}

// Normalize returns a copy where absent collections are empty slices, so
// that a record decoded from partial JSON is scored as "nothing entered yet".
func (r Record) Normalize() Record {
	if r.Experience == nil {
		r.Experience = []Experience{}
	}
	if r.Education == nil {
		r.Education = []Education{}
	}
	if r.Skills == nil {
		r.Skills = []Skill{}
	}
	if r.Languages == nil {
		r.Languages = []Language{}
	}
	if r.Certifications == nil {
		r.Certifications = []Certification{}
	}
	if r.Projects == nil {
		r.Projects = []Project{}
	}
	if len(r.SectionOrder) == 0 {
		r.SectionOrder = append([]string(nil), DefaultSectionOrder...)
	}
	return r
}
