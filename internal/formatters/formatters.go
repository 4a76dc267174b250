package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"resumeats/internal/ats"
	"resumeats/internal/resume"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "Report", &ReportTextFormatter{})
	registry.RegisterFormatter("markdown", "Report", &ReportMarkdownFormatter{})
	registry.RegisterFormatter("text", "PartialRecord", &RecordTextFormatter{})
	registry.RegisterFormatter("markdown", "PartialRecord", &RecordMarkdownFormatter{})
	registry.RegisterFormatter("text", "Record", &RecordTextFormatter{})
	registry.RegisterFormatter("markdown", "Record", &RecordMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats in sorted order
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case ats.Report:
		return "Report"
	case resume.PartialRecord:
		return "PartialRecord"
	case resume.Record:
		return "Record"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

var statusMarks = map[ats.Status]string{
	ats.StatusGood:    "[OK]",
	ats.StatusWarning: "[!!]",
	ats.StatusError:   "[XX]",
}

// ReportTextFormatter handles text formatting for ATS reports
type ReportTextFormatter struct{}

func (rtf *ReportTextFormatter) Format(data any) (string, error) {
	report, ok := data.(ats.Report)
	if !ok {
		return "", fmt.Errorf("expected Report, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== ATS ANALYSIS ===\n")
	output.WriteString(fmt.Sprintf("Score: %d/%d (%d%%)\n\n", report.Score, report.MaxScore, report.Percentage))

	output.WriteString("=== FEEDBACK ===\n")
	for _, f := range report.Feedback {
		output.WriteString(fmt.Sprintf("%s %s: %s (+%d)\n", statusMarks[f.Status], f.Section, f.Message, f.Points))
	}

	if len(report.Recommendations) > 0 {
		output.WriteString("\n=== RECOMMENDATIONS ===\n")
		for _, rec := range report.Recommendations {
			output.WriteString("- " + rec + "\n")
		}
	}

	return output.String(), nil
}

func (rtf *ReportTextFormatter) SupportedType() string {
	return "Report"
}

// ReportMarkdownFormatter handles markdown formatting for ATS reports
type ReportMarkdownFormatter struct{}

func (rmf *ReportMarkdownFormatter) Format(data any) (string, error) {
	report, ok := data.(ats.Report)
	if !ok {
		return "", fmt.Errorf("expected Report, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# ATS Analysis\n\n")
	output.WriteString(fmt.Sprintf("**Score:** %d/%d (%d%%)\n\n", report.Score, report.MaxScore, report.Percentage))

	output.WriteString("## Feedback\n\n")
	output.WriteString("| Section | Status | Message | Points |\n")
	output.WriteString("|---|---|---|---|\n")
	for _, f := range report.Feedback {
		output.WriteString(fmt.Sprintf("| %s | %s | %s | %d |\n", f.Section, f.Status, escapeCell(f.Message), f.Points))
	}

	if len(report.Recommendations) > 0 {
		output.WriteString("\n## Recommendations\n\n")
		for _, rec := range report.Recommendations {
			output.WriteString("- " + rec + "\n")
		}
	}

	return output.String(), nil
}

func (rmf *ReportMarkdownFormatter) SupportedType() string {
	return "Report"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

// recordView is the common shape of full and partial records for display
type recordView struct {
	personal       resume.PersonalInfo
	summary        string
	experience     []resume.Experience
	education      []resume.Education
	skills         []resume.Skill
	languages      []resume.Language
	certifications []resume.Certification
	projects       []resume.Project
}

func viewOf(data any) (recordView, error) {
	switch r := data.(type) {
	case resume.Record:
		return recordView{r.Personal, r.Summary, r.Experience, r.Education, r.Skills, r.Languages, r.Certifications, r.Projects}, nil
	case resume.PartialRecord:
		return recordView{r.Personal, r.Summary, r.Experience, r.Education, r.Skills, r.Languages, r.Certifications, r.Projects}, nil
	default:
		return recordView{}, fmt.Errorf("expected Record or PartialRecord, got %T", data)
	}
}

func skillNames(skills []resume.Skill) string {
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}

func period(start, end string, current bool) string {
	switch {
	case current:
		return start + " - present"
	case end != "":
		return start + " - " + end
	default:
		return start
	}
}

// RecordTextFormatter handles text formatting for full and partial records
type RecordTextFormatter struct{}

func (rtf *RecordTextFormatter) Format(data any) (string, error) {
	v, err := viewOf(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== PERSONAL ===\n")
	writeField(&output, "Name", v.personal.Name)
	writeField(&output, "Position", v.personal.DesiredPosition)
	writeField(&output, "Email", v.personal.Email)
	writeField(&output, "Phone", v.personal.Phone)
	writeField(&output, "Address", v.personal.Address)
	writeField(&output, "LinkedIn", v.personal.LinkedIn)
	writeField(&output, "GitHub", v.personal.GitHub)
	writeField(&output, "Portfolio", v.personal.Portfolio)

	if v.summary != "" {
		output.WriteString("\n=== SUMMARY ===\n")
		output.WriteString(v.summary + "\n")
	}

	if len(v.experience) > 0 {
		output.WriteString("\n=== EXPERIENCE ===\n")
		for _, e := range v.experience {
			output.WriteString(fmt.Sprintf("- %s @ %s (%s)\n", e.Position, e.Company, period(e.StartDate, e.EndDate, e.Current)))
		}
	}

	if len(v.education) > 0 {
		output.WriteString("\n=== EDUCATION ===\n")
		for _, e := range v.education {
			output.WriteString(fmt.Sprintf("- %s, %s (%s)\n", e.Degree, e.Institution, period(e.StartDate, e.EndDate, e.Current)))
		}
	}

	if len(v.skills) > 0 {
		output.WriteString("\n=== SKILLS ===\n")
		output.WriteString(skillNames(v.skills) + "\n")
	}

	if len(v.languages) > 0 {
		output.WriteString("\n=== LANGUAGES ===\n")
		for _, l := range v.languages {
			output.WriteString(fmt.Sprintf("- %s (%s)\n", l.Name, l.Level))
		}
	}

	if len(v.certifications) > 0 {
		output.WriteString("\n=== CERTIFICATIONS ===\n")
		for _, c := range v.certifications {
			output.WriteString(fmt.Sprintf("- %s, %s\n", c.Name, c.Issuer))
		}
	}

	if len(v.projects) > 0 {
		output.WriteString("\n=== PROJECTS ===\n")
		for _, p := range v.projects {
			output.WriteString("- " + p.Name + "\n")
		}
	}

	return output.String(), nil
}

func writeField(output *strings.Builder, label, value string) {
	if value != "" {
		output.WriteString(fmt.Sprintf("%s: %s\n", label, value))
	}
}

func (rtf *RecordTextFormatter) SupportedType() string {
	return "Record"
}

// RecordMarkdownFormatter handles markdown formatting for full and partial records
type RecordMarkdownFormatter struct{}

func (rmf *RecordMarkdownFormatter) Format(data any) (string, error) {
	v, err := viewOf(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	name := v.personal.Name
	if name == "" {
		name = "Resume"
	}
	output.WriteString("# " + name + "\n\n")

	var contact []string
	for _, c := range []string{v.personal.Email, v.personal.Phone, v.personal.Address, v.personal.LinkedIn, v.personal.GitHub} {
		if c != "" {
			contact = append(contact, c)
		}
	}
	if len(contact) > 0 {
		output.WriteString(strings.Join(contact, " | ") + "\n\n")
	}

	if v.summary != "" {
		output.WriteString("## Summary\n\n" + v.summary + "\n\n")
	}

	if len(v.experience) > 0 {
		output.WriteString("## Experience\n\n")
		for _, e := range v.experience {
			output.WriteString(fmt.Sprintf("### %s - %s\n*%s*\n\n", e.Position, e.Company, period(e.StartDate, e.EndDate, e.Current)))
			if e.Description != "" {
				output.WriteString(e.Description + "\n\n")
			}
		}
	}

	if len(v.education) > 0 {
		output.WriteString("## Education\n\n")
		for _, e := range v.education {
			output.WriteString(fmt.Sprintf("- **%s**, %s (%s)\n", e.Degree, e.Institution, period(e.StartDate, e.EndDate, e.Current)))
		}
		output.WriteString("\n")
	}

	if len(v.skills) > 0 {
		output.WriteString("## Skills\n\n" + skillNames(v.skills) + "\n\n")
	}

	if len(v.languages) > 0 {
		output.WriteString("## Languages\n\n")
		for _, l := range v.languages {
			output.WriteString(fmt.Sprintf("- %s (%s)\n", l.Name, l.Level))
		}
		output.WriteString("\n")
	}

	if len(v.certifications) > 0 {
		output.WriteString("## Certifications\n\n")
		for _, c := range v.certifications {
			output.WriteString(fmt.Sprintf("- %s, %s\n", c.Name, c.Issuer))
		}
		output.WriteString("\n")
	}

	if len(v.projects) > 0 {
		output.WriteString("## Projects\n\n")
		for _, p := range v.projects {
			output.WriteString("- **" + p.Name + "**")
			if p.Technologies != "" {
				output.WriteString(" (" + p.Technologies + ")")
			}
			output.WriteString("\n")
		}
	}

	return strings.TrimRight(output.String(), "\n") + "\n", nil
}

func (rmf *RecordMarkdownFormatter) SupportedType() string {
	return "Record"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
