package formatters

import (
	"strings"
	"testing"

	"resumeats/internal/ats"
	"resumeats/internal/resume"
)

func sampleReport() ats.Report {
	return ats.Report{
		Score:      70,
		MaxScore:   100,
		Percentage: 70,
		Feedback: []ats.Feedback{
			{Criterion: "personal", Section: "Personal Information", Status: ats.StatusGood, Message: "Name present", Points: 5},
			{Criterion: "summary", Section: "Professional Summary", Status: ats.StatusWarning, Message: "Too short | expand", Points: 5},
		},
		Recommendations: []string{"Use standard fonts"},
	}
}

func TestFormatterRegistry_Format(t *testing.T) {
	registry := NewFormatterRegistry()
	record := resume.NewRecord()
	record.Personal.Name = "Ana Souza"
	record.Skills = []resume.Skill{{Name: "Go"}, {Name: "SQL"}}
	partial := resume.PartialRecord{Personal: resume.PersonalInfo{Email: "ana@example.com"}}

	tests := []struct {
		name   string
		data   any
		format string
		want   []string
	}{
		{"report text", sampleReport(), "text", []string{"Score: 70/100 (70%)", "[OK] Personal Information: Name present (+5)", "- Use standard fonts"}},
		{"report markdown", sampleReport(), "markdown", []string{"# ATS Analysis", "| Professional Summary | warning | Too short \\| expand | 5 |"}},
		{"report json", sampleReport(), "json", []string{`"score": 70`, `"recommendations"`}},
		{"record text", record, "text", []string{"Name: Ana Souza", "Go, SQL"}},
		{"record markdown", record, "markdown", []string{"# Ana Souza", "## Skills"}},
		{"partial text", partial, "text", []string{"Email: ana@example.com"}},
		{"partial markdown", partial, "markdown", []string{"# Resume", "ana@example.com"}},
		{"any json", map[string]int{"a": 1}, "json", []string{`"a": 1`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := registry.Format(tt.data, tt.format)
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestFormatterRegistry_Unsupported(t *testing.T) {
	registry := NewFormatterRegistry()

	if _, err := registry.Format(map[string]int{}, "text"); err == nil {
		t.Error("expected error for text formatting of an unknown type")
	}
	if _, err := registry.Format(sampleReport(), "yaml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestFormatterRegistry_SupportedFormats(t *testing.T) {
	got := NewFormatterRegistry().GetSupportedFormats()
	want := []string{"json", "markdown", "text"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("GetSupportedFormats() = %v, want %v", got, want)
	}
}

func TestPeriod(t *testing.T) {
	tests := []struct {
		start, end string
		current    bool
		want       string
	}{
		{"2020", "2022", false, "2020 - 2022"},
		{"2020", "", true, "2020 - present"},
		{"2020", "", false, "2020"},
	}
	for _, tt := range tests {
		if got := period(tt.start, tt.end, tt.current); got != tt.want {
			t.Errorf("period(%q, %q, %v) = %q, want %q", tt.start, tt.end, tt.current, got, tt.want)
		}
	}
}
