package orders

import (
	"strings"
	"testing"

	"resumeats/internal/ats"
	"resumeats/internal/resume"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument(templateKey string) Document {
	record := resume.NewRecord()
	record.Personal = resume.PersonalInfo{Name: "Ana <Souza>", Email: "ana@example.com", Phone: "11 91234-5678"}
	record.Summary = "Engenheira de software"
	record.Experience = []resume.Experience{{ID: "1", Company: "Acme", Position: "Backend", StartDate: "2020-01", Current: true}}
	record.Skills = []resume.Skill{{ID: "1", Name: "Go"}, {ID: "2", Name: "SQL"}}
	return Document{TemplateKey: templateKey, Record: record, Report: ats.Analyze(record, ats.LocalePT)}
}

func TestRenderHTML_AllTemplates(t *testing.T) {
	for _, key := range Templates {
		t.Run(key, func(t *testing.T) {
			doc := sampleDocument(key)
			html, err := RenderHTML(doc)
			require.NoError(t, err)

			out := string(html)
			assert.Contains(t, out, "Ana &lt;Souza&gt;")
			assert.Contains(t, out, "Backend - Acme")
			assert.Contains(t, out, "Go, SQL")
			assert.Contains(t, out, "Pontuação ATS:")
			assert.Contains(t, out, templateStyles[key].Accent)
		})
	}
}

func TestRenderHTML_FollowsSectionOrder(t *testing.T) {
	doc := sampleDocument(TemplateSimple)
	doc.Record.SectionOrder = []string{resume.SectionSkills, resume.SectionSummary, resume.SectionExperience}

	html, err := RenderHTML(doc)
	require.NoError(t, err)

	out := string(html)
	skills := strings.Index(out, "Habilidades")
	summary := strings.Index(out, "Resumo Profissional")
	experience := strings.Index(out, "Experiência Profissional")
	require.True(t, skills >= 0 && summary >= 0 && experience >= 0)
	assert.Less(t, skills, summary)
	assert.Less(t, summary, experience)
}

func TestRenderHTML_SkipsEmptySections(t *testing.T) {
	doc := sampleDocument(TemplateOptimized)
	doc.Record.Projects = nil

	html, err := RenderHTML(doc)
	require.NoError(t, err)
	assert.NotContains(t, string(html), "Projetos")
}

func TestRenderHTML_FooterScore(t *testing.T) {
	doc := sampleDocument(TemplateCompact)
	doc.Report = ats.Report{Score: 42, MaxScore: 100, Percentage: 42}

	html, err := RenderHTML(doc)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Pontuação ATS: 42/100 (42%)")
}

func TestRenderHTML_UnknownTemplate(t *testing.T) {
	_, err := RenderHTML(sampleDocument("fancy"))
	assert.Error(t, err)
}
