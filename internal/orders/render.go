package orders

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"slices"

	"resumeats/internal/ats"
	"resumeats/internal/resume"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Document is everything a template needs to render an order
type Document struct {
	TemplateKey string
	Record      resume.Record
	Report      ats.Report
}

// Renderer turns a document into PDF bytes
type Renderer interface {
	Render(ctx context.Context, doc Document) ([]byte, error)
}

type templateStyle struct {
	Accent    string
	FontSize  string
	TwoColumn bool
}

var templateStyles = map[string]templateStyle{
	TemplateOptimized:    {Accent: "#1f4e79", FontSize: "11pt"},
	TemplateCompact:      {Accent: "#333333", FontSize: "9.5pt"},
	TemplateSimple:       {Accent: "#000000", FontSize: "11pt"},
	TemplateTwoColumn:    {Accent: "#2e7d32", FontSize: "10pt", TwoColumn: true},
	TemplateProfessional: {Accent: "#5b2c6f", FontSize: "10.5pt"},
}

var sectionHeadings = map[string]string{
	resume.SectionSummary:        "Resumo Profissional",
	resume.SectionExperience:     "Experiência Profissional",
	resume.SectionEducation:      "Formação Acadêmica",
	resume.SectionSkills:         "Habilidades",
	resume.SectionLanguages:      "Idiomas",
	resume.SectionCertifications: "Certificações",
	resume.SectionProjects:       "Projetos",
}

// sections rendered in the narrow column of the two-column layout
var sideSections = []string{resume.SectionSkills, resume.SectionLanguages, resume.SectionCertifications}

//go:embed templates/resume.html.tmpl
var resumeTemplate string

var htmlTemplate = template.Must(template.New("resume").Parse(resumeTemplate))

type sectionView struct {
	Key     string
	Heading string
	Record  resume.Record
}

type pageView struct {
	Record resume.Record
	Report ats.Report
	Style  templateStyle
	Main   []string
	Side   []string
}

// Section is called from the template to build the view of one section
func (p pageView) Section(key string) sectionView {
	return sectionView{Key: key, Heading: sectionHeadings[key], Record: p.Record}
}

// RenderHTML renders the print layout of doc
func RenderHTML(doc Document) ([]byte, error) {
	style, ok := templateStyles[doc.TemplateKey]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", doc.TemplateKey)
	}

	record := doc.Record.Normalize()
	view := pageView{Record: record, Report: doc.Report, Style: style}
	for _, key := range record.SectionOrder {
		if _, known := sectionHeadings[key]; !known {
			continue
		}
		if style.TwoColumn && slices.Contains(sideSections, key) {
			view.Side = append(view.Side, key)
		} else {
			view.Main = append(view.Main, key)
		}
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("failed to render template %s: %w", doc.TemplateKey, err)
	}
	return buf.Bytes(), nil
}

// ChromeRenderer prints the HTML layout to PDF with headless Chrome
type ChromeRenderer struct {
	execPath string
}

// NewChromeRenderer creates a renderer. An empty execPath lets chromedp
// find the browser.
func NewChromeRenderer(execPath string) *ChromeRenderer {
	return &ChromeRenderer{execPath: execPath}
}

func (r *ChromeRenderer) Render(ctx context.Context, doc Document) ([]byte, error) {
	html, err := RenderHTML(doc)
	if err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0.5).
				WithMarginBottom(0.5).
				WithMarginLeft(0.5).
				WithMarginRight(0.5).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("browser rendering failed: %w", err)
	}

	return pdf, nil
}
