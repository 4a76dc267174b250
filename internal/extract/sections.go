package extract

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

type section string

const (
	sectionNone           section = ""
	sectionSummary        section = "summary"
	sectionExperience     section = "experience"
	sectionEducation      section = "education"
	sectionSkills         section = "skills"
	sectionProjects       section = "projects"
	sectionLanguages      section = "languages"
	sectionCertifications section = "certifications"
)

type headingKeyword struct {
	keyword string
	section section
}

// headingKeywords is sorted longest first so "professional experience" wins
// over "professional summary" style prefixes.
var headingKeywords = sortedHeadings(map[section][]string{
	sectionSummary: {
		"summary", "professional summary", "profile", "professional profile", "about", "about me",
		"objective", "resumo", "resumo profissional", "sobre", "sobre mim", "perfil", "perfil profissional",
		"objetivo", "resumen", "resumen profesional", "acerca de mí", "acerca de mi",
	},
	sectionExperience: {
		"experience", "work experience", "professional experience", "employment history", "work history",
		"experiência", "experiências", "experiência profissional", "experiências profissionais",
		"experiencia", "experiencias", "experiencia laboral", "experiencia profesional", "histórico profissional",
	},
	sectionEducation: {
		"education", "academic background", "academic", "formação", "formação acadêmica", "educação",
		"educación", "formación", "formacion", "formación académica", "escolaridade",
	},
	sectionSkills: {
		"skills", "technical skills", "core skills", "habilidades", "competências", "competencias",
		"competences", "conhecimentos", "tecnologias", "technologies", "tech stack",
	},
	sectionProjects: {
		"projects", "project", "personal projects", "projetos", "projeto", "proyectos",
	},
	sectionLanguages: {
		"languages", "idiomas", "línguas", "linguas",
	},
	sectionCertifications: {
		"certifications", "certificates", "certificações", "certificados", "certificaciones",
		"courses", "cursos",
	},
})

func sortedHeadings(m map[section][]string) []headingKeyword {
	var out []headingKeyword
	for sec, kws := range m {
		for _, kw := range kws {
			out = append(out, headingKeyword{keyword: kw, section: sec})
		}
	}
	slices.SortFunc(out, func(a, b headingKeyword) int {
		if d := utf8.RuneCountInString(b.keyword) - utf8.RuneCountInString(a.keyword); d != 0 {
			return d
		}
		return strings.Compare(a.keyword, b.keyword)
	})
	return out
}

const maxHeadingRunes = 40

// heading classifies a line. inline carries content written on the heading
// line itself, as in "Skills: Go, SQL".
func heading(line string) (sec section, inline string) {
	line = strings.TrimSpace(line)
	lower := strings.TrimLeft(strings.ToLower(line), "#*•· ")

	for _, hk := range headingKeywords {
		if !strings.HasPrefix(lower, hk.keyword) {
			continue
		}
		rest := strings.TrimLeft(lower[len(hk.keyword):], " ")
		switch {
		case rest == "":
			return hk.section, ""
		case strings.HasPrefix(rest, ":"):
			return hk.section, after(line, ":")
		case strings.HasPrefix(rest, "- "), strings.HasPrefix(rest, "– "), strings.HasPrefix(rest, "— "):
			sep, _ := utf8.DecodeRuneInString(rest)
			return hk.section, after(line, string(sep))
		case len(rest) < len(lower)-len(hk.keyword) && shortTitle(line):
			// keyword followed by more words, e.g. "SKILLS & TOOLS"
			return hk.section, ""
		}
	}
	return sectionNone, ""
}

// after returns the trimmed text following the first sep in line
func after(line, sep string) string {
	_, tail, _ := strings.Cut(line, sep)
	return strings.TrimSpace(tail)
}

// shortTitle accepts lines such as "SKILLS & TOOLS" or "Work Experience"
func shortTitle(line string) bool {
	if utf8.RuneCountInString(line) > maxHeadingRunes || strings.ContainsAny(line, ".,;") {
		return false
	}
	if !strings.ContainsFunc(line, unicode.IsLower) {
		return true
	}
	return len(strings.Fields(line)) <= 3
}

// window is the content of one section: the inline heading content, if any,
// followed by the lines below the heading.
type window struct {
	found bool
	lines []string
}

// sectionWindows finds the first heading of every section and collects its
// content up to the next heading of a different section or maxLines lines.
func sectionWindows(lines []string, maxLines int) map[section]window {
	windows := make(map[section]window)
	for i, line := range lines {
		sec, inline := heading(line)
		if sec == sectionNone {
			continue
		}
		if _, seen := windows[sec]; seen {
			continue
		}
		var content []string
		if inline != "" {
			content = append(content, inline)
		}
		windows[sec] = window{found: true, lines: collect(lines[i+1:], sec, maxLines, content)}
	}
	return windows
}

func collect(lines []string, sec section, maxLines int, acc []string) []string {
	for n, line := range lines {
		if n >= maxLines {
			break
		}
		next, inline := heading(line)
		if next != sectionNone && next != sec {
			break
		}
		if next == sec {
			if inline != "" {
				acc = append(acc, inline)
			}
			continue
		}
		acc = append(acc, line)
	}
	return acc
}
