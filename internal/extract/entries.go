package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"resumeats/internal/resume"
)

// fold reduces lines into an accumulated value
func fold[S any](lines []string, init S, step func(S, string) S) S {
	acc := init
	for _, line := range lines {
		acc = step(acc, line)
	}
	return acc
}

var skillDelimiters = regexp.MustCompile(`[,/\\|;•·\-–—]`)

type skillAcc struct {
	names []string
	seen  map[string]bool
}

func (e *Extractor) skills(lines []string) []resume.Skill {
	acc := fold(lines, skillAcc{seen: map[string]bool{}}, func(acc skillAcc, line string) skillAcc {
		for _, tok := range skillDelimiters.Split(line, -1) {
			if len(acc.names) >= e.limits.MaxSkills {
				break
			}
			tok = strings.Trim(tok, " \t.*:()[]")
			n := utf8.RuneCountInString(tok)
			if n < e.limits.MinSkillRunes || n > e.limits.MaxSkillRunes {
				continue
			}
			key := strings.ToLower(tok)
			if acc.seen[key] {
				continue
			}
			acc.seen[key] = true
			acc.names = append(acc.names, tok)
		}
		return acc
	})

	var out []resume.Skill
	for _, name := range acc.names {
		out = append(out, resume.Skill{ID: e.newID(), Name: name})
	}
	return out
}

// entry is the shape shared by experience and education lines
type entry struct {
	parts       []string
	when        dates
	dated       bool
	description []string
}

// entries folds a section window into at most MaxEntries entries. Lines
// that split into two or more parts start an entry; bullets and sentences
// describe the previous entry; bare dates date it.
func (e *Extractor) entries(lines []string) []entry {
	return fold(lines, []entry(nil), func(acc []entry, line string) []entry {
		last := len(acc) - 1

		if isBullet(line) || isSentence(line, e.limits.EntryLineRunes) {
			if last >= 0 {
				acc[last].description = append(acc[last].description, stripBullet(line))
			}
			return acc
		}

		rest, when, found := splitDates(line)
		if !hasLetters(rest) || isBareDate(line) {
			if found && last >= 0 && !acc[last].dated {
				acc[last].when, acc[last].dated = when, true
			}
			return acc
		}

		parts := splitParts(rest)
		if len(parts) < 2 || len(acc) >= e.limits.MaxEntries {
			return acc
		}
		return append(acc, entry{parts: parts, when: when, dated: found})
	})
}

func isSentence(line string, maxRunes int) bool {
	return strings.HasSuffix(line, ".") || utf8.RuneCountInString(line) > maxRunes
}

func (e *Extractor) joinDescription(lines []string) string {
	return truncate(strings.Join(lines, "\n"), e.limits.DescriptionRunes)
}

func (e *Extractor) experience(lines []string) []resume.Experience {
	var out []resume.Experience
	for _, en := range e.entries(lines) {
		out = append(out, resume.Experience{
			ID:          e.newID(),
			Company:     truncate(en.parts[0], e.limits.EntryFieldRunes),
			Position:    truncate(en.parts[1], e.limits.EntryFieldRunes),
			StartDate:   en.when.start,
			EndDate:     en.when.end,
			Current:     en.when.current,
			Description: e.joinDescription(en.description),
		})
	}
	return out
}

func (e *Extractor) education(lines []string) []resume.Education {
	var out []resume.Education
	for _, en := range e.entries(lines) {
		ed := resume.Education{
			ID:          e.newID(),
			Institution: truncate(en.parts[0], e.limits.EntryFieldRunes),
			Degree:      truncate(en.parts[1], e.limits.EntryFieldRunes),
			StartDate:   en.when.start,
			EndDate:     en.when.end,
			Current:     en.when.current,
			Description: e.joinDescription(en.description),
		}
		if len(en.parts) > 2 {
			ed.Field = truncate(en.parts[2], e.limits.EntryFieldRunes)
		}
		out = append(out, ed)
	}
	return out
}

const (
	minProjectRunes = 5
	maxProjectRunes = 100
)

var projectSeparator = regexp.MustCompile(`\s+[-–—:]\s+`)

func (e *Extractor) projects(lines []string) []resume.Project {
	return fold(lines, []resume.Project(nil), func(acc []resume.Project, line string) []resume.Project {
		last := len(acc) - 1
		n := utf8.RuneCountInString(line)

		if isBullet(line) || n > maxProjectRunes {
			if last >= 0 {
				acc[last].Description = joinNonEmpty(acc[last].Description, stripBullet(line))
			}
			return acc
		}

		if isBareDate(line) {
			if _, when, _ := splitDates(line); last >= 0 && acc[last].StartDate == "" {
				acc[last].StartDate, acc[last].EndDate, acc[last].Current = when.start, when.end, when.current
			}
			return acc
		}

		if n < minProjectRunes || len(acc) >= e.limits.MaxEntries {
			return acc
		}

		p := resume.Project{ID: e.newID()}
		parts := projectSeparator.Split(line, 2)
		p.Name = truncate(strings.TrimSpace(parts[0]), e.limits.ProjectRunes)
		if len(parts) == 2 {
			p.Description = strings.TrimSpace(parts[1])
		}
		return append(acc, p)
	})
}

func joinNonEmpty(a, b string) string {
	if a == "" {
		return b
	}
	return a + "\n" + b
}

var languageLevels = []struct {
	level resume.LanguageLevel
	words []string
}{
	{resume.LanguageLevelNative, []string{"native", "nativo", "nativa", "materno", "materna", "mother tongue"}},
	{resume.LanguageLevelFluent, []string{"fluent", "fluente", "fluido", "fluida", "fluency"}},
	{resume.LanguageLevelAdvanced, []string{"advanced", "avançado", "avancado", "avanzado", "proficient"}},
	{resume.LanguageLevelIntermediate, []string{"intermediate", "intermediário", "intermediario", "intermedio"}},
	{resume.LanguageLevelBasic, []string{"basic", "básico", "basico", "beginner", "elementary", "iniciante"}},
}

var (
	languageItemSeparator = regexp.MustCompile(`[,;•·|]`)
	languageNameSeparator = regexp.MustCompile(`\s*[-–—:(]\s*`)
)

func languageLevel(item string) (resume.LanguageLevel, bool) {
	lower := strings.ToLower(item)
	for _, l := range languageLevels {
		for _, w := range l.words {
			if strings.Contains(lower, w) {
				return l.level, true
			}
		}
	}
	return "", false
}

// languages accepts items such as "English (Fluent)" or "Espanhol - básico";
// items without a recognizable level are ignored
func (e *Extractor) languages(lines []string) []resume.Language {
	return fold(lines, []resume.Language(nil), func(acc []resume.Language, line string) []resume.Language {
		for _, item := range languageItemSeparator.Split(stripBullet(line), -1) {
			if len(acc) >= e.limits.MaxLanguages {
				break
			}
			level, ok := languageLevel(item)
			if !ok {
				continue
			}
			name := strings.TrimSpace(languageNameSeparator.Split(strings.TrimSpace(item), 2)[0])
			if _, isLevel := languageLevel(name); isLevel || !hasLetters(name) || utf8.RuneCountInString(name) > 40 {
				continue
			}
			acc = append(acc, resume.Language{ID: e.newID(), Name: name, Level: level})
		}
		return acc
	})
}
