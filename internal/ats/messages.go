package ats

import "resumeats/internal/validators"

// Messages resolves a message key for a locale. Implementations return ""
// for unknown keys.
type Messages interface {
	Lookup(locale Locale, key string) string
}

// Message keys
const (
	keySectionPersonal   = "section.personal"
	keySectionSummary    = "section.summary"
	keySectionExperience = "section.experience"
	keySectionEducation  = "section.education"
	keySectionSkills     = "section.skills"
	keySectionKeywords   = "section.keywords"

	keyNameOK          = "personal.name.ok"
	keyNameMissing     = "personal.name.missing"
	keyEmailOK         = "personal.email.ok"
	keyEmailMissing    = "personal.email.missing"
	keyPhoneOK         = "personal.phone.ok"
	keyPhoneMissing    = "personal.phone.missing"
	keyLinkedInOK      = "personal.linkedin.ok"
	keyGitHubOK        = "personal.github.ok"
	keySummaryMissing  = "summary.missing"
	keyExperienceNone  = "experience.missing"
	keyExperienceCount = "experience.count"
	keyEducationNone   = "education.missing"
	keyEducationCount  = "education.count"
	keySkillsNone      = "skills.missing"
	keySkillsFew       = "skills.few"
	keySkillsGood      = "skills.good"
	keyKeywordsNone    = "keywords.none"
	keyKeywordsHigh    = "keywords.excellent"
	keyKeywordsMedium  = "keywords.good"
	keyKeywordsLow     = "keywords.few"

	keyRecFixErrors    = "recommendation.fix_errors"
	keyRecImprovements = "recommendation.improvements"
	keyRecKeywords     = "recommendation.keywords"
	keyRecFormatting   = "recommendation.formatting"
	keyRecFonts        = "recommendation.fonts"
	keyRecPDF          = "recommendation.pdf"
)

// Catalog is an in-memory Messages implementation
type Catalog map[Locale]map[string]string

// Lookup returns the message for key in locale, falling back to English
func (c Catalog) Lookup(locale Locale, key string) string {
	if msg, ok := c[locale][key]; ok {
		return msg
	}
	return c[LocaleEN][key]
}

// DefaultCatalog carries the built-in pt, en and es messages
var DefaultCatalog = Catalog{
	LocalePT: {
		keySectionPersonal:   "Informações Pessoais",
		keySectionSummary:    "Resumo Profissional",
		keySectionExperience: "Experiência Profissional",
		keySectionEducation:  "Formação Acadêmica",
		keySectionSkills:     "Habilidades",
		keySectionKeywords:   "Palavras-chave ATS",

		keyNameOK:          "Nome presente",
		keyNameMissing:     "Nome é obrigatório",
		keyEmailOK:         "Email válido",
		keyEmailMissing:    "Email válido é obrigatório",
		keyPhoneOK:         "Telefone válido",
		keyPhoneMissing:    "Telefone válido é obrigatório",
		keyLinkedInOK:      "LinkedIn presente",
		keyGitHubOK:        "GitHub presente",
		keySummaryMissing:  "Resumo profissional é obrigatório",
		keyExperienceNone:  "Pelo menos uma experiência é obrigatória",
		keyExperienceCount: "%d experiência(s) adicionada(s), %d pontos",
		keyEducationNone:   "Recomendado adicionar formação acadêmica",
		keyEducationCount:  "%d formação(ões) adicionada(s)",
		keySkillsNone:      "Habilidades são obrigatórias para ATS",
		keySkillsFew:       "Adicione mais habilidades (mín. 5)",
		keySkillsGood:      "Boa quantidade de habilidades",
		keyKeywordsNone:    "Nenhum conteúdo para analisar palavras-chave",
		keyKeywordsHigh:    "Excelente! %d palavras-chave encontradas",
		keyKeywordsMedium:  "Bom! %d palavras-chave encontradas",
		keyKeywordsLow:     "Poucas palavras-chave (%d). Adicione mais termos técnicos",

		validators.KeyDescriptionTooShort: "Descrição muito curta, adicione mais detalhes",
		validators.KeyDescriptionFair:     "Descrição poderia ser mais detalhada",
		validators.KeyDescriptionGood:     "Descrição com bom tamanho",
		validators.KeyDescriptionTooLong:  "Descrição muito longa, considere resumi-la",

		keyRecFixErrors:    "Corrija os erros críticos primeiro para melhorar a compatibilidade com ATS",
		keyRecImprovements: "Considere as melhorias sugeridas para otimizar ainda mais seu currículo",
		keyRecKeywords:     "Use palavras-chave relevantes para sua área de atuação",
		keyRecFormatting:   "Mantenha formatação simples e evite elementos gráficos complexos",
		keyRecFonts:        "Use fontes padrão como Arial ou Helvetica",
		keyRecPDF:          "Salve sempre em formato PDF para preservar a formatação",
	},
	LocaleEN: {
		keySectionPersonal:   "Personal Information",
		keySectionSummary:    "Professional Summary",
		keySectionExperience: "Work Experience",
		keySectionEducation:  "Education",
		keySectionSkills:     "Skills",
		keySectionKeywords:   "ATS Keywords",

		keyNameOK:          "Name provided",
		keyNameMissing:     "Name is required",
		keyEmailOK:         "Valid email",
		keyEmailMissing:    "Valid email is required",
		keyPhoneOK:         "Valid phone",
		keyPhoneMissing:    "Valid phone is required",
		keyLinkedInOK:      "LinkedIn provided",
		keyGitHubOK:        "GitHub provided",
		keySummaryMissing:  "Professional summary is required",
		keyExperienceNone:  "At least one work experience is required",
		keyExperienceCount: "%d work experience(s) added, %d points",
		keyEducationNone:   "Recommended to add education",
		keyEducationCount:  "%d education(s) added",
		keySkillsNone:      "Skills are required for ATS",
		keySkillsFew:       "Add more skills (min. 5)",
		keySkillsGood:      "Good amount of skills",
		keyKeywordsNone:    "No content to analyze for keywords",
		keyKeywordsHigh:    "Excellent! %d keywords found",
		keyKeywordsMedium:  "Good! %d keywords found",
		keyKeywordsLow:     "Few keywords (%d). Add more technical terms",

		validators.KeyDescriptionTooShort: "Description is too short, add more detail",
		validators.KeyDescriptionFair:     "Description could be more detailed",
		validators.KeyDescriptionGood:     "Description has a good length",
		validators.KeyDescriptionTooLong:  "Description is too long, consider condensing it",

		keyRecFixErrors:    "Fix critical errors first to improve ATS compatibility",
		keyRecImprovements: "Consider suggested improvements to further optimize your resume",
		keyRecKeywords:     "Use relevant keywords for your field",
		keyRecFormatting:   "Keep simple formatting and avoid complex graphics",
		keyRecFonts:        "Use standard fonts like Arial or Helvetica",
		keyRecPDF:          "Always save as PDF to preserve formatting",
	},
	LocaleES: {
		keySectionPersonal:   "Información Personal",
		keySectionSummary:    "Resumen Profesional",
		keySectionExperience: "Experiencia Laboral",
		keySectionEducation:  "Formación Académica",
		keySectionSkills:     "Habilidades",
		keySectionKeywords:   "Palabras clave ATS",

		keyNameOK:          "Nombre proporcionado",
		keyNameMissing:     "El nombre es obligatorio",
		keyEmailOK:         "Correo válido",
		keyEmailMissing:    "Se requiere un correo válido",
		keyPhoneOK:         "Teléfono válido",
		keyPhoneMissing:    "Se requiere un teléfono válido",
		keyLinkedInOK:      "LinkedIn proporcionado",
		keyGitHubOK:        "GitHub proporcionado",
		keySummaryMissing:  "Resumen profesional es obligatorio",
		keyExperienceNone:  "Se requiere al menos una experiencia laboral",
		keyExperienceCount: "%d experiencia(s) agregada(s), %d puntos",
		keyEducationNone:   "Se recomienda agregar formación académica",
		keyEducationCount:  "%d formación(es) agregada(s)",
		keySkillsNone:      "Las habilidades son obligatorias para ATS",
		keySkillsFew:       "Agrega más habilidades (mín. 5)",
		keySkillsGood:      "Buena cantidad de habilidades",
		keyKeywordsNone:    "No hay contenido para analizar palabras clave",
		keyKeywordsHigh:    "¡Excelente! %d palabras clave encontradas",
		keyKeywordsMedium:  "¡Bien! %d palabras clave encontradas",
		keyKeywordsLow:     "Pocas palabras clave (%d). Añade más términos técnicos",

		validators.KeyDescriptionTooShort: "Descripción demasiado corta, agrega más detalles",
		validators.KeyDescriptionFair:     "La descripción podría ser más detallada",
		validators.KeyDescriptionGood:     "Descripción con buena extensión",
		validators.KeyDescriptionTooLong:  "Descripción demasiado larga, considera resumirla",

		keyRecFixErrors:    "Corrige los errores críticos primero para mejorar la compatibilidad con ATS",
		keyRecImprovements: "Considera las mejoras sugeridas para optimizar aún más tu CV",
		keyRecKeywords:     "Usa palabras clave relevantes para tu campo",
		keyRecFormatting:   "Mantén un formato sencillo y evita gráficos complejos",
		keyRecFonts:        "Usa fuentes estándar como Arial o Helvetica",
		keyRecPDF:          "Guarda siempre en formato PDF para preservar el formato",
	},
}
