package resume

import "slices"

// Merge folds an imported partial record into base and returns the result.
// Personal fields merge key by key with non-empty imported values winning.
// Slices are replaced wholesale only when the import found something, and
// items are never merged individually. base is left untouched.
func Merge(base Record, partial PartialRecord) Record {
	out := base
	out.Personal = mergePersonal(base.Personal, partial.Personal)

	if partial.Summary != "" {
		out.Summary = partial.Summary
	}

	out.Experience = pick(base.Experience, partial.Experience)
	out.Education = pick(base.Education, partial.Education)
	out.Skills = pick(base.Skills, partial.Skills)
	out.Languages = pick(base.Languages, partial.Languages)
	out.Certifications = pick(base.Certifications, partial.Certifications)
	out.Projects = pick(base.Projects, partial.Projects)
	out.SectionOrder = slices.Clone(base.SectionOrder)

	return out
}

func pick[T any](base, imported []T) []T {
	if len(imported) > 0 {
		return slices.Clone(imported)
	}
	return slices.Clone(base)
}

func mergePersonal(base, imported PersonalInfo) PersonalInfo {
	out := base
	prefer(&out.Name, imported.Name)
	prefer(&out.DesiredPosition, imported.DesiredPosition)
	prefer(&out.Email, imported.Email)
	prefer(&out.Phone, imported.Phone)
	prefer(&out.Address, imported.Address)
	prefer(&out.Portfolio, imported.Portfolio)
	prefer(&out.LinkedIn, imported.LinkedIn)
	prefer(&out.GitHub, imported.GitHub)
	return out
}

func prefer(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
