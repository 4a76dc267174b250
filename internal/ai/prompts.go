package ai

// DefaultSystemPrompt is used when ai.systemPrompt is not configured
const DefaultSystemPrompt = `You are an expert résumé parser feeding an applicant tracking system. Your core principles are:

- NEVER invent, infer, or embellish information that is not present in the text
- Copy names, companies, institutions and dates exactly as written
- Leave a field empty when the text does not state it
- Keep descriptions in the original language of the document`

// userPromptTemplate is formatted with the document text
const userPromptTemplate = `Extract the structured résumé data from the document below.

Rules:
- personal: name, desiredPosition, email, phone, address, portfolio, linkedin, github
- experience: one entry per job, newest first, with company, position, startDate, endDate, current and description
- education: one entry per course with institution, degree, field, dates and description
- skills: individual technical or professional skills; level only when stated
- languages: spoken languages with a level (basic, intermediate, advanced, fluent or native)
- dates keep the document's own format (for example "Jan 2020" or "2019")

Document:
"""
%s
"""`
