package ats

// DefaultKeywords mixes technology terms, soft skills, methodologies and
// action verbs in Portuguese and English.
var DefaultKeywords = []string{
	// Technology
	"javascript", "typescript", "react", "node.js", "python", "java", "sql",
	"html", "css", "git", "docker", "kubernetes", "aws", "azure",
	// Soft skills
	"liderança", "comunicação", "trabalho em equipe", "resolução de problemas",
	"leadership", "communication", "teamwork", "problem solving",
	// Methodologies
	"agile", "scrum", "kanban", "devops", "ci/cd",
	// Action verbs
	"gerenciamento", "desenvolvimento", "implementação", "otimização",
	"management", "development", "implementation", "optimization",
}
