package ai

import (
	"context"

	"resumeats/internal/resume"
)

// Parser turns raw document text into a partial résumé record
type Parser interface {
	Parse(ctx context.Context, text string) (resume.PartialRecord, error)
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}
