package ai

import (
	"context"
	"fmt"

	"resumeats/internal/config"
	"resumeats/internal/errors"
	"resumeats/internal/extract"
	"resumeats/internal/resume"
)

// Method names the strategy that produced an import result
type Method string

const (
	MethodAI        Method = "ai"
	MethodHeuristic Method = "heuristic"
)

// Result is the outcome of an import
type Result struct {
	Record resume.PartialRecord `json:"record"`
	Method Method               `json:"method"`
}

// Importer extracts partial records from document text. It prefers the AI
// parser when one is configured and falls back to the heuristic extractor
// on any AI failure or empty AI answer.
type Importer struct {
	parser    Parser
	extractor *extract.Extractor
	logger    *errors.Logger
}

// NewImporter creates an importer. A nil parser means heuristics only.
func NewImporter(parser Parser, extractor *extract.Extractor, logger *errors.Logger) *Importer {
	if extractor == nil {
		extractor = extract.New()
	}
	return &Importer{parser: parser, extractor: extractor, logger: logger}
}

// NewService creates an importer from configuration. The Gemini parser is
// wired only when AI import is enabled and an API key is present.
func NewService(ctx context.Context, cfg *config.Config, extractor *extract.Extractor, logger *errors.Logger) (*Importer, error) {
	if !cfg.AIAvailable() {
		if cfg.AI.Enabled {
			logger.Warn("AI import enabled without an API key, using heuristics only")
		}
		return NewImporter(nil, extractor, logger), nil
	}

	logger.Debug("Initializing AI service",
		"provider", cfg.AI.Provider,
		"model", cfg.AI.Model,
		"temperature", cfg.AI.Temperature,
		"timeout", cfg.AI.Timeout,
		"max_retries", cfg.AI.MaxRetries)

	var parser Parser
	switch cfg.AI.Provider {
	case "gemini":
		provider, err := NewGeminiProvider(ctx, cfg.AI, logger)
		if err != nil {
			return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
				"Failed to create AI provider", err)
		}
		parser = provider
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.AI.Provider), nil)
	}

	return NewImporter(parser, extractor, logger), nil
}

// AIEnabled reports whether an AI parser is wired
func (i *Importer) AIEnabled() bool {
	return i.parser != nil
}

// Stats reports the AI parser's state when it exposes any
func (i *Importer) Stats() map[string]any {
	stats := map[string]any{"ai_enabled": i.AIEnabled()}
	if reporter, ok := i.parser.(interface{ Stats() map[string]any }); ok {
		stats["parser"] = reporter.Stats()
	}
	return stats
}

// Import extracts a partial record from text. It never fails: the
// heuristic extractor always produces a (possibly empty) record.
func (i *Importer) Import(ctx context.Context, text string) Result {
	if i.parser != nil {
		partial, err := i.parser.Parse(ctx, text)
		switch {
		case err != nil:
			i.logger.LogError(err, "AI import failed, falling back to heuristics")
		case partial.IsEmpty():
			i.logger.Warn("AI import returned nothing, falling back to heuristics")
		default:
			return Result{Record: partial, Method: MethodAI}
		}
	}

	return Result{Record: i.extractor.Extract(text), Method: MethodHeuristic}
}
