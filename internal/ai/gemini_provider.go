package ai

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"resumeats/internal/config"
	apperrors "resumeats/internal/errors"
	"resumeats/internal/resume"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/genai"
)

const parseOperation = "parse_resume"

// GeminiProvider implements Parser with Google Gemini structured output
type GeminiProvider struct {
	generate       func(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	config         config.AIConfig
	circuitBreaker *AICircuitBreaker
	logger         *apperrors.Logger
	retryBaseDelay time.Duration
	newID          func() string
}

// Ensure GeminiProvider implements Parser
var _ Parser = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance
func NewGeminiProvider(ctx context.Context, cfg config.AIConfig, logger *apperrors.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperrors.NewAIError(apperrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	provider := newProvider(cfg, logger)
	provider.generate = func(ctx context.Context, prompt string, genCfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return client.Models.GenerateContent(ctx, cfg.Model, genai.Text(prompt), genCfg)
	}
	return provider, nil
}

func newProvider(cfg config.AIConfig, logger *apperrors.Logger) *GeminiProvider {
	return &GeminiProvider{
		config:         cfg,
		circuitBreaker: NewAICircuitBreaker("Import", cfg.CircuitBreaker, logger),
		logger:         logger,
		retryBaseDelay: time.Second,
		newID:          resume.NewID,
	}
}

// Parse asks Gemini for a PartialRecord-shaped JSON document and decodes it
func (g *GeminiProvider) Parse(ctx context.Context, text string) (resume.PartialRecord, error) {
	tracer := otel.Tracer("resumeats.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+parseOperation)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Int("input.text_length", len(text)),
	)

	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	genCfg := g.buildParseSchema()
	userPrompt := fmt.Sprintf(userPromptTemplate, text)

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, parseOperation, func() (*genai.GenerateContentResponse, error) {
			return g.generate(ctx, userPrompt, genCfg)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return resume.PartialRecord{}, apperrors.NewAIError(apperrors.ErrCodeAIServiceFailed, "Failed to generate content for "+parseOperation, err)
	}

	partial, err := resume.DecodePartial([]byte(result.Text()))
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return resume.PartialRecord{}, apperrors.NewAIError("AI_RESPONSE_PARSE_FAILED", "Failed to parse AI response for "+parseOperation, err)
	}
	g.assignIDs(&partial)

	if usage := extractTokenUsage(result); usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Int64("ai.tokens.total", usage.TotalTokens),
		)
		g.logger.Info("AI token usage",
			"operation", parseOperation,
			"input_tokens", usage.InputTokens,
			"output_tokens", usage.OutputTokens,
			"total_tokens", usage.TotalTokens)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return partial, nil
}

// assignIDs gives every list item an identifier; the model never supplies one
func (g *GeminiProvider) assignIDs(p *resume.PartialRecord) {
	for i := range p.Experience {
		p.Experience[i].ID = g.newID()
	}
	for i := range p.Education {
		p.Education[i].ID = g.newID()
	}
	for i := range p.Skills {
		p.Skills[i].ID = g.newID()
	}
	for i := range p.Languages {
		p.Languages[i].ID = g.newID()
	}
	for i := range p.Certifications {
		p.Certifications[i].ID = g.newID()
	}
	for i := range p.Projects {
		p.Projects[i].ID = g.newID()
	}
}

// executeWithRetry executes an AI operation with retry logic and exponential backoff
func (g *GeminiProvider) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", g.config.MaxRetries,
				"error", lastErr.Error())

			// Exponential backoff with jitter to prevent thundering herd
			baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * g.retryBaseDelay
			var jitter time.Duration
			if jitterMax := int64(float64(baseDelay) * 0.1); jitterMax > 0 {
				jitterBig, _ := rand.Int(rand.Reader, big.NewInt(jitterMax))
				jitter = time.Duration(jitterBig.Int64())
			}
			// Cap maximum backoff at 30 seconds
			backoff := min(baseDelay+jitter, 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		// Don't retry on certain errors (auth, invalid input, etc.)
		if !isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", g.config.MaxRetries+1)

	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, g.config.MaxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Network errors (timeouts, connection refused) are transient
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	status, ok := apiStatus(err)
	if !ok {
		return false
	}
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// buildParseSchema creates the response schema mirroring PartialRecord
func (g *GeminiProvider) buildParseSchema() *genai.GenerateContentConfig {
	str := func() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }
	boolean := func() *genai.Schema { return &genai.Schema{Type: genai.TypeBoolean} }
	list := func(props map[string]*genai.Schema, required ...string) *genai.Schema {
		return &genai.Schema{
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   required,
			},
		}
	}

	genCfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"personal": {
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name":            str(),
						"desiredPosition": str(),
						"email":           str(),
						"phone":           str(),
						"address":         str(),
						"portfolio":       str(),
						"linkedin":        str(),
						"github":          str(),
					},
				},
				"summary": str(),
				"experience": list(map[string]*genai.Schema{
					"company":     str(),
					"position":    str(),
					"startDate":   str(),
					"endDate":     str(),
					"current":     boolean(),
					"description": str(),
				}, "company", "position"),
				"education": list(map[string]*genai.Schema{
					"institution": str(),
					"degree":      str(),
					"field":       str(),
					"startDate":   str(),
					"endDate":     str(),
					"current":     boolean(),
					"description": str(),
				}, "institution", "degree"),
				"skills": list(map[string]*genai.Schema{
					"name": str(),
					"level": {
						Type: genai.TypeString,
						Enum: []string{"", "basic", "intermediate", "advanced", "expert"},
					},
				}, "name"),
				"languages": list(map[string]*genai.Schema{
					"name": str(),
					"level": {
						Type: genai.TypeString,
						Enum: []string{"basic", "intermediate", "advanced", "fluent", "native"},
					},
				}, "name", "level"),
				"certifications": list(map[string]*genai.Schema{
					"name":        str(),
					"issuer":      str(),
					"date":        str(),
					"description": str(),
					"url":         str(),
				}, "name"),
				"projects": list(map[string]*genai.Schema{
					"name":         str(),
					"description":  str(),
					"technologies": str(),
					"link":         str(),
					"startDate":    str(),
					"endDate":      str(),
					"current":      boolean(),
				}, "name"),
			},
			Required: []string{"personal"},
		},
	}

	systemPrompt := g.config.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	genCfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)

	if g.config.Temperature > 0 {
		temperature := g.config.Temperature
		genCfg.Temperature = &temperature
	}

	return genCfg
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// Stats reports the provider model and breaker state
func (g *GeminiProvider) Stats() map[string]any {
	return map[string]any{
		"model":           g.config.Model,
		"circuit_breaker": g.circuitBreaker.GetStats(),
		"healthy":         g.circuitBreaker.IsHealthy(),
	}
}
