package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"resumeats/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     120,
			CandidatesTokenCount: 80,
			TotalTokenCount:      200,
		},
	}
}

func testProvider(maxRetries int, generate func(context.Context, string, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)) *GeminiProvider {
	p := newProvider(config.AIConfig{
		Model:       "gemini-test",
		MaxRetries:  maxRetries,
		Temperature: 0.1,
		Timeout:     time.Second,
	}, nil)
	p.retryBaseDelay = time.Millisecond
	p.generate = generate
	n := 0
	p.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return p
}

func TestGeminiProvider_Parse(t *testing.T) {
	var gotPrompt string
	var gotCfg *genai.GenerateContentConfig
	p := testProvider(0, func(_ context.Context, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		gotPrompt, gotCfg = prompt, cfg
		return textResponse(`{
			"personal": {"name": "Ana Lima", "email": "ana@example.com"},
			"experience": [{"company": "Acme", "position": "Engineer", "current": true}],
			"skills": [{"name": "Go"}, {"name": "SQL", "level": "advanced"}]
		}`), nil
	})

	partial, err := p.Parse(context.Background(), "Ana Lima\nana@example.com")
	require.NoError(t, err)

	assert.Contains(t, gotPrompt, "Ana Lima\nana@example.com")
	assert.Equal(t, "application/json", gotCfg.ResponseMIMEType)
	require.NotNil(t, gotCfg.Temperature)
	assert.InDelta(t, 0.1, *gotCfg.Temperature, 1e-6)

	assert.Equal(t, "Ana Lima", partial.Personal.Name)
	require.Len(t, partial.Experience, 1)
	assert.Equal(t, "id-1", partial.Experience[0].ID)
	assert.True(t, partial.Experience[0].Current)
	require.Len(t, partial.Skills, 2)
	assert.NotEmpty(t, partial.Skills[1].ID)
	assert.Equal(t, "advanced", string(partial.Skills[1].Level))
}

func TestGeminiProvider_ParseRejectsBadShape(t *testing.T) {
	p := testProvider(0, func(context.Context, string, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return textResponse(`{"skills": "Go, SQL"}`), nil
	})

	_, err := p.Parse(context.Background(), "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AI_RESPONSE_PARSE_FAILED")
}

func TestGeminiProvider_RetriesTransientErrors(t *testing.T) {
	calls := 0
	p := testProvider(2, func(context.Context, string, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		calls++
		if calls < 3 {
			return nil, &googleapi.Error{Code: http.StatusServiceUnavailable}
		}
		return textResponse(`{"personal": {"name": "Ana"}}`), nil
	})

	partial, err := p.Parse(context.Background(), "Ana")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "Ana", partial.Personal.Name)
}

func TestGeminiProvider_DoesNotRetryPermanentErrors(t *testing.T) {
	calls := 0
	p := testProvider(3, func(context.Context, string, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		calls++
		return nil, &googleapi.Error{Code: http.StatusUnauthorized}
	})

	_, err := p.Parse(context.Background(), "Ana")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", &googleapi.Error{Code: http.StatusTooManyRequests}, true},
		{"bad gateway", fmt.Errorf("wrapped: %w", &googleapi.Error{Code: http.StatusBadGateway}), true},
		{"bad request", &googleapi.Error{Code: http.StatusBadRequest}, false},
		{"genai unavailable", genai.APIError{Code: http.StatusServiceUnavailable}, true},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableError(tt.err); got != tt.want {
				t.Errorf("isRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestExtractTokenUsage(t *testing.T) {
	usage := extractTokenUsage(textResponse("{}"))
	require.NotNil(t, usage)
	assert.Equal(t, int64(200), usage.TotalTokens)
	assert.Nil(t, extractTokenUsage(&genai.GenerateContentResponse{}))
}
