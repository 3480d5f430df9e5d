package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Usage holds the token counts reported by the service for one call.
type Usage struct {
	PromptTokens int32 `json:"prompt_tokens"`
	OutputTokens int32 `json:"output_tokens"`
	TotalTokens  int32 `json:"total_tokens"`
}

// Backend is the raw structured-generation boundary: one call, no retries.
type Backend interface {
	// Generate issues a single schema-constrained call and returns the raw
	// JSON payload plus the reported token usage.
	Generate(ctx context.Context, model, systemPrompt, userPrompt string, schema *genai.Schema) (string, Usage, error)
	// Close releases resources held by the backend.
	Close() error
}

// GeminiBackend implements Backend on the Google Gemini API.
type GeminiBackend struct {
	client *genai.Client
}

// NewGeminiBackend creates a Gemini backend authenticated with apiKey.
func NewGeminiBackend(ctx context.Context, apiKey string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiBackend{client: client}, nil
}

// Generate issues one schema-constrained generation call.
func (b *GeminiBackend) Generate(ctx context.Context, model, systemPrompt, userPrompt string, schema *genai.Schema) (string, Usage, error) {
	m := b.client.GenerativeModel(model)
	m.SetTemperature(0.1) // Low temperature for consistent output
	m.ResponseMIMEType = "application/json"
	if schema != nil {
		m.ResponseSchema = schema
	}
	if systemPrompt != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", Usage{}, wrap(err, "generate content")
	}

	usage := usageFromResponse(resp)

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", usage, &Error{
			Kind:    KindBlocked,
			Message: fmt.Sprintf("prompt blocked: %s", resp.PromptFeedback.BlockReason),
		}
	}

	text, err := extractText(resp)
	if err != nil {
		return "", usage, err
	}

	return CleanJSONBlock(text), usage, nil
}

// Close releases the underlying client.
func (b *GeminiBackend) Close() error {
	if b.client != nil {
		return b.client.Close()
	}
	return nil
}

func usageFromResponse(resp *genai.GenerateContentResponse) Usage {
	if resp == nil || resp.UsageMetadata == nil {
		return Usage{}
	}
	return Usage{
		PromptTokens: resp.UsageMetadata.PromptTokenCount,
		OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
		TotalTokens:  resp.UsageMetadata.TotalTokenCount,
	}
}

// extractText pulls the textual payload out of a Gemini response. An empty
// payload is surfaced as KindNoContent, never silently defaulted.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", &Error{Kind: KindNoContent, Message: "no content generated"}
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &Error{Kind: KindNoContent, Message: "no content generated"}
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 || strings.TrimSpace(strings.Join(parts, "")) == "" {
		return "", &Error{Kind: KindNoContent, Message: "no content generated"}
	}

	return strings.Join(parts, ""), nil
}
