package audit

import (
	"context"
	"fmt"
	"strings"

	"sales_crm_backend/platform/config"

	"google.golang.org/genai"
)

// GeminiGenerator produces audit narratives with the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a generator for cfg. Callers check
// cfg.IsAuditEnabled first.
func NewGeminiGenerator(ctx context.Context, cfg config.AuditConfig) (*GeminiGenerator, error) {
	if !cfg.IsAuditEnabled() {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiGenerator{client: client, model: cfg.GetGeminiModel()}, nil
}

// Model returns the model name used for generation.
func (g *GeminiGenerator) Model() string { return g.model }

// Generate sends the prompt with the audit instructions and returns the text
// of the first candidate.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.3),
			MaxOutputTokens:   1024,
		},
	)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}
