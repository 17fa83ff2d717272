package llm

import (
	"context"
	"fmt"

	"github.com/cleberrangel/teamsync-api/internal/model"
	"google.golang.org/genai"
)

const geminiModel = "gemini-2.0-flash"

// GeminiProvider chama o modelo Gemini via SDK oficial do Google
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider cria um novo provider Gemini
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY não configurada")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("criar cliente genai: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  geminiModel,
	}, nil
}

// Name retorna o nome do provider
func (p *GeminiProvider) Name() string { return "gemini" }

// Complete envia o prompt e retorna o texto bruto da conclusão
func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	result, err := p.client.Models.GenerateContent(ctx,
		p.model,
		genai.Text(prompt),
		nil,
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", model.ErrTimeout
		}
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", model.ErrInvalidResponse
	}

	return text, nil
}
